package v1

import (
	"context"
	"testing"

	"github.com/tessera-ai/eventgate/internal/broker"
	"github.com/tessera-ai/eventgate/internal/config"
	"github.com/tessera-ai/eventgate/internal/hub"
	"github.com/tessera-ai/eventgate/internal/resolver"
	"github.com/tessera-ai/eventgate/internal/service"
	"github.com/tessera-ai/eventgate/internal/store"
	"github.com/tessera-ai/eventgate/policy"
	"github.com/tessera-ai/eventgate/tests/helpers"
)

func newTestHandler(t *testing.T) (*Handler, store.Store, *broker.Broker) {
	t.Helper()

	db := helpers.NewTestSQLiteStore(t)
	b := broker.New()
	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	svc := service.New(db, b, engine, &config.Config{})
	registry := resolver.NewRegistry(svc)
	return NewHandler(svc, registry, hub.NewHub()), db, b
}
