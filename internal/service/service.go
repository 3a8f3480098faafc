// Package service implements the gateway's business logic: event publishing,
// the runtime registry, and event history queries.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tessera-ai/eventgate/internal/broker"
	"github.com/tessera-ai/eventgate/internal/config"
	"github.com/tessera-ai/eventgate/internal/store"
	"github.com/tessera-ai/eventgate/policy"
)

var (
	// ErrPublishBlocked is returned when the publish policy rejects an event.
	ErrPublishBlocked = errors.New("publish blocked by policy")

	// ErrRuntimeExists is returned when creating a runtime for an agent name
	// that already has one.
	ErrRuntimeExists = errors.New("runtime already exists")

	// ErrRuntimeNotFound is returned when an operation targets an unknown
	// agent name.
	ErrRuntimeNotFound = errors.New("runtime not found")
)

type Service struct {
	store        store.Store
	broker       *broker.Broker
	policyEngine *policy.Engine
	config       *config.Config
}

func New(store store.Store, b *broker.Broker, policyEngine *policy.Engine, cfg *config.Config) *Service {
	return &Service{
		store:        store,
		broker:       b,
		policyEngine: policyEngine,
		config:       cfg,
	}
}

// Broker exposes the event broker for transports that fan events out.
func (s *Service) Broker() *broker.Broker {
	return s.broker
}

// Process executes the platform step for a resolver operation. It is the
// data source behind the resolver registry.
func (s *Service) Process(ctx context.Context, field string, payload map[string]any) (any, error) {
	switch field {
	case "publishRuntimeUpdate":
		return s.PublishRuntimeUpdate(ctx, payload)
	default:
		return nil, fmt.Errorf("no data source for field %s", field)
	}
}
