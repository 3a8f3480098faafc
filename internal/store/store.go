// Package store defines the storage interface and implementations.
package store

import (
	"context"

	"github.com/tessera-ai/eventgate/internal/domain"
)

// Store defines the interface for data persistence.
type Store interface {
	// Runtime operations
	CreateRuntime(ctx context.Context, runtime *domain.Runtime) error
	GetRuntime(ctx context.Context, agentName string) (*domain.Runtime, error)
	ListRuntimes(ctx context.Context) ([]domain.Runtime, error)
	UpdateRuntimeStatus(ctx context.Context, agentName string, status domain.RuntimeStatus) error
	DeleteRuntime(ctx context.Context, agentName string) error

	// Event operations
	CreateEvent(ctx context.Context, event *domain.RuntimeEvent) error
	ListEvents(ctx context.Context, agentName string, afterTs int64, limit int) ([]domain.RuntimeEvent, error)

	// Lifecycle
	Close() error
}
