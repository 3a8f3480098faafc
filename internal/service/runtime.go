package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tessera-ai/eventgate/internal/domain"
)

// CreateRuntime registers a new agent runtime and publishes its lifecycle
// events. The runtime is created in CREATING and transitions to ACTIVE once
// the record is in place; both transitions are published.
func (s *Service) CreateRuntime(ctx context.Context, agentName, version string, arch domain.ArchitectureType) (*domain.Runtime, error) {
	if arch == "" {
		arch = domain.ArchitectureSingle
	}
	if !arch.Valid() {
		return nil, fmt.Errorf("invalid architecture type: %s", arch)
	}

	existing, err := s.store.GetRuntime(ctx, agentName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRuntimeExists
	}

	if version == "" {
		version = "1"
	}

	now := time.Now()
	runtime := &domain.Runtime{
		AgentName:    agentName,
		RuntimeID:    "rt_" + uuid.New().String()[:8],
		Version:      version,
		Architecture: arch,
		Status:       domain.RuntimeStatusCreating,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateRuntime(ctx, runtime); err != nil {
		return nil, fmt.Errorf("failed to create runtime: %w", err)
	}
	if _, err := s.emitRuntimeEvent(ctx, agentName, domain.RuntimeStatusCreating, "runtime creation started"); err != nil {
		return nil, err
	}

	if err := s.store.UpdateRuntimeStatus(ctx, agentName, domain.RuntimeStatusActive); err != nil {
		return nil, fmt.Errorf("failed to activate runtime: %w", err)
	}
	runtime.Status = domain.RuntimeStatusActive
	if _, err := s.emitRuntimeEvent(ctx, agentName, domain.RuntimeStatusActive, "runtime active"); err != nil {
		return nil, err
	}

	return runtime, nil
}

// GetRuntime returns the runtime for an agent, or nil when none exists.
func (s *Service) GetRuntime(ctx context.Context, agentName string) (*domain.Runtime, error) {
	return s.store.GetRuntime(ctx, agentName)
}

// ListRuntimes returns all registered runtimes.
func (s *Service) ListRuntimes(ctx context.Context) ([]domain.Runtime, error) {
	return s.store.ListRuntimes(ctx)
}

// UpdateRuntimeStatus persists a status transition and publishes it.
func (s *Service) UpdateRuntimeStatus(ctx context.Context, agentName string, status domain.RuntimeStatus) (*domain.Runtime, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid runtime status: %s", status)
	}

	runtime, err := s.store.GetRuntime(ctx, agentName)
	if err != nil {
		return nil, err
	}
	if runtime == nil {
		return nil, ErrRuntimeNotFound
	}

	if err := s.store.UpdateRuntimeStatus(ctx, agentName, status); err != nil {
		return nil, err
	}
	runtime.Status = status
	if _, err := s.emitRuntimeEvent(ctx, agentName, status, ""); err != nil {
		return nil, err
	}

	return runtime, nil
}

// DeleteRuntime removes a runtime, publishing DELETING and DELETED events
// around the removal.
func (s *Service) DeleteRuntime(ctx context.Context, agentName string) error {
	runtime, err := s.store.GetRuntime(ctx, agentName)
	if err != nil {
		return err
	}
	if runtime == nil {
		return ErrRuntimeNotFound
	}

	if _, err := s.emitRuntimeEvent(ctx, agentName, domain.RuntimeStatusDeleting, "runtime deletion started"); err != nil {
		return err
	}
	if err := s.store.DeleteRuntime(ctx, agentName); err != nil {
		return fmt.Errorf("failed to delete runtime: %w", err)
	}
	if _, err := s.emitRuntimeEvent(ctx, agentName, domain.RuntimeStatusDeleted, "runtime deleted"); err != nil {
		return err
	}

	return nil
}
