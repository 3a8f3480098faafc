package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/tessera-ai/eventgate/internal/domain"
	"github.com/tessera-ai/eventgate/policy"
)

// PublishRuntimeUpdate admits, persists, and fans out a runtime-update
// event. The payload comes from the publish resolver and carries the
// agentName key; admission is the policy engine's call.
func (s *Service) PublishRuntimeUpdate(ctx context.Context, payload map[string]any) (map[string]any, error) {
	decision, err := s.policyEngine.Evaluate(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("policy evaluation failed: %w", err)
	}
	if decision != policy.DecisionAllow {
		return nil, ErrPublishBlocked
	}

	// The policy guarantees a non-empty string agentName past this point.
	agentName, _ := payload["agentName"].(string)

	// Events for a known runtime carry its current status.
	var status domain.RuntimeStatus
	if rt, err := s.store.GetRuntime(ctx, agentName); err != nil {
		return nil, fmt.Errorf("failed to look up runtime: %w", err)
	} else if rt != nil {
		status = rt.Status
	}

	event, err := s.emitRuntimeEvent(ctx, agentName, status, "")
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"agentName": event.AgentName,
		"eventId":   event.EventID,
		"status":    string(event.Status),
		"ts":        event.Ts,
	}, nil
}

// emitRuntimeEvent persists a runtime event and publishes it to the broker.
func (s *Service) emitRuntimeEvent(ctx context.Context, agentName string, status domain.RuntimeStatus, message string) (*domain.RuntimeEvent, error) {
	payloadBytes, err := json.Marshal(map[string]any{"agentName": agentName})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	event := &domain.RuntimeEvent{
		EventID:   "evt_" + uuid.New().String()[:8],
		AgentName: agentName,
		Status:    status,
		Message:   message,
		Payload:   payloadBytes,
		Ts:        time.Now().UnixMilli(),
	}

	if err := s.store.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to record event: %w", err)
	}

	s.broker.Publish(*event)
	log.Printf("Published runtime update %s for agent %s (status=%s)", event.EventID, agentName, status)

	return event, nil
}

// ListRuntimeEvents returns the stored event history for an agent.
func (s *Service) ListRuntimeEvents(ctx context.Context, agentName string, afterTs int64, limit int) ([]domain.RuntimeEvent, error) {
	return s.store.ListEvents(ctx, agentName, afterTs, limit)
}
