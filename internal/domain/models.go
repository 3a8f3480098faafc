package domain

import (
	"encoding/json"
	"time"
)

// Runtime represents a registered agent runtime.
type Runtime struct {
	AgentName    string           `json:"agent_name"`
	RuntimeID    string           `json:"runtime_id"`
	Version      string           `json:"version"`
	Architecture ArchitectureType `json:"architecture_type"`
	Status       RuntimeStatus    `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// RuntimeEvent represents a single runtime-update event published for an agent.
// Field names follow the GraphQL-facing surface, which is camelCase.
type RuntimeEvent struct {
	EventID   string          `json:"eventId"`
	AgentName string          `json:"agentName"`
	Status    RuntimeStatus   `json:"status,omitempty"`
	Message   string          `json:"message,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Ts        int64           `json:"ts"`
}

// Fields returns the event's filterable fields. Subscription filters are
// evaluated against this map.
func (e RuntimeEvent) Fields() map[string]any {
	return map[string]any{
		"agentName": e.AgentName,
		"status":    string(e.Status),
	}
}
