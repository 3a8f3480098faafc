package policy

import (
	"context"
	"testing"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(context.Background(), DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func TestNewEngineLoadsDefaultPolicy(t *testing.T) {
	// DefaultPolicy is written in Rego v1 syntax; the engine must prepare
	// it without a parse error.
	if _, err := NewEngine(context.Background(), DefaultPolicy); err != nil {
		t.Fatalf("NewEngine failed to load default policy: %v", err)
	}
}

func TestDefaultPolicyAllowsNamedAgent(t *testing.T) {
	engine := newTestEngine(t)

	decision, err := engine.Evaluate(context.Background(), map[string]any{"agentName": "agent-42"})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision != DecisionAllow {
		t.Fatalf("expected allow, got %s", decision)
	}
}

func TestDefaultPolicyBlocksMissingAgentName(t *testing.T) {
	engine := newTestEngine(t)

	for _, input := range []map[string]any{
		{"agentName": nil},
		{"agentName": ""},
		{},
	} {
		decision, err := engine.Evaluate(context.Background(), input)
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}
		if decision != DecisionBlock {
			t.Fatalf("expected block for %v, got %s", input, decision)
		}
	}
}

func TestDefaultPolicyBlocksReservedPrefix(t *testing.T) {
	engine := newTestEngine(t)

	decision, err := engine.Evaluate(context.Background(), map[string]any{"agentName": "system.internal"})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if decision != DecisionBlock {
		t.Fatalf("expected block, got %s", decision)
	}
}
