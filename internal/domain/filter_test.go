package domain

import "testing"

func TestSubscriptionFilterMatches(t *testing.T) {
	filter := SubscriptionFilter{Conditions: []FieldCondition{
		{Field: "agentName", Eq: "agent-42"},
	}}

	if !filter.Matches(map[string]any{"agentName": "agent-42", "status": "ACTIVE"}) {
		t.Fatal("expected exact match to pass")
	}
	if filter.Matches(map[string]any{"agentName": "agent-7"}) {
		t.Fatal("expected non-matching value to fail")
	}
	if filter.Matches(map[string]any{"status": "ACTIVE"}) {
		t.Fatal("expected missing field to fail")
	}
	if filter.Matches(map[string]any{"agentName": "Agent-42"}) {
		t.Fatal("expected match to be case sensitive")
	}
}

func TestSubscriptionFilterNilEqMatchesNothing(t *testing.T) {
	filter := SubscriptionFilter{Conditions: []FieldCondition{
		{Field: "agentName", Eq: nil},
	}}

	if filter.Matches(map[string]any{"agentName": "agent-42"}) {
		t.Fatal("nil eq condition must match nothing")
	}
}

func TestSubscriptionFilterZeroMatchesAll(t *testing.T) {
	var filter SubscriptionFilter

	if !filter.IsZero() {
		t.Fatal("expected zero filter")
	}
	if !filter.Matches(map[string]any{"agentName": "anything"}) {
		t.Fatal("zero filter must match every event")
	}
}

func TestSubscriptionFilterMultipleConditions(t *testing.T) {
	filter := SubscriptionFilter{Conditions: []FieldCondition{
		{Field: "agentName", Eq: "agent-42"},
		{Field: "status", Eq: "ACTIVE"},
	}}

	if !filter.Matches(map[string]any{"agentName": "agent-42", "status": "ACTIVE"}) {
		t.Fatal("expected conjunction to pass when all conditions hold")
	}
	if filter.Matches(map[string]any{"agentName": "agent-42", "status": "FAILED"}) {
		t.Fatal("expected conjunction to fail when one condition fails")
	}
}
