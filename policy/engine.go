// Package policy evaluates publish-admission policy for runtime events.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/rego"
)

// Decisions returned by the publish policy.
const (
	DecisionAllow = "allow"
	DecisionBlock = "block"
)

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.publish_policy.decision"),
		rego.Module("publish_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate checks the publish policy against the outbound payload.
// Input is the payload map (agentName and any future fields).
// Returns the decision (allow or block) and an error.
func (e *Engine) Evaluate(ctx context.Context, input any) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// The default policy defines a default decision; an empty result
		// means the loaded policy does not, so fail closed.
		return DecisionBlock, nil
	}

	if s, ok := results[0].Expressions[0].Value.(string); ok {
		return s, nil
	}
	return DecisionBlock, nil
}

// DefaultPolicy is the default publish policy: events must name a non-empty
// agent, and the system. prefix is reserved for the platform itself.
const DefaultPolicy = `
package publish_policy

default decision := "allow"

decision := "block" if {
	not valid_agent_name
}

decision := "block" if {
	valid_agent_name
	startswith(input.agentName, "system.")
}

valid_agent_name if {
	is_string(input.agentName)
	input.agentName != ""
}
`
