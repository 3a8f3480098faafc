package resolver

import (
	"context"
	"errors"
	"fmt"
)

// Kind distinguishes mutation fields from subscription fields.
type Kind string

const (
	KindMutation     Kind = "mutation"
	KindSubscription Kind = "subscription"
)

// Operation binds a schema field to its request and response handlers.
type Operation struct {
	Field      string
	Kind       Kind
	OnRequest  RequestHandler
	OnResponse ResponseHandler
}

// DataSource executes the platform's processing step for an operation.
// The service layer implements it.
type DataSource interface {
	Process(ctx context.Context, field string, payload map[string]any) (any, error)
}

// ErrUnknownField is returned when no operation is registered for a field.
var ErrUnknownField = errors.New("unknown field")

// Registry holds the gateway's resolvable operations.
type Registry struct {
	ops map[string]*Operation
	ds  DataSource
}

// NewRegistry creates a registry backed by the given data source and
// registers the gateway's operations.
func NewRegistry(ds DataSource) *Registry {
	r := &Registry{
		ops: make(map[string]*Operation),
		ds:  ds,
	}
	r.register(&Operation{
		Field:      "publishRuntimeUpdate",
		Kind:       KindMutation,
		OnRequest:  PublishRuntimeUpdateRequest,
		OnResponse: PublishRuntimeUpdateResponse,
	})
	r.register(&Operation{
		Field:      "onRuntimeUpdate",
		Kind:       KindSubscription,
		OnRequest:  OnRuntimeUpdateRequest,
		OnResponse: OnRuntimeUpdateResponse,
	})
	return r
}

func (r *Registry) register(op *Operation) {
	r.ops[op.Field] = op
}

// Lookup returns the operation registered for the field, or nil.
func (r *Registry) Lookup(field string) *Operation {
	return r.ops[field]
}

// Execute runs the full resolver pipeline for a field: the request handler,
// the data-source step when the request carries a payload, then the response
// handler. For subscription fields the caller must supply the filter
// registry of the connection being established.
func (r *Registry) Execute(ctx context.Context, field string, args map[string]any, filters FilterRegistry) (any, error) {
	op := r.ops[field]
	if op == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	rc := &Context{
		Arguments: args,
		Filters:   filters,
	}

	req := op.OnRequest(rc)
	if req.Payload != nil {
		result, err := r.ds.Process(ctx, field, req.Payload)
		if err != nil {
			return nil, err
		}
		rc.Result = result
	}

	return op.OnResponse(rc), nil
}
