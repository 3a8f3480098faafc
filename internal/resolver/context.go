// Package resolver implements the GraphQL field resolvers of the gateway
// and the pipeline that executes them around the platform's processing step.
package resolver

import (
	"github.com/tessera-ai/eventgate/internal/domain"
)

// Context is the per-invocation bundle handed to resolver handlers. It
// carries the caller-supplied arguments and, on the response phase, the
// result produced by the data source. Handlers never mutate Arguments.
type Context struct {
	// Arguments maps argument names to caller-supplied values.
	Arguments map[string]any

	// Result is the value produced by the data source between the request
	// and response phases. Nil when the operation has no upstream step.
	Result any

	// Filters is the platform capability for narrowing subscription
	// delivery. Nil on mutation invocations.
	Filters FilterRegistry
}

// Request is the outbound descriptor a request handler produces. A nil
// Payload signals that no data-source step is needed for the operation.
type Request struct {
	Payload map[string]any
}

// FilterRegistry registers a subscription filter against the current
// subscription connection. It is supplied by the transport layer; the
// installed filter is retained for the life of the connection.
type FilterRegistry interface {
	SetSubscriptionFilter(domain.SubscriptionFilter)
}

// RequestHandler builds the outbound request for an operation.
type RequestHandler func(rc *Context) Request

// ResponseHandler maps the data-source result to the caller-visible value.
type ResponseHandler func(rc *Context) any

// ToSubscriptionFilter converts an equality predicate of the form
// {field: {"eq": value}} into the native filter representation.
func ToSubscriptionFilter(predicate map[string]any) domain.SubscriptionFilter {
	var filter domain.SubscriptionFilter
	for field, cond := range predicate {
		m, ok := cond.(map[string]any)
		if !ok {
			continue
		}
		filter.Conditions = append(filter.Conditions, domain.FieldCondition{
			Field: field,
			Eq:    m["eq"],
		})
	}
	return filter
}
