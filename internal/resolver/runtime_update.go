package resolver

// Resolvers for the publishRuntimeUpdate mutation and the onRuntimeUpdate
// subscription. Both operate on the agentName argument; the mutation wraps
// it in the outbound payload, the subscription turns it into an equality
// filter on the connection. Neither validates the argument: a missing
// agentName flows through as a nil payload value (publish) or a
// match-nothing condition (subscribe), and admission is decided by the
// publish policy.

// PublishRuntimeUpdateRequest builds the mutation payload. The payload
// carries exactly one key, agentName, even when the argument is absent.
func PublishRuntimeUpdateRequest(rc *Context) Request {
	return Request{
		Payload: map[string]any{
			"agentName": rc.Arguments["agentName"],
		},
	}
}

// PublishRuntimeUpdateResponse returns the data-source result verbatim.
func PublishRuntimeUpdateResponse(rc *Context) any {
	return rc.Result
}

// OnRuntimeUpdateRequest produces no payload: establishing a subscription
// is a local filter registration and needs no data-source step.
func OnRuntimeUpdateRequest(rc *Context) Request {
	return Request{}
}

// OnRuntimeUpdateResponse installs an equality filter on agentName against
// the current subscription connection and returns no body.
func OnRuntimeUpdateResponse(rc *Context) any {
	rc.Filters.SetSubscriptionFilter(ToSubscriptionFilter(map[string]any{
		"agentName": map[string]any{"eq": rc.Arguments["agentName"]},
	}))
	return nil
}
