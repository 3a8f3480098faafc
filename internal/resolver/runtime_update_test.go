package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tessera-ai/eventgate/internal/domain"
)

type fakeRegistry struct {
	installed []domain.SubscriptionFilter
}

func (f *fakeRegistry) SetSubscriptionFilter(filter domain.SubscriptionFilter) {
	f.installed = append(f.installed, filter)
}

type fakeDataSource struct {
	lastField   string
	lastPayload map[string]any
	result      any
	err         error
}

func (f *fakeDataSource) Process(_ context.Context, field string, payload map[string]any) (any, error) {
	f.lastField = field
	f.lastPayload = payload
	return f.result, f.err
}

func TestPublishRuntimeUpdateRequest(t *testing.T) {
	rc := &Context{Arguments: map[string]any{"agentName": "agent-42"}}

	req := PublishRuntimeUpdateRequest(rc)

	assert.Equal(t, map[string]any{"agentName": "agent-42"}, req.Payload)
}

func TestPublishRuntimeUpdateRequestMissingArgument(t *testing.T) {
	rc := &Context{Arguments: map[string]any{}}

	req := PublishRuntimeUpdateRequest(rc)

	// The key is still present, with a nil value. Admission is the publish
	// policy's call, not the resolver's.
	assert.Len(t, req.Payload, 1)
	v, ok := req.Payload["agentName"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestPublishRuntimeUpdateResponseIdentity(t *testing.T) {
	for _, result := range []any{
		nil,
		map[string]any{"agentName": "agent-42", "status": "ok"},
		[]any{"a", "b"},
		"plain string",
	} {
		rc := &Context{Result: result}
		assert.Equal(t, result, PublishRuntimeUpdateResponse(rc))
	}
}

func TestOnRuntimeUpdateRequestHasNoPayload(t *testing.T) {
	rc := &Context{Arguments: map[string]any{"agentName": "ignored"}}

	req := OnRuntimeUpdateRequest(rc)

	assert.Nil(t, req.Payload)
}

func TestOnRuntimeUpdateResponseInstallsFilter(t *testing.T) {
	reg := &fakeRegistry{}
	rc := &Context{
		Arguments: map[string]any{"agentName": "agent-42"},
		Filters:   reg,
	}

	result := OnRuntimeUpdateResponse(rc)

	assert.Nil(t, result)
	assert.Len(t, reg.installed, 1)
	assert.Equal(t, []domain.FieldCondition{{Field: "agentName", Eq: "agent-42"}}, reg.installed[0].Conditions)
}

func TestOnRuntimeUpdateResponseMissingArgument(t *testing.T) {
	reg := &fakeRegistry{}
	rc := &Context{Arguments: map[string]any{}, Filters: reg}

	OnRuntimeUpdateResponse(rc)

	// A filter on a nil value is installed; it matches nothing.
	assert.Len(t, reg.installed, 1)
	assert.False(t, reg.installed[0].Matches(map[string]any{"agentName": "agent-42"}))
}

func TestRegistryExecuteMutation(t *testing.T) {
	ds := &fakeDataSource{result: map[string]any{"agentName": "agent-42", "eventId": "evt_1"}}
	r := NewRegistry(ds)

	out, err := r.Execute(context.Background(), "publishRuntimeUpdate",
		map[string]any{"agentName": "agent-42"}, nil)

	assert.NoError(t, err)
	assert.Equal(t, "publishRuntimeUpdate", ds.lastField)
	assert.Equal(t, map[string]any{"agentName": "agent-42"}, ds.lastPayload)
	assert.Equal(t, ds.result, out)
}

func TestRegistryExecuteSubscriptionSkipsDataSource(t *testing.T) {
	ds := &fakeDataSource{}
	r := NewRegistry(ds)
	reg := &fakeRegistry{}

	out, err := r.Execute(context.Background(), "onRuntimeUpdate",
		map[string]any{"agentName": "agent-42"}, reg)

	assert.NoError(t, err)
	assert.Nil(t, out)
	assert.Empty(t, ds.lastField)
	assert.Len(t, reg.installed, 1)
}

func TestRegistryExecuteUnknownField(t *testing.T) {
	r := NewRegistry(&fakeDataSource{})

	_, err := r.Execute(context.Background(), "noSuchField", nil, nil)

	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestToSubscriptionFilter(t *testing.T) {
	filter := ToSubscriptionFilter(map[string]any{
		"agentName": map[string]any{"eq": "agent-42"},
	})

	assert.True(t, filter.Matches(map[string]any{"agentName": "agent-42"}))
	assert.False(t, filter.Matches(map[string]any{"agentName": "agent-7"}))
}
