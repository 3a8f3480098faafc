package hub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tessera-ai/eventgate/internal/domain"
)

func agentFilter(name string) domain.SubscriptionFilter {
	return domain.SubscriptionFilter{Conditions: []domain.FieldCondition{
		{Field: "agentName", Eq: name},
	}}
}

func TestDeliverRequiresInstalledFilter(t *testing.T) {
	h := NewHub()

	subscribed := h.NewConnection(nil)
	subscribed.SetSubscriptionFilter(agentFilter("agent-42"))
	unsubscribed := h.NewConnection(nil)

	h.connections[subscribed.ID] = subscribed
	h.connections[unsubscribed.ID] = unsubscribed

	h.deliver(eventDelivery{
		fields: map[string]any{"agentName": "agent-42"},
		data:   []byte(`{"type":"event"}`),
	})

	assert.Len(t, subscribed.Send, 1)
	assert.Empty(t, unsubscribed.Send)
}

func TestDeliverMatchesFilter(t *testing.T) {
	h := NewHub()

	matching := h.NewConnection(nil)
	matching.SetSubscriptionFilter(agentFilter("agent-42"))
	other := h.NewConnection(nil)
	other.SetSubscriptionFilter(agentFilter("agent-7"))

	h.connections[matching.ID] = matching
	h.connections[other.ID] = other

	h.deliver(eventDelivery{
		fields: map[string]any{"agentName": "agent-42"},
		data:   []byte(`{}`),
	})

	assert.Len(t, matching.Send, 1)
	assert.Empty(t, other.Send)
}

func TestClearSubscriptionFilterStopsDelivery(t *testing.T) {
	h := NewHub()

	conn := h.NewConnection(nil)
	conn.SetSubscriptionFilter(agentFilter("agent-42"))
	h.connections[conn.ID] = conn

	conn.ClearSubscriptionFilter()

	h.deliver(eventDelivery{
		fields: map[string]any{"agentName": "agent-42"},
		data:   []byte(`{}`),
	})

	assert.Empty(t, conn.Send)
	assert.False(t, conn.Subscribed())
}

func TestDeliverProceedsWhileWriteInFlight(t *testing.T) {
	h := NewHub()

	slow := h.NewConnection(nil)
	slow.SetSubscriptionFilter(agentFilter("agent-42"))
	other := h.NewConnection(nil)
	other.SetSubscriptionFilter(agentFilter("agent-42"))

	h.connections[slow.ID] = slow
	h.connections[other.ID] = other

	// Hold the write-serialization lock, as writePump does during a slow
	// network write. Fanout must not block on it.
	slow.mu.Lock()
	defer slow.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.deliver(eventDelivery{
			fields: map[string]any{"agentName": "agent-42"},
			data:   []byte(`{}`),
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("deliver blocked behind an in-flight write")
	}

	assert.Len(t, slow.Send, 1)
	assert.Len(t, other.Send, 1)
}

func TestHubRunRegisterAndPublish(t *testing.T) {
	h := NewHub()
	go h.Run()

	conn := h.NewConnection(nil)
	conn.SetSubscriptionFilter(agentFilter("agent-42"))
	h.Register(conn)

	assert.Eventually(t, func() bool {
		return h.GetConnectionCount() == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, h.GetSubscriberCount())

	h.Publish(map[string]any{"agentName": "agent-42"}, []byte(`{"type":"event"}`))

	select {
	case data := <-conn.Send:
		assert.JSONEq(t, `{"type":"event"}`, string(data))
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}

	h.Unregister(conn)
	assert.Eventually(t, func() bool {
		return h.GetConnectionCount() == 0
	}, time.Second, 10*time.Millisecond)
}
