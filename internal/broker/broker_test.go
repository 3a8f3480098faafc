package broker

import (
	"testing"

	"github.com/tessera-ai/eventgate/internal/domain"
)

func eventFor(agentName string) domain.RuntimeEvent {
	return domain.RuntimeEvent{
		EventID:   "evt_test",
		AgentName: agentName,
		Status:    domain.RuntimeStatusActive,
		Ts:        1,
	}
}

func TestBrokerFilteredDelivery(t *testing.T) {
	b := New()

	matching := b.Subscribe(domain.SubscriptionFilter{Conditions: []domain.FieldCondition{
		{Field: "agentName", Eq: "agent-42"},
	}})
	other := b.Subscribe(domain.SubscriptionFilter{Conditions: []domain.FieldCondition{
		{Field: "agentName", Eq: "agent-7"},
	}})

	b.Publish(eventFor("agent-42"))

	select {
	case ev := <-matching.C:
		if ev.AgentName != "agent-42" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	default:
		t.Fatal("matching subscriber received nothing")
	}

	select {
	case ev := <-other.C:
		t.Fatalf("non-matching subscriber received event: %+v", ev)
	default:
	}
}

func TestBrokerZeroFilterReceivesAll(t *testing.T) {
	b := New()
	all := b.Subscribe(domain.SubscriptionFilter{})

	b.Publish(eventFor("agent-1"))
	b.Publish(eventFor("agent-2"))

	if got := len(all.C); got != 2 {
		t.Fatalf("expected 2 events, got %d", got)
	}
}

func TestBrokerUnsubscribe(t *testing.T) {
	b := New()
	sub := b.Subscribe(domain.SubscriptionFilter{})

	if b.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", b.SubscriberCount())
	}

	sub.Unsubscribe()

	if b.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", b.SubscriberCount())
	}
	if _, ok := <-sub.C; ok {
		t.Fatal("expected channel to be closed")
	}

	// A second unsubscribe is a no-op.
	sub.Unsubscribe()
}

func TestBrokerDropsWhenBufferFull(t *testing.T) {
	b := New()
	sub := b.Subscribe(domain.SubscriptionFilter{})

	for i := 0; i < subscriptionBuffer+10; i++ {
		b.Publish(eventFor("agent-42"))
	}

	if got := len(sub.C); got != subscriptionBuffer {
		t.Fatalf("expected buffer to cap at %d, got %d", subscriptionBuffer, got)
	}
}
