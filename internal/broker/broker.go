// Package broker provides in-process fanout of runtime events to filtered
// subscribers.
package broker

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/tessera-ai/eventgate/internal/domain"
)

const subscriptionBuffer = 256

// Subscription is a single subscriber's view of the event stream. Events
// arrive on C until Unsubscribe is called, after which C is closed.
type Subscription struct {
	ID     string
	Filter domain.SubscriptionFilter
	C      chan domain.RuntimeEvent

	broker *Broker
}

// Unsubscribe removes the subscription from the broker and closes C.
func (s *Subscription) Unsubscribe() {
	s.broker.remove(s.ID)
}

// Broker fans published runtime events out to subscriptions whose filter
// matches the event's fields. Delivery is best effort: events for a
// subscriber with a full buffer are dropped.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]*Subscription
}

// New creates an empty broker.
func New() *Broker {
	return &Broker{
		subs: make(map[string]*Subscription),
	}
}

// Subscribe registers a new subscription with the given filter.
func (b *Broker) Subscribe(filter domain.SubscriptionFilter) *Subscription {
	sub := &Subscription{
		ID:     uuid.New().String(),
		Filter: filter,
		C:      make(chan domain.RuntimeEvent, subscriptionBuffer),
		broker: b,
	}

	b.mu.Lock()
	b.subs[sub.ID] = sub
	b.mu.Unlock()

	return sub
}

func (b *Broker) remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(sub.C)
	}
}

// Publish delivers the event to every subscription whose filter matches.
func (b *Broker) Publish(event domain.RuntimeEvent) {
	fields := event.Fields()

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if !sub.Filter.Matches(fields) {
			continue
		}
		select {
		case sub.C <- event:
		default:
			log.Printf("Subscription %s buffer full, dropping event %s", sub.ID, event.EventID)
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
