// Package bus provides the process-wide change-notification dispatcher.
//
// A single Bus is constructed by the host at startup and injected into each
// kvstore.Store. Subscribers register either for a specific namespace or for
// all namespaces; delivery is synchronous and in subscription order, so a
// subscriber observes events in the same order the mutations were applied.
package bus

import (
	"sync"
	"time"
)

// EventType categorizes a storage mutation.
type EventType string

const (
	EventSet        EventType = "set"
	EventClear      EventType = "clear"
	EventEdit       EventType = "edit"
	EventDeleteItem EventType = "deleteItem"
)

// Event describes a single storage mutation.
type Event struct {
	// ID uniquely identifies this event instance.
	ID string `json:"id"`

	// Namespace is the store namespace the mutation applied to.
	Namespace string `json:"namespace"`

	// Type is the mutation kind.
	Type EventType `json:"type"`

	// Data carries the mutation payload. For edit events this is an
	// EditChange; for set events the new value; nil for clear.
	Data any `json:"data,omitempty"`

	// Timestamp records when the mutation was persisted.
	Timestamp time.Time `json:"timestamp"`
}

// EditChange is the payload of an edit event.
type EditChange struct {
	Path     string `json:"path"`
	OldValue any    `json:"oldValue"`
	NewValue any    `json:"newValue"`
}

// Handler receives published events.
type Handler func(Event)

// Subscription identifies a registered handler so it can be removed.
type Subscription int

type subscriber struct {
	id        Subscription
	namespace string // empty = all namespaces
	handler   Handler
}

// Bus fans events out to registered subscribers.
// The zero value is not usable; use New.
type Bus struct {
	mu     sync.RWMutex
	nextID Subscription
	subs   []subscriber
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for events on one namespace.
func (b *Bus) Subscribe(namespace string, h Handler) Subscription {
	return b.add(namespace, h)
}

// SubscribeAll registers a handler for events on every namespace.
func (b *Bus) SubscribeAll(h Handler) Subscription {
	return b.add("", h)
}

func (b *Bus) add(namespace string, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs = append(b.subs, subscriber{id: b.nextID, namespace: namespace, handler: h})
	return b.nextID
}

// Unsubscribe removes a previously registered handler.
// Returns false if the subscription is unknown.
func (b *Bus) Unsubscribe(id Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Publish delivers the event synchronously to every matching subscriber,
// in subscription order.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	matched := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if s.namespace == "" || s.namespace == e.Namespace {
			matched = append(matched, s.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range matched {
		h(e)
	}
}
