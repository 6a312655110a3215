// Package eventbus provides a process-wide broadcast of payload-less topics.
//
// Subscribers are told that something changed, never what changed: they
// re-read their own truth on every signal, so duplicate or reordered
// signals are harmless.
package eventbus

import (
	"log/slog"
	"sync"
)

// Topic names a broadcast signal.
type Topic string

// Topics published by the front desk components.
const (
	LocationChanged    Topic = "location-changed"
	AppointmentChanged Topic = "appointment-changed"
	ExpenseChanged     Topic = "expense-changed"
	SidebarChanged     Topic = "sidebar-changed"
)

// Handler is invoked once per published signal.
type Handler func(Topic)

type subscription struct {
	handler Handler
	topics  map[Topic]struct{}
	id      uint64
}

// Bus fans published topics out to subscribers.
type Bus struct {
	subs   map[uint64]*subscription
	nextID uint64
	mu     sync.RWMutex
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[uint64]*subscription)}
}

// Subscribe registers handler for the given topics and returns a function
// that removes the subscription. Calling it more than once is safe.
func (b *Bus) Subscribe(handler Handler, topics ...Topic) (unsubscribe func()) {
	set := make(map[Topic]struct{}, len(topics))
	for _, t := range topics {
		set[t] = struct{}{}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[id] = &subscription{id: id, topics: set, handler: handler}
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers topic to every current subscriber of it. Handlers run on
// the caller's goroutine after the bus lock is released, so a handler may
// publish or unsubscribe.
func (b *Bus) Publish(topic Topic) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if _, ok := s.topics[topic]; ok {
			handlers = append(handlers, s.handler)
		}
	}
	b.mu.RUnlock()

	slog.Debug("Publishing topic", "topic", topic, "subscribers", len(handlers))

	for _, h := range handlers {
		h(topic)
	}
}

// SubscriberCount returns the number of live subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Channel subscribes to topics and forwards every signal into a buffered
// channel. The buffer holds at least one signal per topic. When it is full,
// queued signals are coalesced so each topic is pending at most once, and
// the new topic is queued unless it already was. No topic is ever lost.
func (b *Bus) Channel(buffer int, topics ...Topic) (<-chan Topic, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	buffer = max(buffer, len(topics))

	ch := make(chan Topic, buffer)
	var mu sync.Mutex
	unsubscribe := b.Subscribe(func(t Topic) {
		mu.Lock()
		defer mu.Unlock()

		select {
		case ch <- t:
			return
		default:
		}

		pending := coalesce(ch, t)
		for _, p := range pending {
			ch <- p
		}
		slog.Debug("Coalesced pending signals", "topic", t, "pending", len(pending))
	}, topics...)
	return ch, unsubscribe
}

// coalesce empties ch and returns the distinct topics it held, in order of
// first appearance, followed by t when t was not among them.
func coalesce(ch chan Topic, t Topic) []Topic {
	var pending []Topic
	seen := make(map[Topic]struct{})
	for {
		select {
		case q := <-ch:
			if _, dup := seen[q]; !dup {
				seen[q] = struct{}{}
				pending = append(pending, q)
			}
			continue
		default:
		}
		break
	}
	if _, dup := seen[t]; !dup {
		pending = append(pending, t)
	}
	return pending
}
