// Package notify is a synchronous publish/subscribe bus used to tell unrelated
// view-models that something happened, e.g. that the cart changed.
package notify

import (
	"sync"
)

// Topic names a signal and fixes its payload type.
type Topic[T any] struct {
	name string
}

func NewTopic[T any](name string) Topic[T] { return Topic[T]{name: name} }

func (t Topic[T]) Name() string { return t.name }

type handler struct {
	id int
	fn func(any)
}

// Bus delivers every published payload to the current subscribers of its topic,
// in registration order, on the publishing goroutine.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[string][]handler
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string][]handler)}
}

// Subscription is returned by Subscribe; Cancel removes the handler.
type Subscription struct {
	bus   *Bus
	topic string
	id    int
	once  sync.Once
}

func Subscribe[T any](b *Bus, topic Topic[T], fn func(T)) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[topic.name] = append(b.subs[topic.name], handler{
		id: id,
		fn: func(v any) { fn(v.(T)) },
	})
	return &Subscription{bus: b, topic: topic.name, id: id}
}

// Publish returns the number of subscribers registered when it was called.
// A handler cancelled by an earlier handler in the same delivery is skipped.
func Publish[T any](b *Bus, topic Topic[T], payload T) int {
	b.mu.Lock()
	current := b.subs[topic.name]
	snapshot := make([]handler, len(current))
	copy(snapshot, current)
	b.mu.Unlock()

	for _, h := range snapshot {
		if !b.active(topic.name, h.id) {
			continue
		}
		h.fn(payload)
	}
	return len(snapshot)
}

// Subscribers returns how many handlers are registered for the topic.
func Subscribers[T any](b *Bus, topic Topic[T]) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic.name])
}

func (b *Bus) active(topic string, id int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, h := range b.subs[topic] {
		if h.id == id {
			return true
		}
	}
	return false
}

func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		b := s.bus
		b.mu.Lock()
		defer b.mu.Unlock()
		hs := b.subs[s.topic]
		for i, h := range hs {
			if h.id == s.id {
				b.subs[s.topic] = append(hs[:i:i], hs[i+1:]...)
				break
			}
		}
		if len(b.subs[s.topic]) == 0 {
			delete(b.subs, s.topic)
		}
	})
}
