package events

import "sync"

// Handler receives published events. Handlers run on the publisher's goroutine
// and must not block.
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus fans events out to subscribers by type
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[EventType][]subscription
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{subs: make(map[EventType][]subscription)}
}

// Subscribe registers handler for the given types (all types when none are
// given) and returns a function that removes it
func (b *Bus) Subscribe(handler Handler, types ...EventType) (unsubscribe func()) {
	if len(types) == 0 {
		types = AllTypes
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	for _, t := range types {
		b.subs[t] = append(b.subs[t], subscription{id: id, handler: handler})
	}
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for _, t := range types {
				kept := b.subs[t][:0]
				for _, s := range b.subs[t] {
					if s.id != id {
						kept = append(kept, s)
					}
				}
				b.subs[t] = kept
			}
		})
	}
}

// Publish delivers event to every subscriber of its type
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs[event.Type]))
	copy(subs, b.subs[event.Type])
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// SubscriberCount returns the number of handlers registered for t
func (b *Bus) SubscriberCount(t EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[t])
}
