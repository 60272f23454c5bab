package events

import "sync"

// Topic identifies a class of stored state that listeners can observe.
type Topic string

const (
	// TopicChats fires after any chat mutation (save, delete).
	TopicChats Topic = "chats"
	// TopicNotes fires after any note mutation.
	TopicNotes Topic = "notes"
)

// Bus fans out change notifications to registered listeners. A single Bus is
// constructed at startup and injected into the stores and services that
// mutate or observe state; there is no package-level listener registry.
//
// Delivery is synchronous and in registration order. Notifications carry no
// payload: a listener re-fetches whatever it displays.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[Topic][]subscription
}

type subscription struct {
	id int
	fn func()
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]subscription)}
}

// Subscribe registers fn for topic and returns an unsubscribe function.
// Calling the unsubscribe function more than once is a no-op.
func (b *Bus) Subscribe(topic Topic, fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[topic]
		for i, sub := range list {
			if sub.id == id {
				b.subs[topic] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish invokes every listener registered for topic, in registration
// order, on the caller's goroutine.
func (b *Bus) Publish(topic Topic) {
	b.mu.Lock()
	list := make([]subscription, len(b.subs[topic]))
	copy(list, b.subs[topic])
	b.mu.Unlock()

	for _, sub := range list {
		sub.fn()
	}
}
