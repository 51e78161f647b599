package service

import (
	"sync"
	"time"
)

// EventKind names the part of the state that changed
type EventKind string

const (
	EventUsers    EventKind = "users"
	EventVisits   EventKind = "visits"
	EventSession  EventKind = "session"
	EventLanguage EventKind = "language"
)

// Event is a change notification
type Event struct {
	Kind EventKind `json:"kind"`
	At   time.Time `json:"at"`
}

const subscriberBuffer = 16

type broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan Event)}
}

func (b *broadcaster) subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// publish never blocks; slow subscribers miss events
func (b *broadcaster) publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
