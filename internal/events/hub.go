package events

import (
	"log/slog"
	"sync"
	"time"
)

type Type string

const (
	APIKeysUpdated  Type = "apiKeysUpdated"
	PostScheduled   Type = "postScheduled"
	AccountsChanged Type = "accountsChanged"
)

type Event struct {
	Type      Type      `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	At        time.Time `json:"at"`
}

type Handler func(Event)

// Hub fans events out to subscribers in the publishing goroutine.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]Handler
}

func NewHub() *Hub {
	return &Hub{subs: map[int]Handler{}}
}

// Subscribe registers fn and returns a func that removes it. Calling the
// returned func more than once is harmless.
func (h *Hub) Subscribe(fn Handler) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

func (h *Hub) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	h.mu.RLock()
	handlers := make([]Handler, 0, len(h.subs))
	for _, fn := range h.subs {
		handlers = append(handlers, fn)
	}
	h.mu.RUnlock()

	slog.Debug("publishing event", "type", e.Type, "session", e.SessionID, "subscribers", len(handlers))
	for _, fn := range handlers {
		deliver(fn, e)
	}
}

func deliver(fn Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event subscriber panicked", "type", e.Type, "panic", r)
		}
	}()
	fn(e)
}
