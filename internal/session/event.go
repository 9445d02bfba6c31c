package session

import (
	"context"
	"sync"
)

type EventType string

const (
	SignedIn       EventType = "SIGNED_IN"
	SignedOut      EventType = "SIGNED_OUT"
	TokenRefreshed EventType = "TOKEN_REFRESHED"
)

// Event is an auth-state change. Session is nil for SignedOut.
type Event struct {
	Type    EventType `json:"type"`
	UserID  string    `json:"user_id"`
	Session *Session  `json:"session,omitempty"`
}

// Holder keeps the current session and nothing else. It is updated only
// through Apply, which is meant to be used as the subscription callback.
type Holder struct {
	mu        sync.RWMutex
	current   *Session
	listeners map[int]func(Event)
	nextID    int
}

func NewHolder(initial *Session) *Holder {
	h := &Holder{listeners: make(map[int]func(Event))}
	if initial != nil {
		s := *initial
		h.current = &s
	}
	return h
}

// Apply folds an event into the holder and notifies listeners.
func (h *Holder) Apply(evt Event) {
	h.mu.Lock()
	switch evt.Type {
	case SignedIn, TokenRefreshed:
		if evt.Session != nil {
			s := *evt.Session
			h.current = &s
		}
	case SignedOut:
		h.current = nil
	}
	listeners := make([]func(Event), 0, len(h.listeners))
	for _, fn := range h.listeners {
		listeners = append(listeners, fn)
	}
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(evt)
	}
}

// Current returns a copy of the current session.
func (h *Holder) Current() (Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return Session{}, false
	}
	return *h.current, true
}

// Context derives a context carrying the current session, if any.
func (h *Holder) Context(parent context.Context) context.Context {
	if s, ok := h.Current(); ok {
		return WithSession(parent, s)
	}
	return parent
}

// Subscribe registers fn for every applied event. The returned func removes it.
func (h *Holder) Subscribe(fn func(Event)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}
