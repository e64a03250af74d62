package usecase

import (
	"sync"

	"evalue-storefront/internal/domain"
	"evalue-storefront/pkg/logger"
)

// SessionHub broadcasts auth changes to subscribers. Listeners run
// synchronously in subscription order; a panicking listener is logged and
// does not stop the others.
type SessionHub struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]func(domain.AuthChange)
	order     []int
	closed    bool
}

func NewSessionHub() *SessionHub {
	return &SessionHub{listeners: make(map[int]func(domain.AuthChange))}
}

// Subscribe registers fn and returns a func that removes it again.
func (h *SessionHub) Subscribe(fn func(domain.AuthChange)) domain.Unsubscribe {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return func() {}
	}
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.order = append(h.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(id) })
	}
}

func (h *SessionHub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.listeners, id)
	for i, v := range h.order {
		if v == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

func (h *SessionHub) Publish(change domain.AuthChange) {
	h.mu.RLock()
	fns := make([]func(domain.AuthChange), 0, len(h.order))
	for _, id := range h.order {
		fns = append(fns, h.listeners[id])
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		h.deliver(fn, change)
	}
}

func (h *SessionHub) deliver(fn func(domain.AuthChange), change domain.AuthChange) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Str("user_id", change.UserID).Msg("Auth listener panicked")
		}
	}()
	fn(change)
}

func (h *SessionHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Close drops every subscriber. Later subscriptions are ignored.
func (h *SessionHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.listeners = make(map[int]func(domain.AuthChange))
	h.order = nil
}
