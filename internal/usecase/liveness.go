package usecase

import "sync"

// liveness hands out request tokens. A continuation may only apply its
// result while its token is the latest one and the owner is still open.
type liveness struct {
	mu     sync.Mutex
	gen    uint64
	closed bool
}

func (l *liveness) begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	return l.gen
}

func (l *liveness) current(token uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.closed && token == l.gen
}

func (l *liveness) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}

func (l *liveness) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
