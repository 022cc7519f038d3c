package identity

import (
	"context"
	"sync"
)

// Listener fans auth-state changes out to subscribers.
type Listener struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(ctx context.Context, p Principal)
}

// NewListener creates a listener with no subscribers.
func NewListener() *Listener {
	return &Listener{subs: make(map[int]func(ctx context.Context, p Principal))}
}

// Subscribe registers fn and returns a function that removes it.
func (l *Listener) Subscribe(fn func(ctx context.Context, p Principal)) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++
	l.subs[id] = fn

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subs, id)
	}
}

// Notify calls every subscriber synchronously with the signed-in principal.
func (l *Listener) Notify(ctx context.Context, p Principal) {
	l.mu.Lock()
	subs := make([]func(ctx context.Context, p Principal), 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	l.mu.Unlock()

	for _, fn := range subs {
		fn(ctx, p)
	}
}
