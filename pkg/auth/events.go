package auth

import "sync"

// broadcaster delivers auth state transitions to subscribers.
// Listeners stay registered until their deregistration func is called.
type broadcaster struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func(State)
}

func newBroadcaster() *broadcaster {
	return &broadcaster{
		listeners: make(map[int]func(State)),
	}
}

// subscribe registers a listener and returns its deregistration func.
func (b *broadcaster) subscribe(fn func(State)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// publish delivers the state to all current listeners synchronously.
// Delivery order is not guaranteed.
func (b *broadcaster) publish(state State) {
	b.mu.Lock()
	fns := make([]func(State), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}
