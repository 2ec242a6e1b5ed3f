package app

import "sync"

// EventDataUpdated is the name under which Store changes are broadcast.
const EventDataUpdated = "data-updated"

// Notifier is a synchronous broadcast signal. Publish invokes every listener
// registered at that moment exactly once, on the caller's goroutine, in no
// particular order.
type Notifier struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func()
}

// NewNotifier creates a Notifier with no listeners.
func NewNotifier() *Notifier {
	return &Notifier{listeners: make(map[int]func())}
}

// Subscribe registers fn and returns a func that removes it again.
func (n *Notifier) Subscribe(fn func()) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	n.listeners[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.listeners, id)
	}
}

// Publish invokes the current listeners. Listeners may subscribe or
// unsubscribe while being invoked.
func (n *Notifier) Publish() {
	n.mu.Lock()
	fns := make([]func(), 0, len(n.listeners))
	for _, fn := range n.listeners {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Len returns the number of registered listeners.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.listeners)
}
