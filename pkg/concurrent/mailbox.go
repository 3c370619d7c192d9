package concurrent

import "sync"

// Mailbox hands values from any goroutine to a single consumer that drains
// them at a point of its choosing. After Close, posts are refused.
type Mailbox[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	notify chan struct{}
}

func NewMailbox[T any]() *Mailbox[T] {
	return &Mailbox[T]{notify: make(chan struct{}, 1)}
}

// Post enqueues v and reports whether it was accepted.
func (m *Mailbox[T]) Post(v T) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.items = append(m.items, v)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
	return true
}

// Drain removes and returns everything posted so far, in post order.
func (m *Mailbox[T]) Drain() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.items
	m.items = nil
	return out
}

// Ready is signalled after a Post. It may fire once for several posts.
func (m *Mailbox[T]) Ready() <-chan struct{} {
	return m.notify
}

func (m *Mailbox[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close refuses further posts and discards pending ones.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	m.closed = true
	m.items = nil
	m.mu.Unlock()
}
