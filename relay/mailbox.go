package relay

import (
	"errors"
	"sync"
)

var ErrMailboxFull = errors.New("subscriber mailbox full")

// Mailbox is a bounded, non-blocking Sink for a streaming connection. The
// connection goroutine drains Events(); a full mailbox drops the event.
type Mailbox struct {
	mu     sync.Mutex
	events chan Event
	closed bool
}

func NewMailbox(size int) *Mailbox {
	if size <= 0 {
		size = 64
	}
	return &Mailbox{events: make(chan Event, size)}
}

// Deliver is a no-op once the mailbox is closed.
func (m *Mailbox) Deliver(evt Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	select {
	case m.events <- evt:
		return nil
	default:
		return ErrMailboxFull
	}
}

func (m *Mailbox) Events() <-chan Event { return m.events }

func (m *Mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.events)
	}
}
