package relay

import (
	"sync"
)

// Sink receives events from a channel. Deliver runs while the channel is
// locked, so it must not block and must not call back into the channel.
type Sink interface {
	Deliver(Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event) error

func (f SinkFunc) Deliver(e Event) error { return f(e) }

type Handle uint64

// Channel fans events for one order out to its attached sinks. Publish,
// Attach and Detach are serialized, so every sink sees events in publish
// order and nothing reaches a sink once Detach has returned.
type Channel struct {
	orderID string
	logFn   LogFunc

	mu     sync.Mutex
	sinks  map[Handle]Sink
	nextID Handle
}

func newChannel(orderID string, logFn LogFunc) *Channel {
	return &Channel{
		orderID: orderID,
		logFn:   logFn,
		sinks:   make(map[Handle]Sink),
	}
}

func (c *Channel) OrderID() string { return c.orderID }

// Publish delivers evt to every attached sink and returns how many accepted
// it. A failing sink stays attached.
func (c *Channel) Publish(evt Event) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	delivered := 0
	for h, s := range c.sinks {
		if err := s.Deliver(evt); err != nil {
			c.logFn("relay: order %s sink %d: drop %s event: %v", c.orderID, h, evt.Type, err)
			continue
		}
		delivered++
	}
	return delivered
}

// Attach adds sink and returns its handle.
func (c *Channel) Attach(sink Sink) Handle {
	return c.attach(sink, nil)
}

// attach optionally hands greeting to sink before it becomes visible to
// publishers, so the greeting is always the first event it sees.
func (c *Channel) attach(sink Sink, greeting *Event) Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	if greeting != nil {
		if err := sink.Deliver(*greeting); err != nil {
			c.logFn("relay: order %s: greeting not delivered: %v", c.orderID, err)
		}
	}
	c.nextID++
	c.sinks[c.nextID] = sink
	return c.nextID
}

// Detach removes the sink. Unknown handles are ignored.
func (c *Channel) Detach(h Handle) {
	c.mu.Lock()
	delete(c.sinks, h)
	c.mu.Unlock()
}

func (c *Channel) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sinks)
}
