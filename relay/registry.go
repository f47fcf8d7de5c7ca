package relay

import (
	"log"
	"sort"
	"sync"
)

type LogFunc func(format string, args ...any)

// Registry maps order ids to channels. Channels are created on first
// reference and kept for the life of the process.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]*Channel
	logFn    LogFunc
}

func NewRegistry(logFn LogFunc) *Registry {
	if logFn == nil {
		logFn = log.Printf
	}
	return &Registry{
		channels: make(map[string]*Channel),
		logFn:    logFn,
	}
}

// ChannelFor returns the channel for orderID, creating it if needed.
func (r *Registry) ChannelFor(orderID string) *Channel {
	r.mu.RLock()
	ch, ok := r.channels[orderID]
	r.mu.RUnlock()
	if ok {
		return ch
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ch, ok := r.channels[orderID]; ok {
		return ch
	}
	ch = newChannel(orderID, r.logFn)
	r.channels[orderID] = ch
	return ch
}

// Lookup returns the channel for orderID without creating it.
func (r *Registry) Lookup(orderID string) (*Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[orderID]
	return ch, ok
}

// Publish is shorthand for ChannelFor(orderID).Publish(evt).
func (r *Registry) Publish(orderID string, evt Event) int {
	return r.ChannelFor(orderID).Publish(evt)
}

// Subscription ties a sink to one order channel.
type Subscription struct {
	channel *Channel
	handle  Handle
	once    sync.Once
}

// Subscribe attaches sink to the order's channel and hands it a connected
// event before any published event.
func (r *Registry) Subscribe(orderID string, sink Sink) *Subscription {
	ch := r.ChannelFor(orderID)
	greeting := Connected(orderID)
	h := ch.attach(sink, &greeting)
	return &Subscription{channel: ch, handle: h}
}

// Close detaches the sink. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { s.channel.Detach(s.handle) })
}

func (s *Subscription) OrderID() string { return s.channel.OrderID() }

type ChannelStat struct {
	OrderID     string `json:"orderId"`
	Subscribers int    `json:"subscribers"`
}

// Stats lists every known channel with its subscriber count, sorted by id.
func (r *Registry) Stats() []ChannelStat {
	r.mu.RLock()
	chans := make([]*Channel, 0, len(r.channels))
	for _, ch := range r.channels {
		chans = append(chans, ch)
	}
	r.mu.RUnlock()

	stats := make([]ChannelStat, 0, len(chans))
	for _, ch := range chans {
		stats = append(stats, ChannelStat{OrderID: ch.OrderID(), Subscribers: ch.Subscribers()})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].OrderID < stats[j].OrderID })
	return stats
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}

// SubscriberCount totals subscribers across all channels.
func (r *Registry) SubscriberCount() int {
	n := 0
	for _, s := range r.Stats() {
		n += s.Subscribers
	}
	return n
}
