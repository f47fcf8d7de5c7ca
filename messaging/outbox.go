package messaging

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Law2x/yeloSpot/protocol"
)

// Sender is the publish half of Client.
type Sender interface {
	Publish(topic, key string, payload []byte) error
}

type outboxMsg struct {
	topic    string
	key      string
	data     []byte
	attempts int
}

// Outbox queues encoded envelopes in memory and publishes them from a
// single goroutine, retrying failures on every tick up to maxAttempts.
// Callers never wait on the broker.
type Outbox struct {
	sender      Sender
	queue       chan outboxMsg
	interval    time.Duration
	maxAttempts int
	logFn       func(format string, args ...any)

	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

func NewOutbox(sender Sender, size int, interval time.Duration) *Outbox {
	if size <= 0 {
		size = 1024
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Outbox{
		sender:      sender,
		queue:       make(chan outboxMsg, size),
		interval:    interval,
		maxAttempts: 5,
		logFn:       log.Printf,
		stopChan:    make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// PublishEnvelope encodes env and queues it. It fails only when the
// envelope cannot be encoded or the queue is full.
func (o *Outbox) PublishEnvelope(topic string, env *protocol.Envelope) error {
	data, err := env.Encode()
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	select {
	case o.queue <- outboxMsg{topic: topic, key: env.Key, data: data}:
		return nil
	default:
		return fmt.Errorf("outbox full, dropped %s %s", env.Type, env.ID)
	}
}

func (o *Outbox) Start() {
	go o.run()
}

// Stop ends the drain loop. Messages still pending are logged and dropped.
func (o *Outbox) Stop() {
	o.stopOnce.Do(func() { close(o.stopChan) })
	<-o.done
}

func (o *Outbox) run() {
	defer close(o.done)
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	var pending []outboxMsg
	for {
		select {
		case <-o.stopChan:
			if n := len(pending) + len(o.queue); n > 0 {
				o.logFn("outbox: stopping with %d unsent messages", n)
			}
			return
		case msg := <-o.queue:
			if !o.send(&msg) {
				pending = append(pending, msg)
			}
		case <-ticker.C:
			pending = o.retry(pending)
		}
	}
}

func (o *Outbox) retry(pending []outboxMsg) []outboxMsg {
	kept := pending[:0]
	for _, msg := range pending {
		if o.send(&msg) {
			continue
		}
		if msg.attempts >= o.maxAttempts {
			o.logFn("outbox: giving up on %s message after %d attempts", msg.topic, msg.attempts)
			continue
		}
		kept = append(kept, msg)
	}
	return kept
}

func (o *Outbox) send(msg *outboxMsg) bool {
	msg.attempts++
	if err := o.sender.Publish(msg.topic, msg.key, msg.data); err != nil {
		o.logFn("outbox: publish to %s (attempt %d): %v", msg.topic, msg.attempts, err)
		return false
	}
	return true
}
