package messaging

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Law2x/yeloSpot/config"
	"github.com/Law2x/yeloSpot/protocol"
)

type fakeSender struct {
	mu       sync.Mutex
	failures int
	sent     []string
	calls    int
}

func (f *fakeSender) Publish(topic, key string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return errors.New("broker unavailable")
	}
	f.sent = append(f.sent, topic+"/"+key)
	return nil
}

func (f *fakeSender) snapshot() ([]string, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...), f.calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func envelope(t *testing.T, key string) *protocol.Envelope {
	t.Helper()
	env, err := protocol.NewEnvelope(protocol.TypeOrderPlaced, protocol.Address{Role: protocol.RoleRelay}, key,
		&protocol.OrderPlaced{OrderID: key, Status: "ON_GOING"})
	if err != nil {
		t.Fatal(err)
	}
	return env
}

func TestOutboxDeliversInOrder(t *testing.T) {
	s := &fakeSender{}
	o := NewOutbox(s, 8, 10*time.Millisecond)
	o.logFn = func(string, ...any) {}
	o.Start()
	defer o.Stop()

	for _, k := range []string{"1", "2", "3"} {
		if err := o.PublishEnvelope("events", envelope(t, k)); err != nil {
			t.Fatal(err)
		}
	}
	waitFor(t, func() bool { sent, _ := s.snapshot(); return len(sent) == 3 })
	sent, _ := s.snapshot()
	if sent[0] != "events/1" || sent[2] != "events/3" {
		t.Errorf("sent = %v", sent)
	}
}

func TestOutboxRetriesFailures(t *testing.T) {
	s := &fakeSender{failures: 2}
	o := NewOutbox(s, 8, 10*time.Millisecond)
	o.logFn = func(string, ...any) {}
	o.Start()
	defer o.Stop()

	if err := o.PublishEnvelope("events", envelope(t, "42")); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { sent, _ := s.snapshot(); return len(sent) == 1 })
	if _, calls := s.snapshot(); calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestOutboxGivesUp(t *testing.T) {
	s := &fakeSender{failures: 100}
	o := NewOutbox(s, 8, 5*time.Millisecond)
	o.maxAttempts = 2
	o.logFn = func(string, ...any) {}
	o.Start()

	o.PublishEnvelope("events", envelope(t, "x"))
	waitFor(t, func() bool { _, calls := s.snapshot(); return calls >= 2 })
	time.Sleep(30 * time.Millisecond)
	o.Stop()
	if _, calls := s.snapshot(); calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestOutboxFull(t *testing.T) {
	o := NewOutbox(&fakeSender{}, 1, time.Second)
	if err := o.PublishEnvelope("events", envelope(t, "a")); err != nil {
		t.Fatal(err)
	}
	if err := o.PublishEnvelope("events", envelope(t, "b")); err == nil {
		t.Error("expected error when queue is full")
	}
}

func TestClientUnknownBackend(t *testing.T) {
	c := NewClient(&config.MessagingConfig{Backend: "carrier-pigeon"})
	if err := c.Connect(); err == nil {
		t.Error("expected error for unknown backend")
	}
	if c.IsConnected() {
		t.Error("client should not report connected")
	}
	if err := c.Publish("t", "k", []byte("x")); err == nil {
		t.Error("expected publish error")
	}
	c.Close()
}

func TestClientNotConnected(t *testing.T) {
	for _, backend := range []string{"mqtt", "kafka"} {
		c := NewClient(&config.MessagingConfig{Backend: backend})
		if c.IsConnected() {
			t.Errorf("%s: connected before Connect", backend)
		}
		if err := c.PublishEnvelope("t", envelope(t, "1")); err == nil {
			t.Errorf("%s: expected publish error before Connect", backend)
		}
	}
}
