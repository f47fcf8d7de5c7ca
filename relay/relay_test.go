package relay

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recorder) Deliver(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func quiet(string, ...any) {}

func TestSubscribeDeliversConnectedFirst(t *testing.T) {
	reg := NewRegistry(quiet)
	rec := &recorder{}
	sub := reg.Subscribe("O1", rec)
	defer sub.Close()

	reg.Publish("O1", Webhook("O1", "ORDER_STATUS_CHANGED", json.RawMessage(`{}`)))

	got := rec.snapshot()
	if len(got) != 2 {
		t.Fatalf("events = %d, want 2", len(got))
	}
	if got[0].Type != TypeConnected || got[0].OrderID != "O1" {
		t.Errorf("first event = %+v, want connected for O1", got[0])
	}
	if got[1].Type != TypeWebhook {
		t.Errorf("second event type = %q, want webhook", got[1].Type)
	}
}

func TestChannelsAreIsolated(t *testing.T) {
	reg := NewRegistry(quiet)
	a, b := &recorder{}, &recorder{}
	reg.Subscribe("A", a)
	reg.Subscribe("B", b)

	reg.Publish("A", Driver("A", map[string]string{"driverId": "D1"}))

	if n := len(a.snapshot()); n != 2 {
		t.Errorf("A events = %d, want 2", n)
	}
	if n := len(b.snapshot()); n != 1 {
		t.Errorf("B events = %d, want 1 (connected only)", n)
	}
}

func TestCloseStopsDelivery(t *testing.T) {
	reg := NewRegistry(quiet)
	rec := &recorder{}
	sub := reg.Subscribe("O1", rec)
	sub.Close()
	sub.Close()

	if n := reg.Publish("O1", Webhook("O1", "X", nil)); n != 0 {
		t.Errorf("delivered = %d, want 0", n)
	}
	if n := len(rec.snapshot()); n != 1 {
		t.Errorf("events = %d, want 1", n)
	}
	ch, ok := reg.Lookup("O1")
	if !ok {
		t.Fatal("channel should outlive its subscribers")
	}
	if ch.Subscribers() != 0 {
		t.Errorf("subscribers = %d, want 0", ch.Subscribers())
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	reg := NewRegistry(quiet)
	if n := reg.Publish("nobody", Webhook("nobody", "X", nil)); n != 0 {
		t.Errorf("delivered = %d, want 0", n)
	}
	if reg.Len() != 1 {
		t.Errorf("channels = %d, want 1", reg.Len())
	}
}

func TestLookupDoesNotCreate(t *testing.T) {
	reg := NewRegistry(quiet)
	if _, ok := reg.Lookup("X"); ok {
		t.Fatal("unexpected channel")
	}
	if reg.Len() != 0 {
		t.Errorf("channels = %d, want 0", reg.Len())
	}
	if reg.ChannelFor("X") != reg.ChannelFor("X") {
		t.Error("ChannelFor should return the same channel")
	}
}

func TestFailingSinkStaysAttached(t *testing.T) {
	var logged int
	reg := NewRegistry(func(string, ...any) { logged++ })
	bad := &recorder{}
	good := &recorder{}
	reg.Subscribe("O1", bad)
	reg.Subscribe("O1", good)
	bad.mu.Lock()
	bad.err = errors.New("broken pipe")
	bad.mu.Unlock()

	if n := reg.Publish("O1", Webhook("O1", "X", nil)); n != 1 {
		t.Errorf("delivered = %d, want 1", n)
	}
	if logged == 0 {
		t.Error("expected failed delivery to be logged")
	}
	ch, _ := reg.Lookup("O1")
	if ch.Subscribers() != 2 {
		t.Errorf("subscribers = %d, want 2", ch.Subscribers())
	}
	if n := len(good.snapshot()); n != 2 {
		t.Errorf("good events = %d, want 2", n)
	}
}

func TestConcurrentSubscribersEachSeeConnectedOnce(t *testing.T) {
	reg := NewRegistry(quiet)
	recs := []*recorder{{}, {}}

	var wg sync.WaitGroup
	for _, r := range recs {
		wg.Add(1)
		go func(r *recorder) {
			defer wg.Done()
			reg.Subscribe("NEW", r)
		}(r)
	}
	wg.Wait()
	reg.Publish("NEW", Webhook("NEW", "DRIVER_ASSIGNED", nil))

	for i, r := range recs {
		got := r.snapshot()
		if len(got) != 2 {
			t.Fatalf("subscriber %d: events = %d, want 2", i, len(got))
		}
		if got[0].Type != TypeConnected || got[1].Type != TypeWebhook {
			t.Errorf("subscriber %d: order = %s,%s", i, got[0].Type, got[1].Type)
		}
	}
	if reg.Len() != 1 {
		t.Errorf("channels = %d, want 1", reg.Len())
	}
}

func TestPublishOrderPreserved(t *testing.T) {
	reg := NewRegistry(quiet)
	rec := &recorder{}
	reg.Subscribe("O1", rec)
	for _, et := range []string{"a", "b", "c", "d"} {
		reg.Publish("O1", Webhook("O1", et, nil))
	}
	got := rec.snapshot()
	want := []string{"", "a", "b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("events = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].EventType != want[i] {
			t.Errorf("event %d = %q, want %q", i, got[i].EventType, want[i])
		}
	}
}

func TestStats(t *testing.T) {
	reg := NewRegistry(quiet)
	reg.Subscribe("B", &recorder{})
	reg.Subscribe("B", &recorder{})
	reg.ChannelFor("A")

	stats := reg.Stats()
	if len(stats) != 2 {
		t.Fatalf("stats = %d, want 2", len(stats))
	}
	if stats[0].OrderID != "A" || stats[0].Subscribers != 0 {
		t.Errorf("stats[0] = %+v", stats[0])
	}
	if stats[1].OrderID != "B" || stats[1].Subscribers != 2 {
		t.Errorf("stats[1] = %+v", stats[1])
	}
	if reg.SubscriberCount() != 2 {
		t.Errorf("SubscriberCount = %d, want 2", reg.SubscriberCount())
	}
}

func TestMailbox(t *testing.T) {
	mb := NewMailbox(2)
	if err := mb.Deliver(Connected("O1")); err != nil {
		t.Fatal(err)
	}
	if err := mb.Deliver(Connected("O1")); err != nil {
		t.Fatal(err)
	}
	if err := mb.Deliver(Connected("O1")); !errors.Is(err, ErrMailboxFull) {
		t.Errorf("err = %v, want ErrMailboxFull", err)
	}
	<-mb.Events()
	if err := mb.Deliver(Connected("O1")); err != nil {
		t.Errorf("after drain: %v", err)
	}
	mb.Close()
	mb.Close()
	if err := mb.Deliver(Connected("O1")); err != nil {
		t.Errorf("deliver after close = %v, want nil", err)
	}
	n := 0
	for range mb.Events() {
		n++
	}
	if n != 2 {
		t.Errorf("drained %d, want 2", n)
	}
}

func TestEventJSON(t *testing.T) {
	b, err := json.Marshal(Connected("O9"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"type":"connected","orderId":"O9"}` {
		t.Errorf("connected json = %s", b)
	}
	b, _ = json.Marshal(Webhook("O9", "DRIVER_ASSIGNED", json.RawMessage(`{"a":1}`)))
	if string(b) != `{"type":"webhook","orderId":"O9","eventType":"DRIVER_ASSIGNED","payload":{"a":1}}` {
		t.Errorf("webhook json = %s", b)
	}
}
