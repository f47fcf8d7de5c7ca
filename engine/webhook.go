package engine

import (
	"context"
	"encoding/json"
	"errors"
	"runtime/debug"

	"github.com/Law2x/yeloSpot/metrics"
	"github.com/Law2x/yeloSpot/relay"
	"github.com/Law2x/yeloSpot/store"
)

// Webhook event types that trigger a driver location pull.
const (
	WebhookDriverAssigned     = "DRIVER_ASSIGNED"
	WebhookOrderStatusChanged = "ORDER_STATUS_CHANGED"
)

var enrichOn = map[string]bool{
	WebhookDriverAssigned:     true,
	WebhookOrderStatusChanged: true,
}

// webhookFields is what ingestion needs from a provider callback.
type webhookFields struct {
	EventType string
	OrderID   string
	DriverID  string
	Status    string
}

type jsonObject map[string]json.RawMessage

// object decodes raw as a JSON object; anything else yields nil.
func object(raw json.RawMessage) jsonObject {
	var o jsonObject
	if json.Unmarshal(raw, &o) != nil {
		return nil
	}
	return o
}

// text reads o[key] as a string or number. Missing or otherwise typed
// values read as empty.
func (o jsonObject) text(key string) string {
	raw, ok := o[key]
	if !ok {
		return ""
	}
	var s LooseString
	if s.UnmarshalJSON(raw) != nil {
		return ""
	}
	return string(s)
}

// parseWebhook pulls the routing fields out of a callback. Only a body that
// is not a JSON object fails; each field is read on its own so one oddly
// typed value never hides the order id.
func parseWebhook(raw []byte) (webhookFields, error) {
	var top jsonObject
	if err := json.Unmarshal(raw, &top); err != nil {
		return webhookFields{}, err
	}
	if top == nil {
		return webhookFields{}, errors.New("payload is not a JSON object")
	}
	data := object(top["data"])
	order := object(data["order"])
	driver := object(data["driver"])

	return webhookFields{
		EventType: first(top.text("eventType"), top.text("type")),
		OrderID:   first(data.text("orderId"), data.text("id"), order.text("orderId")),
		DriverID:  first(data.text("driverId"), order.text("driverId"), driver.text("driverId")),
		Status:    first(data.text("status"), order.text("status")),
	}, nil
}

func first(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Ingest records a provider webhook and relays it to the order's
// subscribers. It never fails: every problem is logged and dropped so the
// caller can always acknowledge.
//
// The store merge completes before the webhook event is published, so a
// subscriber reacting to it reads the merged state. For driver assignment
// and status changes a fresh driver position is then pulled and published,
// unless running offline.
func (e *Engine) Ingest(ctx context.Context, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			e.logFn("webhook: panic during ingest: %v\n%s", r, debug.Stack())
		}
	}()

	f, err := parseWebhook(raw)
	if err != nil {
		e.logFn("webhook: parse error: %v", err)
		return
	}
	e.metrics.WebhookReceived(f.EventType)
	if f.OrderID == "" {
		e.logFn("webhook: %q without order id ignored", f.EventType)
		return
	}

	// The provider may hang up once it has sent the body; the record and
	// the relay must not depend on it staying connected.
	ctx = context.WithoutCancel(ctx)

	driverID := f.DriverID
	rec, err := e.store.Merge(ctx, f.OrderID, store.Patch{DriverID: f.DriverID, Status: f.Status})
	if err != nil {
		e.logFn("webhook: order %s: store update failed: %v", f.OrderID, err)
		if prev, ok := e.store.Get(f.OrderID); ok && driverID == "" {
			driverID = prev.DriverID
		}
	} else {
		driverID = rec.DriverID
	}

	e.publish(f.OrderID, relay.Webhook(f.OrderID, f.EventType, json.RawMessage(raw)))
	e.Events.Emit(Event{Type: EventWebhookReceived, Payload: WebhookReceivedEvent{
		OrderID:   f.OrderID,
		EventType: f.EventType,
		Status:    f.Status,
		DriverID:  driverID,
		Raw:       json.RawMessage(raw),
	}})

	if !enrichOn[f.EventType] || driverID == "" || e.cfg.MockMode {
		return
	}
	e.enrich(ctx, f.OrderID, driverID)
}

func (e *Engine) enrich(ctx context.Context, orderID, driverID string) {
	if t := e.cfg.Provider.EnrichTimeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}
	drv, err := e.backend.GetDriver(ctx, orderID, driverID)
	if err != nil {
		e.metrics.DriverFetch(metrics.OutcomeError)
		e.logFn("webhook: order %s: driver %s location unavailable: %v", orderID, driverID, err)
		return
	}
	e.metrics.DriverFetch(metrics.OutcomeOK)
	e.publish(orderID, relay.Driver(orderID, drv))
	e.Events.Emit(Event{Type: EventDriverLocated, Payload: DriverLocatedEvent{OrderID: orderID, Driver: drv}})
}
