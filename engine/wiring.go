package engine

import (
	"github.com/Law2x/yeloSpot/protocol"
)

func (e *Engine) wireEventHandlers() {
	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(OrderPlacedEvent)
		e.metrics.OrderPlaced()
		e.logFn("engine: order %s placed from quotation %s (%s)", ev.OrderID, ev.QuotationID, ev.Status)
		e.mirrorEvent(protocol.TypeOrderPlaced, ev.OrderID, &protocol.OrderPlaced{
			OrderID:     ev.OrderID,
			QuotationID: ev.QuotationID,
			Status:      ev.Status,
			ShareLink:   ev.ShareLink,
			Mock:        ev.Mock,
		})
	}, EventOrderPlaced)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(OrderSyncedEvent)
		e.logFn("engine: order %s status %s -> %s", ev.OrderID, ev.OldStatus, ev.NewStatus)
		e.mirrorEvent(protocol.TypeOrderSynced, ev.OrderID, &protocol.OrderSynced{
			OrderID:  ev.OrderID,
			Status:   ev.NewStatus,
			DriverID: ev.DriverID,
		})
	}, EventOrderSynced)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(WebhookReceivedEvent)
		e.mirrorEvent(protocol.TypeWebhookReceived, ev.OrderID, &protocol.WebhookReceived{
			OrderID:   ev.OrderID,
			EventType: ev.EventType,
			Status:    ev.Status,
			DriverID:  ev.DriverID,
			Raw:       ev.Raw,
		})
	}, EventWebhookReceived)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(DriverLocatedEvent)
		p := &protocol.DriverLocated{OrderID: ev.OrderID, DriverID: ev.Driver.DriverID}
		if c := ev.Driver.Coordinates; c != nil {
			p.Lat, p.Lng, p.UpdatedAt = c.Lat, c.Lng, c.UpdatedAt
		}
		e.mirrorEvent(protocol.TypeDriverLocated, ev.OrderID, p)
	}, EventDriverLocated)

	e.Events.SubscribeTypes(func(evt Event) {
		ev := evt.Payload.(ConnectionEvent)
		connected := evt.Type == EventProviderConnected
		if connected {
			e.logFn("engine: provider up: %s", ev.Detail)
		} else {
			e.logFn("engine: provider down: %s", ev.Detail)
		}
		st := &protocol.ProviderStatus{Connected: connected, Host: e.cfg.Provider.Host}
		if !connected {
			st.Error = ev.Detail
		}
		e.mirrorEvent(protocol.TypeProviderStatus, "", st)
	}, EventProviderConnected, EventProviderDisconnected)
}

// mirrorEvent forwards an event to the broker when one is configured.
// Failures are logged only.
func (e *Engine) mirrorEvent(msgType, key string, payload any) {
	if e.mirror == nil {
		return
	}
	src := protocol.Address{Role: protocol.RoleRelay, Node: e.cfg.Messaging.Source}
	env, err := protocol.NewEnvelope(msgType, src, key, payload)
	if err != nil {
		e.logFn("engine: build %s envelope: %v", msgType, err)
		return
	}
	if err := e.mirror.PublishEnvelope(e.cfg.Messaging.EventsTopic, env); err != nil {
		e.logFn("engine: mirror %s for %q: %v", msgType, key, err)
	}
}
