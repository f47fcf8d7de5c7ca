package engine

import (
	"encoding/json"

	"github.com/Law2x/yeloSpot/lalamove"
)

const (
	EventOrderPlaced EventType = iota + 1
	EventOrderSynced
	EventWebhookReceived
	EventDriverLocated
	EventProviderConnected
	EventProviderDisconnected
)

type OrderPlacedEvent struct {
	OrderID     string
	QuotationID string
	Status      string
	ShareLink   string
	Mock        bool
}

// OrderSyncedEvent fires when a provider refresh changed the stored status.
type OrderSyncedEvent struct {
	OrderID   string
	OldStatus string
	NewStatus string
	DriverID  string
}

type WebhookReceivedEvent struct {
	OrderID   string // empty when the payload named no order
	EventType string
	Status    string
	DriverID  string
	Raw       json.RawMessage
}

type DriverLocatedEvent struct {
	OrderID string
	Driver  *lalamove.Driver
}

type ConnectionEvent struct {
	Detail string
}
