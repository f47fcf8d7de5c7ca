package protocol

import "encoding/json"

// OrderPlaced is mirrored after an order is accepted by the provider.
type OrderPlaced struct {
	OrderID     string `json:"order_id"`
	QuotationID string `json:"quotation_id"`
	Status      string `json:"status"`
	ShareLink   string `json:"share_link,omitempty"`
	Mock        bool   `json:"mock,omitempty"`
}

// OrderSynced is mirrored when a provider refresh changes the stored order.
type OrderSynced struct {
	OrderID  string `json:"order_id"`
	Status   string `json:"status"`
	DriverID string `json:"driver_id,omitempty"`
}

// WebhookReceived carries the provider callback unchanged.
type WebhookReceived struct {
	OrderID   string          `json:"order_id"`
	EventType string          `json:"event_type"`
	Status    string          `json:"status,omitempty"`
	DriverID  string          `json:"driver_id,omitempty"`
	Raw       json.RawMessage `json:"raw"`
}

// DriverLocated is mirrored after a successful driver location fetch.
type DriverLocated struct {
	OrderID   string `json:"order_id"`
	DriverID  string `json:"driver_id"`
	Lat       string `json:"lat"`
	Lng       string `json:"lng"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// ProviderStatus reports provider reachability transitions.
type ProviderStatus struct {
	Connected bool   `json:"connected"`
	Host      string `json:"host"`
	Error     string `json:"error,omitempty"`
}
