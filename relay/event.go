package relay

import "encoding/json"

// Event types streamed to subscribers.
const (
	TypeConnected = "connected"
	TypeWebhook   = "webhook"
	TypeDriver    = "driver"
)

// Event is one message on an order channel. It is encoded as JSON on the
// event stream.
type Event struct {
	Type      string          `json:"type"`
	OrderID   string          `json:"orderId,omitempty"`
	EventType string          `json:"eventType,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Data      any             `json:"data,omitempty"`
}

func Connected(orderID string) Event {
	return Event{Type: TypeConnected, OrderID: orderID}
}

func Webhook(orderID, eventType string, payload json.RawMessage) Event {
	return Event{Type: TypeWebhook, OrderID: orderID, EventType: eventType, Payload: payload}
}

func Driver(orderID string, data any) Event {
	return Event{Type: TypeDriver, OrderID: orderID, Data: data}
}
