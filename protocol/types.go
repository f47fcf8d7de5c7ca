package protocol

// Message types mirrored to the broker.
const (
	TypeOrderPlaced     = "order.placed"
	TypeOrderSynced     = "order.synced"
	TypeWebhookReceived = "relay.webhook"
	TypeDriverLocated   = "relay.driver"
	TypeProviderStatus  = "provider.status"
)

// RoleRelay is the Address.Role of this service.
const RoleRelay = "relay"

// Protocol version.
const Version = 1
