package protocol

import "time"

// Location updates go stale quickly; lifecycle events are kept longer.
var defaultTTLs = map[string]time.Duration{
	TypeDriverLocated:  2 * time.Minute,
	TypeProviderStatus: 5 * time.Minute,

	TypeWebhookReceived: 30 * time.Minute,
	TypeOrderSynced:     30 * time.Minute,

	TypeOrderPlaced: 60 * time.Minute,
}

// FallbackTTL is used when no specific TTL is configured.
const FallbackTTL = 10 * time.Minute

// DefaultTTLFor returns the default TTL for a message type.
func DefaultTTLFor(msgType string) time.Duration {
	if ttl, ok := defaultTTLs[msgType]; ok {
		return ttl
	}
	return FallbackTTL
}

// IsExpired returns true if the envelope has passed its expiry time.
func IsExpired(env *Envelope) bool {
	return expired(env.ExpiresAt)
}

// isExpiredHeader checks expiry using only the raw header.
func isExpiredHeader(hdr *RawHeader) bool {
	return expired(hdr.ExpiresAt)
}

func expired(at time.Time) bool {
	if at.IsZero() {
		return false
	}
	return time.Now().UTC().After(at)
}
