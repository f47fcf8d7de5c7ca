package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Address identifies a message source or destination.
type Address struct {
	Role string `json:"role"`
	Node string `json:"node"`
}

// Envelope wraps every event this service mirrors to a broker.
type Envelope struct {
	Version   int             `json:"v"`
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Src       Address         `json:"src"`
	Timestamp time.Time       `json:"ts"`
	ExpiresAt time.Time       `json:"exp"`
	Key       string          `json:"key,omitempty"`
	Payload   json.RawMessage `json:"p"`
}

// RawHeader is the minimal decode needed to route or discard a message.
type RawHeader struct {
	Version   int       `json:"v"`
	Type      string    `json:"type"`
	ID        string    `json:"id"`
	ExpiresAt time.Time `json:"exp"`
}

var ErrExpired = errors.New("protocol: message expired")

// NewEnvelope creates an outbound envelope with the default TTL for
// msgType. key is the partition key, normally the order id.
func NewEnvelope(msgType string, src Address, key string, payload any) (*Envelope, error) {
	p, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Envelope{
		Version:   Version,
		Type:      msgType,
		ID:        uuid.New().String(),
		Src:       src,
		Timestamp: now,
		ExpiresAt: now.Add(DefaultTTLFor(msgType)),
		Key:       key,
		Payload:   p,
	}, nil
}

// Encode marshals the envelope to JSON.
func (e *Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodePayload unmarshals the raw payload into the given target.
func (e *Envelope) DecodePayload(target any) error {
	return json.Unmarshal(e.Payload, target)
}

// Decode reads the header first and refuses expired or future-version
// messages before decoding the rest.
func Decode(data []byte) (*Envelope, error) {
	var hdr RawHeader
	if err := json.Unmarshal(data, &hdr); err != nil {
		return nil, fmt.Errorf("protocol: header decode: %w", err)
	}
	if hdr.Version > Version {
		return nil, fmt.Errorf("protocol: unsupported version %d", hdr.Version)
	}
	if isExpiredHeader(&hdr) {
		return nil, ErrExpired
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("protocol: envelope decode: %w", err)
	}
	return &env, nil
}
