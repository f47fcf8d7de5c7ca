package protocol

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	src := Address{Role: RoleRelay, Node: "yelospot-1"}

	env, err := NewEnvelope(TypeWebhookReceived, src, "42", &WebhookReceived{
		OrderID:   "42",
		EventType: "DRIVER_ASSIGNED",
		DriverID:  "D1",
		Raw:       json.RawMessage(`{"eventType":"DRIVER_ASSIGNED"}`),
	})
	if err != nil {
		t.Fatalf("NewEnvelope: %v", err)
	}
	if env.Version != Version {
		t.Errorf("version = %d, want %d", env.Version, Version)
	}
	if env.Src != src {
		t.Errorf("src = %+v, want %+v", env.Src, src)
	}
	if env.ID == "" {
		t.Error("ID should not be empty")
	}
	if env.Key != "42" {
		t.Errorf("key = %q, want 42", env.Key)
	}

	data, err := env.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Type != TypeWebhookReceived || decoded.ID != env.ID {
		t.Errorf("decoded = %s/%s, want %s/%s", decoded.Type, decoded.ID, TypeWebhookReceived, env.ID)
	}

	var p WebhookReceived
	if err := decoded.DecodePayload(&p); err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if p.DriverID != "D1" || string(p.Raw) != `{"eventType":"DRIVER_ASSIGNED"}` {
		t.Errorf("payload = %+v", p)
	}
}

func TestDefaultTTLs(t *testing.T) {
	tests := []struct {
		msgType string
		want    time.Duration
	}{
		{TypeDriverLocated, 2 * time.Minute},
		{TypeWebhookReceived, 30 * time.Minute},
		{TypeOrderPlaced, 60 * time.Minute},
		{"unknown.type", FallbackTTL},
	}
	for _, tt := range tests {
		if got := DefaultTTLFor(tt.msgType); got != tt.want {
			t.Errorf("DefaultTTLFor(%q) = %v, want %v", tt.msgType, got, tt.want)
		}
	}
}

func TestExpiry(t *testing.T) {
	env := &Envelope{ExpiresAt: time.Now().UTC().Add(-time.Second)}
	if !IsExpired(env) {
		t.Error("past expiry should be expired")
	}
	env.ExpiresAt = time.Now().UTC().Add(time.Minute)
	if IsExpired(env) {
		t.Error("future expiry should not be expired")
	}
	if IsExpired(&Envelope{}) {
		t.Error("zero expiry never expires")
	}
}

func TestDecodeRejects(t *testing.T) {
	old, _ := json.Marshal(map[string]any{
		"v": 1, "type": TypeDriverLocated, "id": "x",
		"exp": time.Now().UTC().Add(-time.Hour),
	})
	if _, err := Decode(old); !errors.Is(err, ErrExpired) {
		t.Errorf("expired: err = %v, want ErrExpired", err)
	}

	future, _ := json.Marshal(map[string]any{"v": Version + 1, "type": TypeOrderPlaced})
	if _, err := Decode(future); err == nil {
		t.Error("expected error for newer protocol version")
	}

	if _, err := Decode([]byte("not json")); err == nil {
		t.Error("expected error for malformed input")
	}
}
