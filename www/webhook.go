package www

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

// VerifySignature checks a hex HMAC-SHA256 of body, with or without a
// "sha256=" prefix.
func VerifySignature(secret, body []byte, signature string) error {
	if len(secret) == 0 {
		return errors.New("webhook signature: secret is empty")
	}
	if signature == "" {
		return errors.New("webhook signature: header missing")
	}
	got, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(signature), "sha256="))
	if err != nil {
		return fmt.Errorf("webhook signature: invalid hex: %w", err)
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	if subtle.ConstantTimeCompare(mac.Sum(nil), got) != 1 {
		return errors.New("webhook signature: mismatch")
	}
	return nil
}

// handleWebhook acknowledges every callback it accepts, whatever happens
// during ingestion, so the provider never retries. Only a failed signature
// check is refused.
func (h *Handlers) handleWebhook(w http.ResponseWriter, r *http.Request) {
	cfg := h.engine.AppConfig()

	limit := cfg.Webhook.MaxBodyBytes
	if limit <= 0 {
		limit = maxJSONBody
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		log.Printf("webhook: read body: %v", err)
		h.jsonOK(w, map[string]bool{"ok": true})
		return
	}

	if cfg.Webhook.Verify {
		sig := r.Header.Get(cfg.Webhook.SignatureHeader)
		if err := VerifySignature([]byte(cfg.WebhookSecret()), body, sig); err != nil {
			h.engine.Metrics().WebhookRejected()
			log.Printf("webhook: rejected from %s: %v", r.RemoteAddr, err)
			h.jsonError(w, "invalid signature", http.StatusUnauthorized)
			return
		}
	}

	h.engine.Ingest(r.Context(), body)
	h.jsonOK(w, map[string]bool{"ok": true})
}
