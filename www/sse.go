package www

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Law2x/yeloSpot/relay"
)

// handleEvents streams one order's channel as server-sent events until the
// client goes away. Each event is a single "data:" line of JSON.
func (h *Handlers) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	orderID := chi.URLParam(r, "orderId")
	cfg := h.engine.AppConfig().Relay

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	mb := relay.NewMailbox(cfg.SubscriberBuffer)
	sub := h.engine.Subscribe(orderID, mb)
	defer func() {
		sub.Close()
		mb.Close()
	}()

	interval := cfg.KeepaliveInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	keepalive := time.NewTicker(interval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt := <-mb.Events():
			data, err := json.Marshal(evt)
			if err != nil {
				log.Printf("sse: order %s: encode %s event: %v", orderID, evt.Type, err)
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				log.Printf("sse: order %s: write error: %v", orderID, err)
				return
			}
			flusher.Flush()
		case <-keepalive.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
