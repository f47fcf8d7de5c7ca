package www

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Law2x/yeloSpot/engine"
)

func (h *Handlers) apiHealth(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, map[string]any{
		"ok":   true,
		"time": time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		"mock": h.engine.MockMode(),
	})
}

func (h *Handlers) apiQuote(w http.ResponseWriter, r *http.Request) {
	var req engine.QuoteRequest
	if !h.decode(w, r, &req) {
		return
	}
	q, err := h.engine.Quote(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.jsonData(w, q)
}

func (h *Handlers) apiPlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req engine.OrderRequest
	if !h.decode(w, r, &req) {
		return
	}
	order, err := h.engine.PlaceOrder(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.jsonData(w, order)
}

func (h *Handlers) apiGetOrder(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.jsonData(w, view)
}

func (h *Handlers) apiTrack(w http.ResponseWriter, r *http.Request) {
	tr, err := h.engine.Track(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.jsonData(w, tr)
}

func (h *Handlers) apiAdminOrders(w http.ResponseWriter, r *http.Request) {
	h.jsonData(w, h.engine.Orders())
}

func (h *Handlers) apiAdminChannels(w http.ResponseWriter, r *http.Request) {
	h.jsonData(w, h.engine.Registry().Stats())
}
