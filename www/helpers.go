package www

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/Law2x/yeloSpot/engine"
	"github.com/Law2x/yeloSpot/lalamove"
)

// maxJSONBody mirrors the webhook default; browser payloads are tiny.
const maxJSONBody = 2 << 20

func (h *Handlers) jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

// jsonData wraps data the way the provider does: {"data": ...}.
func (h *Handlers) jsonData(w http.ResponseWriter, data any) {
	h.jsonOK(w, map[string]any{"data": data})
}

func (h *Handlers) jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v); err != nil {
		h.jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

// fail maps engine and provider errors onto HTTP responses.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, engine.ErrBadRequest):
		h.jsonError(w, strings.TrimPrefix(err.Error(), engine.ErrBadRequest.Error()+": "), http.StatusBadRequest)
		return
	case errors.Is(err, engine.ErrNotFound):
		h.jsonError(w, "not found", http.StatusNotFound)
		return
	}

	log.Printf("www: %s %s: %v", r.Method, r.URL.Path, err)
	var message any = err.Error()
	var apiErr *lalamove.APIError
	if errors.As(err, &apiErr) && len(apiErr.Body) > 0 {
		if json.Valid(apiErr.Body) {
			message = json.RawMessage(apiErr.Body)
		} else {
			message = string(apiErr.Body)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]any{"error": true, "message": message})
}
