package www

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"github.com/Law2x/yeloSpot/engine"
)

type Handlers struct {
	engine    *engine.Engine
	sessions  *sessions.CookieStore
	adminUser string
	adminHash string
}

func NewRouter(eng *engine.Engine) http.Handler {
	cfg := eng.AppConfig()
	h := &Handlers{
		engine:    eng,
		sessions:  newSessionStore(cfg.Web.SessionSecret),
		adminUser: cfg.Web.AdminUser,
		adminHash: cfg.Web.AdminPasswordHash,
	}
	h.ensureDefaultAdmin()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(cors)

	// Event stream
	r.Get("/events/{orderId}", h.handleEvents)

	// Provider callbacks
	r.Post(cfg.Webhook.Path, h.handleWebhook)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.apiHealth)
		r.Post("/quote", h.apiQuote)
		r.Post("/order", h.apiPlaceOrder)
		r.Get("/order/{id}", h.apiGetOrder)
		r.Get("/track/{orderId}", h.apiTrack)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Get("/admin/orders", h.apiAdminOrders)
			r.Get("/admin/channels", h.apiAdminChannels)
		})
	})

	r.Post("/admin/login", h.handleLogin)
	r.Post("/admin/logout", h.handleLogout)

	if m := eng.Metrics(); m != nil {
		r.Handle("/metrics", m.Handler())
	}

	log.Printf("www: webhook receiver at %s", cfg.Webhook.Path)
	return r
}

// cors allows any origin, matching a browser client served from elsewhere.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := w.Header()
		hdr.Set("Access-Control-Allow-Origin", "*")
		hdr.Set("Access-Control-Allow-Methods", "GET,HEAD,PUT,PATCH,POST,DELETE")
		if req := r.Header.Get("Access-Control-Request-Headers"); req != "" {
			hdr.Set("Access-Control-Allow-Headers", req)
			hdr.Add("Vary", "Access-Control-Request-Headers")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
