package handlers

import "net/http"

// Middleware wraps a handler, typically to gate it behind authentication.
type Middleware func(http.Handler) http.Handler

// NewRouter registers the full HTTP surface. Health probes and auth entry
// points are public; everything else requires a resolved user. The swap group
// lives under /api/swap/.
func NewRouter(health *HealthHandler, auth *AuthHandler, events *EventHandler, swaps *SwapHandler, requireAuth Middleware, stats http.HandlerFunc) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", health.Health)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /live", health.Live)

	mux.HandleFunc("POST /api/auth/register", auth.Register)
	mux.HandleFunc("POST /api/auth/login", auth.Login)
	mux.Handle("GET /api/auth/me", requireAuth(http.HandlerFunc(auth.Me)))

	mux.Handle("GET /api/events", requireAuth(http.HandlerFunc(events.List)))
	mux.Handle("POST /api/events", requireAuth(http.HandlerFunc(events.Create)))
	mux.Handle("GET /api/events/stats", requireAuth(http.HandlerFunc(events.Stats)))
	mux.Handle("PUT /api/events/{id}", requireAuth(http.HandlerFunc(events.Update)))
	mux.Handle("PATCH /api/events/{id}", requireAuth(http.HandlerFunc(events.Update)))
	mux.Handle("DELETE /api/events/{id}", requireAuth(http.HandlerFunc(events.Delete)))

	mux.Handle("GET /api/swap/swappable-slots", requireAuth(http.HandlerFunc(swaps.SwappableSlots)))
	mux.Handle("POST /api/swap/swap-request", requireAuth(http.HandlerFunc(swaps.CreateRequest)))
	mux.Handle("POST /api/swap/swap-response/{id}", requireAuth(http.HandlerFunc(swaps.Respond)))
	mux.Handle("GET /api/swap/requests", requireAuth(http.HandlerFunc(swaps.ListRequests)))

	if stats != nil {
		mux.HandleFunc("GET /api/stats", stats)
	}

	return mux
}
