// Package httpapi exposes the accuracy-tracking core over HTTP: reading CRUD
// with derived drift, per-watch analytics, and the public reference-time
// endpoints.
package httpapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/Homoney/watch-collection-tracker/internal/accuracy"
	"github.com/Homoney/watch-collection-tracker/internal/clock"
)

// Handler holds the collaborators behind the HTTP surface.
type Handler struct {
	service *accuracy.Service
	time    accuracy.TimeProvider
	clk     clock.Clock
}

// NewHandler wires a Handler.
func NewHandler(service *accuracy.Service, tp accuracy.TimeProvider, clk clock.Clock) *Handler {
	return &Handler{service: service, time: tp, clk: clk}
}

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// NewRouter mounts all routes and applies the middleware chain outermost
// first.
func NewRouter(h *Handler, middleware ...Middleware) http.Handler {
	router := httprouter.New()

	router.HandlerFunc(http.MethodGet, "/healthz", h.health)

	router.HandlerFunc(http.MethodGet, "/api/v1/atomic-time", h.atomicTime)
	router.HandlerFunc(http.MethodGet, "/api/v1/atomic-time/ws", h.atomicTimeStream)

	router.Handle(http.MethodPost, "/api/v1/watches/:watch_id/accuracy-readings", h.createReading)
	router.Handle(http.MethodGet, "/api/v1/watches/:watch_id/accuracy-readings", h.listReadings)
	router.Handle(http.MethodGet, "/api/v1/watches/:watch_id/accuracy-readings/:reading_id", h.getReading)
	router.Handle(http.MethodPut, "/api/v1/watches/:watch_id/accuracy-readings/:reading_id", h.updateReading)
	router.Handle(http.MethodDelete, "/api/v1/watches/:watch_id/accuracy-readings/:reading_id", h.deleteReading)
	router.Handle(http.MethodGet, "/api/v1/watches/:watch_id/accuracy-analytics", h.analytics)

	var handler http.Handler = router
	for i := len(middleware) - 1; i >= 0; i-- {
		handler = middleware[i](handler)
	}
	return handler
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
