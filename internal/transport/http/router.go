// Package httptransport wires the HTTP surface: driver routes, health, and
// metrics.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"haulpass/internal/platform/middleware"
	"haulpass/pkg/platform/httputil"
)

// NewRouter assembles the full route tree.
func NewRouter(driver *DriverHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	if logger != nil {
		r.Use(middleware.Logger(logger))
	}
	r.Use(chimiddleware.Timeout(30 * time.Second))

	driver.Register(r)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
