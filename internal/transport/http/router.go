// Package httptransport is the thin HTTP layer. Handlers delegate to domain
// services and hand every error to httputil so transport concerns stay
// isolated from business logic.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authmw "trafficwatch/pkg/platform/middleware/auth"
	requestmw "trafficwatch/pkg/platform/middleware/request"
)

// NewRouter wires all endpoints behind the request-id and authentication
// middleware. The gatherer backs /metrics; tests pass their own registry.
func NewRouter(
	equipment *EquipmentHandler,
	violations *ViolationHandler,
	validator authmw.TokenValidator,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(requestmw.ID)
	r.Use(authmw.Authenticate(validator, logger))

	equipment.Register(r)
	violations.Register(r)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}
