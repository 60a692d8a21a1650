package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kiddoconnect/campaign-service/internal/api/handler"
	apimw "github.com/kiddoconnect/campaign-service/internal/api/middleware"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	run *handler.RunHandler,
	recipients *handler.RecipientHandler,
	triggerToken string,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)          // recover panics, return 500
	r.Use(chimw.RealIP)             // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1<<20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)      // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	hh := handler.NewHealthHandler()

	// --- routes ---
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Run triggers, invoked by the external cron with a bearer credential.
	r.Route("/internal/run", func(r chi.Router) {
		r.Use(apimw.TriggerAuth(triggerToken))
		r.Post("/schedule", run.RunSchedule)
		r.Post("/dispatch", run.RunDispatch)
	})

	// External registration, authenticated per-request by tenant API key.
	r.Post("/api/v1/recipients", recipients.Register)

	return r
}
