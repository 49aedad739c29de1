package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Rapor/internal/config"
	"github.com/MikeSquared-Agency/Rapor/internal/events"
	"github.com/MikeSquared-Agency/Rapor/internal/store"
)

func NewRouter(s store.Store, e events.Client, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(cfg.Server.RateLimitPerMin))

	settings := NewSettingsHandler(s, e, cfg.Grading.DefaultWeights, logger)
	grades := NewGradesHandler(s, e, cfg.Grading.DefaultWeights, cfg.Grading.KKM, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(UserIDMiddleware)

		r.Get("/settings/weights", settings.GetWeights)
		r.Get("/grading/predicates", settings.Predicates)

		r.Post("/grades/compute", grades.Compute)
		r.Post("/grades/bulk", grades.BulkSave)
		r.Get("/grades", grades.List)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.Server.AdminToken))
			r.Put("/settings/weights", settings.PutWeights)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
