package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/samSKIF/EmployeeRewards-sub009/sample/api/middleware"
)

// NewRouter wires the controllers into a chi router. State-changing employee
// and survey routes sit behind the redis idempotency middleware.
func NewRouter(h *Handlers, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Idempotency(redisClient))

			r.Post("/employees", h.CreateEmployee)
			r.Patch("/employees/{id}", h.UpdateEmployee)
			r.Post("/employees/{id}/deactivate", h.DeactivateEmployee)

			r.Post("/surveys", h.CreateSurvey)
			r.Patch("/surveys/{id}", h.UpdateSurvey)
			r.Post("/surveys/{id}/publish", h.PublishSurvey)
			r.Post("/surveys/{id}/responses", h.SubmitSurveyResponse)
		})

		r.Get("/employees", h.ListEmployees)
		r.Get("/employees/{id}", h.GetEmployee)
		r.Get("/surveys/{id}", h.GetSurvey)
		r.Delete("/surveys/{id}", h.DeleteSurvey)

		r.Get("/events/history", h.EventHistory)
		r.Get("/events/metrics", h.EventMetrics)
	})

	return r
}
