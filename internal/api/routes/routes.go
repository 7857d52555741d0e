// internal/api/routes/routes.go
package routes

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fawad-mazhar/shopfloor/internal/api/handlers"
	"github.com/fawad-mazhar/shopfloor/internal/config"
	"github.com/fawad-mazhar/shopfloor/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func SetupRouter(cfg *config.Config, svc *session.Service) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(cfg.Server.WriteTimeout) * time.Second))

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			next.ServeHTTP(w, r)
		})
	})

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(svc, cfg.Scheduler)
	statusHandler := handlers.NewStatusHandler(svc)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.CreateSession)
			r.Post("/demo", sessionHandler.CreateDemoSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.GetSession)
				r.Delete("/", sessionHandler.DeleteSession)
				r.Get("/metrics", sessionHandler.GetMetrics)
				r.Get("/report", sessionHandler.GetReport)
				r.Post("/moves", sessionHandler.MoveTask)
				r.Post("/rebuild", sessionHandler.RebuildSession)
			})
		})

		// Stateless builds of independent job sets
		r.Post("/batch", sessionHandler.BuildBatch)

		// System Status endpoint
		r.Get("/system/status", statusHandler.GetSystemStatus)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	return r
}
