package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/inkwell-dev/inkwell/internal/middleware/metrics"
	"github.com/inkwell-dev/inkwell/internal/setup"
)

// New creates and configures the chi router with all the routes.
func New(deps *setup.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(metrics.Middleware)

	// setup CORS for frontend
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Public.CorsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/ready", h.Ready)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.With(authMw.NeedAuth()).Get("/me", h.Me)
		})

		r.Route("/files", func(r chi.Router) {
			r.Get("/{id}", h.GetFile)
			r.With(authMw.NeedAuth()).Get("/{id}/download", h.DownloadFile)

			// Admin routes
			r.Group(func(r chi.Router) {
				r.Use(authMw.AdminOnly())
				r.Post("/upload", h.UploadFile)
				r.Get("/", h.GetFiles)
				r.Put("/{id}", h.UpdateFile)
				r.Delete("/{id}", h.DeleteFile)
			})
		})

		r.Route("/download-requests", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authMw.NeedAuth())
				r.Post("/", h.CreateDownloadRequest)
				r.Get("/check/{fileId}", h.CheckDownloadRequest)
				r.Get("/my-requests", h.GetMyRequests)
				// Ownership is checked in the handler: admins see everything,
				// regular users only their own requests.
				r.Get("/{id}", h.GetDownloadRequest)
			})

			// Admin routes
			r.Group(func(r chi.Router) {
				r.Use(authMw.AdminOnly())
				r.Get("/", h.GetAllRequests)
				r.Put("/{id}", h.UpdateDownloadRequest)
				r.Delete("/{id}", h.DeleteDownloadRequest)
			})
		})
	})

	return r
}
