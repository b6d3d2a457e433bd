package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", h.Healthz)
		r.Post("/points/compute", h.ComputePoints)

		r.Route("/players/{playerID}/loyalty", func(r chi.Router) {
			r.Post("/", h.InitializeLoyalty)
			r.Get("/", h.GetLoyalty)
			r.Post("/accrue", h.Accrue)
			r.Get("/ledger", h.GetLedger)
		})
	})

	return r
}
