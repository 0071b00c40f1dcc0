package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/openpic/openpic/internal/web/handlers"
)

func (s *Server) setupRoutes(coordinator handlers.Coordinator) {
	// Create handlers
	uploadsHandler := handlers.NewUploadsHandler(coordinator)
	selfiesHandler := handlers.NewSelfiesHandler(coordinator)
	matchesHandler := handlers.NewMatchesHandler(coordinator)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Event photo batch flow
		r.Post("/uploads", uploadsHandler.Request)
		r.Post("/uploads/confirm", uploadsHandler.Confirm)

		// Selfie flow
		r.Post("/selfies", selfiesHandler.Submit)
		r.Get("/matches", matchesHandler.Status)
	})
}
