package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"newsletter-rag/internal/handlers"
)

// NewRouter builds the HTTP routing table for the context service.
func NewRouter(retriever handlers.ContextRetriever, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(RecoveryMiddleware(logger))
	r.Use(LoggingMiddleware(logger))
	r.Use(SecurityMiddleware)
	r.Use(CORSMiddleware)

	r.Get("/health", handlers.HealthCheck)

	contextHandler := handlers.NewContextHandler(retriever, logger)
	r.Route("/api", func(r chi.Router) {
		r.Get("/newsletter-context", contextHandler.GetNewsletterContext)
	})

	return r
}
