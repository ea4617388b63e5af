package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hwangtech/linebot-backend/internal/api/admin"
	"github.com/hwangtech/linebot-backend/internal/api/docs"
	"github.com/hwangtech/linebot-backend/internal/api/middleware"
	"github.com/hwangtech/linebot-backend/internal/api/webhook"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(webhookHandler *webhook.Handler, adminHandler *admin.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	// The timeout must leave room for a full pipeline round trip; the
	// platform's own webhook timeout is the real backstop.
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Register routes
	webhook.RegisterRoutes(r, webhookHandler)
	admin.RegisterRoutes(r, adminHandler)

	return r
}
