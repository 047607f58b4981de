package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	chatapi "github.com/campusbuddy/chat-backend/internal/api/chat"
	"github.com/campusbuddy/chat-backend/internal/api/docs"
	ingestapi "github.com/campusbuddy/chat-backend/internal/api/ingest"
	"github.com/campusbuddy/chat-backend/internal/api/middleware"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(chatHandler *chatapi.Handler, ingestHandler *ingestapi.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS)
	r.Use(chimiddleware.Timeout(120 * time.Second))

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	// Register routes
	chatapi.RegisterRoutes(r, chatHandler)
	ingestapi.RegisterRoutes(r, ingestHandler)

	return r
}
