package chat

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers chat and status routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Post("/ask/", h.Ask)
}
