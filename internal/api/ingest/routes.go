package ingest

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers ingestion routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/upload/", h.Upload)
}
