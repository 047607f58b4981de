package ingest

import (
	"context"

	"github.com/campusbuddy/chat-backend/internal/entity"
)

// Embedder converts chunk texts into vectors via the hosted embeddings
// endpoint.
type Embedder interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float64, error)
}

// Summarizer is the chat-model dependency handed to each chain's
// conversation-memory store.
type Summarizer interface {
	ChatCompletion(ctx context.Context, messages []entity.ChatMessage) (string, error)
}
