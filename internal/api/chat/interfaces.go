package chat

import (
	"context"

	"github.com/campusbuddy/chat-backend/internal/entity"
)

// ChatUsecase answers one question-answering turn.
type ChatUsecase interface {
	Ask(ctx context.Context, req *entity.AskRequest) (*entity.AskResponse, error)
}

// PipelineStatus exposes what the status endpoints need to know about the
// ingestion pipeline.
type PipelineStatus interface {
	Ready() bool
	DocumentExists() bool
}
