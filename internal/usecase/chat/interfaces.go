package chat

import (
	"context"

	"github.com/campusbuddy/chat-backend/internal/entity"
)

// LLMConnector sends assembled prompts to the hosted chat model.
type LLMConnector interface {
	ChatCompletion(ctx context.Context, messages []entity.ChatMessage) (string, error)
}
