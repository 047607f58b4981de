package openai

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/campusbuddy/chat-backend/internal/entity"
)

const mockDimension = 64

// MockConnector is a deterministic stand-in for the hosted API, used for
// local development and tests without credentials.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

// ChatCompletion echoes a canned reply. When the last user message contains
// an https URL the reply is that bare URL, mirroring the course-link prompt
// contract so the classification path stays exercisable end to end.
func (m *MockConnector) ChatCompletion(ctx context.Context, messages []entity.ChatMessage) (string, error) {
	ctxzap.Info(ctx, "[MOCK] chat completion", zap.Int("message_count", len(messages)))

	last := ""
	for _, msg := range messages {
		if msg.Role == entity.RoleUser {
			last = msg.Content
		}
	}

	if i := strings.Index(last, "https://"); i >= 0 {
		link := last[i:]
		if j := strings.IndexAny(link, " \t\n"); j >= 0 {
			link = link[:j]
		}
		return link, nil
	}

	return "Arre, good question! Main abhi mock mode mein hoon, but I've got your back.", nil
}

// CreateEmbeddings produces stable pseudo-vectors from token hashes, so
// equal texts embed equally and retrieval stays deterministic.
func (m *MockConnector) CreateEmbeddings(ctx context.Context, texts []string) ([][]float64, error) {
	ctxzap.Info(ctx, "[MOCK] creating embeddings", zap.Int("count", len(texts)))

	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		v := make([]float64, mockDimension)
		for _, token := range strings.Fields(strings.ToLower(text)) {
			h := fnv.New32a()
			h.Write([]byte(token))
			v[h.Sum32()%mockDimension]++
		}
		vectors[i] = v
	}
	return vectors, nil
}
