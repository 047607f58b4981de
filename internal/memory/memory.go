package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/campusbuddy/chat-backend/internal/entity"
)

// Summarizer compresses dialogue history into a running summary. In
// production this is the hosted chat model.
type Summarizer interface {
	ChatCompletion(ctx context.Context, messages []entity.ChatMessage) (string, error)
}

const summaryPrompt = `Progressively summarize the conversation below. Fold the new question and answer into the current summary, keeping it under 200 words. Return only the new summary.

Current summary:
%s

New question:
%s

New answer:
%s`

// Memory maintains a compact running summary of one conversation so the
// model has context without resending the full transcript every turn.
type Memory struct {
	mu         sync.Mutex
	summarizer Summarizer
	summary    string
	turns      int
}

func NewMemory(summarizer Summarizer) *Memory {
	return &Memory{summarizer: summarizer}
}

// Summary returns the current running summary, empty for a new conversation.
func (m *Memory) Summary() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.summary
}

// Turns returns the number of answered question/answer pairs folded in.
func (m *Memory) Turns() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.turns
}

// Update folds an answered question/answer pair into the summary.
// Summarization is best-effort: if the call fails the prior summary is
// retained unchanged and the turn still counts as answered.
func (m *Memory) Update(ctx context.Context, question, answer string) {
	m.mu.Lock()
	prior := m.summary
	m.mu.Unlock()

	current := prior
	if current == "" {
		current = "(none)"
	}

	updated, err := m.summarizer.ChatCompletion(ctx, []entity.ChatMessage{
		{Role: entity.RoleUser, Content: fmt.Sprintf(summaryPrompt, current, question, answer)},
	})
	if err != nil {
		ctxzap.Warn(ctx, "summarization failed, keeping prior summary", zap.Error(err))
		m.mu.Lock()
		m.turns++
		m.mu.Unlock()
		return
	}

	m.mu.Lock()
	m.summary = strings.TrimSpace(updated)
	m.turns++
	m.mu.Unlock()
}
