package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusbuddy/chat-backend/internal/entity"
	"github.com/campusbuddy/chat-backend/internal/index"
	"github.com/campusbuddy/chat-backend/internal/memory"
	"github.com/campusbuddy/chat-backend/internal/pipeline"
	"github.com/campusbuddy/chat-backend/internal/retriever"
)

type stubLLM struct {
	reply   string
	err     error
	calls   int
	history [][]entity.ChatMessage
}

func (s *stubLLM) ChatCompletion(_ context.Context, messages []entity.ChatMessage) (string, error) {
	s.calls++
	s.history = append(s.history, messages)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

// lastChatCall returns the most recent two-message (system+user) completion
// call, skipping the single-message summarization calls.
func (s *stubLLM) lastChatCall() []entity.ChatMessage {
	for i := len(s.history) - 1; i >= 0; i-- {
		if len(s.history[i]) == 2 {
			return s.history[i]
		}
	}
	return nil
}

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) CreateEmbeddings(_ context.Context, texts []string) ([][]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{1, 0}
	}
	return out, nil
}

type recordingTurnRepo struct {
	turns []*entity.Turn
	err   error
}

func (r *recordingTurnRepo) CreateTurn(_ context.Context, turn *entity.Turn) error {
	if r.err != nil {
		return r.err
	}
	r.turns = append(r.turns, turn)
	return nil
}

func (r *recordingTurnRepo) GetConversationTurns(_ context.Context, conversationID string) ([]*entity.Turn, error) {
	var out []*entity.Turn
	for _, t := range r.turns {
		if t.ConversationID == conversationID {
			out = append(out, t)
		}
	}
	return out, nil
}

func testChain(t *testing.T, summarizer memory.Summarizer) *pipeline.Chain {
	t.Helper()
	chunks := []entity.Chunk{
		{ID: "doc1:0", DocumentID: "doc1", Index: 0, Page: 1, Text: "Linear Algebra 101: https://example.com/la101"},
		{ID: "doc1:1", DocumentID: "doc1", Index: 1, Page: 1, Text: "Vectors have magnitude and direction."},
	}
	ix, err := index.New(index.Meta{EmbeddingModel: "m", Dimension: 2}, chunks, [][]float64{{1, 0}, {0, 1}})
	require.NoError(t, err)
	return &pipeline.Chain{
		Index:     ix,
		Retriever: retriever.New(&stubEmbedder{}, ix, retriever.Config{TopK: 2, FetchK: 2, Lambda: 0.5}),
		Memories:  memory.NewStore(summarizer, time.Minute, time.Minute),
		BuiltAt:   time.Now(),
	}
}

func readyHolder(t *testing.T, summarizer memory.Summarizer) *pipeline.Holder {
	t.Helper()
	h := pipeline.NewHolder()
	h.Publish(testChain(t, summarizer))
	return h
}

func TestAsk_ProseAnswer(t *testing.T) {
	llm := &stubLLM{reply: "Vectors are arrows, yaar. Magnitude plus direction."}
	repo := &recordingTurnRepo{}
	uc := NewUsecase(readyHolder(t, llm), llm, repo, zap.NewNop())

	resp, err := uc.Ask(context.Background(), &entity.AskRequest{Query: "what are vectors?"})
	require.NoError(t, err)

	require.NotNil(t, resp.Answer)
	assert.Nil(t, resp.CourseLink)
	assert.Equal(t, llm.reply, *resp.Answer)
	assert.Equal(t, "success", resp.Status)
	assert.NotEmpty(t, resp.ConversationID)

	require.Len(t, repo.turns, 1)
	assert.Equal(t, "what are vectors?", repo.turns[0].Question)
	assert.Equal(t, llm.reply, repo.turns[0].Answer)
	assert.Empty(t, repo.turns[0].CourseLink)
}

func TestAsk_CourseLinkAnswer(t *testing.T) {
	llm := &stubLLM{reply: "https://example.com/la101"}
	uc := NewUsecase(readyHolder(t, llm), llm, nil, zap.NewNop())

	resp, err := uc.Ask(context.Background(), &entity.AskRequest{Query: "koi linear algebra course?"})
	require.NoError(t, err)

	require.NotNil(t, resp.CourseLink)
	assert.Nil(t, resp.Answer)
	assert.Equal(t, "https://example.com/la101", *resp.CourseLink)
}

func TestAsk_ReplyTrimmedBeforeClassification(t *testing.T) {
	llm := &stubLLM{reply: "  https://example.com/la101\n"}
	uc := NewUsecase(readyHolder(t, llm), llm, nil, zap.NewNop())

	resp, err := uc.Ask(context.Background(), &entity.AskRequest{Query: "course?"})
	require.NoError(t, err)

	require.NotNil(t, resp.CourseLink)
	assert.Equal(t, "https://example.com/la101", *resp.CourseLink)
}

func TestAsk_EmptyQuery(t *testing.T) {
	llm := &stubLLM{reply: "unused"}
	holder := readyHolder(t, llm)
	uc := NewUsecase(holder, llm, nil, zap.NewNop())

	for _, query := range []string{"", "   ", "\n\t"} {
		_, err := uc.Ask(context.Background(), &entity.AskRequest{Query: query})
		assert.ErrorIs(t, err, entity.ErrEmptyQuery)
	}
	// rejected before any model call
	assert.Zero(t, llm.calls)
}

func TestAsk_InvalidConversationID(t *testing.T) {
	llm := &stubLLM{reply: "unused"}
	uc := NewUsecase(readyHolder(t, llm), llm, nil, zap.NewNop())

	_, err := uc.Ask(context.Background(), &entity.AskRequest{
		Query:          "hello",
		ConversationID: "not-a-uuid",
	})
	assert.ErrorIs(t, err, entity.ErrInvalidConversation)
	assert.Zero(t, llm.calls)
}

func TestAsk_NotReady(t *testing.T) {
	llm := &stubLLM{reply: "unused"}
	uc := NewUsecase(pipeline.NewHolder(), llm, nil, zap.NewNop())

	_, err := uc.Ask(context.Background(), &entity.AskRequest{Query: "hello"})
	assert.ErrorIs(t, err, entity.ErrPipelineNotReady)
}

func TestAsk_ConversationIDEchoedAndMemoryKeyed(t *testing.T) {
	llm := &stubLLM{reply: "prose answer"}
	holder := readyHolder(t, llm)
	uc := NewUsecase(holder, llm, nil, zap.NewNop())

	first, err := uc.Ask(context.Background(), &entity.AskRequest{Query: "hello"})
	require.NoError(t, err)

	second, err := uc.Ask(context.Background(), &entity.AskRequest{
		Query:          "and again",
		ConversationID: first.ConversationID,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID, second.ConversationID)

	chain := holder.Current()
	assert.Equal(t, 2, chain.Memories.Get(first.ConversationID).Turns())
	assert.Equal(t, 1, chain.Memories.Len())
}

func TestAsk_UpstreamFailureLeavesMemoryUntouched(t *testing.T) {
	llm := &stubLLM{err: entity.ErrUpstream}
	holder := readyHolder(t, llm)
	repo := &recordingTurnRepo{}
	uc := NewUsecase(holder, llm, repo, zap.NewNop())

	conversationID := "7f1aa639-10a2-4829-9b2f-9f6f2fbb2e1c"
	_, err := uc.Ask(context.Background(), &entity.AskRequest{
		Query:          "hello",
		ConversationID: conversationID,
	})
	assert.ErrorIs(t, err, entity.ErrUpstream)

	chain := holder.Current()
	assert.Zero(t, chain.Memories.Get(conversationID).Turns())
	assert.Empty(t, repo.turns)
}

func TestAsk_TurnRepoFailureDoesNotFailTurn(t *testing.T) {
	llm := &stubLLM{reply: "prose answer"}
	repo := &recordingTurnRepo{err: errors.New("db unavailable")}
	uc := NewUsecase(readyHolder(t, llm), llm, repo, zap.NewNop())

	resp, err := uc.Ask(context.Background(), &entity.AskRequest{Query: "hello"})
	require.NoError(t, err)
	assert.NotNil(t, resp.Answer)
}

func TestAsk_SummaryFlowsIntoPrompt(t *testing.T) {
	llm := &stubLLM{reply: "summary of previous turns"}
	holder := readyHolder(t, llm)
	uc := NewUsecase(holder, llm, nil, zap.NewNop())

	first, err := uc.Ask(context.Background(), &entity.AskRequest{Query: "hello"})
	require.NoError(t, err)

	_, err = uc.Ask(context.Background(), &entity.AskRequest{
		Query:          "follow-up",
		ConversationID: first.ConversationID,
	})
	require.NoError(t, err)

	chat := llm.lastChatCall()
	require.Len(t, chat, 2)
	assert.Contains(t, chat[1].Content, "summary of previous turns")
}
