package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/campusbuddy/chat-backend/internal/classify"
	"github.com/campusbuddy/chat-backend/internal/entity"
	"github.com/campusbuddy/chat-backend/internal/pipeline"
	"github.com/campusbuddy/chat-backend/internal/prompt"
	"github.com/campusbuddy/chat-backend/internal/repository"
)

// Usecase orchestrates one question-answering turn: retrieve relevant
// chunks, assemble the prompt, call the chat model, classify the reply and
// fold the turn into conversation memory.
type Usecase struct {
	holder    *pipeline.Holder
	llm       LLMConnector
	assembler *prompt.Assembler
	turnRepo  repository.TurnRepository
	logger    *zap.Logger
}

func NewUsecase(
	holder *pipeline.Holder,
	llm LLMConnector,
	turnRepo repository.TurnRepository,
	logger *zap.Logger,
) *Usecase {
	return &Usecase{
		holder:    holder,
		llm:       llm,
		assembler: prompt.NewAssembler(),
		turnRepo:  turnRepo,
		logger:    logger,
	}
}

// Ask answers one question. Validation errors are rejected before any
// retrieval or remote call; an unavailable pipeline is a distinct not-ready
// failure; upstream failures leave memory unmodified.
func (uc *Usecase) Ask(ctx context.Context, req *entity.AskRequest) (*entity.AskResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, entity.ErrEmptyQuery
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.New().String()
	} else if _, err := uuid.Parse(conversationID); err != nil {
		return nil, fmt.Errorf("%w: conversation_id must be a UUID", entity.ErrInvalidConversation)
	}

	// The chain reference is resolved once: the whole turn is served by
	// this snapshot even if a rebuild publishes a new one mid-flight.
	chain := uc.holder.Current()
	if chain == nil {
		return nil, entity.ErrPipelineNotReady
	}

	start := time.Now()

	results, err := chain.Retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}

	mem := chain.Memories.Get(conversationID)
	messages := uc.assembler.Build(results, mem.Summary(), query)

	reply, err := uc.llm.ChatCompletion(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	reply = strings.TrimSpace(reply)

	result := classify.Classify(reply)

	mem.Update(ctx, query, reply)

	latency := time.Since(start).Milliseconds()

	uc.recordTurn(ctx, &entity.Turn{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Question:       query,
		Answer:         result.Answer,
		CourseLink:     result.CourseLink,
		LatencyMS:      latency,
	})

	ctxzap.Info(ctx, "turn answered",
		zap.String("conversation_id", conversationID),
		zap.Bool("course_link", result.CourseLink != ""),
		zap.Int("retrieved_chunks", len(results)),
		zap.Int("summary_length", len(mem.Summary())),
		zap.Int64("latency_ms", latency),
	)

	resp := &entity.AskResponse{
		ConversationID: conversationID,
		Status:         "success",
	}
	if result.CourseLink != "" {
		resp.CourseLink = &result.CourseLink
	} else {
		resp.Answer = &result.Answer
	}
	return resp, nil
}

// recordTurn persists the turn log. Failures are logged, never surfaced:
// the turn is already answered.
func (uc *Usecase) recordTurn(ctx context.Context, turn *entity.Turn) {
	if uc.turnRepo == nil {
		return
	}
	if err := uc.turnRepo.CreateTurn(ctx, turn); err != nil {
		ctxzap.Warn(ctx, "failed to record turn", zap.Error(err))
	}
}
