package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/campusbuddy/chat-backend/internal/entity"
	"github.com/campusbuddy/chat-backend/internal/pkg/logger"
	"github.com/campusbuddy/chat-backend/internal/pkg/response"
)

type Handler struct {
	usecase ChatUsecase
	status  PipelineStatus
}

func NewHandler(usecase ChatUsecase, status PipelineStatus) *Handler {
	return &Handler{
		usecase: usecase,
		status:  status,
	}
}

// Ask handles POST /ask/
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Ask")

	var req entity.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctxzap.Warn(ctx, "failed to decode ask request", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.usecase.Ask(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, resp)
}

// Root handles GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	status := "not_loaded"
	if h.status.Ready() {
		status = "loaded"
	}

	response.Success(w, &entity.StatusResponse{
		Message:        "CampusBuddy chat backend is running",
		PipelineStatus: status,
		PDFExists:      h.status.DocumentExists(),
	})
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, &entity.HealthResponse{
		Status:         "healthy",
		PipelineLoaded: h.status.Ready(),
		PDFExists:      h.status.DocumentExists(),
		Timestamp:      time.Now().UTC(),
	})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrEmptyQuery), errors.Is(err, entity.ErrInvalidConversation):
		ctxzap.Warn(ctx, "ask validation failed", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrPipelineNotReady):
		ctxzap.Warn(ctx, "pipeline not ready")
		response.Error(w, http.StatusServiceUnavailable, "no document has been processed yet, upload one first")
	case errors.Is(err, entity.ErrUpstreamTimeout):
		ctxzap.Error(ctx, "upstream model call timed out", zap.Error(err))
		response.Error(w, http.StatusGatewayTimeout, "the model took too long to answer, try again")
	case errors.Is(err, entity.ErrUpstream):
		ctxzap.Error(ctx, "upstream model call failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "the model service is unavailable, try again later")
	default:
		ctxzap.Error(ctx, "ask failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
