package ingest

import (
	"context"
	"errors"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/campusbuddy/chat-backend/internal/entity"
	"github.com/campusbuddy/chat-backend/internal/pkg/logger"
	"github.com/campusbuddy/chat-backend/internal/pkg/response"
)

type Handler struct {
	usecase       IngestUsecase
	maxUploadSize int64
}

func NewHandler(usecase IngestUsecase, maxUploadSize int64) *Handler {
	return &Handler{
		usecase:       usecase,
		maxUploadSize: maxUploadSize,
	}
}

// Upload handles POST /upload/. The rebuild runs synchronously: the caller
// gets a response only after the new chain is published.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Upload")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+1024)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		ctxzap.Warn(ctx, "failed to parse multipart form", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid form data or file too large")
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		ctxzap.Warn(ctx, "no file provided")
		response.Error(w, http.StatusBadRequest, "a file field is required")
		return
	}

	written, err := h.usecase.Upload(ctx, files[0])
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "document ingested", zap.Int64("file_size", written))

	response.Success(w, &entity.UploadResponse{
		Message:  "document processed and pipeline rebuilt",
		FileSize: written,
		Status:   "success",
	})
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrMissingFile),
		errors.Is(err, entity.ErrEmptyFile),
		errors.Is(err, entity.ErrFileTooLarge),
		errors.Is(err, entity.ErrInvalidExtension),
		errors.Is(err, entity.ErrEmptyDocument):
		ctxzap.Warn(ctx, "upload validation failed", zap.Error(err))
		response.Error(w, http.StatusBadRequest, err.Error())
	default:
		ctxzap.Error(ctx, "rebuild failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to rebuild pipeline")
	}
}
