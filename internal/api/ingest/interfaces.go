package ingest

import (
	"context"
	"mime/multipart"
)

// IngestUsecase stores an uploaded document and rebuilds the pipeline.
type IngestUsecase interface {
	Upload(ctx context.Context, fh *multipart.FileHeader) (int64, error)
}
