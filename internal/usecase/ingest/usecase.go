package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/campusbuddy/chat-backend/internal/config"
	"github.com/campusbuddy/chat-backend/internal/document"
	"github.com/campusbuddy/chat-backend/internal/entity"
	"github.com/campusbuddy/chat-backend/internal/index"
	"github.com/campusbuddy/chat-backend/internal/memory"
	"github.com/campusbuddy/chat-backend/internal/pipeline"
	"github.com/campusbuddy/chat-backend/internal/pkg/validator"
	"github.com/campusbuddy/chat-backend/internal/retriever"
	"github.com/campusbuddy/chat-backend/internal/splitter"
)

// Usecase rebuilds the retrieval pipeline from the source document and
// publishes the result. The file watcher and the upload endpoint both call
// the same rebuild routine; a mutex serializes rebuilds so two triggers
// never race to publish. On any rebuild failure the previously published
// chain keeps serving.
type Usecase struct {
	mu sync.Mutex

	documentCfg  config.DocumentConfig
	splitterCfg  config.SplitterConfig
	retrieverCfg config.RetrieverConfig
	memoryCfg    config.MemoryConfig

	embeddingModel string

	embedder   Embedder
	summarizer Summarizer
	validator  *validator.Validator
	holder     *pipeline.Holder
	split      *splitter.SentenceSplitter
	logger     *zap.Logger
}

func NewUsecase(
	cfg *config.Config,
	embedder Embedder,
	summarizer Summarizer,
	uploadValidator *validator.Validator,
	holder *pipeline.Holder,
	logger *zap.Logger,
) *Usecase {
	return &Usecase{
		documentCfg:    cfg.DocumentCfg,
		splitterCfg:    cfg.SplitterCfg,
		retrieverCfg:   cfg.RetrieverCfg,
		memoryCfg:      cfg.MemoryCfg,
		embeddingModel: cfg.OpenAICfg.EmbeddingModel,
		embedder:       embedder,
		summarizer:     summarizer,
		validator:      uploadValidator,
		holder:         holder,
		split:          splitter.NewSentenceSplitter(cfg.SplitterCfg.SentencesPerChunk, cfg.SplitterCfg.OverlapSentences),
		logger:         logger,
	}
}

// DocumentPath returns the fixed source-document path.
func (uc *Usecase) DocumentPath() string {
	return uc.documentCfg.Path
}

// Ready reports whether an answer chain is published.
func (uc *Usecase) Ready() bool {
	return uc.holder.Ready()
}

// DocumentExists reports whether the source document is on disk.
func (uc *Usecase) DocumentExists() bool {
	info, err := os.Stat(uc.documentCfg.Path)
	return err == nil && !info.IsDir()
}

// Upload validates the uploaded document, overwrites the fixed source path
// and runs a synchronous rebuild. The caller gets a response only after the
// new chain is fully published. Validation failures leave both the stored
// document and the published chain untouched.
func (uc *Usecase) Upload(ctx context.Context, fh *multipart.FileHeader) (int64, error) {
	if err := uc.validator.ValidateUpload(fh); err != nil {
		return 0, err
	}

	src, err := fh.Open()
	if err != nil {
		return 0, fmt.Errorf("open uploaded file: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(uc.documentCfg.Path), 0o755); err != nil {
		return 0, fmt.Errorf("create document dir: %w", err)
	}

	dst, err := os.Create(uc.documentCfg.Path)
	if err != nil {
		return 0, fmt.Errorf("create document file: %w", err)
	}

	written, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("write document file: %w", err)
	}

	ctxzap.Info(ctx, "document stored", zap.String("path", uc.documentCfg.Path), zap.Int64("bytes", written))

	if err := uc.Rebuild(ctx); err != nil {
		return 0, err
	}

	return written, nil
}

// Rebuild runs the full ingestion sequence: extract, split, embed, build
// index, persist, construct a fresh chain and atomically publish it.
// Every rebuild reprocesses the whole document; there is no delta indexing.
func (uc *Usecase) Rebuild(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	start := time.Now()

	info, err := os.Stat(uc.documentCfg.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return entity.ErrDocumentMissing
		}
		return fmt.Errorf("stat document: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s", entity.ErrEmptyFile, uc.documentCfg.Path)
	}
	if !strings.EqualFold(filepath.Ext(uc.documentCfg.Path), ".pdf") {
		return fmt.Errorf("%w: %s", entity.ErrInvalidExtension, uc.documentCfg.Path)
	}

	checksum, err := document.Checksum(uc.documentCfg.Path)
	if err != nil {
		return err
	}

	pages, err := document.ExtractPages(uc.documentCfg.Path)
	if err != nil {
		return err
	}

	chunks := uc.split.Split(checksum, pages)
	if len(chunks) == 0 {
		return entity.ErrEmptyDocument
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}

	vectors, err := uc.embedder.CreateEmbeddings(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: got %d vectors for %d chunks", entity.ErrUpstream, len(vectors), len(chunks))
	}

	meta := index.Meta{
		EmbeddingModel:   uc.embeddingModel,
		Dimension:        len(vectors[0]),
		DocumentChecksum: checksum,
		CreatedAt:        time.Now().UTC().Format(time.RFC3339),
	}

	ix, err := index.New(meta, chunks, vectors)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	if err := index.Save(ix, uc.documentCfg.IndexDir); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}

	uc.publish(ix)

	ctxzap.Info(ctx, "pipeline rebuilt",
		zap.String("document_checksum", checksum),
		zap.Int("pages", len(pages)),
		zap.Int("chunks", len(chunks)),
		zap.Duration("took", time.Since(start)),
	)

	return nil
}

// LoadOrRebuild restores the pipeline at startup: a persisted index built
// with the configured embedding model is loaded as-is; otherwise, if the
// source document exists, a full rebuild runs. With neither present the
// service starts not-ready and waits for an upload.
func (uc *Usecase) LoadOrRebuild(ctx context.Context) error {
	ix, err := index.Load(uc.documentCfg.IndexDir, uc.embeddingModel)
	if err == nil {
		uc.mu.Lock()
		uc.publish(ix)
		uc.mu.Unlock()
		uc.logger.Info("pipeline restored from persisted index",
			zap.String("document_checksum", ix.Meta().DocumentChecksum),
			zap.Int("chunks", ix.Len()),
		)
		return nil
	}

	if !errors.Is(err, os.ErrNotExist) {
		uc.logger.Warn("persisted index unusable, falling back to rebuild", zap.Error(err))
	}

	if !uc.DocumentExists() {
		uc.logger.Info("no source document found, waiting for upload",
			zap.String("path", uc.documentCfg.Path),
		)
		return nil
	}

	return uc.Rebuild(ctx)
}

// publish swaps in a fresh chain for the given index. Callers must hold the
// rebuild mutex. Conversation memories reset with the chain: re-ingesting
// the source document wipes dialogue history.
func (uc *Usecase) publish(ix *index.Index) {
	chain := &pipeline.Chain{
		Index: ix,
		Retriever: retriever.New(uc.embedder, ix, retriever.Config{
			TopK:   uc.retrieverCfg.TopK,
			FetchK: uc.retrieverCfg.FetchK,
			Lambda: uc.retrieverCfg.MMRLambda,
		}),
		Memories: memory.NewStore(uc.summarizer, uc.memoryCfg.TTL, uc.memoryCfg.CleanupInterval),
		BuiltAt:  time.Now(),
	}
	uc.holder.Publish(chain)
}
