package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/campusbuddy/chat-backend/internal/entity"
)

const (
	metaFile = "meta.json"
	dataFile = "index.json"
)

type indexData struct {
	Chunks  []entity.Chunk `json:"chunks"`
	Vectors [][]float64    `json:"vectors"`
}

// Save persists the index as an artifact pair under dir. The data file is
// written first and the metadata last, so a directory with valid metadata
// always refers to complete data.
func Save(ix *Index, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	data, err := json.Marshal(indexData{Chunks: ix.chunks, Vectors: ix.vectors})
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, dataFile), data, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	meta, err := json.Marshal(ix.meta)
	if err != nil {
		return fmt.Errorf("encode index meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metaFile), meta, 0o644); err != nil {
		return fmt.Errorf("write index meta: %w", err)
	}

	return nil
}

// Load reads a persisted index from dir. The artifact must have been built
// with embeddingModel; a mismatch returns entity.ErrIndexMismatch so the
// caller can fall back to a full rebuild instead of mixing models.
func Load(dir, embeddingModel string) (*Index, error) {
	metaBytes, err := os.ReadFile(filepath.Join(dir, metaFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("read index meta: %w", err)
	}

	var meta Meta
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrIndexCorrupt, err)
	}

	if meta.EmbeddingModel != embeddingModel {
		return nil, fmt.Errorf("%w: artifact has %q, configured %q",
			entity.ErrIndexMismatch, meta.EmbeddingModel, embeddingModel)
	}

	dataBytes, err := os.ReadFile(filepath.Join(dir, dataFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrIndexCorrupt, err)
	}

	var data indexData
	if err := json.Unmarshal(dataBytes, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrIndexCorrupt, err)
	}

	if len(data.Chunks) != len(data.Vectors) || len(data.Chunks) != meta.ChunkCount {
		return nil, fmt.Errorf("%w: chunk/vector counts do not match metadata", entity.ErrIndexCorrupt)
	}

	return New(meta, data.Chunks, data.Vectors)
}
