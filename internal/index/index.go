package index

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/campusbuddy/chat-backend/internal/entity"
)

// Index is an in-process vector index over one ingestion run. It is
// immutable after construction: a rebuild produces a whole new Index and
// the previous one is discarded, never mutated.
type Index struct {
	meta    Meta
	chunks  []entity.Chunk
	vectors [][]float64
}

// Meta describes the ingestion run that produced the index. The artifact is
// only valid for the embedding model recorded here.
type Meta struct {
	EmbeddingModel   string `json:"embedding_model"`
	Dimension        int    `json:"dimension"`
	DocumentChecksum string `json:"document_checksum"`
	ChunkCount       int    `json:"chunk_count"`
	CreatedAt        string `json:"created_at"`
}

// Candidate is a search hit. The vector is retained so callers can run
// diversity re-ranking over the candidate pool.
type Candidate struct {
	Chunk  entity.Chunk
	Score  float64
	Vector []float64
}

// New builds an index from parallel chunk and vector slices. Vectors are
// L2-normalized in place so cosine similarity reduces to a dot product.
func New(meta Meta, chunks []entity.Chunk, vectors [][]float64) (*Index, error) {
	if len(chunks) != len(vectors) {
		return nil, errors.New("chunks and vectors length mismatch")
	}
	for i, v := range vectors {
		if len(v) != meta.Dimension {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), meta.Dimension)
		}
		normalize(v)
	}
	meta.ChunkCount = len(chunks)
	return &Index{meta: meta, chunks: chunks, vectors: vectors}, nil
}

// Meta returns the metadata of the ingestion run behind this index.
func (ix *Index) Meta() Meta { return ix.meta }

// Len returns the number of indexed chunks.
func (ix *Index) Len() int { return len(ix.chunks) }

// Search returns up to k nearest chunks by cosine similarity, most similar
// first. An empty index yields an empty result, which is a valid state.
func (ix *Index) Search(query []float64, k int) ([]Candidate, error) {
	if len(ix.vectors) == 0 {
		return nil, nil
	}
	if len(query) != ix.meta.Dimension {
		return nil, fmt.Errorf("query dimension %d, want %d", len(query), ix.meta.Dimension)
	}
	if k <= 0 {
		return nil, nil
	}

	q := make([]float64, len(query))
	copy(q, query)
	normalize(q)

	candidates := make([]Candidate, len(ix.vectors))
	for i, v := range ix.vectors {
		candidates[i] = Candidate{
			Chunk:  ix.chunks[i],
			Score:  dot(v, q),
			Vector: v,
		}
	}

	// Stable tie-break on chunk index keeps repeated searches deterministic.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Chunk.Index < candidates[j].Chunk.Index
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	return candidates[:k], nil
}

// Similarity returns the cosine similarity of two L2-normalized vectors.
func Similarity(a, b []float64) float64 {
	return dot(a, b)
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func normalize(v []float64) {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] /= norm
	}
}
