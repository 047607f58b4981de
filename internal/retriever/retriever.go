package retriever

import (
	"context"
	"fmt"

	"github.com/campusbuddy/chat-backend/internal/entity"
	"github.com/campusbuddy/chat-backend/internal/index"
)

// Embedder converts free text into numeric vectors.
type Embedder interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float64, error)
}

// Config fixes the search policy at chain-construction time.
type Config struct {
	// TopK is the number of chunks returned per query.
	TopK int
	// FetchK is the candidate pool size before diversity filtering.
	FetchK int
	// Lambda balances relevance against redundancy: 1 is pure relevance,
	// 0 is pure diversity.
	Lambda float64
}

// Retriever maps a free-text query to the TopK most relevant chunks of one
// index snapshot, diversified with maximal marginal relevance. It has no
// side effects.
type Retriever struct {
	embedder Embedder
	index    *index.Index
	cfg      Config
}

func New(embedder Embedder, ix *index.Index, cfg Config) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = 4
	}
	if cfg.FetchK < cfg.TopK {
		cfg.FetchK = cfg.TopK * 5
	}
	if cfg.Lambda < 0 || cfg.Lambda > 1 {
		cfg.Lambda = 0.5
	}
	return &Retriever{embedder: embedder, index: ix, cfg: cfg}
}

// Retrieve embeds the query and returns up to TopK diversified chunks, most
// relevant first. An empty index yields an empty result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]entity.SearchResult, error) {
	if r.index.Len() == 0 {
		return nil, nil
	}

	vectors, err := r.embedder.CreateEmbeddings(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedder returned no vector for query")
	}

	candidates, err := r.index.Search(vectors[0], r.cfg.FetchK)
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}

	picked := selectMMR(candidates, r.cfg.TopK, r.cfg.Lambda)

	results := make([]entity.SearchResult, 0, len(picked))
	for _, c := range picked {
		results = append(results, entity.SearchResult{Chunk: c.Chunk, Score: c.Score})
	}
	return results, nil
}

// selectMMR picks k candidates by maximal marginal relevance: the closest
// match first, then iteratively the candidate maximizing
// lambda*relevance - (1-lambda)*max similarity to already-picked ones.
func selectMMR(candidates []index.Candidate, k int, lambda float64) []index.Candidate {
	if len(candidates) == 0 {
		return nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	picked := make([]index.Candidate, 0, k)
	remaining := make([]index.Candidate, len(candidates))
	copy(remaining, candidates)

	// Candidates arrive relevance-ordered, so the first pick is the head.
	picked = append(picked, remaining[0])
	remaining = remaining[1:]

	for len(picked) < k && len(remaining) > 0 {
		bestIdx := -1
		bestScore := 0.0
		for i, cand := range remaining {
			maxSim := 0.0
			for _, p := range picked {
				if sim := index.Similarity(cand.Vector, p.Vector); sim > maxSim {
					maxSim = sim
				}
			}
			score := lambda*cand.Score - (1-lambda)*maxSim
			if bestIdx == -1 || score > bestScore {
				bestIdx = i
				bestScore = score
			}
		}
		picked = append(picked, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return picked
}
