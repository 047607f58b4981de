package pipeline

import (
	"sync/atomic"
	"time"

	"github.com/campusbuddy/chat-backend/internal/index"
	"github.com/campusbuddy/chat-backend/internal/memory"
	"github.com/campusbuddy/chat-backend/internal/retriever"
)

// Chain bundles one index snapshot, one retriever configuration and one
// conversation-memory store. A rebuild constructs an entirely new Chain in
// isolation and publishes it through the Holder; chains are never mutated
// after publication.
type Chain struct {
	Index     *index.Index
	Retriever *retriever.Retriever
	Memories  *memory.Store
	BuiltAt   time.Time
}

// Holder is the single piece of mutable shared state: the reference to the
// current chain. Reads take no lock; publication is an atomic pointer swap,
// so an in-flight question is served entirely by the old chain or entirely
// by the new one.
type Holder struct {
	current atomic.Pointer[Chain]
}

func NewHolder() *Holder { return &Holder{} }

// Current returns the published chain, or nil when no document has been
// ingested yet.
func (h *Holder) Current() *Chain {
	return h.current.Load()
}

// Publish atomically replaces the current chain.
func (h *Holder) Publish(c *Chain) {
	h.current.Store(c)
}

// Ready reports whether a chain is published.
func (h *Holder) Ready() bool {
	return h.current.Load() != nil
}
