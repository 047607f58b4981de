package memory

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store keys conversation memories by conversation id so concurrent callers
// never share dialogue history. Idle conversations expire after the TTL.
// One Store lives per answer chain: rebuilding the chain resets all
// conversations, which callers are told about as a documented side effect.
type Store struct {
	cache      *gocache.Cache
	summarizer Summarizer
}

func NewStore(summarizer Summarizer, ttl, cleanupInterval time.Duration) *Store {
	return &Store{
		cache:      gocache.New(ttl, cleanupInterval),
		summarizer: summarizer,
	}
}

// Get returns the memory for the conversation, creating one on first use.
// Each access refreshes the conversation's TTL.
func (s *Store) Get(conversationID string) *Memory {
	if v, ok := s.cache.Get(conversationID); ok {
		m := v.(*Memory)
		s.cache.SetDefault(conversationID, m)
		return m
	}
	m := NewMemory(s.summarizer)
	if err := s.cache.Add(conversationID, m, gocache.DefaultExpiration); err != nil {
		// Lost a concurrent creation race, use the winner.
		if v, ok := s.cache.Get(conversationID); ok {
			return v.(*Memory)
		}
	}
	return m
}

// Len returns the number of live conversations.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}
