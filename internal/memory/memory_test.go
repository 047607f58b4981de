package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbuddy/chat-backend/internal/entity"
)

type stubSummarizer struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (s *stubSummarizer) ChatCompletion(_ context.Context, messages []entity.ChatMessage) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(messages) > 0 {
		s.prompts = append(s.prompts, messages[len(messages)-1].Content)
	}
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func TestMemory_UpdateFoldsSummary(t *testing.T) {
	sum := &stubSummarizer{reply: "  student asked about vectors  "}
	m := NewMemory(sum)

	require.Empty(t, m.Summary())
	require.Zero(t, m.Turns())

	m.Update(context.Background(), "what are vectors?", "arrows with magnitude")

	assert.Equal(t, "student asked about vectors", m.Summary())
	assert.Equal(t, 1, m.Turns())

	require.Len(t, sum.prompts, 1)
	assert.Contains(t, sum.prompts[0], "what are vectors?")
	assert.Contains(t, sum.prompts[0], "arrows with magnitude")
	assert.Contains(t, sum.prompts[0], "(none)")
}

func TestMemory_PriorSummaryInPrompt(t *testing.T) {
	sum := &stubSummarizer{reply: "first summary"}
	m := NewMemory(sum)

	m.Update(context.Background(), "q1", "a1")
	sum.reply = "second summary"
	m.Update(context.Background(), "q2", "a2")

	require.Len(t, sum.prompts, 2)
	assert.Contains(t, sum.prompts[1], "first summary")
	assert.Equal(t, "second summary", m.Summary())
	assert.Equal(t, 2, m.Turns())
}

func TestMemory_FailureKeepsPriorSummary(t *testing.T) {
	sum := &stubSummarizer{reply: "good summary"}
	m := NewMemory(sum)
	m.Update(context.Background(), "q1", "a1")

	sum.mu.Lock()
	sum.err = errors.New("model down")
	sum.mu.Unlock()
	m.Update(context.Background(), "q2", "a2")

	assert.Equal(t, "good summary", m.Summary())
	assert.Equal(t, 2, m.Turns())
}

func TestStore_KeyedIsolation(t *testing.T) {
	s := NewStore(&stubSummarizer{reply: "summary a"}, time.Minute, time.Minute)

	a := s.Get("conv-a")
	b := s.Get("conv-b")
	require.NotSame(t, a, b)

	a.Update(context.Background(), "q", "a")
	assert.Equal(t, 1, a.Turns())
	assert.Zero(t, b.Turns())
	assert.Equal(t, 2, s.Len())
}

func TestStore_SameKeySameMemory(t *testing.T) {
	s := NewStore(&stubSummarizer{}, time.Minute, time.Minute)

	assert.Same(t, s.Get("conv-a"), s.Get("conv-a"))
}

func TestStore_ConcurrentGetSingleMemory(t *testing.T) {
	s := NewStore(&stubSummarizer{}, time.Minute, time.Minute)

	const workers = 16
	results := make([]*Memory, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.Get("conv-a")
		}(i)
	}
	wg.Wait()

	stored := s.Get("conv-a")
	for i := 1; i < workers; i++ {
		// every caller that re-reads the key converges on the stored memory
		assert.Same(t, stored, s.Get("conv-a"), "worker %d", i)
	}
	assert.Equal(t, 1, s.Len())
}

func TestStore_Expiry(t *testing.T) {
	s := NewStore(&stubSummarizer{}, 20*time.Millisecond, 5*time.Millisecond)

	first := s.Get("conv-a")
	time.Sleep(60 * time.Millisecond)
	second := s.Get("conv-a")

	assert.NotSame(t, first, second)
}
