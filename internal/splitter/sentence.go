package splitter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/campusbuddy/chat-backend/internal/entity"
)

// SentenceSplitter splits extracted document text into sentence-based
// chunks with overlap between consecutive chunks.
type SentenceSplitter struct {
	sentencesPerChunk int
	overlapSentences  int
	pattern           *regexp.Regexp
}

func NewSentenceSplitter(sentencesPerChunk, overlapSentences int) *SentenceSplitter {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 5
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	if overlapSentences >= sentencesPerChunk {
		overlapSentences = sentencesPerChunk - 1
	}
	return &SentenceSplitter{
		sentencesPerChunk: sentencesPerChunk,
		overlapSentences:  overlapSentences,
		pattern:           regexp.MustCompile(`(?m)(?U)([^.!?\n]+[.!?\n])`),
	}
}

type pagedSentence struct {
	text string
	page int
}

// Split turns extracted page texts into an ordered chunk sequence. A page
// with no sentence-terminating punctuation still yields its trimmed text as
// one sentence. An empty document yields no chunks.
func (s *SentenceSplitter) Split(documentID string, pages []string) []entity.Chunk {
	var sentences []pagedSentence
	for pageNum, page := range pages {
		found := s.pattern.FindAllString(page, -1)
		if len(found) == 0 {
			trimmed := strings.TrimSpace(page)
			if trimmed == "" {
				continue
			}
			found = []string{trimmed}
		}
		for _, sent := range found {
			sent = strings.TrimSpace(sent)
			if sent == "" {
				continue
			}
			sentences = append(sentences, pagedSentence{text: sent, page: pageNum + 1})
		}
	}
	if len(sentences) == 0 {
		return nil
	}

	var chunks []entity.Chunk
	i := 0
	idx := 0
	for i < len(sentences) {
		end := i + s.sentencesPerChunk
		if end > len(sentences) {
			end = len(sentences)
		}

		parts := make([]string, 0, end-i)
		for _, sent := range sentences[i:end] {
			parts = append(parts, sent.text)
		}

		chunks = append(chunks, entity.Chunk{
			ID:         fmt.Sprintf("%s:%d", documentID, idx),
			DocumentID: documentID,
			Index:      idx,
			Page:       sentences[i].page,
			Text:       strings.Join(parts, " "),
		})

		if end == len(sentences) {
			break
		}
		i = end - s.overlapSentences
		idx++
	}
	return chunks
}
