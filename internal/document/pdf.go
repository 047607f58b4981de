package document

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/campusbuddy/chat-backend/internal/entity"
)

// ExtractPages returns the text of every page of the PDF at path, in page
// order. A document with no extractable text at all is an error; individual
// empty pages are kept so page numbers stay aligned.
func ExtractPages(path string) ([]string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	hasText := false
	for n := 0; n < doc.NumPage(); n++ {
		text, err := doc.Text(n)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", n+1, err)
		}
		if strings.TrimSpace(text) != "" {
			hasText = true
		}
		pages = append(pages, text)
	}

	if !hasText {
		return nil, entity.ErrEmptyDocument
	}
	return pages, nil
}

// Checksum returns a stable identifier for the document content, used as
// the chunk DocumentID and for idempotent rebuild detection.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash document: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil))[:16], nil
}
