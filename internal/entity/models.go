package entity

import "time"

// Chunk is a bounded span of source-document text, the atomic unit of
// retrieval. Chunks are immutable once produced and are superseded wholesale
// on re-ingestion.
type Chunk struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Index      int    `json:"index"`
	Page       int    `json:"page"`
	Text       string `json:"text"`
}

// SearchResult is a matching chunk with its relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Turn is one answered question/reply pair.
type Turn struct {
	ID             string
	ConversationID string
	Question       string
	Answer         string
	CourseLink     string
	LatencyMS      int64
	CreatedAt      time.Time
}

// AskRequest is the body of POST /ask/.
type AskRequest struct {
	Query          string `json:"query"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// AskResponse is the reply to POST /ask/. Exactly one of Answer and
// CourseLink is non-null.
type AskResponse struct {
	Answer         *string `json:"answer"`
	CourseLink     *string `json:"course_link"`
	ConversationID string  `json:"conversation_id"`
	Status         string  `json:"status"`
}

// UploadResponse is the reply to POST /upload/, sent only after the new
// chain is fully published.
type UploadResponse struct {
	Message  string `json:"message"`
	FileSize int64  `json:"file_size"`
	Status   string `json:"status"`
}

// StatusResponse is the reply to GET /.
type StatusResponse struct {
	Message        string `json:"message"`
	PipelineStatus string `json:"pipeline_status"`
	PDFExists      bool   `json:"pdf_exists"`
}

// HealthResponse is the reply to GET /health.
type HealthResponse struct {
	Status         string    `json:"status"`
	PipelineLoaded bool      `json:"pipeline_loaded"`
	PDFExists      bool      `json:"pdf_exists"`
	Timestamp      time.Time `json:"timestamp"`
}

// ErrorResponse is the common error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
