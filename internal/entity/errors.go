package entity

import "errors"

// Domain errors
var (
	// Validation errors
	ErrEmptyQuery          = errors.New("query is empty")
	ErrInvalidConversation = errors.New("invalid conversation id")
	ErrMissingFile         = errors.New("file is missing")
	ErrEmptyFile           = errors.New("file is empty")
	ErrFileTooLarge        = errors.New("file too large")
	ErrInvalidExtension    = errors.New("invalid file extension")

	// Pipeline errors
	ErrPipelineNotReady = errors.New("pipeline is not ready")
	ErrDocumentMissing  = errors.New("source document not found")
	ErrEmptyDocument    = errors.New("document contains no extractable text")

	// Upstream errors
	ErrUpstream        = errors.New("upstream model call failed")
	ErrUpstreamTimeout = errors.New("upstream model call timed out")

	// Persistence errors
	ErrIndexCorrupt  = errors.New("index artifact is corrupt")
	ErrIndexMismatch = errors.New("index artifact was built with a different embedding model")
)
