package validator

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/campusbuddy/chat-backend/internal/config"
	"github.com/campusbuddy/chat-backend/internal/entity"
)

// AllowedExtensions lists document types the ingestion pipeline understands.
var AllowedExtensions = map[string]bool{
	".pdf": true,
}

// Validator validates document uploads
type Validator struct {
	cfg config.DocumentConfig
}

func NewUploadValidator(cfg config.DocumentConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateUpload checks a single uploaded document header before any bytes
// are written to disk. Violations leave the currently published chain
// untouched.
func (v *Validator) ValidateUpload(fh *multipart.FileHeader) error {
	if fh == nil {
		return entity.ErrMissingFile
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if _, ok := AllowedExtensions[ext]; !ok {
		return fmt.Errorf("%w: %q (allowed: pdf)", entity.ErrInvalidExtension, ext)
	}

	if fh.Size == 0 {
		return fmt.Errorf("%w: %s", entity.ErrEmptyFile, fh.Filename)
	}

	if fh.Size > v.cfg.MaxFileSize {
		return fmt.Errorf("%w: file %q is %d bytes (max %d)", entity.ErrFileTooLarge, fh.Filename, fh.Size, v.cfg.MaxFileSize)
	}

	return nil
}

// MaxFileSize exposes the configured upload cap for multipart parsing.
func (v *Validator) MaxFileSize() int64 {
	return v.cfg.MaxFileSize
}
