package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbuddy/chat-backend/internal/entity"
)

type stubUsecase struct {
	written  int64
	err      error
	filename string
}

func (s *stubUsecase) Upload(_ context.Context, fh *multipart.FileHeader) (int64, error) {
	s.filename = fh.Filename
	if s.err != nil {
		return 0, s.err
	}
	return s.written, nil
}

func newTestRouter(uc IngestUsecase) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(uc, 10<<20))
	return r
}

func doUpload(t *testing.T, router http.Handler, field, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUpload_Success(t *testing.T) {
	uc := &stubUsecase{written: 42}
	router := newTestRouter(uc)

	rec := doUpload(t, router, "file", "syllabus.pdf", []byte("pdf bytes"))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp entity.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.FileSize)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "syllabus.pdf", uc.filename)
}

func TestUpload_MissingFileField(t *testing.T) {
	router := newTestRouter(&stubUsecase{})

	rec := doUpload(t, router, "document", "syllabus.pdf", []byte("pdf bytes"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_NotMultipart(t *testing.T) {
	router := newTestRouter(&stubUsecase{})

	req := httptest.NewRequest(http.MethodPost, "/upload/", bytes.NewReader([]byte("raw")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_ErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"wrong extension", entity.ErrInvalidExtension, http.StatusBadRequest},
		{"empty file", entity.ErrEmptyFile, http.StatusBadRequest},
		{"oversized file", entity.ErrFileTooLarge, http.StatusBadRequest},
		{"no extractable text", entity.ErrEmptyDocument, http.StatusBadRequest},
		{"embedding failure", entity.ErrUpstream, http.StatusInternalServerError},
		{"unexpected failure", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubUsecase{err: tt.err})

			rec := doUpload(t, router, "file", "syllabus.pdf", []byte("pdf bytes"))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}
