package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/logger"
)

const (
	// multipartMemory is the part of an upload held in memory; the rest spills to temp files.
	multipartMemory = 32 << 20

	// retryAfterSeconds is sent with answers that failed on a transient upstream error.
	retryAfterSeconds = "5"
)

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": welcomeMessage})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Upload exceeds %d bytes", s.maxUploadSize))
			return
		}
		if errors.Is(err, http.ErrNotMultipart) {
			writeError(w, http.StatusBadRequest, "No files uploaded")
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid upload: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "No files uploaded")
		return
	}

	uploads := make([]domain.FileUpload, 0, len(headers))
	for _, fh := range headers {
		upload, err := readUpload(fh)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		uploads = append(uploads, upload)
	}

	result, err := s.ports.Ingest.Ingest(r.Context(), uploads)
	if err != nil {
		logger.Error("upload: %v", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to process documents: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func readUpload(fh *multipart.FileHeader) (domain.FileUpload, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.FileUpload{}, fmt.Errorf("reading %s: %w", fh.Filename, err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return domain.FileUpload{}, fmt.Errorf("reading %s: %w", fh.Filename, err)
	}
	return domain.FileUpload{Filename: fh.Filename, Content: content}, nil
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	query := domain.Query{TopK: domain.DefaultTopK}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&query); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(query.Text) == "" {
		writeError(w, http.StatusBadRequest, "Query cannot be empty")
		return
	}
	if query.TopK <= 0 {
		writeError(w, http.StatusBadRequest, "top_k must be positive")
		return
	}

	result := s.ports.Query.AnswerQuery(r.Context(), query)
	if !result.Success && result.Retryable {
		w.Header().Set("Retry-After", retryAfterSeconds)
		writeJSON(w, http.StatusServiceUnavailable, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if s.ports.Document == nil {
		writeError(w, http.StatusServiceUnavailable, "Document catalogue not available")
		return
	}

	docs, err := s.ports.Document.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to list documents: %v", err))
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	if s.ports.Document == nil {
		writeError(w, http.StatusServiceUnavailable, "Document catalogue not available")
		return
	}

	doc, err := s.ports.Document.Get(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Document not found")
	case err != nil:
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to get document: %v", err))
	default:
		writeJSON(w, http.StatusOK, doc)
	}
}
