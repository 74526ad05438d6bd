package handlers

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/salutethegenius/bahamasopendata/internal/metrics"
	"github.com/salutethegenius/bahamasopendata/internal/pipeline"
	"github.com/salutethegenius/bahamasopendata/internal/registry"
	"github.com/salutethegenius/bahamasopendata/pkg/logging"
)

// maxUploadBytes caps a single document upload at 100 MB.
const maxUploadBytes = 100 << 20

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

type DocumentsHandler struct {
	registry *registry.Registry
	pipeline *pipeline.Pipeline
	rawDir   string
	log      *logging.Logger
}

func NewDocumentsHandler(reg *registry.Registry, pipe *pipeline.Pipeline, rawDir string) *DocumentsHandler {
	return &DocumentsHandler{
		registry: reg,
		pipeline: pipe,
		rawDir:   rawDir,
		log:      logging.New("documents_handler"),
	}
}

// List returns every registered document with its stage statuses.
//
// @Summary      List registered documents
// @Produce      json
// @Success      200 {array} document.Record
// @Router       /api/documents [get]
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.registry.List(r.Context())
	if err != nil {
		h.log.Error("list documents", "error", err)
		http.Error(w, "failed to list documents", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Upload registers an uploaded document and kicks off processing.
// Re-uploading identical bytes returns the existing record.
//
// @Summary      Upload a document
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "document file"
// @Success      201 {object} document.Record
// @Success      200 {object} document.Record "duplicate upload"
// @Failure      400 {string} string "bad request"
// @Router       /api/documents [post]
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file form field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}
	if len(raw) == 0 {
		http.Error(w, "uploaded file is empty", http.StatusBadRequest)
		return
	}

	filename := safeFilename(header.Filename)
	if filename == "" {
		http.Error(w, "invalid filename", http.StatusBadRequest)
		return
	}

	rec, duplicate, err := h.registry.Register(r.Context(), filename, r.FormValue("source_url"), raw)
	if err != nil {
		h.log.Error("register upload", "error", err, "filename", filename)
		http.Error(w, "failed to register document", http.StatusInternalServerError)
		return
	}
	if duplicate {
		metrics.CountDuplicateUpload()
		writeJSON(w, http.StatusOK, rec)
		return
	}
	metrics.CountRegisteredDocument()

	if err := os.WriteFile(filepath.Join(h.rawDir, filename), raw, 0o644); err != nil {
		h.log.Error("save upload", "error", err, "filename", filename)
		http.Error(w, "failed to store document", http.StatusInternalServerError)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := h.pipeline.Process(ctx, rec); err != nil {
			h.log.Error("background processing", "error", err, "hash", rec.Hash)
		}
	}()

	writeJSON(w, http.StatusCreated, rec)
}

// safeFilename strips path components and characters that could escape
// the raw directory.
func safeFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return unsafeFilenameChars.ReplaceAllString(base, "_")
}
