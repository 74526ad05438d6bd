package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/salutethegenius/bahamasopendata/internal/domain/answer"
	"github.com/salutethegenius/bahamasopendata/internal/domain/document"
	"github.com/salutethegenius/bahamasopendata/internal/pipeline"
	"github.com/salutethegenius/bahamasopendata/internal/pipeline/extract"
	"github.com/salutethegenius/bahamasopendata/internal/pipeline/indexer"
	"github.com/salutethegenius/bahamasopendata/internal/rag"
	"github.com/salutethegenius/bahamasopendata/internal/rag/vectordb"
	"github.com/salutethegenius/bahamasopendata/internal/registry"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1}, nil
}

func (stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{1}
	}
	return vectors, nil
}

type stubIndex struct{}

func (stubIndex) EnsureCollection(ctx context.Context) error { return nil }

func (stubIndex) Upsert(ctx context.Context, e []vectordb.Entry) error { return nil }

func (stubIndex) Query(ctx context.Context, v []float32, topK int, fy string) ([]vectordb.Match, error) {
	return []vectordb.Match{{
		ID: "budget_chunk_0",
		Metadata: vectordb.Metadata{
			Document:   "budget.pdf",
			PageNumber: 3,
			Content:    "Education receives $450 million.",
		},
	}}, nil
}

type stubProvider struct{}

func (stubProvider) Complete(ctx context.Context, sys, user string) (string, error) {
	return `{"answer": "Education receives $450 million.", "confidence": 0.9, "source_indices": [1]}`, nil
}

func TestAsk(t *testing.T) {
	h := NewAskHandler(rag.NewService(stubEmbedder{}, stubIndex{}, stubProvider{}))

	body := bytes.NewBufferString(`{"question": "How much does education receive?", "fiscal_year": "2024/25"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/ask", body)
	w := httptest.NewRecorder()

	h.Ask(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var got answer.Answer
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Answer != "Education receives $450 million." {
		t.Errorf("Answer = %q", got.Answer)
	}
	if len(got.Citations) != 1 || got.Citations[0].Page != 3 {
		t.Errorf("Citations = %+v", got.Citations)
	}
}

func TestAsk_BadRequests(t *testing.T) {
	h := NewAskHandler(rag.NewService(stubEmbedder{}, stubIndex{}, stubProvider{}))

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"question"`},
		{"missing question", `{}`},
		{"blank question", `{"question": "   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.Ask(w, req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func newDocumentsHandler(t *testing.T) (*DocumentsHandler, *registry.Registry, string) {
	t.Helper()
	rawDir := t.TempDir()
	reg := registry.New(registry.NewMemoryStore())
	pipe := pipeline.New(reg, extract.New(), indexer.New(stubEmbedder{}, stubIndex{}), rawDir, t.TempDir())
	return NewDocumentsHandler(reg, pipe, rawDir), reg, rawDir
}

func multipartUpload(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	h, reg, rawDir := newDocumentsHandler(t)

	w := httptest.NewRecorder()
	h.Upload(w, multipartUpload(t, "statement.txt", []byte("Recurrent expenditure text.")))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var rec document.Record
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Hash == "" {
		t.Error("record has no hash")
	}
	if _, err := os.Stat(filepath.Join(rawDir, "statement.txt")); err != nil {
		t.Errorf("uploaded file not saved: %v", err)
	}

	// processing runs in the background; wait for the embedding stage
	deadline := time.Now().Add(5 * time.Second)
	for {
		stored, _, err := reg.Lookup(context.Background(), rec.Hash)
		if err != nil {
			t.Fatal(err)
		}
		if stored.Embedding == document.StatusSuccess {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("document never finished processing: %+v", stored)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestUpload_Duplicate(t *testing.T) {
	h, _, _ := newDocumentsHandler(t)
	content := []byte("same bytes")

	w := httptest.NewRecorder()
	h.Upload(w, multipartUpload(t, "first.txt", content))
	if w.Code != http.StatusCreated {
		t.Fatalf("first upload status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.Upload(w, multipartUpload(t, "second.txt", content))
	if w.Code != http.StatusOK {
		t.Errorf("duplicate upload status = %d, want 200", w.Code)
	}

	var rec document.Record
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Filename != "first.txt" {
		t.Errorf("duplicate returned %q, want the original record", rec.Filename)
	}
}

func TestUpload_MissingFile(t *testing.T) {
	h, _, _ := newDocumentsHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader("not multipart"))
	w := httptest.NewRecorder()

	h.Upload(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestList(t *testing.T) {
	h, reg, _ := newDocumentsHandler(t)
	if _, _, err := reg.Register(context.Background(), "a.pdf", "", []byte("a")); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var records []document.Record
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Filename != "a.pdf" {
		t.Errorf("records = %+v", records)
	}
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"budget 2024.pdf", "budget_2024.pdf"},
		{"../../etc/passwd", "passwd"},
		{"report(final).pdf", "report_final_.pdf"},
		{"plain.pdf", "plain.pdf"},
	}

	for _, tt := range tests {
		if got := safeFilename(tt.in); got != tt.want {
			t.Errorf("safeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
