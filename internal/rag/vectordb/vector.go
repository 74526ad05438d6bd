// Package vectordb defines the vector index contract the pipeline and
// the answer engine share.
package vectordb

import "context"

// Metadata is the payload stored alongside each vector. Content is the
// sanitized snippet, not the full chunk text.
type Metadata struct {
	Document     string
	PageNumber   int
	Content      string
	FiscalYear   string
	DocumentType string
}

// Entry is one chunk ready for upsert. ID is the chunk id, stable
// across re-runs so upserts are idempotent.
type Entry struct {
	ID       string
	Vector   []float32
	Metadata Metadata
}

// Match is one retrieval hit, best first.
type Match struct {
	ID       string
	Score    float32
	Metadata Metadata
}

// Index is the vector store. Query filters by fiscal year when one is
// given; an empty fiscalYear searches everything.
type Index interface {
	EnsureCollection(ctx context.Context) error
	Upsert(ctx context.Context, entries []Entry) error
	Query(ctx context.Context, vector []float32, topK int, fiscalYear string) ([]Match, error)
}
