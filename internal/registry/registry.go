// Package registry is the durable record of every ingested source
// document, keyed by the SHA-256 of its raw bytes. The hash is the
// dedup key for the whole pipeline: a file registered twice comes back
// as the same record, and per-stage statuses gate re-processing.
package registry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/salutethegenius/bahamasopendata/internal/domain/document"
	"github.com/salutethegenius/bahamasopendata/pkg/logging"
)

// RecordStore is the persistence contract: point lookup by hash, point
// write of a whole record, and a listing for pipeline sweeps.
type RecordStore interface {
	Get(ctx context.Context, hash string) (document.Record, bool, error)
	Put(ctx context.Context, rec document.Record) error
	List(ctx context.Context) ([]document.Record, error)
}

// Registry owns registration and stage bookkeeping. Every mutation is
// persisted immediately so an interrupted pipeline loses at most the
// stage that was in flight.
type Registry struct {
	store RecordStore
	log   *logging.Logger
}

func New(store RecordStore) *Registry {
	return &Registry{
		store: store,
		log:   logging.New("registry"),
	}
}

// Register computes the content hash of raw and either returns the
// existing record untouched or creates a new one with pending stage
// statuses. The bool reports whether the document was already known.
func (r *Registry) Register(ctx context.Context, filename, sourceURL string, raw []byte) (document.Record, bool, error) {
	sum := sha256.Sum256(raw)
	hash := hex.EncodeToString(sum[:])

	if existing, found, err := r.store.Get(ctx, hash); err != nil {
		return document.Record{}, false, fmt.Errorf("registry lookup: %w", err)
	} else if found {
		r.log.Debug("document already registered", "hash", hash, "filename", existing.Filename)
		return existing, true, nil
	}

	name := document.Record{Filename: filename}.BaseName()
	rec := document.Record{
		Hash:         hash,
		Filename:     filename,
		Name:         name,
		SourceURL:    sourceURL,
		Type:         document.InferType(name),
		FiscalYear:   document.InferFiscalYear(name),
		SizeBytes:    int64(len(raw)),
		RegisteredAt: time.Now().UTC(),
		Extraction:   document.StatusPending,
		Embedding:    document.StatusPending,
	}

	if err := r.store.Put(ctx, rec); err != nil {
		return document.Record{}, false, fmt.Errorf("registry put: %w", err)
	}

	r.log.Info("document registered", "hash", hash, "filename", filename, "type", rec.Type, "fiscal_year", rec.FiscalYear)
	return rec, false, nil
}

// AdvanceStage writes the outcome of one stage to the record and
// persists it. Stages are independent: an extraction success says
// nothing about embedding.
func (r *Registry) AdvanceStage(ctx context.Context, rec *document.Record, stage document.Stage, result document.StageResult) error {
	switch stage {
	case document.StageExtraction:
		rec.Extraction = result.Status
	case document.StageChunking:
		rec.ChunkCount = result.Count
	case document.StageEmbedding:
		rec.Embedding = result.Status
		rec.VectorCount = result.Count
		rec.EmbeddedAt = time.Now().UTC()
	default:
		return fmt.Errorf("unknown stage %q", stage)
	}

	if err := r.store.Put(ctx, *rec); err != nil {
		return fmt.Errorf("persist stage %s: %w", stage, err)
	}
	r.log.Debug("stage advanced", "hash", rec.Hash, "stage", stage, "status", result.Status, "count", result.Count)
	return nil
}

// Lookup fetches a record by content hash.
func (r *Registry) Lookup(ctx context.Context, hash string) (document.Record, bool, error) {
	return r.store.Get(ctx, hash)
}

// List returns every registered document.
func (r *Registry) List(ctx context.Context) ([]document.Record, error) {
	return r.store.List(ctx)
}
