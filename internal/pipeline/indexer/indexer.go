// Package indexer converts chunks to vectors in rate-limited batches
// and upserts them into the vector index. The whole stage is
// best-effort: a failed batch is logged and skipped, never fatal,
// because re-running the indexer is idempotent per chunk id.
package indexer

import (
	"context"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/salutethegenius/bahamasopendata/internal/config"
	"github.com/salutethegenius/bahamasopendata/internal/domain/document"
	"github.com/salutethegenius/bahamasopendata/internal/metrics"
	"github.com/salutethegenius/bahamasopendata/internal/pipeline/chunker"
	"github.com/salutethegenius/bahamasopendata/internal/rag/embedding"
	"github.com/salutethegenius/bahamasopendata/internal/rag/embedding/openaiembed"
	"github.com/salutethegenius/bahamasopendata/internal/rag/vectordb"
	"github.com/salutethegenius/bahamasopendata/pkg/logging"
)

// Result reports how an indexing run went. Status is no_chunks or
// success; a partially indexed document is still a success with a
// reduced count.
type Result struct {
	Status        document.StageStatus
	EmbeddedCount int
}

type Indexer struct {
	embedder embedding.Embedder
	index    vectordb.Index
	limiter  *rate.Limiter
	log      *logging.Logger

	embedBatchSize  int
	upsertBatchSize int
}

func New(embedder embedding.Embedder, index vectordb.Index) *Indexer {
	return &Indexer{
		embedder: embedder,
		index:    index,
		limiter:  rate.NewLimiter(rate.Every(config.EmbedBatchDelay), 1),
		log:      logging.New("indexer"),

		embedBatchSize:  config.EmbedBatchSize,
		upsertBatchSize: config.UpsertBatchSize,
	}
}

// Index embeds the document's chunks and upserts the vectors. Batches
// that fail are dropped and counted against the document, processing
// continues with the next batch.
func (ix *Indexer) Index(ctx context.Context, rec document.Record, chunks []chunker.Chunk) Result {
	if len(chunks) == 0 {
		return Result{Status: document.StatusNoChunks}
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding_index", time.Since(start)) }()

	log := ix.log.With("document", rec.Filename, "chunks", len(chunks))

	var entries []vectordb.Entry
	for i := 0; i < len(chunks); i += ix.embedBatchSize {
		if err := ix.limiter.Wait(ctx); err != nil {
			log.Error("indexing interrupted", "error", err)
			break
		}

		batch := chunks[i:min(i+ix.embedBatchSize, len(chunks))]
		vectors, err := ix.embedBatch(ctx, batch)
		if err != nil {
			log.Error("embedding batch failed, skipping", "offset", i, "size", len(batch), "error", err)
			continue
		}

		for j, chunk := range batch {
			entries = append(entries, vectordb.Entry{
				ID:     Sanitize(chunk.ID),
				Vector: vectors[j],
				Metadata: vectordb.Metadata{
					Document:     Sanitize(rec.Filename),
					PageNumber:   chunk.PageNumber,
					Content:      Sanitize(truncate(chunk.Content, config.SnippetMaxChars)),
					FiscalYear:   Sanitize(rec.FiscalYear),
					DocumentType: Sanitize(string(rec.Type)),
				},
			})
		}
	}

	embedded := 0
	for i := 0; i < len(entries); i += ix.upsertBatchSize {
		batch := entries[i:min(i+ix.upsertBatchSize, len(entries))]
		if err := ix.upsertBatch(ctx, batch); err != nil {
			log.Error("upsert batch failed, skipping", "offset", i, "size", len(batch), "error", err)
			continue
		}
		embedded += len(batch)
	}

	if embedded < len(chunks) {
		log.Warn("document partially indexed", "embedded", embedded)
	} else {
		log.Info("document indexed", "embedded", embedded)
	}
	return Result{Status: document.StatusSuccess, EmbeddedCount: embedded}
}

// embedBatch calls the embedding service, retrying once after a
// rate-limit rejection.
func (ix *Indexer) embedBatch(ctx context.Context, batch []chunker.Chunk) ([][]float32, error) {
	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.Content
	}

	vectors, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil && openaiembed.IsRateLimited(err) {
		ix.log.Warn("rate limited, retrying batch once")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
		}
		vectors, err = ix.embedder.EmbedBatch(ctx, texts)
	}
	return vectors, err
}

// upsertBatch writes one batch to the index, retrying once when the
// grpc status marks the failure as transient.
func (ix *Indexer) upsertBatch(ctx context.Context, batch []vectordb.Entry) error {
	err := ix.index.Upsert(ctx, batch)
	if err != nil && retryableStatus(err) {
		ix.log.Warn("index unavailable, retrying batch once")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
		}
		err = ix.index.Upsert(ctx, batch)
	}
	return err
}

func retryableStatus(err error) bool {
	if s, ok := status.FromError(err); ok {
		return s.Code() == codes.ResourceExhausted || s.Code() == codes.Unavailable
	}
	return false
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
