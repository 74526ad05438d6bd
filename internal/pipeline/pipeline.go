// Package pipeline sequences the ingestion stages for one document:
// extract, chunk, embed. Each stage's status lives in the registry and
// gates re-processing, so the pipeline can be interrupted and resumed
// at the first incomplete stage.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/salutethegenius/bahamasopendata/internal/config"
	"github.com/salutethegenius/bahamasopendata/internal/domain/document"
	"github.com/salutethegenius/bahamasopendata/internal/metrics"
	"github.com/salutethegenius/bahamasopendata/internal/pipeline/chunker"
	"github.com/salutethegenius/bahamasopendata/internal/pipeline/extract"
	"github.com/salutethegenius/bahamasopendata/internal/pipeline/indexer"
	"github.com/salutethegenius/bahamasopendata/internal/registry"
	"github.com/salutethegenius/bahamasopendata/pkg/logging"
)

type Pipeline struct {
	registry  *registry.Registry
	extractor *extract.Extractor
	indexer   *indexer.Indexer
	artifacts artifactStore
	rawDir    string
	chunkSize int
	log       *logging.Logger

	// one document at a time; registry stage updates are
	// read-modify-write and must not interleave
	mu sync.Mutex
}

func New(reg *registry.Registry, ex *extract.Extractor, ix *indexer.Indexer, rawDir, processedDir string) *Pipeline {
	return &Pipeline{
		registry:  reg,
		extractor: ex,
		indexer:   ix,
		artifacts: artifactStore{dir: processedDir},
		rawDir:    rawDir,
		chunkSize: config.ChunkSize,
		log:       logging.New("pipeline"),
	}
}

// Run processes every registered document sequentially.
func (p *Pipeline) Run(ctx context.Context) error {
	records, err := p.registry.List(ctx)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	for _, rec := range records {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := p.Process(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// Process runs the incomplete stages for one document. Expected
// failures (missing file, empty extraction) land in the record's stage
// statuses; the returned error is reserved for registry persistence
// problems.
func (p *Pipeline) Process(ctx context.Context, rec document.Record) (document.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	log := p.log.With("hash", rec.Hash, "filename", rec.Filename)

	if rec.Extraction == document.StatusFileNotFound {
		log.Debug("skipping, source file missing")
		return rec, nil
	}

	if rec.Extractable() {
		if err := p.runExtraction(ctx, &rec, log); err != nil {
			return rec, err
		}
	}

	if rec.Extraction == document.StatusSuccess && rec.ChunkCount == 0 {
		if err := p.runChunking(ctx, &rec, log); err != nil {
			return rec, err
		}
	}

	if rec.Extraction == document.StatusSuccess && rec.Embedding == document.StatusPending {
		if err := p.runEmbedding(ctx, &rec, log); err != nil {
			return rec, err
		}
	}

	return rec, nil
}

// ProcessStage runs one stage for one document under the same gating
// as Process, for operators driving stages individually.
func (p *Pipeline) ProcessStage(ctx context.Context, rec document.Record, stage document.Stage) (document.Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	log := p.log.With("hash", rec.Hash, "filename", rec.Filename)

	if rec.Extraction == document.StatusFileNotFound {
		log.Debug("skipping, source file missing")
		return rec, nil
	}

	var err error
	switch stage {
	case document.StageExtraction:
		if rec.Extractable() {
			err = p.runExtraction(ctx, &rec, log)
		}
	case document.StageChunking:
		if rec.Extraction == document.StatusSuccess && rec.ChunkCount == 0 {
			err = p.runChunking(ctx, &rec, log)
		}
	case document.StageEmbedding:
		if rec.Extraction == document.StatusSuccess && rec.Embedding == document.StatusPending {
			err = p.runEmbedding(ctx, &rec, log)
		}
	default:
		err = fmt.Errorf("unknown stage %q", stage)
	}
	return rec, err
}

func (p *Pipeline) runExtraction(ctx context.Context, rec *document.Record, log *logging.Logger) error {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("extraction", time.Since(start)) }()

	path := filepath.Join(p.rawDir, rec.Filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Warn("source file not found")
		return p.registry.AdvanceStage(ctx, rec, document.StageExtraction, document.StageResult{Status: document.StatusFileNotFound})
	}

	result, err := p.extractor.Extract(path)
	if err != nil {
		log.Error("extraction failed", "error", err)
		return p.registry.AdvanceStage(ctx, rec, document.StageExtraction, document.StageResult{Status: result.Status})
	}

	if err := p.artifacts.writeExtraction(*rec, result); err != nil {
		log.Error("writing extraction artifacts failed", "error", err)
		return p.registry.AdvanceStage(ctx, rec, document.StageExtraction, document.StageResult{Status: document.StatusError})
	}

	log.Info("extracted", "pages", len(result.Pages), "tables", len(result.Tables), "parsed_budgets", len(result.Budgets))
	return p.registry.AdvanceStage(ctx, rec, document.StageExtraction, document.StageResult{Status: document.StatusSuccess})
}

func (p *Pipeline) runChunking(ctx context.Context, rec *document.Record, log *logging.Logger) error {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("chunking", time.Since(start)) }()

	pages, err := p.artifacts.readPages(*rec)
	if err != nil {
		log.Error("loading extracted pages failed", "error", err)
		return nil
	}

	chunks := chunker.Split(*rec, pages, p.chunkSize)
	if err := p.artifacts.writeChunks(*rec, chunks); err != nil {
		log.Error("writing chunk artifact failed", "error", err)
		return nil
	}

	log.Info("chunked", "chunks", len(chunks))
	return p.registry.AdvanceStage(ctx, rec, document.StageChunking, document.StageResult{Count: len(chunks)})
}

func (p *Pipeline) runEmbedding(ctx context.Context, rec *document.Record, log *logging.Logger) error {
	chunks, err := p.artifacts.readChunks(*rec)
	if err != nil {
		log.Error("loading chunks failed", "error", err)
		return nil
	}

	result := p.indexer.Index(ctx, *rec, chunks)
	log.Info("embedded", "status", result.Status, "count", result.EmbeddedCount)
	return p.registry.AdvanceStage(ctx, rec, document.StageEmbedding, document.StageResult{
		Status: result.Status,
		Count:  result.EmbeddedCount,
	})
}
