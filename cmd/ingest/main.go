// Command ingest drives the document pipeline from the terminal:
// register files into the registry, run the pending stages, and report
// per-document status.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/salutethegenius/bahamasopendata/internal/config"
	"github.com/salutethegenius/bahamasopendata/internal/data/redisstore"
	"github.com/salutethegenius/bahamasopendata/internal/domain/document"
	"github.com/salutethegenius/bahamasopendata/internal/pipeline"
	"github.com/salutethegenius/bahamasopendata/internal/pipeline/extract"
	"github.com/salutethegenius/bahamasopendata/internal/pipeline/indexer"
	"github.com/salutethegenius/bahamasopendata/internal/rag/embedding/openaiembed"
	"github.com/salutethegenius/bahamasopendata/internal/rag/vectordb/qdrantdb"
	"github.com/salutethegenius/bahamasopendata/internal/registry"
	"github.com/salutethegenius/bahamasopendata/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:          "ingest",
	Short:        "Manage the budget document pipeline",
	SilenceUsage: true,
}

var registerCmd = &cobra.Command{
	Use:   "register <file>...",
	Short: "Copy files into the raw directory and register them",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRegister,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run extraction, chunking and embedding for every pending document",
	RunE:  runPipeline,
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Run only the extraction stage for every pending document",
	RunE:  runStage(document.StageExtraction),
}

var chunkCmd = &cobra.Command{
	Use:   "chunk",
	Short: "Run only the chunking stage for every extracted document",
	RunE:  runStage(document.StageChunking),
}

var embedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Run only the embedding stage for every chunked document",
	RunE:  runStage(document.StageEmbedding),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stage status of every registered document",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(registerCmd, runCmd, extractCmd, chunkCmd, embedCmd, statusCmd)
}

func main() {
	logging.Init(config.IS_PROD, config.LOG_LEVEL_PROD)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openRegistry(ctx context.Context, cfg *config.Config) *registry.Registry {
	if redis := redisstore.Connect(ctx, cfg.RedisAddr, config.RedisRegistryDB); redis != nil {
		return registry.New(registry.NewRedisStore(redis))
	}
	return registry.New(registry.NewMemoryStore())
}

func runRegister(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.RawDir, 0o755); err != nil {
		return err
	}

	ctx := cmd.Context()
	reg := openRegistry(ctx, cfg)

	for _, path := range args {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		filename := filepath.Base(path)
		rec, duplicate, err := reg.Register(ctx, filename, "", raw)
		if err != nil {
			return fmt.Errorf("register %s: %w", filename, err)
		}
		if duplicate {
			cmd.Printf("%s already registered (%s)\n", filename, rec.Hash[:12])
			continue
		}

		if err := os.WriteFile(filepath.Join(cfg.RawDir, filename), raw, 0o644); err != nil {
			return fmt.Errorf("copy %s into raw dir: %w", filename, err)
		}
		cmd.Printf("%s registered as %s %s (%s)\n", filename, rec.Type, rec.FiscalYear, rec.Hash[:12])
	}
	return nil
}

// buildPipeline wires the full pipeline. The qdrant collection is only
// ensured when the embedding stage will actually run.
func buildPipeline(ctx context.Context, cfg *config.Config, reg *registry.Registry, ensureCollection bool) (*pipeline.Pipeline, func(), error) {
	if err := os.MkdirAll(cfg.ProcessedDir, 0o755); err != nil {
		return nil, nil, err
	}

	vectorDB, err := qdrantdb.Connect(qdrantdb.Config{
		Host:       cfg.QdrantHost,
		Port:       cfg.QdrantPort,
		APIKey:     cfg.QdrantAPIKey,
		UseTLS:     config.QdrantUseTLS,
		Collection: cfg.Collection,
		Dimension:  uint64(config.EmbeddingDimensions),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect qdrant: %w", err)
	}
	if ensureCollection {
		if err := vectorDB.EnsureCollection(ctx); err != nil {
			vectorDB.Close()
			return nil, nil, fmt.Errorf("ensure collection: %w", err)
		}
	}

	embedder := openaiembed.New(cfg.OpenAIAPIKey, cfg.EmbeddingModel, int(config.EmbeddingDimensions))
	pipe := pipeline.New(reg, extract.New(), indexer.New(embedder, vectorDB), cfg.RawDir, cfg.ProcessedDir)
	return pipe, func() { vectorDB.Close() }, nil
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	reg := openRegistry(ctx, cfg)

	pipe, closePipe, err := buildPipeline(ctx, cfg, reg, true)
	if err != nil {
		return err
	}
	defer closePipe()

	return pipe.Run(ctx)
}

func runStage(stage document.Stage) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		reg := openRegistry(ctx, cfg)

		pipe, closePipe, err := buildPipeline(ctx, cfg, reg, stage == document.StageEmbedding)
		if err != nil {
			return err
		}
		defer closePipe()

		records, err := reg.List(ctx)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if _, err := pipe.ProcessStage(ctx, rec, stage); err != nil {
				return err
			}
		}
		return nil
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	records, err := openRegistry(ctx, cfg).List(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		cmd.Println("no documents registered")
		return nil
	}

	for _, rec := range records {
		cmd.Printf("%-50s %-20s %-8s extract=%-15s chunks=%-5d embed=%s (%d vectors)\n",
			rec.Filename, rec.Type, rec.FiscalYear,
			rec.Extraction, rec.ChunkCount, rec.Embedding, rec.VectorCount)
	}
	return nil
}
