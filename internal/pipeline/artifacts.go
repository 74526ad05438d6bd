package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/salutethegenius/bahamasopendata/internal/domain/document"
	"github.com/salutethegenius/bahamasopendata/internal/pipeline/chunker"
	"github.com/salutethegenius/bahamasopendata/internal/pipeline/extract"
)

// Stage outputs are persisted as JSON artifacts in the processed
// directory so each stage can resume from the previous stage's output
// without re-running it. The files carry no timestamps: identical
// input bytes must produce byte-identical artifacts.

type textArtifact struct {
	Source string         `json:"source"`
	Pages  []extract.Page `json:"pages"`
}

type tablesArtifact struct {
	Source        string                 `json:"source"`
	Tables        []extract.Table        `json:"tables"`
	ParsedBudgets []extract.ParsedBudget `json:"parsed_budgets"`
}

type chunksArtifact struct {
	Source     string          `json:"source"`
	ChunkCount int             `json:"chunk_count"`
	Chunks     []chunker.Chunk `json:"chunks"`
}

type artifactStore struct {
	dir string
}

func (a artifactStore) textPath(rec document.Record) string {
	return filepath.Join(a.dir, rec.BaseName()+"_text.json")
}

func (a artifactStore) tablesPath(rec document.Record) string {
	return filepath.Join(a.dir, rec.BaseName()+"_tables.json")
}

func (a artifactStore) chunksPath(rec document.Record) string {
	return filepath.Join(a.dir, rec.BaseName()+"_chunks.json")
}

func (a artifactStore) writeExtraction(rec document.Record, result extract.Result) error {
	text := textArtifact{Source: rec.Filename, Pages: result.Pages}
	if err := a.write(a.textPath(rec), text); err != nil {
		return err
	}

	tables := tablesArtifact{
		Source:        rec.Filename,
		Tables:        emptyIfNil(result.Tables),
		ParsedBudgets: emptyIfNil(result.Budgets),
	}
	return a.write(a.tablesPath(rec), tables)
}

func (a artifactStore) writeChunks(rec document.Record, chunks []chunker.Chunk) error {
	artifact := chunksArtifact{
		Source:     rec.Filename,
		ChunkCount: len(chunks),
		Chunks:     emptyIfNil(chunks),
	}
	return a.write(a.chunksPath(rec), artifact)
}

func (a artifactStore) readPages(rec document.Record) ([]extract.Page, error) {
	var artifact textArtifact
	if err := a.read(a.textPath(rec), &artifact); err != nil {
		return nil, err
	}
	return artifact.Pages, nil
}

func (a artifactStore) readChunks(rec document.Record) ([]chunker.Chunk, error) {
	var artifact chunksArtifact
	if err := a.read(a.chunksPath(rec), &artifact); err != nil {
		return nil, err
	}
	return artifact.Chunks, nil
}

func (a artifactStore) write(path string, v any) error {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	return nil
}

func (a artifactStore) read(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read artifact %s: %w", path, err)
	}
	return json.Unmarshal(data, v)
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
