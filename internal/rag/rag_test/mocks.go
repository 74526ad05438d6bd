package rag_test

import (
	"context"

	"github.com/salutethegenius/bahamasopendata/internal/rag/vectordb"
)

// MockIndex implements vectordb.Index
type MockIndex struct {
	OnEnsureCollection func(ctx context.Context) error
	OnUpsert           func(ctx context.Context, entries []vectordb.Entry) error
	OnQuery            func(ctx context.Context, vector []float32, topK int, fiscalYear string) ([]vectordb.Match, error)
}

func (m *MockIndex) EnsureCollection(ctx context.Context) error {
	if m.OnEnsureCollection != nil {
		return m.OnEnsureCollection(ctx)
	}
	return nil
}

func (m *MockIndex) Upsert(ctx context.Context, entries []vectordb.Entry) error {
	if m.OnUpsert != nil {
		return m.OnUpsert(ctx, entries)
	}
	return nil
}

func (m *MockIndex) Query(ctx context.Context, vector []float32, topK int, fiscalYear string) ([]vectordb.Match, error) {
	if m.OnQuery != nil {
		return m.OnQuery(ctx, vector, topK, fiscalYear)
	}
	return nil, nil
}

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	OnEmbed      func(ctx context.Context, text string) ([]float32, error)
	OnEmbedBatch func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.OnEmbed != nil {
		return m.OnEmbed(ctx, text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnEmbedBatch != nil {
		return m.OnEmbedBatch(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{0.1, 0.2, 0.3}
	}
	return vectors, nil
}

// MockProvider implements llm.Provider
type MockProvider struct {
	OnComplete func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

func (m *MockProvider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if m.OnComplete != nil {
		return m.OnComplete(ctx, systemPrompt, userPrompt)
	}
	return `{"answer": "default", "confidence": 0.9}`, nil
}
