// Package embedding defines the text-to-vector contract.
package embedding

import "context"

// Embedder turns text into vectors. EmbedBatch returns one vector per
// input in the same order.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
