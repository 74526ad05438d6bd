package llm

import "context"

// Provider is the language-model contract: one system-constrained
// completion call, expected to return machine-parseable JSON matching
// the answer schema.
type Provider interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
