package rag

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/salutethegenius/bahamasopendata/internal/domain/answer"
	"github.com/salutethegenius/bahamasopendata/internal/rag/vectordb"
)

const systemPrompt = `You are a helpful assistant for Bahamas Open Data, the Bahamas civic finance dashboard.
Your role is to answer questions about the Bahamas national budget, government spending, revenue, debt, and national strategies (including health strategy).

Guidelines:
- Answer based ONLY on the provided context from official documents
- Always cite your sources using the source numbers provided
- If the answer isn't in the context, say you don't have that information
- Use a clear, factual, neutral tone - no political commentary
- Format currency in Bahamian dollars (BSD)
- When giving numbers, be precise and include the fiscal year or time period
- For strategy documents, focus on goals, targets, and key initiatives

You must respond in JSON format with these fields:
{
  "answer": "Your detailed answer here",
  "numbers": {"key": value} or null,
  "confidence": 0.0 to 1.0,
  "source_indices": [1, 2, 3]
}

Numbers should extract key figures mentioned (e.g., {"total_allocation": 450000000, "change_percent": 7.1}).
Confidence should reflect how well the context answers the question.`

// buildContext renders the retrieved matches as a numbered evidence
// block, 1-indexed in retrieval-rank order; the model cites by these
// numbers.
func buildContext(matches []vectordb.Match) string {
	parts := make([]string, len(matches))
	for i, m := range matches {
		parts[i] = fmt.Sprintf("[Source %d: %s, Page %d]\n%s", i+1, m.Metadata.Document, m.Metadata.PageNumber, m.Metadata.Content)
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func buildUserPrompt(question, fiscalYear, context string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", question)
	if fiscalYear != "" {
		fmt.Fprintf(&b, "Fiscal Year: %s\n", fiscalYear)
	}
	fmt.Fprintf(&b, "\nContext from official budget documents:\n\n%s\n\n", context)
	b.WriteString("Please answer the question based on the context above. Respond in JSON format.")
	return b.String()
}

// modelResponse is the JSON shape the model is instructed to return.
type modelResponse struct {
	Answer        string         `json:"answer"`
	Numbers       map[string]any `json:"numbers"`
	Confidence    *float64       `json:"confidence"`
	SourceIndices []int          `json:"source_indices"`
}

// parseModelResponse decodes the model output, tolerating a markdown
// code fence around the JSON body.
func parseModelResponse(raw string) (modelResponse, error) {
	body := strings.TrimSpace(raw)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
		body = strings.TrimSpace(body)
	}

	var resp modelResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return modelResponse{}, fmt.Errorf("decode model response: %w", err)
	}
	return resp, nil
}

// validNumbers keeps only numeric-or-string figures; the model is not
// trusted to respect the schema for nested values.
func validNumbers(raw map[string]any) answer.Numbers {
	if len(raw) == 0 {
		return nil
	}
	out := make(answer.Numbers, len(raw))
	for k, v := range raw {
		switch v.(type) {
		case float64, string:
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
