// Package rag answers natural-language questions against the vector
// index: embed the question, retrieve evidence, prompt the model for a
// structured answer, and rebuild citations that point at the exact
// source page. Every failure mode degrades to a well-formed Answer;
// callers never see an error.
package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/salutethegenius/bahamasopendata/internal/config"
	"github.com/salutethegenius/bahamasopendata/internal/domain/answer"
	"github.com/salutethegenius/bahamasopendata/internal/metrics"
	"github.com/salutethegenius/bahamasopendata/internal/rag/embedding"
	"github.com/salutethegenius/bahamasopendata/internal/rag/llm"
	"github.com/salutethegenius/bahamasopendata/internal/rag/vectordb"
	"github.com/salutethegenius/bahamasopendata/pkg/logging"
)

const (
	fallbackAnswer = "I don't have specific information about that in my current dataset. Try asking about ministry allocations, revenue sources, national debt, or specific budget line items."
	errorAnswer    = "An error occurred while generating the answer. Please try again."

	fallbackConfidence = 0.2
	defaultConfidence  = 0.5
)

// Service is the retrieval/answer engine. All clients are injected and
// shared; Ask is safe to call concurrently.
type Service struct {
	embedder embedding.Embedder
	index    vectordb.Index
	provider llm.Provider
	topK     int
	log      *logging.Logger
}

func NewService(embedder embedding.Embedder, index vectordb.Index, provider llm.Provider) *Service {
	return &Service{
		embedder: embedder,
		index:    index,
		provider: provider,
		topK:     config.TopK,
		log:      logging.New("rag"),
	}
}

// Ask answers a question, optionally filtered to one fiscal year.
func (s *Service) Ask(ctx context.Context, question, fiscalYear string) answer.Answer {
	start := time.Now()
	status := "ok"
	defer func() { metrics.CaptureAskMetrics(status, time.Since(start)) }()

	askCtx, cancel := context.WithTimeout(ctx, config.AskTimeout)
	defer cancel()

	matches, err := s.retrieve(askCtx, question, fiscalYear)
	if err != nil {
		s.log.Error("retrieval failed", "error", err)
		status = "error"
		return errorResult()
	}
	if len(matches) == 0 {
		s.log.Debug("no matches for question", "fiscal_year", fiscalYear)
		status = "no_matches"
		return answer.Answer{
			Answer:     fallbackAnswer,
			Citations:  []answer.Citation{},
			Confidence: fallbackConfidence,
		}
	}

	raw, err := s.provider.Complete(askCtx, systemPrompt, buildUserPrompt(question, fiscalYear, buildContext(matches)))
	if err != nil {
		s.log.Error("model call failed", "error", err)
		status = "error"
		return errorResult()
	}

	resp, err := parseModelResponse(raw)
	if err != nil {
		s.log.Error("model returned unparseable answer", "error", err)
		status = "error"
		return errorResult()
	}

	return buildAnswer(resp, matches)
}

func (s *Service) retrieve(ctx context.Context, question, fiscalYear string) ([]vectordb.Match, error) {
	start := time.Now()
	vector, err := s.embedder.Embed(ctx, question)
	metrics.CaptureExecutionMetrics("query_embedding", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	start = time.Now()
	matches, err := s.index.Query(ctx, vector, s.topK, fiscalYear)
	metrics.CaptureExecutionMetrics("vector_search", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return matches, nil
}

// buildAnswer resolves the model's source indices back to the
// retrieved matches. Indices outside [1, len(matches)] are dropped
// silently; an absent index list cites everything that was retrieved.
func buildAnswer(resp modelResponse, matches []vectordb.Match) answer.Answer {
	indices := resp.SourceIndices
	if indices == nil {
		indices = make([]int, len(matches))
		for i := range matches {
			indices[i] = i + 1
		}
	}

	citations := make([]answer.Citation, 0, len(indices))
	for _, idx := range indices {
		if idx < 1 || idx > len(matches) {
			continue
		}
		m := matches[idx-1]
		citations = append(citations, answer.Citation{
			Document: m.Metadata.Document,
			Page:     m.Metadata.PageNumber,
			Snippet:  snippet(m.Metadata.Content),
			URL:      fmt.Sprintf("/data/raw/%s#page=%d", m.Metadata.Document, m.Metadata.PageNumber),
		})
	}

	confidence := defaultConfidence
	if resp.Confidence != nil {
		confidence = *resp.Confidence
	}

	text := resp.Answer
	if text == "" {
		text = "Unable to generate answer."
	}

	return answer.Answer{
		Answer:     text,
		Numbers:    validNumbers(resp.Numbers),
		Citations:  citations,
		Confidence: confidence,
	}
}

func errorResult() answer.Answer {
	return answer.Answer{
		Answer:     errorAnswer,
		Citations:  []answer.Citation{},
		Confidence: 0,
	}
}

func snippet(content string) string {
	if len(content) <= config.CitationChars {
		return content
	}
	return content[:config.CitationChars] + "..."
}
