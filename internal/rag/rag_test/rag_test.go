package rag_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/salutethegenius/bahamasopendata/internal/rag"
	"github.com/salutethegenius/bahamasopendata/internal/rag/vectordb"
)

func sampleMatches() []vectordb.Match {
	return []vectordb.Match{
		{
			ID:    "budget_2024_chunk_0",
			Score: 0.91,
			Metadata: vectordb.Metadata{
				Document:   "budget_2024.pdf",
				PageNumber: 12,
				Content:    "The Ministry of Education allocation is $450 million for the fiscal year.",
				FiscalYear: "2024/25",
			},
		},
		{
			ID:    "budget_2024_chunk_7",
			Score: 0.85,
			Metadata: vectordb.Metadata{
				Document:   "budget_2024.pdf",
				PageNumber: 30,
				Content:    "Recurrent expenditure totals $3.2 billion.",
				FiscalYear: "2024/25",
			},
		},
		{
			ID:    "debt_report_chunk_2",
			Score: 0.71,
			Metadata: vectordb.Metadata{
				Document:   "debt_report.pdf",
				PageNumber: 4,
				Content:    "National debt stood at $11.5 billion at the end of the period.",
				FiscalYear: "2024/25",
			},
		},
	}
}

func TestAsk_Scenarios(t *testing.T) {
	tests := []struct {
		name          string
		setupMocks    func(e *MockEmbedder, v *MockIndex, l *MockProvider)
		wantAnswer    string
		wantConf      float64
		wantCitations int
	}{
		{
			name: "Success_Full_Flow",
			setupMocks: func(e *MockEmbedder, v *MockIndex, l *MockProvider) {
				v.OnQuery = func(ctx context.Context, vec []float32, topK int, fy string) ([]vectordb.Match, error) {
					return sampleMatches(), nil
				}
				l.OnComplete = func(ctx context.Context, sys, user string) (string, error) {
					return `{"answer": "Education received $450 million.", "numbers": {"total_allocation": 450000000}, "confidence": 0.9, "source_indices": [1]}`, nil
				}
			},
			wantAnswer:    "Education received $450 million.",
			wantConf:      0.9,
			wantCitations: 1,
		},
		{
			name: "No_Matches_Fallback",
			setupMocks: func(e *MockEmbedder, v *MockIndex, l *MockProvider) {
				v.OnQuery = func(ctx context.Context, vec []float32, topK int, fy string) ([]vectordb.Match, error) {
					return nil, nil
				}
				// a model call here would surface as the error answer
				l.OnComplete = func(ctx context.Context, sys, user string) (string, error) {
					return "", errors.New("model must not be called when retrieval is empty")
				}
			},
			wantConf:      0.2,
			wantCitations: 0,
		},
		{
			name: "Embed_Failure",
			setupMocks: func(e *MockEmbedder, v *MockIndex, l *MockProvider) {
				e.OnEmbed = func(ctx context.Context, text string) ([]float32, error) {
					return nil, errors.New("api limit")
				}
			},
			wantConf:      0,
			wantCitations: 0,
		},
		{
			name: "Search_Failure",
			setupMocks: func(e *MockEmbedder, v *MockIndex, l *MockProvider) {
				v.OnQuery = func(ctx context.Context, vec []float32, topK int, fy string) ([]vectordb.Match, error) {
					return nil, errors.New("db timeout")
				}
			},
			wantConf:      0,
			wantCitations: 0,
		},
		{
			name: "Model_Failure",
			setupMocks: func(e *MockEmbedder, v *MockIndex, l *MockProvider) {
				v.OnQuery = func(ctx context.Context, vec []float32, topK int, fy string) ([]vectordb.Match, error) {
					return sampleMatches(), nil
				}
				l.OnComplete = func(ctx context.Context, sys, user string) (string, error) {
					return "", errors.New("provider down")
				}
			},
			wantConf:      0,
			wantCitations: 0,
		},
		{
			name: "Malformed_Model_Output",
			setupMocks: func(e *MockEmbedder, v *MockIndex, l *MockProvider) {
				v.OnQuery = func(ctx context.Context, vec []float32, topK int, fy string) ([]vectordb.Match, error) {
					return sampleMatches(), nil
				}
				l.OnComplete = func(ctx context.Context, sys, user string) (string, error) {
					return "not json at all", nil
				}
			},
			wantConf:      0,
			wantCitations: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mIndex := &MockIndex{}
			mLLM := &MockProvider{}
			tt.setupMocks(mEmbed, mIndex, mLLM)

			s := rag.NewService(mEmbed, mIndex, mLLM)
			result := s.Ask(context.Background(), "How much does education receive?", "2024/25")

			if tt.wantAnswer != "" && result.Answer != tt.wantAnswer {
				t.Errorf("Answer got %q, want %q", result.Answer, tt.wantAnswer)
			}
			if result.Confidence != tt.wantConf {
				t.Errorf("Confidence got %v, want %v", result.Confidence, tt.wantConf)
			}
			if len(result.Citations) != tt.wantCitations {
				t.Errorf("Citations got %d, want %d", len(result.Citations), tt.wantCitations)
			}
			if result.Citations == nil {
				t.Error("Citations must never be nil")
			}
		})
	}
}

func TestAsk_CitationDetails(t *testing.T) {
	mIndex := &MockIndex{
		OnQuery: func(ctx context.Context, vec []float32, topK int, fy string) ([]vectordb.Match, error) {
			return sampleMatches(), nil
		},
	}
	mLLM := &MockProvider{
		OnComplete: func(ctx context.Context, sys, user string) (string, error) {
			return `{"answer": "ok", "confidence": 0.8, "source_indices": [3, 1]}`, nil
		},
	}

	s := rag.NewService(&MockEmbedder{}, mIndex, mLLM)
	result := s.Ask(context.Background(), "debt?", "")

	if len(result.Citations) != 2 {
		t.Fatalf("Citations got %d, want 2", len(result.Citations))
	}
	first := result.Citations[0]
	if first.Document != "debt_report.pdf" || first.Page != 4 {
		t.Errorf("first citation got %s page %d, want debt_report.pdf page 4", first.Document, first.Page)
	}
	if first.URL != "/data/raw/debt_report.pdf#page=4" {
		t.Errorf("URL got %q", first.URL)
	}
}

func TestAsk_OutOfRangeIndicesDropped(t *testing.T) {
	mIndex := &MockIndex{
		OnQuery: func(ctx context.Context, vec []float32, topK int, fy string) ([]vectordb.Match, error) {
			return sampleMatches(), nil
		},
	}
	mLLM := &MockProvider{
		OnComplete: func(ctx context.Context, sys, user string) (string, error) {
			return `{"answer": "ok", "source_indices": [0, 2, 99]}`, nil
		},
	}

	s := rag.NewService(&MockEmbedder{}, mIndex, mLLM)
	result := s.Ask(context.Background(), "q", "")

	if len(result.Citations) != 1 {
		t.Fatalf("Citations got %d, want 1", len(result.Citations))
	}
	if result.Citations[0].Page != 30 {
		t.Errorf("citation page got %d, want 30", result.Citations[0].Page)
	}
}

func TestAsk_DefaultsApplied(t *testing.T) {
	mIndex := &MockIndex{
		OnQuery: func(ctx context.Context, vec []float32, topK int, fy string) ([]vectordb.Match, error) {
			return sampleMatches(), nil
		},
	}
	// no confidence, no source_indices
	mLLM := &MockProvider{
		OnComplete: func(ctx context.Context, sys, user string) (string, error) {
			return `{"answer": "everything cited"}`, nil
		},
	}

	s := rag.NewService(&MockEmbedder{}, mIndex, mLLM)
	result := s.Ask(context.Background(), "q", "")

	if result.Confidence != 0.5 {
		t.Errorf("default confidence got %v, want 0.5", result.Confidence)
	}
	if len(result.Citations) != 3 {
		t.Errorf("absent indices should cite all matches, got %d", len(result.Citations))
	}
	if result.Numbers != nil {
		t.Errorf("Numbers got %v, want nil", result.Numbers)
	}
}

func TestAsk_FencedJSONAccepted(t *testing.T) {
	mIndex := &MockIndex{
		OnQuery: func(ctx context.Context, vec []float32, topK int, fy string) ([]vectordb.Match, error) {
			return sampleMatches(), nil
		},
	}
	mLLM := &MockProvider{
		OnComplete: func(ctx context.Context, sys, user string) (string, error) {
			return "```json\n{\"answer\": \"fenced\", \"confidence\": 0.7}\n```", nil
		},
	}

	s := rag.NewService(&MockEmbedder{}, mIndex, mLLM)
	result := s.Ask(context.Background(), "q", "")

	if result.Answer != "fenced" {
		t.Errorf("Answer got %q, want fenced", result.Answer)
	}
}

func TestAsk_LongSnippetTruncated(t *testing.T) {
	long := strings.Repeat("a", 500)
	mIndex := &MockIndex{
		OnQuery: func(ctx context.Context, vec []float32, topK int, fy string) ([]vectordb.Match, error) {
			return []vectordb.Match{{
				ID:       "x_chunk_0",
				Metadata: vectordb.Metadata{Document: "x.pdf", PageNumber: 1, Content: long},
			}}, nil
		},
	}
	mLLM := &MockProvider{
		OnComplete: func(ctx context.Context, sys, user string) (string, error) {
			return `{"answer": "ok", "source_indices": [1]}`, nil
		},
	}

	s := rag.NewService(&MockEmbedder{}, mIndex, mLLM)
	result := s.Ask(context.Background(), "q", "")

	if len(result.Citations) != 1 {
		t.Fatalf("Citations got %d, want 1", len(result.Citations))
	}
	snippet := result.Citations[0].Snippet
	if len(snippet) != 203 || !strings.HasSuffix(snippet, "...") {
		t.Errorf("snippet length got %d, want 200 chars plus ellipsis", len(snippet))
	}
}

func TestAsk_FiscalYearPassedToIndex(t *testing.T) {
	var gotFY string
	mIndex := &MockIndex{
		OnQuery: func(ctx context.Context, vec []float32, topK int, fy string) ([]vectordb.Match, error) {
			gotFY = fy
			return nil, nil
		},
	}

	s := rag.NewService(&MockEmbedder{}, mIndex, &MockProvider{})
	s.Ask(context.Background(), "q", "2023/24")

	if gotFY != "2023/24" {
		t.Errorf("fiscal year got %q, want 2023/24", gotFY)
	}
}
