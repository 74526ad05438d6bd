package document

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Type classifies a government financial report by its content.
type Type string

const (
	BudgetBook          Type = "budget_book"
	BudgetCommunication Type = "budget_communication"
	RevenueEstimates    Type = "revenue_estimates"
	CapitalEstimates    Type = "capital_estimates"
	MidYearStatement    Type = "mid_year_statement"
	DebtReport          Type = "debt_report"
	HealthStrategy      Type = "health_strategy"
	Other               Type = "other"
)

// StageStatus marks the outcome of one pipeline stage for a document.
type StageStatus string

const (
	StatusPending      StageStatus = "pending"
	StatusSuccess      StageStatus = "success"
	StatusError        StageStatus = "error"
	StatusFileNotFound StageStatus = "file_not_found"
	StatusNoChunks     StageStatus = "no_chunks"
)

// Stage identifies an independently tracked pipeline stage.
type Stage string

const (
	StageExtraction Stage = "extraction"
	StageChunking   Stage = "chunking"
	StageEmbedding  Stage = "embedding"
)

// StageResult is the outcome written back to the registry when a stage
// finishes. Count is the chunk count for chunking and the embedded
// vector count for embedding; extraction ignores it.
type StageResult struct {
	Status StageStatus
	Count  int
}

// Record is the durable registry entry for one ingested source file.
// The content hash is its identity; everything else is descriptive.
type Record struct {
	Hash         string      `json:"file_hash"`
	Filename     string      `json:"filename"`
	Name         string      `json:"name"`
	SourceURL    string      `json:"original_url,omitempty"`
	Type         Type        `json:"document_type"`
	FiscalYear   string      `json:"fiscal_year,omitempty"`
	SizeBytes    int64       `json:"file_size"`
	RegisteredAt time.Time   `json:"registered_at"`
	Extraction   StageStatus `json:"extraction_status"`
	ChunkCount   int         `json:"chunk_count"`
	Embedding    StageStatus `json:"embedding_status"`
	EmbeddedAt   time.Time   `json:"embedded_at,omitempty"`
	VectorCount  int         `json:"embedding_count"`
}

// BaseName is the filename without its extension, used to derive
// artifact names and chunk ids.
func (r Record) BaseName() string {
	return strings.TrimSuffix(r.Filename, filepath.Ext(r.Filename))
}

// Extractable reports whether the document should enter the extraction
// stage. A missing source file permanently excludes it.
func (r Record) Extractable() bool {
	return r.Extraction != StatusSuccess && r.Extraction != StatusFileNotFound
}

// InferType guesses the document type from its display name. The
// health-strategy check runs before the broad "budget" match so
// strategy papers that mention the budget do not get misfiled.
func InferType(name string) Type {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "health strategy") || strings.Contains(n, "health_strategy"):
		return HealthStrategy
	case strings.Contains(n, "budget communication"):
		return BudgetCommunication
	case strings.Contains(n, "budget book"),
		strings.Contains(n, "budget") && !strings.Contains(n, "communication"):
		return BudgetBook
	case strings.Contains(n, "revenue"):
		return RevenueEstimates
	case strings.Contains(n, "capital"):
		return CapitalEstimates
	case strings.Contains(n, "mid-year") || strings.Contains(n, "mid year"):
		return MidYearStatement
	case strings.Contains(n, "debt"):
		return DebtReport
	default:
		return Other
	}
}

var fiscalYearPatterns = []*regexp.Regexp{
	regexp.MustCompile(`20\d{2}[-/]20\d{2}`), // 2026-2030, 2026/2030
	regexp.MustCompile(`20\d{2}[-/]?\d{2}`),  // 2026-30, 2026/30, 202630
}

// InferFiscalYear pulls a budget period out of a document name and
// normalises it to the "YYYY/YY" form used as the retrieval filter.
// Returns "" when no period is present.
func InferFiscalYear(name string) string {
	for _, pat := range fiscalYearPatterns {
		m := pat.FindString(name)
		if m == "" {
			continue
		}
		switch {
		case strings.Contains(m, "-"):
			return strings.Replace(m, "-", "/", 1)
		case strings.Contains(m, "/"):
			return m
		case len(m) == 6:
			return m[:4] + "/" + m[4:]
		}
	}
	return ""
}
