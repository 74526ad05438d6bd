package extract

import "github.com/salutethegenius/bahamasopendata/internal/domain/document"

// Page is the plain text of one PDF page. Pages are 1-based and
// immutable once extracted; re-extraction replaces the whole set.
type Page struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
	CharCount  int    `json:"char_count"`
}

// Table is a raw table recovered from a page: ordered headers and
// ordered rows of cell text.
type Table struct {
	PageNumber int        `json:"page_number"`
	TableIndex int        `json:"table_index"`
	Columns    []string   `json:"columns"`
	RowCount   int        `json:"row_count"`
	Rows       [][]string `json:"rows"`
}

// BudgetItem is one parsed line item from a budget allocation table.
// MinistryCode is empty when no alias matched the item name.
type BudgetItem struct {
	Name         string  `json:"name"`
	Amount       float64 `json:"amount"`
	MinistryCode string  `json:"ministry_code,omitempty"`
}

// ParsedBudget is the structured projection of one recognised budget
// table.
type ParsedBudget struct {
	Items      []BudgetItem `json:"items"`
	PageNumber int          `json:"page_number"`
	TableIndex int          `json:"table_index"`
}

// Result carries everything one extraction run produced.
type Result struct {
	Status  document.StageStatus
	Pages   []Page
	Tables  []Table
	Budgets []ParsedBudget
}
