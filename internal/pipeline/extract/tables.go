package extract

import (
	"strings"

	"github.com/dslipak/pdf"
)

// Horizontal gap (in points) between two text fragments that starts a
// new table cell.
const cellGap = 12.0

// tablesFromRows rebuilds tables from positioned row text. Consecutive
// rows with the same column count form one table; anything under two
// rows or two columns is discarded as layout noise.
func tablesFromRows(rows pdf.Rows, pageNumber int) []Table {
	var grids [][][]string
	var current [][]string

	flush := func() {
		if len(current) >= 2 {
			grids = append(grids, current)
		}
		current = nil
	}

	for _, row := range rows {
		cells := splitCells(row.Content)
		if len(cells) < 2 {
			flush()
			continue
		}
		if len(current) > 0 && len(current[len(current)-1]) != len(cells) {
			flush()
		}
		current = append(current, cells)
	}
	flush()

	tables := make([]Table, 0, len(grids))
	for i, grid := range grids {
		tables = append(tables, Table{
			PageNumber: pageNumber,
			TableIndex: i,
			Columns:    grid[0],
			RowCount:   len(grid) - 1,
			Rows:       grid[1:],
		})
	}
	return tables
}

// splitCells groups a row's text fragments into cells wherever the
// horizontal gap between fragments exceeds cellGap.
func splitCells(fragments pdf.TextHorizontal) []string {
	var cells []string
	var cell strings.Builder
	var rightEdge float64

	for i, frag := range fragments {
		if i > 0 && frag.X-rightEdge > cellGap {
			if s := strings.TrimSpace(cell.String()); s != "" {
				cells = append(cells, s)
			}
			cell.Reset()
		}
		cell.WriteString(frag.S)
		rightEdge = frag.X + frag.W
	}
	if s := strings.TrimSpace(cell.String()); s != "" {
		cells = append(cells, s)
	}
	return cells
}

var (
	amountTerms = []string{"amount", "allocation", "budget", "estimate", "total"}
	nameTerms   = []string{"item", "description", "name", "head", "ministry"}
)

// ParseBudgetTable projects a raw table into budget line items. The
// headers must contain both an amount column and a label column or the
// table is kept as raw data only. The last header matching each group
// wins. Rows whose amount cell is not a number are dropped.
func ParseBudgetTable(t Table) (ParsedBudget, bool) {
	amountCol, nameCol := -1, -1
	for i, col := range t.Columns {
		c := strings.ToLower(col)
		if containsAny(c, amountTerms) {
			amountCol = i
		}
		if containsAny(c, nameTerms) {
			nameCol = i
		}
	}
	if amountCol < 0 || nameCol < 0 {
		return ParsedBudget{}, false
	}

	var items []BudgetItem
	for _, row := range t.Rows {
		if len(row) <= amountCol || len(row) <= nameCol {
			continue
		}
		name := strings.TrimSpace(row[nameCol])
		amount, ok := CleanCurrency(row[amountCol])
		if name == "" || !ok || amount == 0 {
			continue
		}
		items = append(items, BudgetItem{
			Name:         name,
			Amount:       amount,
			MinistryCode: NormalizeMinistry(name),
		})
	}
	if len(items) == 0 {
		return ParsedBudget{}, false
	}

	return ParsedBudget{
		Items:      items,
		PageNumber: t.PageNumber,
		TableIndex: t.TableIndex,
	}, true
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
