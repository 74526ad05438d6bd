// Package extract turns a source document into per-page text, raw
// tables, and parsed budget items. Extraction is page-granular: a page
// that cannot be read degrades to empty text instead of failing the
// document, and identical input bytes always produce identical output.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/salutethegenius/bahamasopendata/internal/config"
	"github.com/salutethegenius/bahamasopendata/internal/domain/document"
	"github.com/salutethegenius/bahamasopendata/pkg/logging"
)

type Extractor struct {
	log *logging.Logger
}

func New() *Extractor {
	return &Extractor{log: logging.New("extractor")}
}

// Extract reads the file at path and produces pages, tables, and
// parsed budgets. The returned status is the extraction stage outcome;
// err is reserved for failures worth logging with context, the status
// already reflects them.
func (e *Extractor) Extract(path string) (Result, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return e.extractPDF(path)
	case ".docx", ".txt", ".rtf", ".odt":
		return e.extractFlat(path)
	default:
		return Result{Status: document.StatusError}, fmt.Errorf("unsupported file type: %s", path)
	}
}

func (e *Extractor) extractPDF(path string) (Result, error) {
	pageTotal, err := api.PageCountFile(path)
	if err != nil {
		e.log.Error("pdf failed validation", "path", path, "error", err)
		return Result{Status: document.StatusError}, fmt.Errorf("validate pdf: %w", err)
	}
	e.log.Debug("pdf validated", "path", path, "pages", pageTotal)

	reader, err := pdf.Open(path)
	if err != nil {
		return Result{Status: document.StatusError}, fmt.Errorf("open pdf: %w", err)
	}

	result := Result{Status: document.StatusSuccess}
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			result.Pages = append(result.Pages, Page{PageNumber: i})
			continue
		}

		text, err := guardedPlainText(page)
		if err != nil {
			// keep going with an empty page, one bad page must
			// not sink the document
			e.log.Warn("page text extraction failed", "page", i, "error", err)
			text = ""
		}
		result.Pages = append(result.Pages, Page{
			PageNumber: i,
			Text:       text,
			CharCount:  len(text),
		})

		rows, err := page.GetTextByRow()
		if err != nil {
			e.log.Warn("page row extraction failed", "page", i, "error", err)
			continue
		}
		for _, table := range tablesFromRows(rows, i) {
			result.Tables = append(result.Tables, table)
			if parsed, ok := ParseBudgetTable(table); ok {
				result.Budgets = append(result.Budgets, parsed)
			}
		}
	}

	return result, nil
}

// extractFlat handles the manual-upload formats that carry no page
// structure; the whole body lands on a single synthetic page.
func (e *Extractor) extractFlat(path string) (Result, error) {
	text, err := cat.File(path)
	if err != nil {
		return Result{Status: document.StatusError}, fmt.Errorf("extract %s: %w", filepath.Base(path), err)
	}
	return Result{
		Status: document.StatusSuccess,
		Pages:  []Page{{PageNumber: 1, Text: text, CharCount: len(text)}},
	}, nil
}

// guardedPlainText runs GetPlainText under a deadline; the underlying
// parser can hang on malformed content streams.
func guardedPlainText(page pdf.Page) (string, error) {
	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)

	go func() {
		text, err := page.GetPlainText(nil)
		done <- outcome{text, err}
	}()

	select {
	case out := <-done:
		return out.text, out.err
	case <-time.After(config.PageExtractWait):
		return "", errors.New("page extraction timed out")
	}
}
