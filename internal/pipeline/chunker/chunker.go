// Package chunker splits extracted page text into bounded,
// provenance-tagged chunks, the unit of embedding and citation. A
// chunk never spans a page boundary, so a citation built from it is
// always page-exact.
package chunker

import (
	"fmt"
	"strings"

	"github.com/salutethegenius/bahamasopendata/internal/domain/document"
	"github.com/salutethegenius/bahamasopendata/internal/pipeline/extract"
)

const separator = "\n\n"

// Chunk is one bounded slice of page text. Ids derive from the
// document base name and the emit sequence, so a re-chunk regenerates
// the exact same ids and supersedes the previous set.
type Chunk struct {
	ID         string `json:"id"`
	Document   string `json:"document"`
	PageNumber int    `json:"page_number"`
	Content    string `json:"content"`
	CharCount  int    `json:"char_count"`
}

// Split chunks a document's pages. Within each page, paragraphs
// (blank-line separated) are greedily packed until adding the next one
// would cross limit; the buffer is then flushed and the paragraph
// starts a new one. A single paragraph larger than limit is emitted
// as-is rather than split mid-paragraph.
func Split(rec document.Record, pages []extract.Page, limit int) []Chunk {
	base := rec.BaseName()
	var chunks []Chunk
	seq := 0

	emit := func(buf string, pageNumber int) {
		content := strings.TrimSpace(buf)
		if content == "" {
			return
		}
		chunks = append(chunks, Chunk{
			ID:         fmt.Sprintf("%s_chunk_%d", base, seq),
			Document:   rec.Filename,
			PageNumber: pageNumber,
			Content:    content,
			CharCount:  len(content),
		})
		seq++
	}

	for _, page := range pages {
		var buf strings.Builder
		for _, para := range strings.Split(page.Text, separator) {
			if buf.Len()+len(para) >= limit && buf.Len() > 0 {
				emit(buf.String(), page.PageNumber)
				buf.Reset()
			}
			buf.WriteString(para)
			buf.WriteString(separator)
		}
		emit(buf.String(), page.PageNumber)
	}

	return chunks
}
