package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/salutethegenius/bahamasopendata/internal/domain/document"
	"github.com/salutethegenius/bahamasopendata/internal/pipeline/extract"
)

func testRecord() document.Record {
	return document.Record{Filename: "budget_2024.pdf"}
}

func TestSplit_PacksParagraphs(t *testing.T) {
	pages := []extract.Page{
		{PageNumber: 1, Text: "First paragraph.\n\nSecond paragraph.\n\nThird paragraph."},
	}

	chunks := Split(testRecord(), pages, 1000)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}

	c := chunks[0]
	if c.ID != "budget_2024_chunk_0" {
		t.Errorf("ID = %q", c.ID)
	}
	if c.Document != "budget_2024.pdf" || c.PageNumber != 1 {
		t.Errorf("provenance got %s page %d", c.Document, c.PageNumber)
	}
	if !strings.Contains(c.Content, "First paragraph.") || !strings.Contains(c.Content, "Third paragraph.") {
		t.Errorf("Content = %q", c.Content)
	}
	if c.CharCount != len(c.Content) {
		t.Errorf("CharCount = %d, len = %d", c.CharCount, len(c.Content))
	}
}

func TestSplit_FlushesAtLimit(t *testing.T) {
	paraA := strings.Repeat("a", 60)
	paraB := strings.Repeat("b", 60)
	pages := []extract.Page{
		{PageNumber: 1, Text: paraA + "\n\n" + paraB},
	}

	chunks := Split(testRecord(), pages, 100)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].Content != paraA || chunks[1].Content != paraB {
		t.Errorf("chunks = %q, %q", chunks[0].Content, chunks[1].Content)
	}
}

func TestSplit_OversizeParagraphKeptWhole(t *testing.T) {
	big := strings.Repeat("x", 5000)
	pages := []extract.Page{{PageNumber: 1, Text: big}}

	chunks := Split(testRecord(), pages, 1000)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Content != big {
		t.Error("oversize paragraph must not be split mid-paragraph")
	}
}

func TestSplit_NoChunkSpansPages(t *testing.T) {
	pages := []extract.Page{
		{PageNumber: 1, Text: "page one text"},
		{PageNumber: 2, Text: "page two text"},
	}

	chunks := Split(testRecord(), pages, 1000)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].PageNumber != 1 || chunks[1].PageNumber != 2 {
		t.Errorf("pages = %d, %d", chunks[0].PageNumber, chunks[1].PageNumber)
	}
}

func TestSplit_SequentialIDsAcrossPages(t *testing.T) {
	pages := []extract.Page{
		{PageNumber: 1, Text: "one"},
		{PageNumber: 2, Text: ""},
		{PageNumber: 3, Text: "three"},
	}

	chunks := Split(testRecord(), pages, 1000)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	for i, c := range chunks {
		want := fmt.Sprintf("budget_2024_chunk_%d", i)
		if c.ID != want {
			t.Errorf("chunk %d ID = %q, want %q", i, c.ID, want)
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	pages := []extract.Page{
		{PageNumber: 1, Text: strings.Repeat("alpha beta gamma.\n\n", 50)},
	}

	first := Split(testRecord(), pages, 300)
	second := Split(testRecord(), pages, 300)

	if len(first) != len(second) {
		t.Fatalf("runs differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}
