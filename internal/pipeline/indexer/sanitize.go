package indexer

import "strings"

// The index's HTTP layer chokes on anything outside single-byte text,
// so typographic punctuation is mapped to ASCII lookalikes and
// whatever survives that is stripped outright. Losing the odd accented
// character beats losing the whole vector.
var asciiReplacer = strings.NewReplacer(
	"–", "-", // en dash
	"—", "--", // em dash
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"…", "...", // ellipsis
	" ", " ", // non-breaking space
	"•", "*", // bullet
	"‣", "*", // triangular bullet
	"◦", "*", // white bullet
	"⁃", "-", // hyphen bullet
	"∙", "*", // bullet operator
	"·", "*", // middle dot
	"­", "", // soft hyphen
	" ", " ", // thin space
	" ", " ", // hair space
	"​", "", // zero-width space
	"‌", "", // zero-width non-joiner
	"‍", "", // zero-width joiner
	"\uFEFF", "", // zero-width no-break space
)

// Sanitize makes a string safe for the index's metadata encoding:
// known typographic characters become ASCII equivalents, every other
// non-ASCII byte is dropped.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}
	replaced := asciiReplacer.Replace(text)

	var b strings.Builder
	b.Grow(len(replaced))
	for _, r := range replaced {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
