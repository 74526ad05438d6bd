package indexer

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain ascii untouched", "Budget 2024: $450,000", "Budget 2024: $450,000"},
		{"em dash", "revenue—expenditure", "revenue--expenditure"},
		{"en dash", "2024–2025", "2024-2025"},
		{"curly quotes", "“the budget” is ‘final’", `"the budget" is 'final'`},
		{"ellipsis", "continued…", "continued..."},
		{"bullets", "• item one ‣ item two", "* item one * item two"},
		{"nbsp", "a b", "a b"},
		{"zero width dropped", "bud​get", "budget"},
		{"residual non-ascii dropped", "Nassau café 中", "Nassau caf "},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitize_OutputIsASCII(t *testing.T) {
	in := "mixed — text éè世界 with symbols •"
	for _, r := range Sanitize(in) {
		if r >= 128 {
			t.Fatalf("non-ascii rune %q survived sanitization", r)
		}
	}
}
