package answer

// Citation points a statement in an answer back at the exact source
// page it came from. Citations are built per answer and never stored.
type Citation struct {
	Document string `json:"document"`
	Page     int    `json:"page"`
	Snippet  string `json:"snippet"`
	URL      string `json:"url,omitempty"`
}

// Numbers carries the key figures a model extracted from the evidence.
// Values are numeric or string only; anything else is rejected at the
// parse boundary.
type Numbers map[string]any

// Answer is the consumer-facing result of a question. It is always
// well-formed: retrieval and generation failures surface as a
// low-confidence answer with no citations, never as an error.
type Answer struct {
	Answer     string     `json:"answer"`
	Numbers    Numbers    `json:"numbers"`
	Citations  []Citation `json:"citations"`
	Confidence float64    `json:"confidence"`
}
