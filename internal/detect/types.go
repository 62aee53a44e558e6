package detect

// Kind classifies a finding.
type Kind string

const (
	HighEntropySecret Kind = "HIGH_ENTROPY"
	DummyKey          Kind = "DUMMY_KEY"
)

// Range is a half-open [Start, End) byte span into the scanned text.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by r.
func (r Range) Len() int { return r.End - r.Start }

// Candidate is a quoted value found in an assignment-like pattern, before
// classification. Start and End locate Value in the source text.
type Candidate struct {
	Name  string
	Value string
	Start int
	End   int
}

// Finding is a classified candidate. Range covers the value only, never
// the surrounding quotes.
type Finding struct {
	Range     Range   `json:"range"`
	Kind      Kind    `json:"kind"`
	Message   string  `json:"message"`
	Name      string  `json:"name"`
	Entropy   float64 `json:"entropy,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
}
