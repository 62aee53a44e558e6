package types

// Severity is a coarse-grained risk level for a finding.
type Severity string

const (
	SevLow  Severity = "low"
	SevMed  Severity = "medium"
	SevHigh Severity = "high"
)

// Rule IDs reported for each finding kind.
const (
	RuleHighEntropy = "HIGH_ENTROPY_SECRET"
	RuleDummyKey    = "DUMMY_KEY"
)

// Finding is a located detection in a file: the value's byte range plus
// 1-based start and end positions for display.
type Finding struct {
	Path      string   `json:"path"`
	Line      int      `json:"line"`
	Column    int      `json:"column"`
	EndLine   int      `json:"end_line"`
	EndColumn int      `json:"end_column"`
	Start     int      `json:"start"`
	End       int      `json:"end"`
	Name      string   `json:"name"`  // variable the value is assigned to
	Match     string   `json:"match"` // raw value; mask before display
	Rule      string   `json:"rule"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
	Entropy   float64  `json:"entropy,omitempty"`
}

// IsSecret reports whether f is a high-entropy secret, the only kind the
// vault remediates.
func (f Finding) IsSecret() bool { return f.Rule == RuleHighEntropy }
