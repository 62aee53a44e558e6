package detect

import (
	"regexp"
	"strings"
)

const (
	DefaultBaseThreshold      = 4.5
	DefaultSensitiveThreshold = 3.2
	DefaultMinLength          = 12
	DefaultPlaceholderMarker  = "placeholder"
)

// DefaultDummyValues lists known-weak values, lowercase.
var DefaultDummyValues = []string{
	"password", "changeme", "123456", "admin", "test",
	"sk_test_123", "your_api_key",
}

var reSensitiveName = regexp.MustCompile(`(?i)(api_?key|secret|token|password|pwd|auth|credential|private)`)

// Policy holds the thresholds and word lists the classifier decides with.
// A Policy is read-only once built; share it rather than rebuilding it.
type Policy struct {
	// BaseThreshold applies to names that do not look sensitive.
	BaseThreshold float64
	// SensitiveThreshold applies to names matched by SensitiveName.
	SensitiveThreshold float64
	// MinLength is the minimum value length, in characters, for a
	// high-entropy finding.
	MinLength int

	DummyValues       map[string]struct{}
	PlaceholderMarker string
	SensitiveName     *regexp.Regexp
}

var defaultPolicy = Policy{
	BaseThreshold:      DefaultBaseThreshold,
	SensitiveThreshold: DefaultSensitiveThreshold,
	MinLength:          DefaultMinLength,
	DummyValues:        toSet(DefaultDummyValues),
	PlaceholderMarker:  DefaultPlaceholderMarker,
	SensitiveName:      reSensitiveName,
}

// DefaultPolicy returns the process-wide default policy. The returned value
// shares its dummy set with every other caller and must not be mutated;
// use WithDummyValues to derive a policy with a different set.
func DefaultPolicy() Policy { return defaultPolicy }

// WithDummyValues returns a copy of p using values (case-insensitive) as
// the dummy set.
func (p Policy) WithDummyValues(values []string) Policy {
	p.DummyValues = toSet(values)
	return p
}

// IsDummy reports whether value is a known-weak value or a placeholder.
func (p Policy) IsDummy(value string) bool {
	lower := strings.ToLower(value)
	if _, ok := p.DummyValues[lower]; ok {
		return true
	}
	return p.PlaceholderMarker != "" && strings.Contains(lower, p.PlaceholderMarker)
}

// IsSensitive reports whether a variable name looks like it names a secret.
func (p Policy) IsSensitive(name string) bool {
	return p.SensitiveName != nil && p.SensitiveName.MatchString(name)
}

// Threshold returns the entropy a value assigned to name must exceed.
func (p Policy) Threshold(name string) float64 {
	if p.IsSensitive(name) {
		return p.SensitiveThreshold
	}
	return p.BaseThreshold
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[strings.ToLower(v)] = struct{}{}
	}
	return out
}
