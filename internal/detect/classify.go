package detect

import (
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/entropy-sentinel/sentinel/internal/entropy"
)

// Classifier turns assignment candidates into findings under a Policy.
type Classifier struct {
	policy  Policy
	matcher Matcher
	log     zerolog.Logger
}

// NewClassifier returns a classifier. A nil matcher selects the RE2 engine.
func NewClassifier(p Policy, m Matcher) *Classifier {
	if m == nil {
		m = NewRE2Matcher()
	}
	return &Classifier{policy: p, matcher: m, log: zerolog.Nop()}
}

// WithLogger returns a copy of c that logs each decision at debug level.
// Values are never logged.
func (c *Classifier) WithLogger(l zerolog.Logger) *Classifier {
	cp := *c
	cp.log = l
	return &cp
}

// Policy returns the policy c decides with.
func (c *Classifier) Policy() Policy { return c.policy }

// Scan extracts candidates from text and classifies them. Findings are
// ordered by ascending start offset. Scan never fails; text without
// assignments yields an empty result.
func (c *Classifier) Scan(text string) []Finding {
	return c.Classify(Extract(text, c.matcher))
}

// Classify applies, per candidate: the dummy check, then the name-dependent
// entropy threshold together with the minimum length.
func (c *Classifier) Classify(cands []Candidate) []Finding {
	out := []Finding{}
	for _, cand := range cands {
		if f, ok := c.classify(cand); ok {
			out = append(out, f)
		}
	}
	return out
}

func (c *Classifier) classify(cand Candidate) (Finding, bool) {
	r := Range{Start: cand.Start, End: cand.End}
	if c.policy.IsDummy(cand.Value) {
		c.log.Debug().Str("var", cand.Name).Msg("dummy value")
		return Finding{Range: r, Kind: DummyKey, Message: "Weak Key Detected", Name: cand.Name}, true
	}

	h := entropy.Shannon(cand.Value)
	threshold := c.policy.Threshold(cand.Name)
	c.log.Debug().
		Str("var", cand.Name).
		Float64("entropy", h).
		Float64("threshold", threshold).
		Msg("candidate")

	if h > threshold && utf8.RuneCountInString(cand.Value) >= c.policy.MinLength {
		return Finding{
			Range:     r,
			Kind:      HighEntropySecret,
			Message:   fmt.Sprintf("Secret Detected (Entropy: %.2f)", h),
			Name:      cand.Name,
			Entropy:   h,
			Threshold: threshold,
		}, true
	}
	return Finding{}, false
}

var defaultClassifier = NewClassifier(DefaultPolicy(), NewRE2Matcher())

// Default returns the shared classifier built from DefaultPolicy.
func Default() *Classifier { return defaultClassifier }

// Scan classifies text with the default policy and matcher.
func Scan(text string) []Finding {
	return defaultClassifier.Scan(text)
}
