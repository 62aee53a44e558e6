package core

import (
	"context"
	"time"

	"github.com/entropy-sentinel/sentinel/internal/debounce"
	"github.com/entropy-sentinel/sentinel/internal/detect"
	"github.com/entropy-sentinel/sentinel/internal/engine"
	"github.com/entropy-sentinel/sentinel/internal/entropy"
	"github.com/entropy-sentinel/sentinel/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type (
	// Finding is a classified value in one text, located by byte range.
	Finding = detect.Finding
	Range   = detect.Range
	Kind    = detect.Kind
	Policy  = detect.Policy

	// FileFinding is a Finding located in a file by path, line and column.
	FileFinding = types.Finding
	Config      = engine.Config
	Result      = engine.Result
)

const (
	HighEntropySecret = detect.HighEntropySecret
	DummyKey          = detect.DummyKey
)

// ComputeEntropy returns the Shannon entropy of text in bits per character.
// The empty string has entropy 0.
func ComputeEntropy(text string) float64 {
	return entropy.Shannon(text)
}

// Scan classifies every quoted assignment in text with the default policy.
// Findings are ordered by start offset; the result is never nil.
func Scan(text string) []Finding {
	return detect.Scan(text)
}

// ScanWithPolicy is Scan with a custom policy.
func ScanWithPolicy(text string, p Policy) []Finding {
	return detect.NewClassifier(p, nil).Scan(text)
}

// DefaultPolicy returns the built-in thresholds and dummy values.
func DefaultPolicy() Policy { return detect.DefaultPolicy() }

// Debounce returns a trigger that runs action once, delay after the last
// call in a burst.
func Debounce(action func(), delay time.Duration) func() {
	return debounce.Func(action, delay)
}

// ScanDir scans files under cfg.Root.
func ScanDir(ctx context.Context, cfg Config) (Result, error) {
	return engine.ScanWithStats(ctx, cfg)
}
