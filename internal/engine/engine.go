package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/entropy-sentinel/sentinel/internal/cache"
	"github.com/entropy-sentinel/sentinel/internal/detect"
	"github.com/entropy-sentinel/sentinel/internal/ignore"
	"github.com/entropy-sentinel/sentinel/internal/position"
	"github.com/entropy-sentinel/sentinel/internal/types"
)

// Config controls scanning behavior including scope, performance, and filters.
type Config struct {
	Root string
	// Paths restricts the scan to these files (relative to Root or
	// absolute). Empty means walk Root.
	Paths           []string
	IncludeGlobs    string
	ExcludeGlobs    string
	MaxBytes        int64
	Threads         int
	DefaultExcludes bool
	NoCache         bool
	DryRun          bool
	Progress        func()

	// Classifier defaults to detect.Default().
	Classifier *detect.Classifier
	// Fingerprint identifies the detection settings; cached results made
	// under a different fingerprint are discarded.
	Fingerprint string
}

// Result contains findings and basic scan statistics.
type Result struct {
	Findings     []types.Finding
	FilesScanned int
	FilesCached  int
	Duration     time.Duration
}

// Scan runs a scan and returns only findings (without stats).
func Scan(ctx context.Context, cfg Config) ([]types.Finding, error) {
	res, err := ScanWithStats(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return res.Findings, nil
}

type fileResult struct {
	findings []types.Finding
	hash     string
	cached   bool
	scanned  bool
}

// ScanWithStats runs a scan and returns findings along with timing and
// counts. Findings are ordered by path, then by offset within each file.
func ScanWithStats(ctx context.Context, cfg Config) (Result, error) {
	var result Result
	started := time.Now()

	if cfg.Classifier == nil {
		cfg.Classifier = detect.Default()
	}
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}

	targets, err := Targets(ctx, cfg)
	if err != nil {
		return result, err
	}

	db := cache.DB{Entries: map[string]cache.Entry{}}
	if !cfg.NoCache && !cfg.DryRun {
		if loaded, err := cache.Load(cfg.Root); err == nil && loaded.Fingerprint == cfg.Fingerprint {
			db = loaded
		}
	}

	results := make([]fileResult, len(targets))
	var progressMu sync.Mutex
	progress := func() {
		if cfg.Progress == nil {
			return
		}
		progressMu.Lock()
		cfg.Progress()
		progressMu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(threads)
	for i, rel := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			defer progress()
			if cfg.DryRun {
				results[i] = fileResult{scanned: true}
				return nil
			}
			data, err := os.ReadFile(filepath.Join(cfg.Root, rel))
			if err != nil {
				log.Debug().Err(err).Str("path", rel).Msg("skipping unreadable file")
				return nil
			}
			if looksBinary(data) || looksNonTextMIME(rel, data) {
				return nil
			}
			h := cache.Hash(data)
			if fs, ok := db.Lookup(rel, h); ok {
				results[i] = fileResult{findings: fs, hash: h, cached: true, scanned: true}
				return nil
			}
			results[i] = fileResult{
				findings: ScanText(cfg.Classifier, rel, string(data)),
				hash:     h,
				scanned:  true,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, fmt.Errorf("scan %s: %w", cfg.Root, err)
	}

	updated := cache.DB{Fingerprint: cfg.Fingerprint, Entries: map[string]cache.Entry{}}
	if len(cfg.Paths) > 0 {
		// a partial scan keeps entries for files it did not visit
		for k, v := range db.Entries {
			updated.Entries[k] = v
		}
	}
	for i, r := range results {
		if !r.scanned {
			continue
		}
		result.FilesScanned++
		if r.cached {
			result.FilesCached++
		}
		result.Findings = append(result.Findings, r.findings...)
		if r.hash != "" {
			updated.Entries[targets[i]] = cache.Entry{Hash: r.hash, Findings: r.findings}
		}
	}
	if !cfg.NoCache && !cfg.DryRun {
		if err := cache.Save(cfg.Root, updated); err != nil {
			log.Debug().Err(err).Msg("cache not saved")
		}
	}
	result.Duration = time.Since(started)
	return result, nil
}

// ScanText scans one document and locates each finding in it.
func ScanText(c *detect.Classifier, path, text string) []types.Finding {
	found := c.Scan(text)
	if len(found) == 0 {
		return nil
	}
	ix := position.NewIndex(text)
	out := make([]types.Finding, 0, len(found))
	for _, f := range found {
		out = append(out, locate(path, text, ix, f))
	}
	return out
}

// ScanFile reads and scans a single file under root.
func ScanFile(c *detect.Classifier, root, rel string) ([]types.Finding, error) {
	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		return nil, err
	}
	return ScanText(c, rel, string(data)), nil
}

func locate(path, text string, ix *position.Index, f detect.Finding) types.Finding {
	start, end := ix.At(f.Range.Start), ix.At(f.Range.End)
	out := types.Finding{
		Path:      filepath.ToSlash(path),
		Line:      start.Line,
		Column:    start.Column,
		EndLine:   end.Line,
		EndColumn: end.Column,
		Start:     f.Range.Start,
		End:       f.Range.End,
		Name:      f.Name,
		Match:     text[f.Range.Start:f.Range.End],
		Message:   f.Message,
		Entropy:   f.Entropy,
	}
	switch f.Kind {
	case detect.HighEntropySecret:
		out.Rule = types.RuleHighEntropy
		out.Severity = types.SevHigh
	default:
		out.Rule = types.RuleDummyKey
		out.Severity = types.SevLow
	}
	return out
}

// Fingerprint derives a cache fingerprint from a policy and engine name.
func Fingerprint(p detect.Policy, engineName string) string {
	s := fmt.Sprintf("%s|%g|%g|%d|%s", engineName, p.BaseThreshold, p.SensitiveThreshold, p.MinLength, p.PlaceholderMarker)
	for _, v := range sortedKeys(p.DummyValues) {
		s += "|" + v
	}
	if p.SensitiveName != nil {
		s += "|" + p.SensitiveName.String()
	}
	return cache.HashString(s)
}

// loadIgnore reads the root's ignore file; a missing file ignores nothing.
func loadIgnore(root string) ignore.Matcher {
	m, err := ignore.Load(filepath.Join(root, ignore.FileName))
	if err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("reading ignore file")
	}
	return m
}
