// Package vault moves a hard-coded secret out of a source file into a
// dotenv store and replaces the literal with an environment reference.
package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/entropy-sentinel/sentinel/internal/detect"
	"github.com/entropy-sentinel/sentinel/internal/position"
)

const (
	DefaultFile      = ".env"
	DefaultReference = "process.env.%s"
)

var (
	ErrNoVariableName   = errors.New("could not detect variable name; select the full assignment")
	ErrNoProjectRoot    = errors.New("no project root found")
	ErrDeclined         = errors.New("overwrite declined")
	ErrRangeOutOfBounds = errors.New("range is not a quoted literal inside the file")
)

var declRx = regexp.MustCompile(`(?:const|let|var|api_key|token|secret)\s+([A-Za-z0-9_]+)\s*[:=]\s*`)

// DeriveKey returns the upper-cased variable name declared on line.
func DeriveKey(line string) (string, error) {
	m := declRx.FindStringSubmatch(line)
	if m == nil {
		return "", ErrNoVariableName
	}
	return strings.ToUpper(m[1]), nil
}

// ConfirmFunc is asked whether an existing key may be written again.
type ConfirmFunc func(key string) bool

type Options struct {
	// Root is used when the file is not inside a git work tree.
	Root      string
	File      string
	Reference string
	Confirm   ConfirmFunc
	// GitIgnore adds the store file to the project's .gitignore.
	GitIgnore bool
	DryRun    bool
	Logger    zerolog.Logger
}

type Result struct {
	Key         string
	EnvPath     string
	Replacement string
	Created     bool
	Replaced    bool // key was already present
}

// Secret vaults the value occupying r in the file at path. r covers the
// value only; the quote on each side is replaced along with it. Every check,
// including that path is writable, runs before the store is touched. Only a
// failure of the final rewrite can leave the value in the store with path
// unchanged, and that error names the store.
func Secret(path string, r detect.Range, opts Options) (Result, error) {
	if opts.File == "" {
		opts.File = DefaultFile
	}
	if opts.Reference == "" {
		opts.Reference = DefaultReference
	}
	var res Result

	raw, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("read %s: %w", path, err)
	}
	src := string(raw)
	if r.Start < 1 || r.End < r.Start || r.End+1 > len(src) {
		return res, fmt.Errorf("%w: [%d,%d) in %d bytes", ErrRangeOutOfBounds, r.Start, r.End, len(src))
	}
	q := src[r.Start-1]
	if (q != '"' && q != '\'') || src[r.End] != q {
		return res, fmt.Errorf("%w: [%d,%d) is not enclosed in matching quotes", ErrRangeOutOfBounds, r.Start, r.End)
	}
	value := src[r.Start:r.End]

	ix := position.NewIndex(src)
	key, err := DeriveKey(ix.Line(ix.At(r.Start).Line))
	if err != nil {
		return res, err
	}
	res.Key = key

	abs, err := filepath.Abs(path)
	if err != nil {
		return res, fmt.Errorf("resolve %s: %w", path, err)
	}
	root, err := ProjectRoot(filepath.Dir(abs), opts.Root)
	if err != nil {
		return res, err
	}
	store := Store{Path: filepath.Join(root, opts.File)}
	res.EnvPath = store.Path

	exists, err := store.Exists()
	if err != nil {
		return res, err
	}
	res.Created = !exists
	if exists {
		has, err := store.Has(key)
		if err != nil {
			return res, err
		}
		if has {
			if opts.Confirm == nil || !opts.Confirm(key) {
				return res, fmt.Errorf("%w: %s already exists in %s", ErrDeclined, key, store.Path)
			}
			res.Replaced = true
		}
	}

	res.Replacement = fmt.Sprintf(opts.Reference, key)
	log := opts.Logger.With().Str("key", key).Str("store", store.Path).Logger()
	if opts.DryRun {
		log.Debug().Msg("dry run; nothing written")
		return res, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return res, err
	}
	w, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return res, fmt.Errorf("rewrite %s: %w", path, err)
	}
	w.Close()

	if err := store.Append(key, value); err != nil {
		return res, err
	}
	if opts.GitIgnore {
		if err := appendIgnore(root, opts.File); err != nil {
			log.Warn().Err(err).Msg("could not update .gitignore")
		}
	}

	out := src[:r.Start-1] + res.Replacement + src[r.End+1:]
	if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
		return res, fmt.Errorf("rewrite %s (value already stored in %s): %w", path, store.Path, err)
	}
	log.Debug().Str("file", path).Msg("vaulted")
	return res, nil
}
