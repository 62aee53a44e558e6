package engine

import (
	"context"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/entropy-sentinel/sentinel/internal/ignore"
)

// Targets lists the files a scan would read, relative to cfg.Root and in
// lexical order.
func Targets(ctx context.Context, cfg Config) ([]string, error) {
	ign := loadIgnore(cfg.Root)
	if len(cfg.Paths) > 0 {
		return explicitTargets(cfg, ign), nil
	}
	var out []string
	err := Walk(ctx, cfg, ign, func(rel string) { out = append(out, rel) })
	return out, err
}

// CountTargets returns the number of files a scan would read.
func CountTargets(ctx context.Context, cfg Config) (int, error) {
	t, err := Targets(ctx, cfg)
	return len(t), err
}

// Walk traverses the working tree and invokes handle for each eligible file.
func Walk(ctx context.Context, cfg Config, ign ignore.Matcher, handle func(rel string)) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return filepath.WalkDir(cfg.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if d.IsDir() {
			if p == cfg.Root {
				return nil
			}
			name := d.Name()
			if isPrivate(name) || (cfg.DefaultExcludes && isDefaultDirExcluded(name)) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, _ := filepath.Rel(cfg.Root, p)
		info, _ := d.Info()
		if !eligible(cfg, ign, rel, info) {
			return nil
		}
		handle(filepath.ToSlash(rel))
		return nil
	})
}

// Skipper returns a predicate reporting whether a root-relative path is
// outside every scan of cfg. Size limits are not applied.
func Skipper(cfg Config) func(rel string, isDir bool) bool {
	ign := loadIgnore(cfg.Root)
	return func(rel string, isDir bool) bool {
		rel = filepath.ToSlash(rel)
		if hasPrivateComponent(rel) {
			return true
		}
		if isDir {
			if !cfg.DefaultExcludes {
				return false
			}
			for _, part := range strings.Split(rel, "/") {
				if isDefaultDirExcluded(part) {
					return true
				}
			}
			return false
		}
		return !eligible(cfg, ign, rel, nil)
	}
}

func explicitTargets(cfg Config, ign ignore.Matcher) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range cfg.Paths {
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(cfg.Root, p)
		}
		rel, err := filepath.Rel(cfg.Root, abs)
		if err != nil || strings.HasPrefix(rel, "..") {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || info.IsDir() {
			continue
		}
		rel = filepath.ToSlash(rel)
		if seen[rel] || hasPrivateComponent(rel) || !eligible(cfg, ign, rel, info) {
			continue
		}
		seen[rel] = true
		out = append(out, rel)
	}
	sort.Strings(out)
	return out
}

func eligible(cfg Config, ign ignore.Matcher, rel string, info fs.FileInfo) bool {
	if isPrivate(filepath.Base(rel)) {
		return false
	}
	if !allowedByGlobs(rel, cfg) {
		return false
	}
	if ign.Match(rel) {
		return false
	}
	if info != nil && cfg.MaxBytes > 0 && info.Size() > cfg.MaxBytes {
		return false
	}
	if cfg.DefaultExcludes && isDefaultFileExcluded(strings.ToLower(filepath.ToSlash(rel))) {
		return false
	}
	return true
}

func looksBinary(b []byte) bool {
	const sniff = 800
	n := min(len(b), sniff)
	for i := 0; i < n; i++ {
		if b[i] == 0 {
			return true
		}
	}
	return false
}

// looksNonTextMIME uses the file extension and a tiny content sniff to skip
// clearly non-text content (e.g., images) in addition to NUL-byte detection.
func looksNonTextMIME(path string, b []byte) bool {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		if strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "video/") || strings.HasPrefix(ct, "audio/") {
			return true
		}
		if strings.Contains(ct, "zip") || strings.Contains(ct, "tar") || strings.Contains(ct, "gzip") {
			return true
		}
	}
	if len(b) >= 8 && string(b[:8]) == "\x89PNG\r\n\x1a\n" {
		return true
	}
	if len(b) >= 4 && b[0] == 'P' && b[1] == 'K' {
		return true
	}
	return false
}
