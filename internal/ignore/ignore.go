// Package ignore matches repository-relative paths against the patterns in
// a .sentinelignore file.
package ignore

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// FileName is the ignore file looked up at the scan root.
const FileName = ".sentinelignore"

// Matcher holds parsed ignore patterns. The zero value matches nothing.
type Matcher struct {
	patterns []string
}

// Load reads patterns from path, one per line. Blank lines and lines
// starting with '#' are skipped. A missing file yields an empty Matcher
// together with the open error.
func Load(p string) (Matcher, error) {
	f, err := os.Open(p)
	if err != nil {
		return Matcher{}, err
	}
	defer f.Close()
	var m Matcher
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m.patterns = append(m.patterns, line)
	}
	return m, sc.Err()
}

// New returns a Matcher for the given patterns.
func New(patterns ...string) Matcher {
	return Matcher{patterns: patterns}
}

// Match reports whether rel is ignored. A pattern ending in '/' ignores a
// directory at any depth; a pattern without '/' is matched against the base
// name; anything else is a doublestar glob over the whole path.
func (m Matcher) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, p := range m.patterns {
		if dir, ok := strings.CutSuffix(p, "/"); ok {
			if strings.HasPrefix(rel, dir+"/") || strings.Contains(rel, "/"+dir+"/") {
				return true
			}
			continue
		}
		if !strings.Contains(p, "/") {
			if ok, _ := doublestar.Match(p, path.Base(rel)); ok {
				return true
			}
			continue
		}
		if ok, _ := doublestar.Match(strings.TrimPrefix(p, "/"), rel); ok {
			return true
		}
	}
	return false
}
