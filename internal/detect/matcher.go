package detect

import (
	"regexp"
	"time"

	"github.com/dlclark/regexp2"
)

// Capture group names every Matcher reports.
const (
	GroupName  = "name"
	GroupValue = "value"
)

// Span is a half-open [Start, End) byte span.
type Span struct {
	Start int
	End   int
}

// Match is one pattern match with absolute byte offsets for the whole match
// and for each named capture that took part in it.
type Match struct {
	Span
	Groups map[string]Span
}

// Group returns the span of a named capture.
func (m Match) Group(name string) (Span, bool) {
	s, ok := m.Groups[name]
	return s, ok
}

// Matcher finds all non-overlapping assignment matches in text, left to
// right. Implementations must report GroupName and GroupValue.
type Matcher interface {
	FindAll(text string) []Match
}

// Both engines share keyword, whitespace and line-character classes so they
// agree on every input. Whitespace is the ASCII set Go's \s uses; a value
// never spans a line terminator.
const (
	keywords  = `(?:const|let|var|api_key|token|secret|password|auth)`
	ws        = `[\t\n\f\r ]`
	ident     = `[a-zA-Z0-9_]+`
	valueChar = `[^\n\r\x{2028}\x{2029}]`
)

// RE2Matcher is the default engine, backed by the standard regexp package.
// RE2 has no backreferences, so the closing quote is written as two
// alternatives and the value is read from whichever one matched.
type RE2Matcher struct {
	re *regexp.Regexp
}

var reAssignment = regexp.MustCompile(keywords + ws + `+(?P<name>` + ident + `)` + ws + `*[:=]` + ws +
	`*(?:"(?P<dq>` + valueChar + `*?)"|'(?P<sq>` + valueChar + `*?)')`)

// NewRE2Matcher returns the default matcher.
func NewRE2Matcher() *RE2Matcher {
	return &RE2Matcher{re: reAssignment}
}

func (m *RE2Matcher) FindAll(text string) []Match {
	locs := m.re.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	iName := m.re.SubexpIndex("name")
	iDQ := m.re.SubexpIndex("dq")
	iSQ := m.re.SubexpIndex("sq")
	out := make([]Match, 0, len(locs))
	for _, loc := range locs {
		groups := map[string]Span{
			GroupName: {Start: loc[2*iName], End: loc[2*iName+1]},
		}
		if loc[2*iDQ] >= 0 {
			groups[GroupValue] = Span{Start: loc[2*iDQ], End: loc[2*iDQ+1]}
		} else {
			groups[GroupValue] = Span{Start: loc[2*iSQ], End: loc[2*iSQ+1]}
		}
		out = append(out, Match{Span: Span{Start: loc[0], End: loc[1]}, Groups: groups})
	}
	return out
}

// BacktrackMatcher uses a backtracking engine so the closing quote can be
// a backreference to the opening one.
type BacktrackMatcher struct {
	re *regexp2.Regexp
}

const backtrackPattern = keywords + ws + `+(?<name>` + ident + `)` + ws + `*[:=]` + ws +
	`*(?<quote>["'])(?<value>[^\n\r\u2028\u2029]*?)\k<quote>`

// NewBacktrackMatcher compiles the backreference pattern. timeout bounds a
// single search; zero means no limit.
func NewBacktrackMatcher(timeout time.Duration) *BacktrackMatcher {
	re := regexp2.MustCompile(backtrackPattern, regexp2.None)
	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	return &BacktrackMatcher{re: re}
}

// FindAll stops at the first engine error (a timeout) and returns the
// matches found so far.
func (m *BacktrackMatcher) FindAll(text string) []Match {
	var out []Match
	var offsets []int
	match, err := m.re.FindStringMatch(text)
	for err == nil && match != nil {
		if offsets == nil {
			offsets = runeOffsets(text)
		}
		groups := map[string]Span{}
		for _, name := range []string{GroupName, GroupValue} {
			g := match.GroupByName(name)
			if g == nil || len(g.Captures) == 0 {
				continue
			}
			groups[name] = Span{Start: offsets[g.Index], End: offsets[g.Index+g.Length]}
		}
		out = append(out, Match{
			Span:   Span{Start: offsets[match.Index], End: offsets[match.Index+match.Length]},
			Groups: groups,
		})
		match, err = m.re.FindNextMatch(match)
	}
	return out
}

// runeOffsets maps rune indices (as regexp2 reports them) to byte offsets.
// The extra trailing entry maps len(runes) to len(text).
func runeOffsets(text string) []int {
	offsets := make([]int, 0, len(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	return append(offsets, len(text))
}
