package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/entropy-sentinel/sentinel/internal/position"
	"github.com/entropy-sentinel/sentinel/internal/types"
)

// Secrets are painted red and bold, weak keys yellow and underlined.
var (
	secretStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Background(lipgloss.Color("52")).Bold(true)
	weakKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Underline(true)
	gutterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// SourceFunc returns the text of a scanned file.
type SourceFunc func(path string) (string, error)

// PrintHighlights prints each finding with its source line, the value span
// masked and styled by kind. Findings whose source cannot be loaded are
// printed without an excerpt.
func PrintHighlights(w io.Writer, findings []types.Finding, src SourceFunc, opts PrintOptions) {
	Sort(findings)
	var (
		curPath string
		text    string
		ix      *position.Index
	)
	for _, f := range findings {
		if f.Path != curPath {
			curPath = f.Path
			ix = nil
			if s, err := src(f.Path); err == nil {
				text, ix = s, position.NewIndex(s)
			}
		}
		fmt.Fprintf(w, "%s  %s  %s\n", location(f), f.Rule, f.Message)
		if ix == nil || f.End > len(text) || f.Line != f.EndLine {
			continue
		}
		start := ix.LineStart(f.Line)
		line := ix.Line(f.Line)
		from, to := f.Start-start, f.End-start
		if from < 0 || to > len(line) {
			continue
		}
		fmt.Fprintf(w, "%s %s%s%s\n",
			gutter(f.Line, opts.NoColor),
			line[:from],
			paint(f, maskValue(f.Match), opts.NoColor),
			line[to:])
	}
	if len(findings) > 0 {
		fmt.Fprintln(w)
	}
	printSummary(w, findings, opts)
}

func paint(f types.Finding, s string, noColor bool) string {
	if noColor {
		return s
	}
	if f.IsSecret() {
		return secretStyle.Render(s)
	}
	return weakKeyStyle.Render(s)
}

func gutter(line int, noColor bool) string {
	g := fmt.Sprintf("%5d |", line)
	if noColor {
		return g
	}
	return gutterStyle.Render(strings.TrimRight(g, " "))
}
