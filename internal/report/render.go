// Package report renders findings for humans and machines: tables, plain
// text, highlighted source excerpts, SARIF, and baselines.
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/entropy-sentinel/sentinel/internal/types"
)

type PrintOptions struct {
	NoColor      bool
	Duration     time.Duration
	FilesScanned int
	FilesCached  int
}

var (
	sevHighStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	sevMedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	sevLowStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// Sort orders findings by path, then position.
func Sort(findings []types.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Start < b.Start
	})
}

// PrintTable renders findings as a bordered table followed by a summary.
func PrintTable(w io.Writer, findings []types.Finding, opts PrintOptions) {
	Sort(findings)
	if len(findings) == 0 {
		fmt.Fprintln(w, "No secrets found ✅")
	} else {
		table := tablewriter.NewWriter(w)
		table.Header("SEVERITY", "RULE", "LOCATION", "VARIABLE", "VALUE")
		for _, f := range findings {
			_ = table.Append([]string{
				severity(f.Severity, opts.NoColor),
				f.Rule,
				location(f),
				f.Name,
				maskValue(f.Match),
			})
		}
		_ = table.Render()
	}
	printSummary(w, findings, opts)
}

// PrintText renders findings one per line without borders.
func PrintText(w io.Writer, findings []types.Finding, opts PrintOptions) {
	Sort(findings)
	if len(findings) == 0 {
		fmt.Fprintln(w, "No secrets found ✅")
	} else {
		maxRule := 8
		for _, f := range findings {
			maxRule = max(maxRule, len(f.Rule))
		}
		fmt.Fprintf(w, "Findings: %d\n", len(findings))
		for _, f := range findings {
			fmt.Fprintf(w, "%-6s %-*s %s  %s  %s\n", severity(f.Severity, opts.NoColor), maxRule, f.Rule, location(f), f.Name, maskValue(f.Match))
		}
	}
	printSummary(w, findings, opts)
}

func printSummary(w io.Writer, findings []types.Finding, opts PrintOptions) {
	if opts.Duration <= 0 && opts.FilesScanned <= 0 {
		return
	}
	high, med, low := Counts(findings)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Findings: %d (high: %d, medium: %d, low: %d)\n", len(findings), high, med, low)
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
	if opts.FilesScanned > 0 {
		fmt.Fprintf(w, "Files scanned: %d", opts.FilesScanned)
		if opts.FilesCached > 0 {
			fmt.Fprintf(w, " (%d from cache)", opts.FilesCached)
		}
		fmt.Fprintln(w)
	}
}

// Counts tallies findings by severity.
func Counts(findings []types.Finding) (high, med, low int) {
	for _, f := range findings {
		switch f.Severity {
		case types.SevHigh:
			high++
		case types.SevMed:
			med++
		default:
			low++
		}
	}
	return high, med, low
}

func location(f types.Finding) string {
	return fmt.Sprintf("%s:%d:%d", f.Path, f.Line, f.Column)
}

func maskValue(s string) string {
	r := []rune(s)
	if len(r) <= 8 {
		return "********"
	}
	return string(r[:4]) + "…" + string(r[len(r)-4:])
}

func severity(s types.Severity, noColor bool) string {
	if noColor {
		return string(s)
	}
	switch s {
	case types.SevHigh:
		return sevHighStyle.Render(string(s))
	case types.SevMed:
		return sevMedStyle.Render(string(s))
	default:
		return sevLowStyle.Render(string(s))
	}
}
