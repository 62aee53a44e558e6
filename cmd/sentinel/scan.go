package sentinel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/entropy-sentinel/sentinel/internal/audit"
	"github.com/entropy-sentinel/sentinel/internal/cache"
	"github.com/entropy-sentinel/sentinel/internal/engine"
	"github.com/entropy-sentinel/sentinel/internal/report"
	"github.com/entropy-sentinel/sentinel/internal/types"
)

var (
	flagPath      string
	flagInclude   string
	flagExclude   string
	flagMaxBytes  int64
	flagText      bool
	flagHighlight bool
	flagBaseline  string
	flagNoAudit   bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan [file...]",
		Short: "Scan files for hard-coded secrets",
		Long:  "Scan the tree under --path, or only the given files, and report high-entropy secrets and placeholder keys.",
		RunE:  runScan,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "root to scan")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	cmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", 1<<20, "skip files larger than this")
	cmd.Flags().BoolVar(&flagText, "text", false, "output in plain text columnar format")
	cmd.Flags().BoolVar(&flagHighlight, "highlight", false, "show each finding in its source line")
	cmd.Flags().StringVar(&flagBaseline, "baseline", report.DefaultBaselineFile, "baseline file, relative to --path")
	cmd.Flags().BoolVar(&flagNoAudit, "no-audit", false, "do not record this scan in the audit log")
}

func runScan(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(flagPath)
	if err != nil {
		return err
	}
	cfg := s.engineConfig(flagInclude, flagExclude, flagMaxBytes)
	cfg.Paths = args

	ctx := cmd.Context()
	machine := flagJSON || flagSARIF
	stderr := cmd.ErrOrStderr()

	total, _ := engine.CountTargets(ctx, cfg)
	if !machine {
		fmt.Fprintf(stderr, "Scanning %s (%s engine)...\n", s.root, s.engineName)
		progressed := 0
		if total > 0 {
			cfg.Progress = func() {
				progressed++
				if progressed%10 == 0 || progressed == total {
					pct := float64(progressed) / float64(total) * 100
					fmt.Fprintf(stderr, "\r[%d/%d] %.0f%%", progressed, total, pct)
				}
			}
		}
	}
	res, err := engine.ScanWithStats(ctx, cfg)
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}
	if total > 0 && !machine {
		fmt.Fprintln(stderr)
	}
	if cfg.DryRun {
		return printDryRun(ctx, cmd.OutOrStdout(), cfg)
	}

	baselinePath := flagBaseline
	if !filepath.IsAbs(baselinePath) {
		baselinePath = filepath.Join(s.root, baselinePath)
	}
	base, err := report.LoadBaseline(baselinePath)
	if err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("file", baselinePath).Msg("ignoring unreadable baseline")
	}
	fresh := report.FilterNewFindings(res.Findings, base)
	if fresh == nil {
		fresh = []types.Finding{}
	} // no `null` in JSON
	report.Sort(fresh)
	// vault --finding N counts secrets in this list, so it must match what is printed
	if err := cache.SaveListing(s.root, fresh); err != nil {
		log.Debug().Err(err).Msg("last scan listing not saved")
	}

	if !flagNoAudit {
		rec := audit.ScanRecord(s.root, res.Findings, fresh, res.FilesScanned, res.Duration)
		if err := audit.New(s.root).Append(rec); err != nil {
			log.Debug().Err(err).Msg("audit record not written")
		}
	}

	if err := writeFindings(cmd.OutOrStdout(), s, fresh, report.PrintOptions{
		NoColor:      s.noColor(),
		Duration:     res.Duration,
		FilesScanned: res.FilesScanned,
		FilesCached:  res.FilesCached,
	}); err != nil {
		return err
	}

	if report.ShouldFail(fresh, s.failOn()) {
		return exitError{code: 1}
	}
	return nil
}

func writeFindings(w io.Writer, s settings, findings []types.Finding, opts report.PrintOptions) error {
	switch {
	case flagSARIF:
		if err := report.WriteSARIF(w, findings, version); err != nil {
			return fmt.Errorf("sarif error: %w", err)
		}
	case flagJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(findings)
	case flagHighlight:
		report.PrintHighlights(w, findings, func(p string) (string, error) { return readRel(s.root, p) }, opts)
	case flagText:
		report.PrintText(w, findings, opts)
	default:
		report.PrintTable(w, findings, opts)
	}
	return nil
}

func printDryRun(ctx context.Context, w io.Writer, cfg engine.Config) error {
	targets, err := engine.Targets(ctx, cfg)
	if err != nil {
		return err
	}
	for _, t := range targets {
		fmt.Fprintln(w, t)
	}
	fmt.Fprintf(w, "(dry-run) %d files would be scanned\n", len(targets))
	return nil
}
