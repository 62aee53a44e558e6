package sentinel

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/entropy-sentinel/sentinel/internal/engine"
	"github.com/entropy-sentinel/sentinel/internal/report"
	"github.com/entropy-sentinel/sentinel/internal/watch"
)

var flagDebounce time.Duration

func init() {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rescan files as they change",
		Long:  "Scan the tree once, then rescan each edited file after edits settle for the debounce delay.",
		RunE:  runWatch,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "root to watch")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	cmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", 1<<20, "skip files larger than this")
	cmd.Flags().DurationVar(&flagDebounce, "debounce", 0, "quiet period before a rescan (default 500ms)")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(flagPath)
	if err != nil {
		return err
	}
	cfg := s.engineConfig(flagInclude, flagExclude, flagMaxBytes)
	delay := flagDebounce
	if delay <= 0 {
		delay = s.debounce()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	opts := report.PrintOptions{NoColor: s.noColor()}
	scan := func(ctx context.Context, paths []string) {
		run := cfg
		run.Paths = paths
		res, err := engine.ScanWithStats(ctx, run)
		if err != nil {
			if ctx.Err() == nil {
				log.Error().Err(err).Msg("rescan failed")
			}
			return
		}
		if paths == nil {
			fmt.Fprintf(out, "Initial scan: %d files, %d findings\n", res.FilesScanned, len(res.Findings))
		} else {
			fmt.Fprintf(out, "[%s] rescanned %d file(s)\n", time.Now().Format(time.TimeOnly), len(paths))
		}
		if flagJSON {
			_ = writeFindings(out, s, res.Findings, opts)
			return
		}
		report.PrintHighlights(out, res.Findings, func(p string) (string, error) { return readRel(s.root, p) }, opts)
	}

	w, err := watch.New(watch.Options{
		Root:   s.root,
		Delay:  delay,
		Skip:   engine.Skipper(cfg),
		Logger: log.Logger,
	}, scan)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (debounce %s); press Ctrl+C to stop\n", s.root, delay)
	return w.Run(ctx)
}
