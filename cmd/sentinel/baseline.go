package sentinel

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/entropy-sentinel/sentinel/internal/engine"
	"github.com/entropy-sentinel/sentinel/internal/report"
)

func init() {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage baselines",
	}

	var path, file string
	update := &cobra.Command{
		Use:   "update",
		Short: "Accept every current finding into the baseline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(path)
			if err != nil {
				return err
			}
			cfg := s.engineConfig("", "", 0)
			results, err := engine.Scan(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if !filepath.IsAbs(file) {
				file = filepath.Join(s.root, file)
			}
			if err := report.SaveBaseline(file, results); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Baseline updated with %d finding(s).\n", len(results))
			return nil
		},
	}
	update.Flags().StringVarP(&path, "path", "p", ".", "root to scan")
	update.Flags().StringVar(&file, "file", report.DefaultBaselineFile, "baseline file, relative to --path")

	rootCmd.AddCommand(cmd)
	cmd.AddCommand(update)
}
