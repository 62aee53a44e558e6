package sentinel

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/entropy-sentinel/sentinel/internal/config"
	"github.com/entropy-sentinel/sentinel/internal/detect"
)

var (
	cfgOutput          string
	cfgThreads         int
	cfgMaxBytes        int64
	cfgNoColor         bool
	cfgDefaultExcludes bool
	cfgEngine          string
	cfgFailOn          string
	cfgForce           bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .sentinel.yml with the default detection settings",
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&cfgOutput, "output", ".sentinel.yml", "output file path")
	initCmd.Flags().IntVar(&cfgThreads, "threads", 0, "worker threads (0=GOMAXPROCS)")
	initCmd.Flags().Int64Var(&cfgMaxBytes, "max-bytes", 1<<20, "skip files larger than this")
	initCmd.Flags().BoolVar(&cfgNoColor, "no-color", false, "disable color output by default")
	initCmd.Flags().BoolVar(&cfgDefaultExcludes, "default-excludes", true, "enable default ignore patterns")
	initCmd.Flags().StringVar(&cfgEngine, "engine", engineRE2, "regex engine: re2 | regexp2")
	initCmd.Flags().StringVar(&cfgFailOn, "fail-on", "medium", "fail on low|medium|high")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if _, err := newMatcher(cfgEngine); err != nil {
		return err
	}
	if _, err := os.Stat(cfgOutput); err == nil && !cfgForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgOutput)
	}
	p := detect.DefaultPolicy()
	fc := config.FileConfig{
		MaxBytes:           int64Ptr(cfgMaxBytes),
		Threads:            intPtr(cfgThreads),
		NoColor:            boolPtr(cfgNoColor),
		DefaultExcludes:    boolPtr(cfgDefaultExcludes),
		FailOn:             strPtr(strings.ToLower(cfgFailOn)),
		BaseThreshold:      floatPtr(p.BaseThreshold),
		SensitiveThreshold: floatPtr(p.SensitiveThreshold),
		MinLength:          intPtr(p.MinLength),
		DummyValues:        detect.DefaultDummyValues,
		Engine:             strPtr(cfgEngine),
		Debounce:           strPtr(config.DefaultDebounce.String()),
		Vault: &config.VaultConfig{
			File:      strPtr(config.DefaultVaultFile),
			Reference: strPtr(config.DefaultVaultReference),
		},
	}

	b, err := yaml.Marshal(&fc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfgOutput, b, 0644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", cfgOutput)
	return nil
}

func strPtr(s string) *string { return &s }
func intPtr(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
func int64Ptr(v int64) *int64     { return &v }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }
