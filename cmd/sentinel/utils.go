package sentinel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/entropy-sentinel/sentinel/internal/config"
	"github.com/entropy-sentinel/sentinel/internal/detect"
	"github.com/entropy-sentinel/sentinel/internal/engine"
)

const (
	engineRE2     = "re2"
	engineRegexp2 = "regexp2"

	// backtrackTimeout bounds one regexp2 match over one document.
	backtrackTimeout = 2 * time.Second
)

// settings is the resolved CLI > local > global configuration for one root.
type settings struct {
	root       string
	global     config.FileConfig
	local      config.FileConfig
	engineName string
	classifier *detect.Classifier
}

func loadSettings(path string) (settings, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return settings{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	s := settings{root: abs}
	if c, err := config.LoadGlobal(); err == nil {
		s.global = c
	} else if !errors.Is(err, config.ErrNoConfig) {
		log.Warn().Err(err).Msg("ignoring global config")
	}
	if c, err := config.LoadLocal(abs); err == nil {
		s.local = c
	} else if !errors.Is(err, config.ErrNoConfig) {
		return s, fmt.Errorf("local config: %w", err)
	}
	s.engineName = strings.ToLower(pickString(flagEngine, s.local.Engine, s.global.Engine))
	if s.engineName == "" {
		s.engineName = engineRE2
	}
	m, err := newMatcher(s.engineName)
	if err != nil {
		return s, err
	}
	s.classifier = detect.NewClassifier(config.Policy(s.global, s.local), m).WithLogger(log.Logger)
	return s, nil
}

func newMatcher(name string) (detect.Matcher, error) {
	switch name {
	case engineRE2:
		return detect.NewRE2Matcher(), nil
	case engineRegexp2:
		return detect.NewBacktrackMatcher(backtrackTimeout), nil
	default:
		return nil, fmt.Errorf("unknown engine %q (want %s or %s)", name, engineRE2, engineRegexp2)
	}
}

// engineConfig builds the engine configuration shared by scan, watch and
// baseline.
func (s settings) engineConfig(include, exclude string, maxBytes int64) engine.Config {
	defaultExcludes := flagDefaultExcludes
	if !rootCmd.PersistentFlags().Changed("default-excludes") {
		if s.local.DefaultExcludes != nil {
			defaultExcludes = *s.local.DefaultExcludes
		} else if s.global.DefaultExcludes != nil {
			defaultExcludes = *s.global.DefaultExcludes
		}
	}
	return engine.Config{
		Root:            s.root,
		IncludeGlobs:    pickString(include, s.local.Include, s.global.Include),
		ExcludeGlobs:    pickString(exclude, s.local.Exclude, s.global.Exclude),
		MaxBytes:        pickInt64(maxBytes, s.local.MaxBytes, s.global.MaxBytes),
		Threads:         pickInt(flagThreads, s.local.Threads, s.global.Threads),
		DefaultExcludes: defaultExcludes,
		NoCache:         flagNoCache,
		DryRun:          flagDryRun,
		Classifier:      s.classifier,
		Fingerprint:     engine.Fingerprint(s.classifier.Policy(), s.engineName),
	}
}

func (s settings) failOn() string {
	if v := pickString(flagFailOn, s.local.FailOn, s.global.FailOn); v != "" {
		return v
	}
	return "medium"
}

func (s settings) noColor() bool {
	return pickBool(flagNoColor, s.local.NoColor, s.global.NoColor) || !colorEnabled()
}

func (s settings) debounce() time.Duration {
	if s.local.Debounce != nil {
		return s.local.GetDebounce()
	}
	return s.global.GetDebounce()
}

func (s settings) vault() config.VaultConfig {
	lv, gv := s.local.GetVaultConfig(), s.global.GetVaultConfig()
	return config.VaultConfig{
		File:      pickPtr(lv.File, gv.File),
		Reference: pickPtr(lv.Reference, gv.Reference),
	}
}

// colorEnabled reports whether stdout is a terminal that wants colour.
func colorEnabled() bool {
	if flagNoColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func pickPtr(local, global *string) *string {
	if local != nil && *local != "" {
		return local
	}
	return global
}

func pickString(cli string, local, global *string) string {
	if cli != "" {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return ""
}

func pickInt(cli int, local, global *int) int {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickInt64(cli int64, local, global *int64) int64 {
	if cli != 0 {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return 0
}

func pickBool(cli bool, local, global *bool) bool {
	if cli {
		return true
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return false
}

func readRel(root, rel string) (string, error) {
	b, err := os.ReadFile(filepath.Join(root, rel))
	return string(b), err
}
