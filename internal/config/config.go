package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/entropy-sentinel/sentinel/internal/detect"
)

// Defaults for the vault section.
const (
	DefaultVaultFile      = ".env"
	DefaultVaultReference = "process.env.%s"
	DefaultDebounce       = 500 * time.Millisecond
)

// ErrNoConfig is returned when no config file exists at the searched
// locations.
var ErrNoConfig = errors.New("no config file")

// LocalNames are the repo-local config file names, in search order.
var LocalNames = []string{".sentinel.yml", ".sentinel.yaml", "sentinel.yml", "sentinel.yaml"}

// FileConfig is the on-disk YAML configuration shape.
type FileConfig struct {
	Include         *string `yaml:"include"`
	Exclude         *string `yaml:"exclude"`
	MaxBytes        *int64  `yaml:"max_bytes"`
	Threads         *int    `yaml:"threads"`
	NoColor         *bool   `yaml:"no_color"`
	DefaultExcludes *bool   `yaml:"default_excludes"`
	FailOn          *string `yaml:"fail_on"`

	// Detection tuning
	BaseThreshold      *float64 `yaml:"base_threshold"`
	SensitiveThreshold *float64 `yaml:"sensitive_threshold"`
	MinLength          *int     `yaml:"min_length"`
	DummyValues        []string `yaml:"dummy_values"`
	Engine             *string  `yaml:"engine"`

	// Debounce delay for watch mode, e.g. "500ms"
	Debounce *string `yaml:"debounce"`

	Vault *VaultConfig `yaml:"vault"`
}

// VaultConfig configures secret vaulting.
type VaultConfig struct {
	// File is the key-value store, relative to the project root.
	File *string `yaml:"file"`
	// Reference is a format string with one %s for the key; it replaces
	// the quoted literal in source.
	Reference *string `yaml:"reference"`
}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadLocal searches for a repo-local config file in the given root.
func LoadLocal(repoRoot string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range LocalNames {
		p := filepath.Join(repoRoot, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, ErrNoConfig
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return cfg, ErrNoConfig
	}
	p := filepath.Join(base, "entropy-sentinel", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, ErrNoConfig
}

// ApplyPolicy overlays the detection settings present in fc onto p.
func (fc FileConfig) ApplyPolicy(p detect.Policy) detect.Policy {
	if fc.BaseThreshold != nil {
		p.BaseThreshold = *fc.BaseThreshold
	}
	if fc.SensitiveThreshold != nil {
		p.SensitiveThreshold = *fc.SensitiveThreshold
	}
	if fc.MinLength != nil {
		p.MinLength = *fc.MinLength
	}
	if len(fc.DummyValues) > 0 {
		p = p.WithDummyValues(fc.DummyValues)
	}
	return p
}

// Policy builds the detection policy from the defaults, then global, then
// local settings.
func Policy(global, local FileConfig) detect.Policy {
	return local.ApplyPolicy(global.ApplyPolicy(detect.DefaultPolicy()))
}

// GetDebounce returns the configured watch delay, or DefaultDebounce when
// unset or invalid.
func (fc FileConfig) GetDebounce() time.Duration {
	if fc.Debounce == nil {
		return DefaultDebounce
	}
	d, err := time.ParseDuration(*fc.Debounce)
	if err != nil || d <= 0 {
		return DefaultDebounce
	}
	return d
}

// GetVaultConfig returns the vault configuration with defaults applied.
func (fc FileConfig) GetVaultConfig() VaultConfig {
	if fc.Vault == nil {
		return VaultConfig{}
	}
	return *fc.Vault
}

// GetFile returns the vault file name or DefaultVaultFile.
func (vc VaultConfig) GetFile() string {
	if vc.File == nil || *vc.File == "" {
		return DefaultVaultFile
	}
	return *vc.File
}

// GetReference returns the reference template or DefaultVaultReference.
func (vc VaultConfig) GetReference() string {
	if vc.Reference == nil || *vc.Reference == "" {
		return DefaultVaultReference
	}
	return *vc.Reference
}
