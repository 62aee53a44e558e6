package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entropy-sentinel/sentinel/internal/detect"
)

func writeTemp(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return p
}

func TestLoadFile_Basic(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "sentinel.yaml", `threads: 4
max_bytes: 123
base_threshold: 4.8
sensitive_threshold: 3.0
min_length: 16
dummy_values: [hunter2, Letmein]
engine: regexp2
debounce: 250ms
vault:
  file: secrets.env
  reference: os.Getenv("%s")
`)
	cfg, err := LoadFile(p)
	require.NoError(t, err)
	require.NotNil(t, cfg.Threads)
	assert.Equal(t, 4, *cfg.Threads)
	require.NotNil(t, cfg.MaxBytes)
	assert.Equal(t, int64(123), *cfg.MaxBytes)
	require.NotNil(t, cfg.Engine)
	assert.Equal(t, "regexp2", *cfg.Engine)
	assert.Equal(t, 250*time.Millisecond, cfg.GetDebounce())

	vc := cfg.GetVaultConfig()
	assert.Equal(t, "secrets.env", vc.GetFile())
	assert.Equal(t, `os.Getenv("%s")`, vc.GetReference())

	p2 := cfg.ApplyPolicy(detect.DefaultPolicy())
	assert.Equal(t, 4.8, p2.BaseThreshold)
	assert.Equal(t, 3.0, p2.SensitiveThreshold)
	assert.Equal(t, 16, p2.MinLength)
	assert.True(t, p2.IsDummy("letmein"))
	assert.False(t, p2.IsDummy("changeme"))
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "sentinel.yaml", "threads: [not, an, int]\n")
	_, err := LoadFile(p)
	assert.Error(t, err)
}

func TestLoadLocal_PrefersDotfile(t *testing.T) {
	dir := t.TempDir()
	// place both, expect the dotfile to be picked first by search order
	writeTemp(t, dir, "sentinel.yaml", "threads: 1\n")
	writeTemp(t, dir, ".sentinel.yml", "threads: 7\n")
	cfg, err := LoadLocal(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg.Threads)
	assert.Equal(t, 7, *cfg.Threads)
}

func TestLoadLocal_NoConfig(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadLocal(dir)
	assert.ErrorIs(t, err, ErrNoConfig)
}

func TestLoadGlobal_XDG_Config(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "entropy-sentinel")
	require.NoError(t, os.MkdirAll(cfgDir, 0o755))
	writeTemp(t, cfgDir, "config.yml", "threads: 9\n")
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg, err := LoadGlobal()
	require.NoError(t, err)
	require.NotNil(t, cfg.Threads)
	assert.Equal(t, 9, *cfg.Threads)
}

func TestLoadGlobal_NoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	// Simulate no HOME as well by clearing HOME; LoadGlobal should error
	t.Setenv("HOME", "")
	_, err := LoadGlobal()
	assert.ErrorIs(t, err, ErrNoConfig)
}

func TestPolicy_LocalOverridesGlobal(t *testing.T) {
	g, l := 4.0, 3.9
	ml := 20
	global := FileConfig{BaseThreshold: &g, MinLength: &ml}
	local := FileConfig{BaseThreshold: &l}
	p := Policy(global, local)
	assert.Equal(t, 3.9, p.BaseThreshold)
	assert.Equal(t, 20, p.MinLength)
	assert.Equal(t, detect.DefaultSensitiveThreshold, p.SensitiveThreshold)
}

func TestDefaults(t *testing.T) {
	var fc FileConfig
	assert.Equal(t, DefaultDebounce, fc.GetDebounce())
	bad := "soon"
	fc.Debounce = &bad
	assert.Equal(t, DefaultDebounce, fc.GetDebounce())
	vc := fc.GetVaultConfig()
	assert.Equal(t, ".env", vc.GetFile())
	assert.Equal(t, "process.env.%s", vc.GetReference())
	assert.Equal(t, detect.DefaultPolicy().BaseThreshold, Policy(fc, fc).BaseThreshold)
}
