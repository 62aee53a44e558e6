package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entropy-sentinel/sentinel/internal/types"
)

func TestNew_PrefersGitDir(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, ".sentinel_audit.jsonl"), New(dir).Path())
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))
	assert.Equal(t, filepath.Join(dir, ".git", "sentinel_audit.jsonl"), New(dir).Path())
}

func TestAppendAndHistory_NewestFirst(t *testing.T) {
	l := New(t.TempDir())
	all := []types.Finding{
		{Path: "a.js", Rule: types.RuleHighEntropy, Name: "apiKey", Match: "s3cr3t-value-xyz", Severity: types.SevHigh, Line: 2},
		{Path: "b.js", Rule: types.RuleDummyKey, Name: "password", Match: "changeme", Severity: types.SevLow, Line: 1},
	}
	require.NoError(t, l.Append(ScanRecord("/r", all, all[:1], 7, time.Second)))
	require.NoError(t, l.Append(VaultRecord("/r", "a.js", "APIKEY", "/r/.env", false)))

	raw, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(raw), "s3cr3t-value-xyz"))
	assert.False(t, strings.Contains(string(raw), "changeme"))

	hist, err := l.History()
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, ActionVault, hist[0].Action)
	assert.Equal(t, "APIKEY", hist[0].Key)
	assert.Equal(t, ActionScan, hist[1].Action)
	assert.Equal(t, 2, hist[1].TotalFindings)
	assert.Equal(t, 1, hist[1].BaselinedCount)
	assert.Equal(t, map[string]int{"high": 1, "low": 1}, hist[1].SeverityCounts)
	require.Len(t, hist[1].TopFindings, 1)
	assert.Equal(t, "apiKey", hist[1].TopFindings[0].Name)
}

func TestHistory_MissingLog(t *testing.T) {
	_, err := New(t.TempDir()).History()
	assert.Error(t, err)
}
