package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entropy-sentinel/sentinel/internal/types"
)

func TestWriteSARIF_LevelsAndRegions(t *testing.T) {
	dummy := types.Finding{
		Path: "cfg.ts", Line: 3, Column: 18, EndLine: 3, EndColumn: 26,
		Name: "password", Match: "changeme", Rule: types.RuleDummyKey,
		Severity: types.SevLow, Message: "Weak Key Detected",
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, []types.Finding{secretFinding(), dummy}, "1.2.3"))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "2.1.0", doc["version"])

	run := doc["runs"].([]any)[0].(map[string]any)
	driver := run["tool"].(map[string]any)["driver"].(map[string]any)
	assert.Equal(t, "entropy-sentinel", driver["name"])
	assert.Equal(t, "1.2.3", driver["version"])
	rules := driver["rules"].([]any)
	require.Len(t, rules, 2)
	help := rules[0].(map[string]any)["help"].(map[string]any)["text"].(string)
	assert.Contains(t, help, "sentinel vault")

	results := run["results"].([]any)
	require.Len(t, results, 2)
	first := results[0].(map[string]any)
	assert.Equal(t, types.RuleHighEntropy, first["ruleId"])
	assert.Equal(t, "error", first["level"])
	region := first["locations"].([]any)[0].(map[string]any)["physicalLocation"].(map[string]any)["region"].(map[string]any)
	assert.EqualValues(t, 1, region["startLine"])
	assert.EqualValues(t, 20, region["startColumn"])
	assert.EqualValues(t, 44, region["endColumn"])

	second := results[1].(map[string]any)
	assert.Equal(t, types.RuleDummyKey, second["ruleId"])
	assert.Equal(t, "warning", second["level"])
	assert.EqualValues(t, 1, second["ruleIndex"])
}

func TestWriteSARIF_EmptyResultsIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, nil, "dev"))
	assert.Contains(t, buf.String(), `"results": []`)
	assert.NotContains(t, buf.String(), "null")
}
