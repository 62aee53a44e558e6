// Package audit keeps an append-only JSONL history of scans and vault
// operations. Records never contain secret values.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/entropy-sentinel/sentinel/internal/types"
)

const (
	ActionScan  = "scan"
	ActionVault = "vault"
)

type Record struct {
	Timestamp      time.Time        `json:"timestamp"`
	Action         string           `json:"action"`
	Root           string           `json:"root"`
	TotalFindings  int              `json:"total_findings,omitempty"`
	NewFindings    int              `json:"new_findings,omitempty"`
	BaselinedCount int              `json:"baselined_count,omitempty"`
	SeverityCounts map[string]int   `json:"severity_counts,omitempty"`
	FilesScanned   int              `json:"files_scanned,omitempty"`
	Duration       string           `json:"duration,omitempty"`
	TopFindings    []FindingSummary `json:"top_findings,omitempty"`
	// Vault fields.
	File    string `json:"file,omitempty"`
	Key     string `json:"key,omitempty"`
	Store   string `json:"store,omitempty"`
	Replace bool   `json:"replaced,omitempty"`
}

type FindingSummary struct {
	Path     string `json:"path"`
	Rule     string `json:"rule"`
	Name     string `json:"name"`
	Severity string `json:"severity"`
	Line     int    `json:"line"`
}

type Log struct {
	path string
}

// New returns the audit log for root, stored under .git when present.
func New(root string) *Log {
	p := filepath.Join(root, ".sentinel_audit.jsonl")
	if st, err := os.Stat(filepath.Join(root, ".git")); err == nil && st.IsDir() {
		p = filepath.Join(root, ".git", "sentinel_audit.jsonl")
	}
	return &Log{path: p}
}

func (l *Log) Path() string { return l.path }

// History returns records newest first. Malformed lines are skipped.
func (l *Log) History() ([]Record, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var records []Record
	dec := json.NewDecoder(f)
	for dec.More() {
		var r Record
		if err := dec.Decode(&r); err != nil {
			break
		}
		records = append(records, r)
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

func (l *Log) Append(r Record) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	// owner-only: records name files and variables holding secrets
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(r); err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}
	return nil
}

// ScanRecord summarises a scan. all is every finding, fresh the ones not
// covered by the baseline.
func ScanRecord(root string, all, fresh []types.Finding, filesScanned int, d time.Duration) Record {
	counts := map[string]int{}
	for _, f := range all {
		counts[string(f.Severity)]++
	}
	top := make([]FindingSummary, 0, 10)
	for _, f := range fresh {
		if len(top) == 10 {
			break
		}
		top = append(top, FindingSummary{
			Path:     f.Path,
			Rule:     f.Rule,
			Name:     f.Name,
			Severity: string(f.Severity),
			Line:     f.Line,
		})
	}
	return Record{
		Action:         ActionScan,
		Root:           root,
		TotalFindings:  len(all),
		NewFindings:    len(fresh),
		BaselinedCount: len(all) - len(fresh),
		SeverityCounts: counts,
		FilesScanned:   filesScanned,
		Duration:       d.String(),
		TopFindings:    top,
	}
}

func VaultRecord(root, file, key, store string, replaced bool) Record {
	return Record{Action: ActionVault, Root: root, File: file, Key: key, Store: store, Replace: replaced}
}
