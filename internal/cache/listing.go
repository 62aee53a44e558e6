package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/entropy-sentinel/sentinel/internal/types"
)

// Listing is the findings of the last scan exactly as they were shown:
// baseline matches removed, in display order. Secrets are numbered from 1
// in that order, and those numbers select a finding for the vault.
type Listing struct {
	Findings  []types.Finding `json:"findings"`
	Timestamp time.Time       `json:"timestamp"`
	Root      string          `json:"root"`
}

func listingPath(root string) string {
	if st, err := os.Stat(filepath.Join(root, ".git")); err == nil && st.IsDir() {
		return filepath.Join(root, ".git", "sentinel_last_scan.json")
	}
	return filepath.Join(root, ".sentinel_last_scan.json")
}

// SaveListing records displayed for root. The file holds raw values, so
// it is owner-only.
func SaveListing(root string, displayed []types.Finding) error {
	b, err := json.MarshalIndent(Listing{Findings: displayed, Timestamp: time.Now(), Root: root}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(listingPath(root), b, 0600)
}

func LoadListing(root string) (Listing, error) {
	var l Listing
	b, err := os.ReadFile(listingPath(root))
	if err != nil {
		return l, err
	}
	err = json.Unmarshal(b, &l)
	return l, err
}

// Secrets returns the listed high-entropy secrets in display order.
func (l Listing) Secrets() []types.Finding {
	var out []types.Finding
	for _, f := range l.Findings {
		if f.IsSecret() {
			out = append(out, f)
		}
	}
	return out
}

// Secret returns the secret numbered n, counting from 1.
func (l Listing) Secret(n int) (types.Finding, bool) {
	s := l.Secrets()
	if n < 1 || n > len(s) {
		return types.Finding{}, false
	}
	return s[n-1], true
}
