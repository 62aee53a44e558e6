package core

import (
	"encoding/json"
	"io"
)

// MarshalFindings pretty-prints file findings as JSON for humans or
// pipelines. Values are written as found; mask them before sharing.
func MarshalFindings(w io.Writer, findings []FileFinding) error {
	if findings == nil {
		findings = []FileFinding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(findings)
}

// UnmarshalFindings decodes findings JSON, useful for ingestion tests.
func UnmarshalFindings(r io.Reader) ([]FileFinding, error) {
	var fs []FileFinding
	if err := json.NewDecoder(r).Decode(&fs); err != nil {
		return nil, err
	}
	return fs, nil
}
