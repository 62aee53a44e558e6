// Package position converts byte offsets into 1-based line and column
// positions.
package position

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Pos is a 1-based line and column. Columns count characters, not bytes.
type Pos struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Index maps offsets in one text to positions.
type Index struct {
	text   string
	starts []int // byte offset of the first byte of each line
}

// NewIndex builds the line table for text.
func NewIndex(text string) *Index {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Index{text: text, starts: starts}
}

// At returns the position of offset, clamped to the text bounds.
func (ix *Index) At(offset int) Pos {
	offset = min(max(offset, 0), len(ix.text))
	line := sort.Search(len(ix.starts), func(i int) bool { return ix.starts[i] > offset }) - 1
	col := utf8.RuneCountInString(ix.text[ix.starts[line]:offset]) + 1
	return Pos{Line: line + 1, Column: col}
}

// Lines returns the number of lines in the text.
func (ix *Index) Lines() int { return len(ix.starts) }

// LineStart returns the byte offset where the 1-based line begins.
func (ix *Index) LineStart(line int) int {
	if line < 1 || line > len(ix.starts) {
		return -1
	}
	return ix.starts[line-1]
}

// Line returns the text of a 1-based line without its terminator.
func (ix *Index) Line(line int) string {
	start := ix.LineStart(line)
	if start < 0 {
		return ""
	}
	end := len(ix.text)
	if line < len(ix.starts) {
		end = ix.starts[line] - 1
	}
	return strings.TrimSuffix(ix.text[start:end], "\r")
}
