package detect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var matcherInputs = []string{
	``,
	`no assignments here`,
	`const apiKey = "abc";`,
	`let x='single';`,
	`var   spaced   :   "colon"`,
	`const a = "x'; const b = 'y";`,
	`const mixed = "open' and 'close"`,
	`const empty = "";`,
	`const escaped = "abc\"defghijklmnop";`,
	"const multi = \"line one\nline two\";",
	"const\n  wrapped =\n \"ok\"",
	`myconst trailing = "still matches"`,
	`api_key stripe: 'sk_live_51HqLyjWDarjtT1zdp7dc'`,
	`const first = "1"; const second = "2"; const third = '3'`,
	`// 日本語 comment before: const key = "值xK9#mP2$vL8"`,
	`const emoji = "🔐🔑secret🔐"; let after = "tail"`,
	`Const upper = "not a keyword"`,
}

func TestMatchers_Agree(t *testing.T) {
	re2 := NewRE2Matcher()
	bt := NewBacktrackMatcher(time.Second)
	for _, in := range matcherInputs {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, Extract(in, re2), Extract(in, bt))
		})
	}
}

func TestExtract_Offsets(t *testing.T) {
	for _, m := range []Matcher{NewRE2Matcher(), NewBacktrackMatcher(0)} {
		for _, in := range matcherInputs {
			for _, c := range Extract(in, m) {
				require.GreaterOrEqual(t, c.Start, 0)
				require.LessOrEqual(t, c.End, len(in))
				assert.Equal(t, c.Value, in[c.Start:c.End])
			}
		}
	}
}

func TestExtract_Cases(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Candidate
	}{
		{
			name: "double quotes",
			in:   `const apiKey = "abc";`,
			want: []Candidate{{Name: "apiKey", Value: "abc", Start: 16, End: 19}},
		},
		{
			name: "single quotes with colon",
			in:   `token auth: 'xyz'`,
			want: []Candidate{{Name: "auth", Value: "xyz", Start: 13, End: 16}},
		},
		{
			name: "closing quote must match opening",
			in:   `const a = "it's fine"`,
			want: []Candidate{{Name: "a", Value: "it's fine", Start: 11, End: 20}},
		},
		{
			name: "escaped quote truncates",
			in:   `const s = "ab\"cd"`,
			want: []Candidate{{Name: "s", Value: `ab\`, Start: 11, End: 14}},
		},
		{
			name: "value does not cross lines",
			in:   "const s = \"ab\ncd\"",
			want: nil,
		},
		{
			name: "keyword is case-sensitive",
			in:   `CONST s = "abc"`,
			want: nil,
		},
		{
			name: "value located by capture not by fixed offset",
			in:   `const averyveryverylongname = "v"`,
			want: []Candidate{{Name: "averyveryverylongname", Value: "v", Start: 31, End: 32}},
		},
		{
			name: "value equal to name",
			in:   `const abc = "abc"`,
			want: []Candidate{{Name: "abc", Value: "abc", Start: 13, End: 16}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.in, NewRE2Matcher()))
		})
	}
}

func TestExtract_NonOverlappingLeftToRight(t *testing.T) {
	in := `const first = "1"; const second = "2"; const third = '3'`
	got := Extract(in, NewRE2Matcher())
	require.Len(t, got, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{got[0].Name, got[1].Name, got[2].Name})
	assert.Less(t, got[0].End, got[1].Start)
	assert.Less(t, got[1].End, got[2].Start)
}

func TestRuneOffsets(t *testing.T) {
	assert.Equal(t, []int{0}, runeOffsets(""))
	assert.Equal(t, []int{0, 1, 4, 5}, runeOffsets("a値b"))
}
