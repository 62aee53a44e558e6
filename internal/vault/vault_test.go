package vault

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entropy-sentinel/sentinel/internal/detect"
)

const secret = "aB3$kL9@mN2#pQ5&rS8*tU1!"

// writeSource writes a one-line assignment and returns the file path and
// the value range.
func writeSource(t *testing.T, dir, line string) (string, detect.Range) {
	t.Helper()
	p := filepath.Join(dir, "app.js")
	require.NoError(t, os.WriteFile(p, []byte(line+"\n"), 0644))
	start := strings.Index(line, secret)
	require.GreaterOrEqual(t, start, 0)
	return p, detect.Range{Start: start, End: start + len(secret)}
}

func snapshot(t *testing.T, dir string) map[string]string {
	t.Helper()
	out := map[string]string{}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		out[e.Name()] = string(b)
	}
	return out
}

func TestDeriveKey(t *testing.T) {
	cases := []struct {
		line, key string
		err       error
	}{
		{`const apiKey = "x"`, "APIKEY", nil},
		{`let db_pass: 'x'`, "DB_PASS", nil},
		{`token   stripe = "x"`, "STRIPE", nil},
		{`password p = "x"`, "", ErrNoVariableName},
		{`x = "y"`, "", ErrNoVariableName},
	}
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			key, err := DeriveKey(tc.line)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.key, key)
		})
	}
}

func TestSecret_CreatesStoreAndRewrites(t *testing.T) {
	dir := t.TempDir()
	src, r := writeSource(t, dir, `const apiKey = "`+secret+`";`)

	res, err := Secret(src, r, Options{Root: dir})
	require.NoError(t, err)
	assert.Equal(t, "APIKEY", res.Key)
	assert.True(t, res.Created)
	assert.False(t, res.Replaced)

	env, err := os.ReadFile(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Equal(t, Header+"\nAPIKEY=\""+secret+"\"\n", string(env))

	code, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "const apiKey = process.env.APIKEY;\n", string(code))
}

func TestSecret_UsesGitWorkTreeRoot(t *testing.T) {
	repoDir := t.TempDir()
	_, err := git.PlainInit(repoDir, false)
	require.NoError(t, err)
	sub := filepath.Join(repoDir, "src", "lib")
	require.NoError(t, os.MkdirAll(sub, 0755))
	src, r := writeSource(t, sub, `let token_x = '`+secret+`'`)

	res, err := Secret(src, r, Options{Root: sub, GitIgnore: true})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repoDir, ".env"), res.EnvPath)
	_, err = os.Stat(filepath.Join(sub, ".env"))
	assert.True(t, os.IsNotExist(err))

	gi, err := os.ReadFile(filepath.Join(repoDir, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, ".env\n", string(gi))
}

func TestSecret_CustomReferenceAndFile(t *testing.T) {
	dir := t.TempDir()
	src, r := writeSource(t, dir, `var dbSecret = "`+secret+`"`)

	_, err := Secret(src, r, Options{Root: dir, File: "secrets.env", Reference: `os.Getenv("%s")`})
	require.NoError(t, err)
	code, _ := os.ReadFile(src)
	assert.Equal(t, `var dbSecret = os.Getenv("DBSECRET")`+"\n", string(code))
	_, err = os.Stat(filepath.Join(dir, "secrets.env"))
	assert.NoError(t, err)
}

func TestSecret_ExistingKeyNeedsConfirmation(t *testing.T) {
	dir := t.TempDir()
	src, r := writeSource(t, dir, `const apiKey = "`+secret+`";`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("APIKEY=old"), 0600))

	t.Run("declined", func(t *testing.T) {
		before := snapshot(t, dir)
		asked := ""
		_, err := Secret(src, r, Options{Root: dir, Confirm: func(k string) bool { asked = k; return false }})
		assert.ErrorIs(t, err, ErrDeclined)
		assert.Equal(t, "APIKEY", asked)
		assert.Equal(t, before, snapshot(t, dir))
	})

	t.Run("no prompt available", func(t *testing.T) {
		before := snapshot(t, dir)
		_, err := Secret(src, r, Options{Root: dir})
		assert.ErrorIs(t, err, ErrDeclined)
		assert.Equal(t, before, snapshot(t, dir))
	})

	t.Run("confirmed appends", func(t *testing.T) {
		res, err := Secret(src, r, Options{Root: dir, Confirm: func(string) bool { return true }})
		require.NoError(t, err)
		assert.True(t, res.Replaced)
		env, _ := os.ReadFile(filepath.Join(dir, ".env"))
		assert.Equal(t, "APIKEY=old\nAPIKEY=\""+secret+"\"\n", string(env))
	})
}

func TestSecret_ErrorsLeaveFilesUntouched(t *testing.T) {
	cases := []struct {
		name string
		line string
		rng  func(r detect.Range) detect.Range
		root func(dir string) string
		want error
	}{
		{
			name: "no variable name",
			line: `x = "` + secret + `"`,
			want: ErrNoVariableName,
		},
		{
			name: "range past end",
			line: `const k = "` + secret + `"`,
			rng:  func(r detect.Range) detect.Range { return detect.Range{Start: r.Start, End: r.End + 100} },
			want: ErrRangeOutOfBounds,
		},
		{
			name: "range at zero",
			line: `const k = "` + secret + `"`,
			rng:  func(r detect.Range) detect.Range { return detect.Range{Start: 0, End: 3} },
			want: ErrRangeOutOfBounds,
		},
		{
			name: "range not quoted",
			line: `const k = "` + secret + `"`,
			rng:  func(r detect.Range) detect.Range { return detect.Range{Start: r.Start + 1, End: r.End} },
			want: ErrRangeOutOfBounds,
		},
		{
			name: "no project root",
			line: `const k = "` + secret + `"`,
			root: func(string) string { return "" },
			want: ErrNoProjectRoot,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			src, r := writeSource(t, dir, tc.line)
			if tc.rng != nil {
				r = tc.rng(r)
			}
			root := dir
			if tc.root != nil {
				root = tc.root(dir)
			}
			before := snapshot(t, dir)
			_, err := Secret(src, r, Options{Root: root, GitIgnore: true})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			assert.Equal(t, before, snapshot(t, dir))
		})
	}
}

func TestSecret_ReadOnlySourceLeavesStoreUntouched(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	dir := t.TempDir()
	src, r := writeSource(t, dir, `const apiKey = "`+secret+`";`)
	require.NoError(t, os.Chmod(src, 0444))
	before := snapshot(t, dir)

	_, err := Secret(src, r, Options{Root: dir, GitIgnore: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrPermission), "got %v", err)
	assert.Equal(t, before, snapshot(t, dir))
	assert.NoFileExists(t, filepath.Join(dir, DefaultFile))
}

func TestSecret_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	src, r := writeSource(t, dir, `const apiKey = "`+secret+`";`)
	before := snapshot(t, dir)
	res, err := Secret(src, r, Options{Root: dir, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, "process.env.APIKEY", res.Replacement)
	assert.Equal(t, before, snapshot(t, dir))
}

func TestStore(t *testing.T) {
	s := Store{Path: filepath.Join(t.TempDir(), ".env")}
	ok, err := s.Exists()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, os.WriteFile(s.Path, []byte("# APIKEY=commented\nexport DB_URL=x\nAPIKEYS=y"), 0600))
	has, err := s.Has("APIKEY")
	require.NoError(t, err)
	assert.False(t, has)
	has, err = s.Has("DB_URL")
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, s.Append("QUOTED", `a"b`))
	b, _ := os.ReadFile(s.Path)
	assert.True(t, strings.HasSuffix(string(b), "APIKEYS=y\nQUOTED='a\"b'\n"))
}
