package vault

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Header is the first line of a store created by the vault.
const Header = "# Security Vault created by Entropy Sentinel"

// Store is an append-only dotenv file.
type Store struct {
	Path string
}

func (s Store) Exists() (bool, error) {
	_, err := os.Stat(s.Path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Has reports whether a line assigns key, with or without an export prefix.
func (s Store) Has(key string) (bool, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		if strings.HasPrefix(line, "#") {
			continue
		}
		name, _, ok := strings.Cut(line, "=")
		if ok && strings.TrimSpace(name) == key {
			return true, nil
		}
	}
	return false, sc.Err()
}

// Append adds KEY="value" on its own line, creating the file with the
// header when missing.
func (s Store) Append(key, value string) error {
	existing, err := os.ReadFile(s.Path)
	created := false
	if errors.Is(err, fs.ErrNotExist) {
		created = true
	} else if err != nil {
		return fmt.Errorf("read %s: %w", s.Path, err)
	}
	var b strings.Builder
	if created {
		b.WriteString(Header + "\n")
	} else if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		b.WriteByte('\n')
	}
	b.WriteString(key + "=" + quote(value) + "\n")

	f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open %s: %w", s.Path, err)
	}
	if _, err := f.WriteString(b.String()); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", s.Path, err)
	}
	return f.Close()
}

// Values containing a double quote are single-quoted instead.
func quote(v string) string {
	if strings.Contains(v, `"`) && !strings.Contains(v, `'`) {
		return "'" + v + "'"
	}
	return `"` + v + `"`
}

// appendIgnore ensures pattern is listed in root/.gitignore.
func appendIgnore(root, pattern string) error {
	path := filepath.Join(root, ".gitignore")
	if f, err := os.Open(path); err == nil {
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == pattern || line == "/"+pattern {
				_ = f.Close()
				return nil
			}
		}
		_ = f.Close()
	}
	prev, _ := os.ReadFile(path)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	if len(prev) > 0 && prev[len(prev)-1] != '\n' {
		pattern = "\n" + pattern
	}
	_, err = f.WriteString(pattern + "\n")
	return err
}
