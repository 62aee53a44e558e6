package vault

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// ProjectRoot returns the work tree root of the git repository containing
// dir, or fallback when dir is not inside one.
func ProjectRoot(dir, fallback string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err == nil {
		if wt, err := repo.Worktree(); err == nil {
			return wt.Filesystem.Root(), nil
		}
	}
	if fallback == "" {
		return "", fmt.Errorf("%w: %s is not in a git work tree and no root is configured", ErrNoProjectRoot, dir)
	}
	abs, err := filepath.Abs(fallback)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoProjectRoot, err)
	}
	if st, err := os.Stat(abs); err != nil || !st.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrNoProjectRoot, abs)
	}
	return abs, nil
}
