package history

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
)

// ErrNotFound is returned when a path has no committed version to compare
// against.
var ErrNotFound = errors.New("no committed version")

// Fetcher returns the content of a tracked file as it existed at the last
// committed state, before the current run's uncommitted changes.
type Fetcher interface {
	Fetch(path string) ([]byte, error)
}

// GitFetcher reads the committed version of a file with git show.
type GitFetcher struct {
	repoDir string
}

func NewGitFetcher(repoDir string) *GitFetcher {
	return &GitFetcher{repoDir: repoDir}
}

func (g *GitFetcher) Fetch(path string) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	repo, err := filepath.Abs(g.repoDir)
	if err != nil {
		return nil, fmt.Errorf("resolve repo dir: %w", err)
	}
	rel, err := filepath.Rel(repo, abs)
	if err != nil {
		return nil, fmt.Errorf("path outside repo: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command("git", "-C", repo, "show", "HEAD:"+filepath.ToSlash(rel))
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		// Non-zero exit covers both "file not in HEAD" and repo-level
		// problems; either way there is nothing to compare against.
		return nil, ErrNotFound
	}
	if stdout.Len() == 0 {
		return nil, ErrNotFound
	}
	return stdout.Bytes(), nil
}
