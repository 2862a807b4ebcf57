// Package gitops records ledger changes as git commits in the project repo.
package gitops

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Author identifies who commits ledger changes.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// env sets the committer to the author so commits work without a global
// git identity.
func (a Author) env() []string {
	return append(os.Environ(),
		"GIT_AUTHOR_NAME="+a.Name,
		"GIT_AUTHOR_EMAIL="+a.Email,
		"GIT_COMMITTER_NAME="+a.Name,
		"GIT_COMMITTER_EMAIL="+a.Email,
	)
}

// Init initializes a new git repository at dir. Output goes to out.
func Init(dir string, out io.Writer) error {
	cmd := exec.Command("git", "init")
	cmd.Dir = dir
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	return nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Available reports whether a git binary is on PATH.
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// HasChanges reports whether any of paths (relative to dir) differ from HEAD
// or are untracked. No paths means the whole tree.
func HasChanges(dir string, paths ...string) (bool, error) {
	args := append([]string{"status", "--porcelain", "--"}, paths...)
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("git status: %w", err)
	}
	return strings.TrimSpace(string(out)) != "", nil
}

// CommitPaths stages paths (relative to dir) and commits them. Returns the
// short commit hash, or "" when nothing changed.
func CommitPaths(dir, message string, author Author, paths ...string) (string, error) {
	changed, err := HasChanges(dir, paths...)
	if err != nil {
		return "", err
	}
	if !changed {
		return "", nil
	}

	addArgs := append([]string{"add", "-A", "--"}, paths...)
	add := exec.Command("git", addArgs...)
	add.Dir = dir
	if out, err := add.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git add: %s: %w", out, err)
	}

	commitArgs := append([]string{"commit", "-m", message, "--author", author.String(), "--"}, paths...)
	commit := exec.Command("git", commitArgs...)
	commit.Dir = dir
	commit.Env = author.env()
	if out, err := commit.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git commit: %s: %w", out, err)
	}

	return Head(dir)
}

// CommitAll stages every change in dir and commits it.
func CommitAll(dir, message string, author Author) (string, error) {
	return CommitPaths(dir, message, author)
}

// Head returns the short hash of HEAD.
func Head(dir string) (string, error) {
	rev := exec.Command("git", "rev-parse", "--short", "HEAD")
	rev.Dir = dir
	out, err := rev.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// IngestMessage is the commit message for an ingestion run.
//
//	ingest: 3 transactions from jan.pdf
//
//	run 5f0c6a2e-...
func IngestMessage(source string, admitted int, runID string) string {
	noun := "transactions"
	if admitted == 1 {
		noun = "transaction"
	}
	if source == "" {
		source = "stdin"
	}
	return fmt.Sprintf("ingest: %d %s from %s\n\nrun %s", admitted, noun, source, runID)
}
