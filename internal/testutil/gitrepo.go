// Package testutil provides shared test fixtures: scratch git
// repositories with a bare origin, and a scripted prompter for driving
// interactive flows without a terminal.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// RequireGit skips the test when the git binary is not installed.
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

// GitRepo is a scratch repository wired to a bare origin, for exercising
// the gateway and the stage engine against real git state.
type GitRepo struct {
	Dir       string
	RemoteDir string
}

// NewGitRepo creates a repository with an initial branch named branch,
// a configured identity, one initial commit, and a bare origin remote.
func NewGitRepo(t *testing.T, branch string) *GitRepo {
	t.Helper()
	RequireGit(t)

	g := &GitRepo{
		Dir:       t.TempDir(),
		RemoteDir: t.TempDir(),
	}

	g.Git(t, "init", "--initial-branch="+branch)
	g.Git(t, "config", "user.name", "Test User")
	g.Git(t, "config", "user.email", "test@example.com")

	runGit(t, g.RemoteDir, "init", "--bare", "--initial-branch="+branch)
	g.Git(t, "remote", "add", "origin", g.RemoteDir)

	g.WriteFile(t, "README.md", "# fixture\n")
	g.Git(t, "add", "README.md")
	g.Git(t, "commit", "-m", "initial commit")
	g.Git(t, "push", "--set-upstream", "origin", branch)

	return g
}

// Git runs a git command in the repository and returns its trimmed output,
// failing the test on error.
func (g *GitRepo) Git(t *testing.T, args ...string) string {
	t.Helper()
	return runGit(t, g.Dir, args...)
}

// WriteFile writes a file relative to the repository root.
func (g *GitRepo) WriteFile(t *testing.T, name, content string) {
	t.Helper()
	path := filepath.Join(g.Dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

// CommitFile writes a file, stages it, and commits it, returning the new
// commit hash.
func (g *GitRepo) CommitFile(t *testing.T, name, content, message string) string {
	t.Helper()
	g.WriteFile(t, name, content)
	g.Git(t, "add", name)
	g.Git(t, "commit", "-m", message)
	return g.Head(t)
}

// Head returns the current HEAD commit hash.
func (g *GitRepo) Head(t *testing.T) string {
	t.Helper()
	return g.Git(t, "rev-parse", "HEAD")
}

// BranchTip returns the commit hash a branch points at.
func (g *GitRepo) BranchTip(t *testing.T, branch string) string {
	t.Helper()
	return g.Git(t, "rev-parse", branch)
}

// CreateBranch creates and publishes a branch at the current HEAD.
func (g *GitRepo) CreateBranch(t *testing.T, name string) {
	t.Helper()
	g.Git(t, "branch", name)
	g.Git(t, "push", "--set-upstream", "origin", name)
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return strings.TrimSpace(string(out))
}
