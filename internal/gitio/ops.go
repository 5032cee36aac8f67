package gitio

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Commit is one entry from a commit-range listing.
type Commit struct {
	Hash    string
	Subject string
	Author  string
	When    time.Time
}

// logFieldSep separates fields in the git log format string. The unit
// separator cannot appear in commit subjects or author names.
const logFieldSep = "\x1f"

// DiffNameOnly returns the paths that differ between two refs.
func (r *Repo) DiffNameOnly(refA, refB string) ([]string, error) {
	return r.runLines("diff", "--name-only", refA+".."+refB)
}

// CommitsBetween returns the commits reachable from refB but not refA,
// newest first.
func (r *Repo) CommitsBetween(refA, refB string) ([]Commit, error) {
	format := strings.Join([]string{"%H", "%s", "%an", "%ct"}, logFieldSep)
	lines, err := r.runLines("log", "--format="+format, refA+".."+refB)
	if err != nil {
		return nil, err
	}

	commits := make([]Commit, 0, len(lines))
	for _, line := range lines {
		parts := strings.Split(line, logFieldSep)
		if len(parts) != 4 {
			continue
		}
		ts, err := strconv.ParseInt(parts[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing commit timestamp %q: %w", parts[3], err)
		}
		commits = append(commits, Commit{
			Hash:    parts[0],
			Subject: parts[1],
			Author:  parts[2],
			When:    time.Unix(ts, 0),
		})
	}
	return commits, nil
}

// HistoryContains reports whether any commit message in the given branch's
// history contains marker as a fixed substring.
func (r *Repo) HistoryContains(branch, marker string) (bool, error) {
	lines, err := r.runLines("log", "--fixed-strings", "--grep="+marker, "--format=%H", branch)
	if err != nil {
		return false, err
	}
	return len(lines) > 0, nil
}

// Checkout switches the working tree to the given branch.
func (r *Repo) Checkout(branch string) error {
	_, err := r.run("checkout", branch)
	return err
}

// CheckoutPathFromRef pulls the content of the given paths from another
// ref into the working tree without switching branches.
func (r *Repo) CheckoutPathFromRef(ref string, paths ...string) error {
	args := append([]string{"checkout", ref, "--"}, paths...)
	_, err := r.run(args...)
	return err
}

// CheckoutOrphan switches to a new orphan branch with no history.
func (r *Repo) CheckoutOrphan(branch string) error {
	_, err := r.run("checkout", "--orphan", branch)
	return err
}

// ClearIndex removes everything from the index and working tree. Used
// immediately after CheckoutOrphan to start the orphan branch empty.
func (r *Repo) ClearIndex() error {
	_, err := r.run("rm", "-rfq", "--ignore-unmatch", ".")
	return err
}

// StageFiles adds the given paths to the index.
func (r *Repo) StageFiles(paths []string) error {
	args := append([]string{"add", "--"}, paths...)
	_, err := r.run(args...)
	return err
}

// StageAll adds every change, including untracked files, to the index.
func (r *Repo) StageAll() error {
	_, err := r.run("add", "-A")
	return err
}

// Commit creates a commit with the given message and returns its hash.
func (r *Repo) Commit(message string) (string, error) {
	if _, err := r.run("commit", "-m", message); err != nil {
		return "", err
	}
	return r.ResolveRef("HEAD")
}

// ResolveRef returns the full commit hash a ref points at.
func (r *Repo) ResolveRef(ref string) (string, error) {
	out, err := r.run("rev-parse", ref)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Push pushes a branch to the default remote.
func (r *Repo) Push(branch string) error {
	_, err := r.run("push", r.remote, branch)
	return err
}

// PushSetUpstream publishes a branch to the default remote with tracking.
func (r *Repo) PushSetUpstream(branch string) error {
	_, err := r.run("push", "--set-upstream", r.remote, branch)
	return err
}

// ForcePush force-pushes a branch to the default remote.
func (r *Repo) ForcePush(branch string) error {
	_, err := r.run("push", "--force", r.remote, branch)
	return err
}

// HardReset resets the current branch and working tree to the given ref.
func (r *Repo) HardReset(ref string) error {
	_, err := r.run("reset", "--hard", ref)
	return err
}

// CreateBranch creates a branch at the given start point without checking
// it out. An empty start point uses HEAD.
func (r *Repo) CreateBranch(name, startPoint string) error {
	args := []string{"branch", name}
	if startPoint != "" {
		args = append(args, startPoint)
	}
	_, err := r.run(args...)
	return err
}

// CreateTrackingBranch creates a local branch tracking the remote branch
// of the same name and checks it out.
func (r *Repo) CreateTrackingBranch(name string) error {
	_, err := r.run("checkout", "-b", name, "--track", r.remote+"/"+name)
	return err
}

// Fetch fetches a single branch from the default remote.
func (r *Repo) Fetch(branch string) error {
	_, err := r.run("fetch", r.remote, branch)
	return err
}

// AheadCount returns the number of commits on branch that are not on its
// remote counterpart.
func (r *Repo) AheadCount(branch string) (int, error) {
	out, err := r.run("rev-list", "--left-only", "--count", branch+"..."+r.remote+"/"+branch)
	if err != nil {
		return 0, err
	}
	count, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("parsing ahead count: %w", err)
	}
	return count, nil
}

// IsDirty reports whether the working tree has uncommitted changes,
// including untracked files.
func (r *Repo) IsDirty() (bool, error) {
	files, err := r.UncommittedFiles()
	if err != nil {
		return false, err
	}
	return len(files) > 0, nil
}

// UncommittedFiles returns the paths with uncommitted changes, parsed
// from 'git status --porcelain'.
func (r *Repo) UncommittedFiles() ([]string, error) {
	out, err := r.run("status", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parseStatusOutput(out), nil
}

// parseStatusOutput extracts file paths from porcelain status output.
// Each line is "XY filename": 2 status chars, one space, then the path.
func parseStatusOutput(output string) []string {
	var files []string
	for _, line := range strings.Split(output, "\n") {
		// Leading spaces are part of the status code; don't trim first.
		if len(line) < 4 {
			continue
		}
		name := extractFilename(line[3:])
		if name != "" {
			files = append(files, name)
		}
	}
	return files
}

// extractFilename handles both regular filenames and the rename format.
func extractFilename(raw string) string {
	if _, after, found := strings.Cut(raw, " -> "); found {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(raw)
}

// UserName returns the configured git user name, or a fallback when unset.
func (r *Repo) UserName() string {
	out, err := r.run("config", "user.name")
	if err != nil {
		return "unknown"
	}
	name := strings.TrimSpace(out)
	if name == "" {
		return "unknown"
	}
	return name
}
