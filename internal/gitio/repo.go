// Package gitio wraps the version-control primitives the stage workflow
// needs. Repository detection and branch lookups go through go-git;
// mutating and plumbing operations shell out to the git CLI so that the
// underlying command and exit status can be surfaced verbatim when an
// operation fails.
package gitio

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

// DefaultRemote is the remote every stage branch is published to.
const DefaultRemote = "origin"

// Repo is a handle to one local git repository.
type Repo struct {
	root   string
	repo   *git.Repository
	remote string
}

// Open opens the repository containing path (or the working directory when
// path is empty), traversing parents to find the repository root.
func Open(path string) (*Repo, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}

	return &Repo{
		root:   worktree.Filesystem.Root(),
		repo:   repo,
		remote: DefaultRemote,
	}, nil
}

// InitOrOpen opens the repository at path, initializing a fresh one when
// none exists. Used by gitstage init.
func InitOrOpen(path string) (*Repo, bool, error) {
	if r, err := Open(path); err == nil {
		return r, false, nil
	}

	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, false, fmt.Errorf("getting current directory: %w", err)
		}
	}
	if _, err := git.PlainInit(path, false); err != nil {
		return nil, false, fmt.Errorf("initializing repository: %w", err)
	}
	r, err := Open(path)
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}

// Root returns the absolute path to the repository root.
func (r *Repo) Root() string {
	return r.root
}

// UseRemote overrides the remote that branches are published to.
func (r *Repo) UseRemote(name string) {
	if name != "" {
		r.remote = name
	}
}

// CurrentBranch returns the name of the checked-out branch, or an error in
// detached HEAD state.
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD reference: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("detached HEAD state")
	}
	return head.Name().Short(), nil
}

// BranchExists reports whether a local branch with the given name exists.
func (r *Repo) BranchExists(name string) bool {
	_, err := r.repo.Reference(plumbing.NewBranchReferenceName(name), true)
	return err == nil
}

// RemoteBranchExists reports whether the remote-tracking ref for the given
// branch exists locally (i.e. the branch is known to be published).
func (r *Repo) RemoteBranchExists(name string) bool {
	_, err := r.repo.Reference(plumbing.NewRemoteReferenceName(r.remote, name), true)
	return err == nil
}

// HasRemote reports whether the default remote is configured.
func (r *Repo) HasRemote() bool {
	_, err := r.repo.Remote(r.remote)
	return err == nil
}

// EnsureRemote creates the default remote pointing at url when it is
// missing. Used by gitstage init for repositories without an origin.
func (r *Repo) EnsureRemote(url string) error {
	if r.HasRemote() {
		return nil
	}
	_, err := r.repo.CreateRemote(&config.RemoteConfig{
		Name: r.remote,
		URLs: []string{url},
	})
	if err != nil {
		return fmt.Errorf("creating remote %s: %w", r.remote, err)
	}
	return nil
}

// BranchInfo contains metadata about one branch.
type BranchInfo struct {
	Name     string
	IsRemote bool
	Remote   string
}

// Branches returns all local and remote branches, deduplicated (local
// preferred over remote) and sorted by name.
func (r *Repo) Branches() ([]BranchInfo, error) {
	seen := make(map[string]bool)
	var branches []BranchInfo

	branchIter, err := r.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("listing local branches: %w", err)
	}
	err = branchIter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if strings.Contains(name, "HEAD") {
			return nil
		}
		branches = appendBranch(branches, BranchInfo{Name: name}, seen)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating local branches: %w", err)
	}

	refIter, err := r.repo.References()
	if err != nil {
		return nil, fmt.Errorf("listing references: %w", err)
	}
	err = refIter.ForEach(func(ref *plumbing.Reference) error {
		if !ref.Name().IsRemote() {
			return nil
		}
		full := ref.Name().Short() // e.g. "origin/main"
		if strings.Contains(full, "HEAD") {
			return nil
		}
		remote, name, ok := strings.Cut(full, "/")
		if !ok {
			return nil
		}
		branches = appendBranch(branches, BranchInfo{Name: name, IsRemote: true, Remote: remote}, seen)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating remote branches: %w", err)
	}

	sort.Slice(branches, func(i, j int) bool {
		return branches[i].Name < branches[j].Name
	})
	return branches, nil
}

// appendBranch adds a branch, preferring local over remote on name clashes.
func appendBranch(branches []BranchInfo, info BranchInfo, seen map[string]bool) []BranchInfo {
	if seen[info.Name] {
		if !info.IsRemote {
			for i, b := range branches {
				if b.Name == info.Name && b.IsRemote {
					branches[i] = info
					break
				}
			}
		}
		return branches
	}
	seen[info.Name] = true
	return append(branches, info)
}
