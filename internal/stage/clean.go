package stage

import (
	"fmt"

	clierrors "github.com/gitstage/gitstage/internal/errors"
	"github.com/gitstage/gitstage/internal/gitio"
	"github.com/gitstage/gitstage/internal/output"
)

// CleanOptions parameterizes a single-stage rollback.
type CleanOptions struct {
	To    string // destination branch to reset; empty: "testing"
	From  string // branch to match; empty: previous stage before To
	Force bool   // skip the confirmation prompt
}

// CleanResult reports what a rollback did.
type CleanResult struct {
	From    string
	To      string
	Removed int // commits discarded from To
	Aborted bool
}

// Clean force-resets a stage branch to match its predecessor's remote
// state, discarding any extra commits. This is destructive and
// irreversible; unless Force is set, an explicit confirmation is
// mandatory before any remote state is mutated.
func (e *Engine) Clean(opts CleanOptions) (*CleanResult, error) {
	to := opts.To
	if to == "" {
		to = "testing"
		output.Infof(e.out, "using default destination branch: %s", to)
	}

	from := opts.From
	if from == "" {
		prev, ok := e.flow.Previous(to)
		if !ok {
			return nil, clierrors.NoPreviousStage(to)
		}
		from = prev
		output.Infof(e.out, "using previous stage as source: %s", from)
	}

	if !e.repo.BranchExists(from) {
		return nil, clierrors.UnknownStage("source", from)
	}
	if !e.repo.BranchExists(to) {
		return nil, clierrors.UnknownStage("destination", to)
	}

	if err := e.repo.Fetch(from); err != nil {
		return nil, err
	}

	doomed, err := e.repo.CommitsBetween(e.remoteRef(from), to)
	if err != nil {
		return nil, err
	}
	e.showDoomedCommits(doomed, to, e.remoteRef(from))

	if !opts.Force {
		confirmed, err := e.prompt.Confirm(
			fmt.Sprintf("Reset %s to match %s? This cannot be undone", to, e.remoteRef(from)), false)
		if err != nil {
			return nil, err
		}
		if !confirmed {
			output.Infof(e.out, "reset cancelled")
			return &CleanResult{From: from, To: to, Aborted: true}, nil
		}
	}

	original, err := e.repo.CurrentBranch()
	if err != nil {
		return nil, fmt.Errorf("resolving current branch: %w", err)
	}
	defer e.restoreBranch(original)()

	output.Stepf(e.out, "switching to %s", to)
	if err := e.repo.Checkout(to); err != nil {
		return nil, err
	}
	output.Stepf(e.out, "resetting %s to %s", to, e.remoteRef(from))
	if err := e.repo.HardReset(e.remoteRef(from)); err != nil {
		return nil, err
	}
	output.Stepf(e.out, "force pushing %s", to)
	if err := e.repo.ForcePush(to); err != nil {
		return nil, err
	}

	output.Successf(e.out, "reset %s to match %s", to, e.remoteRef(from))
	return &CleanResult{From: from, To: to, Removed: len(doomed)}, nil
}

// showDoomedCommits lists the commits a reset will discard.
func (e *Engine) showDoomedCommits(doomed []gitio.Commit, to, target string) {
	if len(doomed) == 0 {
		output.Successf(e.out, "no commits to remove, %s is already in sync with %s", to, target)
		return
	}
	output.Headerf(e.out, "The following commits will be removed from %s:", to)
	for _, c := range doomed {
		output.ListItemf(e.out, "- %s %s", shortHash(c.Hash), c.Subject)
	}
}
