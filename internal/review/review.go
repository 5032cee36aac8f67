// Package review mutates the review status of recorded changes. It owns
// no repository state; everything it touches lives in the change ledger.
package review

import (
	"errors"
	"fmt"
	"io"

	cerrors "github.com/gitstage/gitstage/internal/errors"
	"github.com/gitstage/gitstage/internal/ledger"
	"github.com/gitstage/gitstage/internal/output"
)

// Prompter asks the operator yes/no questions. The CLI supplies a
// terminal-backed implementation; tests supply a scripted one.
type Prompter interface {
	Confirm(prompt string, defaultValue bool) (bool, error)
}

// Engine applies review decisions to the ledger.
type Engine struct {
	store  *ledger.Store
	prompt Prompter
	out    io.Writer
}

// New returns a review engine writing progress to out.
func New(store *ledger.Store, prompt Prompter, out io.Writer) *Engine {
	return &Engine{store: store, prompt: prompt, out: out}
}

// Options selects what to review and how to decide.
type Options struct {
	// CommitHash identifies a single change. Ignored when All is set.
	CommitHash string
	// Approve and Reject are mutually exclusive. When neither is set the
	// engine asks interactively (declining rejects).
	Approve bool
	Reject  bool
	// All reviews every pending change with a single decision.
	All bool
}

// Result reports what a review call changed.
type Result struct {
	Status  ledger.Status
	Updated int64
	Changes []ledger.Change
}

// Review applies one decision to one change or to all pending changes.
// Flag conflicts are rejected before any ledger row is touched.
func (e *Engine) Review(opts Options) (*Result, error) {
	if opts.Approve && opts.Reject {
		return nil, cerrors.ConflictingFlags("--approve", "--reject")
	}

	if opts.All {
		return e.reviewAll(opts)
	}
	return e.reviewOne(opts)
}

func (e *Engine) reviewOne(opts Options) (*Result, error) {
	change, err := e.store.Get(opts.CommitHash)
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, cerrors.ChangeNotFound(opts.CommitHash)
	}
	if err != nil {
		return nil, err
	}

	status, err := e.decide(opts, fmt.Sprintf("Approve change %s (%s)?", shortHash(change.CommitHash), change.Summary))
	if err != nil {
		return nil, err
	}

	updated, err := e.store.SetStatus(change.CommitHash, status)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, cerrors.ChangeNotFound(opts.CommitHash)
	}

	output.Successf(e.out, "Change %s marked %s", shortHash(updated.CommitHash), updated.Status)
	return &Result{Status: status, Updated: 1, Changes: []ledger.Change{*updated}}, nil
}

func (e *Engine) reviewAll(opts Options) (*Result, error) {
	pending, err := e.store.ListPending()
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		output.Infof(e.out, "No pending changes to review")
		return &Result{Status: ledger.StatusPending, Updated: 0}, nil
	}

	for _, c := range pending {
		output.ListItemf(e.out, "%s  %s", shortHash(c.CommitHash), c.Summary)
	}

	status, err := e.decide(opts, fmt.Sprintf("Approve all %d pending changes?", len(pending)))
	if err != nil {
		return nil, err
	}

	count, err := e.store.SetStatusForAllPending(status)
	if err != nil {
		return nil, err
	}

	output.Successf(e.out, "Marked %d changes %s", count, status)
	return &Result{Status: status, Updated: count, Changes: pending}, nil
}

// decide maps flags to a status, falling back to an interactive yes/no.
// Declining the prompt rejects rather than aborting.
func (e *Engine) decide(opts Options, prompt string) (ledger.Status, error) {
	switch {
	case opts.Approve:
		return ledger.StatusApproved, nil
	case opts.Reject:
		return ledger.StatusRejected, nil
	}

	approve, err := e.prompt.Confirm(prompt, true)
	if err != nil {
		return "", err
	}
	if approve {
		return ledger.StatusApproved, nil
	}
	return ledger.StatusRejected, nil
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
