// Package stage implements the branch-stageflow state machine: promoting
// a change set one stage forward, rolling a stage back to its
// predecessor, and cascade-flattening multiple stages.
//
// The engine never infers state from the ambient repository: the source
// branch is an explicit parameter on every operation, and all
// interactivity goes through the injected Prompter so the CLI layer owns
// the terminal.
package stage

import (
	"fmt"
	"io"

	"github.com/gitstage/gitstage/internal/gitio"
	"github.com/gitstage/gitstage/internal/ledger"
	"github.com/gitstage/gitstage/internal/output"
	"github.com/gitstage/gitstage/internal/stageflow"
)

// Prompter answers the engine's interactive questions. The CLI provides a
// terminal implementation; tests provide a scripted one.
type Prompter interface {
	// Confirm asks a yes/no question, returning def on empty input.
	Confirm(prompt string, def bool) (bool, error)
	// Ask requests a free-text answer.
	Ask(prompt string) (string, error)
	// Choose picks one of options, returning def on empty input.
	Choose(prompt string, options []string, def string) (string, error)
	// SelectFiles picks a subset of files.
	SelectFiles(prompt string, files []string) ([]string, error)
}

// Engine sequences VCS and ledger operations for stage transitions.
type Engine struct {
	repo   *gitio.Repo
	store  *ledger.Store
	flow   *stageflow.Flow
	prompt Prompter
	out    io.Writer
}

// New builds an engine. out receives progress output.
func New(repo *gitio.Repo, store *ledger.Store, flow *stageflow.Flow, prompt Prompter, out io.Writer) *Engine {
	return &Engine{repo: repo, store: store, flow: flow, prompt: prompt, out: out}
}

// restoreBranch returns a function that checks the repository back out to
// the given branch. The restore is best-effort: its own failure is
// reported as a warning and otherwise ignored, since it runs on error
// paths where the primary failure matters more.
func (e *Engine) restoreBranch(branch string) func() {
	return func() {
		current, err := e.repo.CurrentBranch()
		if err == nil && current == branch {
			return
		}
		if err := e.repo.Checkout(branch); err != nil {
			output.Warnf(e.out, "could not return to branch %s: %v", branch, err)
		}
	}
}

// ensureOnBranch checks out branch unless it is already current, and
// returns the branch that was current before.
func (e *Engine) ensureOnBranch(branch string) (string, error) {
	current, err := e.repo.CurrentBranch()
	if err != nil {
		return "", fmt.Errorf("resolving current branch: %w", err)
	}
	if current == branch {
		return current, nil
	}
	if err := e.repo.Checkout(branch); err != nil {
		return "", err
	}
	return current, nil
}
