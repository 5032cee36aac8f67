package stage

import (
	"fmt"

	clierrors "github.com/gitstage/gitstage/internal/errors"
	"github.com/gitstage/gitstage/internal/output"
)

// Resolution modes for a source branch that has both committed-but-unpushed
// and uncommitted changes.
const (
	modePushCommitted = "push-committed"
	modeCommitAll     = "commit-all"
	modeSelectChanges = "select-changes"
)

// PushOptions parameterizes one promotion. From is mandatory: the CLI
// resolves the current branch before calling the engine, so the engine
// itself never reads ambient repository state.
type PushOptions struct {
	From         string
	To           string // empty: next stage after From
	Files        []string
	All          bool
	Summary      string
	TestPlan     string
	ForcePromote bool
}

// PushResult reports what a promotion did.
type PushResult struct {
	From       string
	To         string
	CommitHash string
	Files      []string
	// NoOp is set when the change was already promoted and nothing was done.
	NoOp bool
	// Aborted is set when the operator declined to proceed.
	Aborted bool
}

// Push promotes a change set from one stage to the next: it settles the
// source branch's local state, validates the transition, builds a commit
// on the destination from the selected files, pushes it, and records it
// in the change ledger. Any VCS failure aborts the whole operation; a
// best-effort attempt is made to return to the source branch.
func (e *Engine) Push(opts PushOptions) (*PushResult, error) {
	from, to, err := e.resolvePushBranches(opts)
	if err != nil {
		return nil, err
	}

	original, err := e.ensureOnBranch(from)
	if err != nil {
		return nil, err
	}
	defer e.restoreBranch(original)()

	summary, testPlan := opts.Summary, opts.TestPlan

	if err := e.settleSourceChanges(from, &summary, &testPlan); err != nil {
		return nil, err
	}
	if err := e.ensureSynced(from); err != nil {
		return nil, err
	}

	// Validate the transition before touching the destination.
	commits, err := e.repo.CommitsBetween(to, from)
	if err != nil {
		return nil, err
	}
	changed, err := e.repo.DiffNameOnly(to, from)
	if err != nil {
		return nil, err
	}

	if len(commits) > 0 && len(changed) == 0 {
		marker := PromotionTrailer(from, commits[0].Hash)
		promoted, err := e.repo.HistoryContains(to, marker)
		if err != nil {
			return nil, err
		}
		if promoted {
			output.Successf(e.out, "commit %s was already promoted to %s, nothing to do", shortHash(commits[0].Hash), to)
			return &PushResult{From: from, To: to, NoOp: true}, nil
		}
		if !opts.ForcePromote {
			return nil, clierrors.PromotionBlocked(from, to)
		}
	}

	if len(changed) == 0 {
		cont, err := e.prompt.Confirm("No changes detected between branches. Continue with manual file selection?", false)
		if err != nil {
			return nil, err
		}
		if !cont {
			return &PushResult{From: from, To: to, Aborted: true}, nil
		}
	} else {
		output.Headerf(e.out, "Detected file changes between %s and %s:", from, to)
		for _, f := range changed {
			output.ListItemf(e.out, "+ %s", f)
		}
	}

	files, err := e.resolveFileSet(opts, changed)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, clierrors.NoFilesSelected()
	}

	if err := e.fillDescription(&summary, &testPlan); err != nil {
		return nil, err
	}

	proceed, err := e.prompt.Confirm(fmt.Sprintf("Push %d file(s) from %s to %s?", len(files), from, to), true)
	if err != nil {
		return nil, err
	}
	if !proceed {
		output.Infof(e.out, "push cancelled")
		return &PushResult{From: from, To: to, Aborted: true}, nil
	}

	sourceHash, err := e.repo.ResolveRef(from)
	if err != nil {
		return nil, err
	}

	// Build the promotion commit on the destination branch by pulling the
	// selected files' content straight from the source branch, avoiding a
	// full merge.
	output.Stepf(e.out, "switching to %s", to)
	if err := e.repo.Checkout(to); err != nil {
		return nil, err
	}

	output.Stepf(e.out, "applying changes from %s", from)
	if err := e.repo.CheckoutPathFromRef(from, files...); err != nil {
		return nil, err
	}
	if err := e.repo.StageFiles(files); err != nil {
		return nil, err
	}

	commitHash, err := e.repo.Commit(BuildPromotionMessage(summary, testPlan, from, sourceHash))
	if err != nil {
		return nil, err
	}

	output.Stepf(e.out, "pushing %s", to)
	if err := e.repo.Push(to); err != nil {
		return nil, err
	}

	if _, err := e.store.Record(commitHash, summary, testPlan); err != nil {
		return nil, fmt.Errorf("recording change: %w", err)
	}

	output.Successf(e.out, "pushed changes to %s (commit %s)", to, shortHash(commitHash))
	return &PushResult{From: from, To: to, CommitHash: commitHash, Files: files}, nil
}

// resolvePushBranches applies stageflow defaults and validates that both
// stage branches exist locally.
func (e *Engine) resolvePushBranches(opts PushOptions) (from, to string, err error) {
	from = opts.From
	if from == "" {
		return "", "", clierrors.NewArgumentError("source branch is required")
	}

	to = opts.To
	if to == "" {
		next, ok := e.flow.Next(from)
		if !ok {
			return "", "", clierrors.NoNextStage(from)
		}
		to = next
		output.Infof(e.out, "using next stage as destination: %s", to)
	}

	if !e.repo.BranchExists(from) {
		return "", "", clierrors.UnknownStage("source", from)
	}
	if !e.repo.BranchExists(to) {
		return "", "", clierrors.UnknownStage("destination", to)
	}
	return from, to, nil
}

// settleSourceChanges inspects committed-but-unpushed and uncommitted
// changes on the source branch and, depending on the chosen resolution
// mode, commits working-tree changes before promotion.
func (e *Engine) settleSourceChanges(from string, summary, testPlan *string) error {
	var committed []string
	if e.repo.RemoteBranchExists(from) {
		var err error
		committed, err = e.repo.DiffNameOnly(e.remoteRef(from), from)
		if err != nil {
			return err
		}
	}

	uncommitted, err := e.repo.UncommittedFiles()
	if err != nil {
		return err
	}

	if len(committed) == 0 && len(uncommitted) == 0 {
		return nil
	}

	if len(committed) > 0 {
		output.Headerf(e.out, "Committed changes not yet pushed:")
		for _, f := range committed {
			output.ListItemf(e.out, "+ %s", f)
		}
	}
	if len(uncommitted) > 0 {
		output.Headerf(e.out, "Uncommitted changes:")
		for _, f := range uncommitted {
			output.ListItemf(e.out, "+ %s", f)
		}
	}

	mode := modePushCommitted
	switch {
	case len(committed) > 0 && len(uncommitted) > 0:
		mode, err = e.prompt.Choose(
			"You have both committed and uncommitted changes. How would you like to proceed?",
			[]string{modePushCommitted, modeCommitAll, modeSelectChanges},
			modePushCommitted,
		)
		if err != nil {
			return err
		}
	case len(uncommitted) > 0:
		mode = modeCommitAll
	}

	if mode == modePushCommitted {
		return nil
	}

	if err := e.fillDescription(summary, testPlan); err != nil {
		return err
	}

	switch mode {
	case modeCommitAll:
		if err := e.repo.StageAll(); err != nil {
			return err
		}
	case modeSelectChanges:
		selected, err := e.prompt.SelectFiles("Select which changes to commit:", uncommitted)
		if err != nil {
			return err
		}
		if len(selected) == 0 {
			return nil
		}
		if err := e.repo.StageFiles(selected); err != nil {
			return err
		}
	}

	hash, err := e.repo.Commit(BuildMessage(*summary, *testPlan))
	if err != nil {
		return err
	}
	output.Successf(e.out, "committed changes: %s", shortHash(hash))
	return nil
}

// ensureSynced makes sure the source branch is fully present on the
// remote before promoting from it. Declining the push fails the
// operation with BranchSyncRequired.
func (e *Engine) ensureSynced(branch string) error {
	if !e.repo.RemoteBranchExists(branch) {
		publish, err := e.prompt.Confirm(fmt.Sprintf("Branch %s is not published. Push it to origin?", branch), true)
		if err != nil {
			return err
		}
		if !publish {
			return clierrors.BranchSyncRequired(branch, 0)
		}
		return e.repo.PushSetUpstream(branch)
	}

	ahead, err := e.repo.AheadCount(branch)
	if err != nil {
		return err
	}
	if ahead == 0 {
		return nil
	}

	output.Warnf(e.out, "branch %s has %d unpushed commit(s)", branch, ahead)
	push, err := e.prompt.Confirm(fmt.Sprintf("Push %s to origin?", branch), true)
	if err != nil {
		return err
	}
	if !push {
		return clierrors.BranchSyncRequired(branch, ahead)
	}
	return e.repo.Push(branch)
}

// resolveFileSet determines which changed files to carry to the
// destination: the explicit list intersected with the diff, everything,
// or an interactive selection.
func (e *Engine) resolveFileSet(opts PushOptions, changed []string) ([]string, error) {
	if len(opts.Files) > 0 {
		inDiff := make(map[string]bool, len(changed))
		for _, f := range changed {
			inDiff[f] = true
		}
		var files []string
		for _, f := range opts.Files {
			if inDiff[f] {
				files = append(files, f)
			}
		}
		if len(files) != len(opts.Files) {
			output.Warnf(e.out, "some specified files were not found in the diff")
		}
		return files, nil
	}

	if opts.All {
		return changed, nil
	}

	return e.prompt.SelectFiles("Select which files to include in the push:", changed)
}

// fillDescription prompts for any missing summary or test plan.
func (e *Engine) fillDescription(summary, testPlan *string) error {
	if *summary == "" {
		s, err := e.prompt.Ask("Enter a brief summary of the changes")
		if err != nil {
			return err
		}
		*summary = s
	}
	if *testPlan == "" {
		p, err := e.prompt.Ask("Describe how this change was tested")
		if err != nil {
			return err
		}
		*testPlan = p
	}
	return nil
}

func (e *Engine) remoteRef(branch string) string {
	return "origin/" + branch
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
