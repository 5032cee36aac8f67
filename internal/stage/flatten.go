package stage

import (
	"fmt"

	clierrors "github.com/gitstage/gitstage/internal/errors"
	"github.com/gitstage/gitstage/internal/output"
)

// FlattenOptions parameterizes a multi-stage rollback.
type FlattenOptions struct {
	From    string // source branch to match; empty: highest stage in the flow
	To      string // destination branch to flatten; empty: next stage below From
	Cascade bool   // walk every downstream stage instead of one
	Force   bool   // skip confirmation prompts
	DryRun  bool   // show what would happen without resetting or pushing
}

// FlattenResult reports what a flatten did.
type FlattenResult struct {
	// Flattened lists the stages reset, in order.
	Flattened []string
	Aborted   bool
	DryRun    bool
}

// Flatten resets one stage branch, or in cascade mode every downstream
// stage branch in turn, to match its source. Cascade stops at the first
// failing step without attempting subsequent stages.
func (e *Engine) Flatten(opts FlattenOptions) (*FlattenResult, error) {
	from := opts.From
	if from == "" {
		from = e.flow.Last()
		if from == "" {
			return nil, clierrors.NewConfigError("no stages defined in stageflow")
		}
		output.Infof(e.out, "using highest stage as source: %s", from)
	}

	if opts.Cascade {
		return e.flattenCascade(from, opts)
	}

	to := opts.To
	if to == "" {
		downstream := e.flow.Downstream(from)
		if downstream == nil {
			return nil, clierrors.StageNotInFlow(from)
		}
		if len(downstream) == 0 {
			return nil, clierrors.NewArgumentError(
				fmt.Sprintf("no downstream branches found after %s", from))
		}
		to = downstream[0]
		output.Infof(e.out, "using next stage as destination: %s", to)
	}

	if !e.repo.BranchExists(to) {
		return nil, clierrors.UnknownStage("destination", to)
	}

	done, err := e.flattenOne(from, to, opts.Force, opts.DryRun)
	if err != nil {
		return nil, err
	}
	if !done {
		return &FlattenResult{Aborted: true}, nil
	}
	return &FlattenResult{Flattened: []string{to}, DryRun: opts.DryRun}, nil
}

// flattenCascade flattens every stage downstream of from, each flattened
// stage becoming the source for the next step.
func (e *Engine) flattenCascade(from string, opts FlattenOptions) (*FlattenResult, error) {
	targets := e.flow.Downstream(from)
	if targets == nil {
		return nil, clierrors.StageNotInFlow(from)
	}
	if len(targets) == 0 {
		output.Warnf(e.out, "no downstream branches found after %s", from)
		if from != e.flow.Last() {
			output.Infof(e.out, "note: %s is not the highest stage; consider --branch-from %s", from, e.flow.Last())
		}
		return &FlattenResult{}, nil
	}

	output.Headerf(e.out, "Cascade flattening from %s to:", from)
	for _, t := range targets {
		output.ListItemf(e.out, "→ %s", t)
	}

	if !opts.Force {
		confirmed, err := e.prompt.Confirm("Proceed with cascade flattening?", false)
		if err != nil {
			return nil, err
		}
		if !confirmed {
			output.Infof(e.out, "cascade flattening cancelled")
			return &FlattenResult{Aborted: true}, nil
		}
	}

	result := &FlattenResult{DryRun: opts.DryRun}
	current := from
	for _, target := range targets {
		done, err := e.flattenOne(current, target, opts.Force, opts.DryRun)
		if err != nil {
			return nil, clierrors.WrapWithMessage(err, clierrors.Runtime,
				fmt.Sprintf("cascade stopped: flattening %s failed", target))
		}
		if !done {
			result.Aborted = true
			return result, nil
		}
		result.Flattened = append(result.Flattened, target)
		current = target
	}

	return result, nil
}

// flattenOne resets a single branch to origin/<from>. The displayed diff
// compares against the literal from ref, while the reset target is the
// remote counterpart. Returns false when the operator declined.
func (e *Engine) flattenOne(from, to string, force, dryRun bool) (bool, error) {
	doomed, err := e.repo.CommitsBetween(from, to)
	if err != nil {
		return false, err
	}
	e.showDoomedCommits(doomed, to, from)

	if !force {
		confirmed, err := e.prompt.Confirm(
			fmt.Sprintf("Flatten %s to match %s? All extra history will be destroyed", to, from), false)
		if err != nil {
			return false, err
		}
		if !confirmed {
			output.Infof(e.out, "flatten cancelled")
			return false, nil
		}
	}

	if dryRun {
		output.Infof(e.out, "dry run: would flatten %s to match %s", to, from)
		return true, nil
	}

	original, err := e.repo.CurrentBranch()
	if err != nil {
		return false, fmt.Errorf("resolving current branch: %w", err)
	}
	defer e.restoreBranch(original)()

	output.Stepf(e.out, "switching to %s", to)
	if err := e.repo.Checkout(to); err != nil {
		return false, err
	}
	output.Stepf(e.out, "resetting %s to %s", to, e.remoteRef(from))
	if err := e.repo.HardReset(e.remoteRef(from)); err != nil {
		return false, err
	}
	output.Stepf(e.out, "force pushing %s", to)
	if err := e.repo.ForcePush(to); err != nil {
		return false, err
	}

	output.Successf(e.out, "flattened %s to match %s", to, from)
	return true, nil
}
