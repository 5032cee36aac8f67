package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	cerrors "github.com/gitstage/gitstage/internal/errors"
	"github.com/gitstage/gitstage/internal/ledger"
	"github.com/gitstage/gitstage/internal/output"
)

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Move a stage branch to the first stage's reviewed tip",
	Long: `Promote the first stage's latest commit by pointing a later stage
branch directly at it.

Unlike push, promote moves the whole branch rather than building a
file-level commit. The tip commit must already have a ledger record
from a previous push.

Examples:
  gitstage promote --target testing
  gitstage promote --target main`,
	RunE: runPromote,
}

func init() {
	rootCmd.AddCommand(promoteCmd)
	promoteCmd.Flags().String("target", "", "Stage branch to promote to (testing or main)")
	promoteCmd.MarkFlagRequired("target")
}

func runPromote(cmd *cobra.Command, args []string) error {
	a, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	out := cmd.OutOrStdout()

	target, _ := cmd.Flags().GetString("target")
	if !a.flow.Contains(target) || target == a.flow.First() {
		return cerrors.NewArgumentError(
			fmt.Sprintf("invalid promote target %q", target),
			fmt.Sprintf("Pick a stage after %s in the flow: %v", a.flow.First(), a.flow.Stages()),
		)
	}

	from := a.flow.First()
	if current, err := a.repo.CurrentBranch(); err != nil {
		return err
	} else if current != from {
		output.Infof(out, "Switching to %s", from)
		if err := a.repo.Checkout(from); err != nil {
			return err
		}
	}

	tip, err := a.repo.ResolveRef(from)
	if err != nil {
		return err
	}

	change, err := a.store.Get(tip)
	if errors.Is(err, ledger.ErrNotFound) {
		return cerrors.ChangeNotFound(tip)
	}
	if err != nil {
		return err
	}

	output.Headerf(out, "Change details")
	output.ListItemf(out, "Commit:    %s", change.CommitHash)
	output.ListItemf(out, "Summary:   %s", change.Summary)
	output.ListItemf(out, "Test Plan: %s", change.TestPlan)
	output.ListItemf(out, "Status:    %s", change.Status)

	proceed, err := a.prompt.Confirm(fmt.Sprintf("Proceed with promotion to %s?", target), true)
	if err != nil {
		return err
	}
	if !proceed {
		output.Warnf(out, "Promotion cancelled")
		return nil
	}

	if a.repo.BranchExists(target) {
		if err := a.repo.Checkout(target); err != nil {
			return err
		}
		if err := a.repo.HardReset(tip); err != nil {
			return err
		}
	} else {
		if err := a.repo.CreateBranch(target, tip); err != nil {
			return err
		}
		if err := a.repo.Checkout(target); err != nil {
			return err
		}
	}

	if a.repo.HasRemote() {
		if err := a.repo.Push(target); err != nil {
			return err
		}
	}

	output.Successf(out, "Promoted %s to %s", shortHash(tip), target)
	return nil
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
