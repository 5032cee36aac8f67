package cli

import (
	"github.com/spf13/cobra"

	"github.com/gitstage/gitstage/internal/output"
	"github.com/gitstage/gitstage/internal/stage"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Promote changes one stage forward",
	Long: `Promote a change set from a source stage to the next stage in the flow.

The destination gains exactly one commit containing the selected files,
carrying the summary, test plan, and a promotion trailer that makes the
operation idempotent. The commit is pushed and recorded in the change
ledger as pending review.

Examples:
  gitstage push --summary "Add feature X" --test-plan "unit tests pass"
  gitstage push --branch-from dev --branch-to testing --files a.txt --files b.txt
  gitstage push --all --force-promote`,
	RunE: runPush,
}

func init() {
	rootCmd.AddCommand(pushCmd)
	pushCmd.Flags().String("branch-from", "", "Source stage branch (default: current branch)")
	pushCmd.Flags().String("branch-to", "", "Destination stage branch (default: next stage)")
	pushCmd.Flags().StringArray("files", nil, "Files to promote (repeatable)")
	pushCmd.Flags().Bool("all", false, "Promote every changed file")
	pushCmd.Flags().String("summary", "", "One-line description of the change")
	pushCmd.Flags().String("test-plan", "", "How the change was tested")
	pushCmd.Flags().Bool("force-promote", false, "Promote even when no file content differs")
}

func runPush(cmd *cobra.Command, args []string) error {
	a, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	from, _ := cmd.Flags().GetString("branch-from")
	if from == "" {
		from, err = a.repo.CurrentBranch()
		if err != nil {
			return err
		}
	}
	to, _ := cmd.Flags().GetString("branch-to")
	files, _ := cmd.Flags().GetStringArray("files")
	all, _ := cmd.Flags().GetBool("all")
	summary, _ := cmd.Flags().GetString("summary")
	testPlan, _ := cmd.Flags().GetString("test-plan")
	forcePromote, _ := cmd.Flags().GetBool("force-promote")

	result, err := a.engine(cmd).Push(stage.PushOptions{
		From:         from,
		To:           to,
		Files:        files,
		All:          all,
		Summary:      summary,
		TestPlan:     testPlan,
		ForcePromote: forcePromote,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case result.Aborted:
		output.Warnf(out, "Push aborted")
	case result.NoOp:
		output.Infof(out, "Already promoted from %s to %s, nothing to do", result.From, result.To)
	default:
		output.Successf(out, "Promoted %d files from %s to %s (%s)",
			len(result.Files), result.From, result.To, result.CommitHash[:8])
	}
	return nil
}
