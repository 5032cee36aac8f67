package cli

import (
	"github.com/spf13/cobra"

	"github.com/gitstage/gitstage/internal/output"
	"github.com/gitstage/gitstage/internal/stage"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Reset a stage branch to match its predecessor",
	Long: `Force-reset a stage branch to its predecessor's remote state,
discarding any extra commits on it. This rewrites the remote branch and
cannot be undone, so a confirmation is mandatory unless --force is
given.

Examples:
  gitstage clean --branch-to testing
  gitstage clean --branch-to testing --branch-from dev --force`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().String("branch-to", "", "Stage branch to reset (default: testing)")
	cleanCmd.Flags().String("branch-from", "", "Branch to match (default: previous stage)")
	cleanCmd.Flags().BoolP("force", "f", false, "Skip the confirmation prompt")
}

func runClean(cmd *cobra.Command, args []string) error {
	a, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	to, _ := cmd.Flags().GetString("branch-to")
	from, _ := cmd.Flags().GetString("branch-from")
	force, _ := cmd.Flags().GetBool("force")

	result, err := a.engine(cmd).Clean(stage.CleanOptions{To: to, From: from, Force: force})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.Aborted {
		output.Warnf(out, "Clean aborted")
		return nil
	}
	output.Successf(out, "Reset %s to %s, discarded %d commits", result.To, result.From, result.Removed)
	return nil
}
