package cli

import (
	"github.com/spf13/cobra"

	cerrors "github.com/gitstage/gitstage/internal/errors"
	"github.com/gitstage/gitstage/internal/review"
)

var reviewCmd = &cobra.Command{
	Use:   "review [commit-hash]",
	Short: "Approve or reject recorded changes",
	Long: `Review changes recorded by push.

A commit hash reviews one change; --all reviews every pending change
with a single decision. Without --approve or --reject the decision is
asked interactively, and declining rejects.

Examples:
  gitstage review 4f9c21ab --approve
  gitstage review 4f9c21ab
  gitstage review --all --reject`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.Flags().Bool("approve", false, "Mark as approved")
	reviewCmd.Flags().Bool("reject", false, "Mark as rejected")
	reviewCmd.Flags().Bool("all", false, "Review every pending change")
}

func runReview(cmd *cobra.Command, args []string) error {
	a, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	approve, _ := cmd.Flags().GetBool("approve")
	reject, _ := cmd.Flags().GetBool("reject")
	all, _ := cmd.Flags().GetBool("all")

	var hash string
	if len(args) == 1 {
		hash = args[0]
	}
	if hash == "" && !all {
		return cerrors.NewArgumentErrorWithUsage(
			"a commit hash or --all is required",
			"gitstage review [commit-hash] [--approve|--reject] [--all]",
		)
	}

	engine := review.New(a.store, a.prompt, cmd.OutOrStdout())
	_, err = engine.Review(review.Options{
		CommitHash: hash,
		Approve:    approve,
		Reject:     reject,
		All:        all,
	})
	return err
}
