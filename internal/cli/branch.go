package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	cerrors "github.com/gitstage/gitstage/internal/errors"
	"github.com/gitstage/gitstage/internal/output"
)

var branchCmd = &cobra.Command{
	Use:   "branch [name]",
	Short: "List branches or switch to one",
	Long: `Without an argument, list local and remote branches with the current
one marked. With a name, switch to that branch, creating a local
tracking branch when the name only exists on the remote.

Examples:
  gitstage branch
  gitstage branch testing`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBranch,
}

func init() {
	rootCmd.AddCommand(branchCmd)
}

func runBranch(cmd *cobra.Command, args []string) error {
	a, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	if len(args) == 0 {
		return listBranches(cmd, a)
	}
	return switchBranch(cmd, a, args[0])
}

func listBranches(cmd *cobra.Command, a *app) error {
	branches, err := a.repo.Branches()
	if err != nil {
		return err
	}
	current, err := a.repo.CurrentBranch()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BRANCH\tLOCATION\tSTAGE")
	for _, b := range branches {
		marker := "  "
		if b.Name == current {
			marker = "* "
		}
		location := "local"
		if b.IsRemote {
			location = b.Remote
		}
		stage := ""
		if a.flow.Contains(b.Name) {
			stage = "yes"
		}
		fmt.Fprintf(w, "%s%s\t%s\t%s\n", marker, b.Name, location, stage)
	}
	return w.Flush()
}

func switchBranch(cmd *cobra.Command, a *app, name string) error {
	out := cmd.OutOrStdout()

	if a.repo.BranchExists(name) {
		if err := a.repo.Checkout(name); err != nil {
			return err
		}
		output.Successf(out, "Switched to branch %s", name)
		return nil
	}

	if a.repo.RemoteBranchExists(name) {
		if err := a.repo.CreateTrackingBranch(name); err != nil {
			return err
		}
		output.Successf(out, "Switched to new tracking branch %s", name)
		return nil
	}

	return cerrors.NewArgumentError(
		fmt.Sprintf("branch %q does not exist locally or on the remote", name),
		"Run 'gitstage branch' to list available branches",
	)
}
