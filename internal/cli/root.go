// Package cli wires the gitstage commands. All argument parsing and
// terminal interaction lives here; the engines underneath take explicit
// parameters and an injected prompter.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gitstage/gitstage/internal/errors"
)

var rootCmd = &cobra.Command{
	Use:   "gitstage",
	Short: "Promote changes through a branch-backed stage pipeline",
	Long: `gitstage moves changes through an ordered pipeline of stages, each
backed 1:1 by a git branch. A push promotes selected files one stage
forward as a single commit and records it in a local change ledger for
review. Destructive rollbacks (clean, flatten) always confirm before
touching remote state.`,
	Example: `  gitstage init --stages dev testing main
  gitstage push --summary "Add feature X" --test-plan "unit tests pass"
  gitstage promote --target main
  gitstage review --all --approve
  gitstage clean --branch-to testing --force`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "Answer every confirmation with its default")
}

// Execute runs the root command, printing any error in the standard
// format. The returned error signals a non-zero exit to main.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprint(os.Stderr, errors.FormatAny(err))
	}
	return err
}
