package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/gitstage/gitstage/internal/output"
	"github.com/gitstage/gitstage/internal/stage"
)

var flattenCmd = &cobra.Command{
	Use:   "flatten",
	Short: "Reset one or every downstream stage branch to a source stage",
	Long: `Flatten a stage branch onto its source, discarding the destination's
own history. With --cascade every downstream stage is flattened in
order, stopping at the first failure. --dry-run shows what would be
reset without touching anything.

Examples:
  gitstage flatten
  gitstage flatten --branch-from main --branch-to testing
  gitstage flatten --cascade --dry-run`,
	RunE: runFlatten,
}

func init() {
	rootCmd.AddCommand(flattenCmd)
	flattenCmd.Flags().String("branch-from", "", "Source stage branch (default: highest stage)")
	flattenCmd.Flags().String("branch-to", "", "Stage branch to flatten (default: next stage below)")
	flattenCmd.Flags().Bool("cascade", false, "Flatten every downstream stage in order")
	flattenCmd.Flags().BoolP("force", "f", false, "Skip confirmation prompts")
	flattenCmd.Flags().Bool("dry-run", false, "Show what would be reset without mutating anything")
}

func runFlatten(cmd *cobra.Command, args []string) error {
	a, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	from, _ := cmd.Flags().GetString("branch-from")
	to, _ := cmd.Flags().GetString("branch-to")
	cascade, _ := cmd.Flags().GetBool("cascade")
	force, _ := cmd.Flags().GetBool("force")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	result, err := a.engine(cmd).Flatten(stage.FlattenOptions{
		From:    from,
		To:      to,
		Cascade: cascade,
		Force:   force,
		DryRun:  dryRun,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case result.Aborted:
		output.Warnf(out, "Flatten aborted")
	case len(result.Flattened) == 0:
		output.Infof(out, "Nothing to flatten")
	case result.DryRun:
		output.Infof(out, "Would flatten: %s", strings.Join(result.Flattened, ", "))
	default:
		output.Successf(out, "Flattened: %s", strings.Join(result.Flattened, ", "))
	}
	return nil
}
