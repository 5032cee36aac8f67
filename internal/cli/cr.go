package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gitstage/gitstage/internal/cr"
	"github.com/gitstage/gitstage/internal/output"
)

var crCmd = &cobra.Command{
	Use:   "cr",
	Short: "Manage change requests on the log branch",
	Long: `Change requests live as numbered markdown files on the dedicated
orphan branch ` + cr.BranchName + `. Every operation switches to that branch,
works, and returns to the branch you were on.`,
}

var crAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new change request",
	Example: `  gitstage cr add --summary "Support nested stages" \
    --motivation "flows grow deeper" --acceptance "nested stage promotes cleanly"`,
	RunE: runCrAdd,
}

var crListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded change requests",
	RunE:  runCrList,
}

var crShowCmd = &cobra.Command{
	Use:     "show <id>",
	Short:   "Show one change request",
	Example: "  gitstage cr show CR-0001\n  gitstage cr show 0001",
	Args:    cobra.ExactArgs(1),
	RunE:    runCrShow,
}

func init() {
	rootCmd.AddCommand(crCmd)
	crCmd.AddCommand(crAddCmd, crListCmd, crShowCmd)

	crAddCmd.Flags().String("summary", "", "One-line description")
	crAddCmd.Flags().String("motivation", "", "Why the change is needed")
	crAddCmd.Flags().String("dependencies", "", "What the change depends on")
	crAddCmd.Flags().String("acceptance", "", "Acceptance criteria")
	crAddCmd.Flags().String("notes", "", "Free-form notes")
	crAddCmd.MarkFlagRequired("summary")
}

func runCrAdd(cmd *cobra.Command, args []string) error {
	a, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	summary, _ := cmd.Flags().GetString("summary")
	motivation, _ := cmd.Flags().GetString("motivation")
	dependencies, _ := cmd.Flags().GetString("dependencies")
	acceptance, _ := cmd.Flags().GetString("acceptance")
	notes, _ := cmd.Flags().GetString("notes")

	log := cr.NewLog(a.repo, cmd.OutOrStdout())
	added, err := log.Add(cr.Request{
		Summary:      summary,
		Motivation:   motivation,
		Dependencies: dependencies,
		Acceptance:   acceptance,
		Notes:        notes,
	})
	if err != nil {
		return err
	}

	output.Successf(cmd.OutOrStdout(), "Created %s: %s", added.ID, added.Summary)
	return nil
}

func runCrList(cmd *cobra.Command, args []string) error {
	a, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	log := cr.NewLog(a.repo, cmd.OutOrStdout())
	requests, err := log.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(requests) == 0 {
		output.Infof(out, "No change requests recorded")
		return nil
	}

	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tSTAGE\tCREATED\tSUMMARY")
	for _, req := range requests {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", req.ID, req.Status, req.Stage, req.Created, req.Summary)
	}
	return w.Flush()
}

func runCrShow(cmd *cobra.Command, args []string) error {
	a, cleanup, err := setup(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	log := cr.NewLog(a.repo, cmd.OutOrStdout())
	_, content, err := log.Show(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), content)
	return nil
}
