package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gitstage/gitstage/internal/config"
	"github.com/gitstage/gitstage/internal/gitio"
	"github.com/gitstage/gitstage/internal/output"
	"github.com/gitstage/gitstage/internal/stageflow"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the stage pipeline in the current repository",
	Long: `Initialize gitstage in the current repository.

This command:
  1. Opens the repository, initializing a fresh one if needed
  2. Writes the stage order to .gitstage/stageflow.json
  3. Creates any missing stage branches
  4. Publishes unpublished stage branches when a remote is configured

Examples:
  gitstage init                              # Default stages: dev testing main
  gitstage init --stages dev staging prod    # Custom stage order`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringSlice("stages", nil, "Ordered stage names, promotion flows left to right")
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	stages, _ := cmd.Flags().GetStringSlice("stages")
	if len(stages) == 0 {
		stages = cfg.DefaultStages
	}
	if _, err := stageflow.New(stages); err != nil {
		return err
	}

	repo, created, err := gitio.InitOrOpen("")
	if err != nil {
		return err
	}
	repo.UseRemote(cfg.Remote)
	if created {
		output.Infof(out, "Initialized empty repository at %s", repo.Root())
	}

	if err := stageflow.Save(repo.Root(), stages); err != nil {
		return err
	}
	output.Successf(out, "Stage order: %v", stages)

	if err := commitStageflowConfig(repo); err != nil {
		return err
	}

	for _, stage := range stages {
		if repo.BranchExists(stage) {
			continue
		}
		if err := repo.CreateBranch(stage, "HEAD"); err != nil {
			return err
		}
		output.Stepf(out, "Created branch %s", stage)
	}

	if repo.HasRemote() {
		for _, stage := range stages {
			if repo.RemoteBranchExists(stage) {
				continue
			}
			sp := output.NewSpinner(fmt.Sprintf(" publishing %s", stage))
			err := repo.PushSetUpstream(stage)
			output.StopSpinner(sp)
			if err != nil {
				return err
			}
			output.Stepf(out, "Published branch %s", stage)
		}
	} else {
		output.Warnf(out, "No %s remote configured, branches stay local", cfg.Remote)
	}

	writeConfigTemplate(out)

	output.Successf(out, "gitstage initialized")
	return nil
}

// commitStageflowConfig commits the stage order file so every stage
// branch carries it. A repository with no commits yet gets this as its
// initial commit.
func commitStageflowConfig(repo *gitio.Repo) error {
	uncommitted, err := repo.UncommittedFiles()
	if err != nil {
		return err
	}
	dirty := false
	for _, f := range uncommitted {
		if f == stageflow.ConfigRelPath {
			dirty = true
			break
		}
	}
	if !dirty {
		return nil
	}

	if err := repo.StageFiles([]string{stageflow.ConfigRelPath}); err != nil {
		return err
	}
	_, err = repo.Commit("Configure stage pipeline")
	return err
}

// writeConfigTemplate drops a commented user config on first run, so
// the available settings are discoverable. Failures are non-fatal.
func writeConfigTemplate(out io.Writer) {
	path, err := config.UserConfigPath()
	if err != nil {
		return
	}
	if _, err := os.Stat(path); err == nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	if err := os.WriteFile(path, []byte(config.DefaultConfigTemplate), 0o644); err != nil {
		output.Warnf(out, "Could not write config template: %v", err)
	}
}
