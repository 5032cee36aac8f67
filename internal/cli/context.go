package cli

import (
	"github.com/spf13/cobra"

	"github.com/gitstage/gitstage/internal/config"
	cerrors "github.com/gitstage/gitstage/internal/errors"
	"github.com/gitstage/gitstage/internal/gitio"
	"github.com/gitstage/gitstage/internal/ledger"
	"github.com/gitstage/gitstage/internal/stage"
	"github.com/gitstage/gitstage/internal/stageflow"
)

// app bundles everything a command needs: merged configuration, the
// repository containing the working directory, its stage flow, the
// change ledger, and a terminal prompter.
type app struct {
	cfg    *config.Configuration
	repo   *gitio.Repo
	flow   *stageflow.Flow
	store  *ledger.Store
	prompt stage.Prompter
}

// setup builds the app for one command invocation. The returned cleanup
// closes the ledger and must run before the process exits.
func setup(cmd *cobra.Command) (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, cerrors.ConfigParseError(config.ProjectConfigPath(), err)
	}

	repo, err := gitio.Open("")
	if err != nil {
		return nil, nil, cerrors.NotAGitRepository()
	}
	repo.UseRemote(cfg.Remote)

	flow, err := stageflow.Load(repo.Root())
	if err != nil {
		return nil, nil, err
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath, err = ledger.DefaultPath()
		if err != nil {
			return nil, nil, err
		}
	}
	store, err := ledger.Open(dbPath)
	if err != nil {
		return nil, nil, err
	}

	return &app{
		cfg:    cfg,
		repo:   repo,
		flow:   flow,
		store:  store,
		prompt: newTerminalPrompter(cmd, skipConfirmations(cmd, cfg)),
	}, func() { store.Close() }, nil
}

// engine builds a stage engine writing progress to the command's stdout.
func (a *app) engine(cmd *cobra.Command) *stage.Engine {
	return stage.New(a.repo, a.store, a.flow, a.prompt, cmd.OutOrStdout())
}

func skipConfirmations(cmd *cobra.Command, cfg *config.Configuration) bool {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true
	}
	return cfg.SkipConfirmations
}
