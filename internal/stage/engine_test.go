package stage

import (
	"bytes"
	"path/filepath"
	"testing"

	clierrors "github.com/gitstage/gitstage/internal/errors"
	"github.com/gitstage/gitstage/internal/gitio"
	"github.com/gitstage/gitstage/internal/ledger"
	"github.com/gitstage/gitstage/internal/stageflow"
	"github.com/gitstage/gitstage/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture bundles a scratch repository with dev/testing/main stage
// branches, a temp ledger, and a scripted prompter.
type fixture struct {
	git    *testutil.GitRepo
	repo   *gitio.Repo
	store  *ledger.Store
	prompt *testutil.ScriptedPrompter
	out    *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	g := testutil.NewGitRepo(t, "dev")
	g.CreateBranch(t, "testing")
	g.CreateBranch(t, "main")

	repo, err := gitio.Open(g.Dir)
	require.NoError(t, err)

	store, err := ledger.Open(filepath.Join(t.TempDir(), "changes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &fixture{
		git:    g,
		repo:   repo,
		store:  store,
		prompt: &testutil.ScriptedPrompter{},
		out:    &bytes.Buffer{},
	}
}

func (f *fixture) engine(t *testing.T) *Engine {
	t.Helper()
	flow, err := stageflow.New([]string{"dev", "testing", "main"})
	require.NoError(t, err)
	return New(f.repo, f.store, flow, f.prompt, f.out)
}

func countCommits(t *testing.T, g *testutil.GitRepo, branch string) string {
	t.Helper()
	return g.Git(t, "rev-list", "--count", branch)
}

func TestPushPromotesSelectedFiles(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t)

	f.git.CommitFile(t, "a.txt", "alpha\n", "add a.txt")
	devHash := f.git.CommitFile(t, "b.txt", "beta\n", "add b.txt")
	f.git.Git(t, "push", "origin", "dev")

	before := countCommits(t, f.git, "testing")

	result, err := e.Push(PushOptions{
		From:     "dev",
		To:       "testing",
		Files:    []string{"a.txt"},
		Summary:  "Add feature X",
		TestPlan: "unit tests pass",
	})
	require.NoError(t, err)
	require.False(t, result.Aborted)
	require.False(t, result.NoOp)
	assert.Equal(t, []string{"a.txt"}, result.Files)

	// Destination gained exactly one commit, touching only a.txt.
	after := countCommits(t, f.git, "testing")
	assert.NotEqual(t, before, after)
	touched := f.git.Git(t, "show", "--name-only", "--format=", "testing")
	assert.Contains(t, touched, "a.txt")
	assert.NotContains(t, touched, "b.txt")

	// Commit message carries the summary, test plan, and trailer.
	msg := f.git.Git(t, "log", "-1", "--format=%B", "testing")
	assert.Contains(t, msg, "Add feature X\n\nTest Plan:\nunit tests pass")
	assert.Contains(t, msg, "Promoted from dev commit: "+devHash)

	// Ledger gained one pending record keyed by the new commit.
	rec, err := f.store.Get(result.CommitHash)
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPending, rec.Status)
	assert.Equal(t, "Add feature X", rec.Summary)

	// Destination was pushed and we are back on the source branch.
	assert.Equal(t, f.git.BranchTip(t, "testing"), f.git.BranchTip(t, "origin/testing"))
	branch, err := f.repo.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "dev", branch)
}

func TestPushAlreadyPromotedIsNoOp(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t)

	f.git.CommitFile(t, "a.txt", "alpha\n", "add a.txt")
	f.git.Git(t, "push", "origin", "dev")

	_, err := e.Push(PushOptions{
		From: "dev", To: "testing", All: true,
		Summary: "first", TestPlan: "tested",
	})
	require.NoError(t, err)

	before := countCommits(t, f.git, "testing")

	// Same source state again: commits differ, file diff is empty, and
	// the trailer for dev's tip is already in testing's history.
	result, err := e.Push(PushOptions{
		From: "dev", To: "testing", All: true,
		Summary: "second", TestPlan: "tested",
	})
	require.NoError(t, err)
	assert.True(t, result.NoOp)
	assert.Equal(t, before, countCommits(t, f.git, "testing"))
}

func TestPushBlockedWithoutForcePromote(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t)

	// Content-identical commits on both branches, no trailer anywhere:
	// commits exist but the file diff is empty.
	f.git.CommitFile(t, "c.txt", "same\n", "add c.txt on dev")
	f.git.Git(t, "push", "origin", "dev")
	f.git.Git(t, "checkout", "testing")
	f.git.CommitFile(t, "c.txt", "same\n", "manual sync")
	f.git.Git(t, "push", "origin", "testing")
	f.git.Git(t, "checkout", "dev")

	before := countCommits(t, f.git, "testing")

	_, err := e.Push(PushOptions{
		From: "dev", To: "testing", All: true,
		Summary: "s", TestPlan: "p",
	})
	require.Error(t, err)
	cliErr := clierrors.AsCLIError(err)
	require.NotNil(t, cliErr)
	assert.Contains(t, cliErr.Message, "no file changes")

	assert.Equal(t, before, countCommits(t, f.git, "testing"))
}

func TestPushDeclinedSyncFails(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t)

	f.git.CommitFile(t, "a.txt", "x\n", "unpushed work")
	// Decline the "push dev to origin?" prompt.
	f.prompt.Confirms = []bool{false}

	_, err := e.Push(PushOptions{
		From: "dev", To: "testing", All: true,
		Summary: "s", TestPlan: "p",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unpushed commits")
}

func TestPushNoFilesSelected(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t)

	f.git.CommitFile(t, "a.txt", "x\n", "add a.txt")
	f.git.Git(t, "push", "origin", "dev")

	// No explicit files, no --all, and the scripted selection is empty.
	_, err := e.Push(PushOptions{
		From: "dev", To: "testing",
		Summary: "s", TestPlan: "p",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files selected")
}

func TestPushUnknownStage(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t)

	_, err := e.Push(PushOptions{From: "dev", To: "staging", Summary: "s", TestPlan: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"staging" does not exist`)
}

func TestPushCommitsDirtyWorkingTree(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t)

	// Uncommitted-only change: the engine commits it on the source
	// branch before promoting.
	f.git.WriteFile(t, "a.txt", "dirty\n")

	result, err := e.Push(PushOptions{
		From: "dev", To: "testing", All: true,
		Summary: "Commit it all", TestPlan: "manual",
	})
	require.NoError(t, err)
	require.False(t, result.Aborted)

	devMsg := f.git.Git(t, "log", "-1", "--format=%B", "dev")
	assert.Contains(t, devMsg, "Commit it all\n\nTest Plan:\nmanual")

	touched := f.git.Git(t, "show", "--name-only", "--format=", "testing")
	assert.Contains(t, touched, "a.txt")
}

func TestCleanForcedResetsToRemoteSource(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t)

	// Two extra commits on testing versus origin/dev.
	f.git.Git(t, "checkout", "testing")
	f.git.CommitFile(t, "x1.txt", "1\n", "extra one")
	extra2 := f.git.CommitFile(t, "x2.txt", "2\n", "extra two")
	f.git.Git(t, "push", "origin", "testing")
	f.git.Git(t, "checkout", "dev")

	result, err := e.Clean(CleanOptions{To: "testing", From: "dev", Force: true})
	require.NoError(t, err)
	assert.False(t, result.Aborted)
	assert.Equal(t, 2, result.Removed)

	// testing's tip now equals origin/dev's tip, locally and remotely.
	assert.Equal(t, f.git.BranchTip(t, "origin/dev"), f.git.BranchTip(t, "testing"))
	assert.Equal(t, f.git.BranchTip(t, "origin/dev"), f.git.BranchTip(t, "origin/testing"))

	// The discarded commits are unreachable from testing.
	reachable := f.git.Git(t, "rev-list", "testing")
	assert.NotContains(t, reachable, extra2)
}

func TestCleanDeclinedLeavesEverything(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t)

	f.git.Git(t, "checkout", "testing")
	f.git.CommitFile(t, "x.txt", "1\n", "extra")
	f.git.Git(t, "push", "origin", "testing")
	f.git.Git(t, "checkout", "dev")
	tip := f.git.BranchTip(t, "testing")

	f.prompt.Confirms = []bool{false}

	result, err := e.Clean(CleanOptions{To: "testing", From: "dev"})
	require.NoError(t, err)
	assert.True(t, result.Aborted)
	assert.Equal(t, tip, f.git.BranchTip(t, "testing"))
	assert.NotEmpty(t, f.prompt.ConfirmPrompts, "destructive reset must ask first")
}

func TestFlattenDryRunTouchesNothing(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t)

	f.git.Git(t, "checkout", "testing")
	f.git.CommitFile(t, "x.txt", "1\n", "extra")
	f.git.Git(t, "push", "origin", "testing")
	f.git.Git(t, "checkout", "dev")
	tip := f.git.BranchTip(t, "testing")

	result, err := e.Flatten(FlattenOptions{From: "main", To: "testing", Force: true, DryRun: true})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, []string{"testing"}, result.Flattened)
	assert.Equal(t, tip, f.git.BranchTip(t, "testing"))
}

func TestFlattenCascadeWalksDownstream(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t)

	f.git.Git(t, "checkout", "testing")
	f.git.CommitFile(t, "t.txt", "1\n", "testing extra")
	f.git.Git(t, "push", "origin", "testing")
	f.git.Git(t, "checkout", "dev")
	f.git.CommitFile(t, "d.txt", "1\n", "dev extra")
	f.git.Git(t, "push", "origin", "dev")

	result, err := e.Flatten(FlattenOptions{Cascade: true, Force: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"testing", "dev"}, result.Flattened)

	mainTip := f.git.BranchTip(t, "origin/main")
	assert.Equal(t, mainTip, f.git.BranchTip(t, "testing"))
	assert.Equal(t, mainTip, f.git.BranchTip(t, "dev"))
}

func TestFlattenCascadeStopsOnFailure(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t)

	f.git.Git(t, "checkout", "testing")
	f.git.CommitFile(t, "t.txt", "1\n", "testing extra")
	f.git.Git(t, "push", "origin", "testing")
	f.git.Git(t, "checkout", "main")

	// Remove dev so the second cascade step fails at checkout.
	f.git.Git(t, "branch", "-D", "dev")
	devRemote := f.git.BranchTip(t, "origin/dev")

	result, err := e.Flatten(FlattenOptions{Cascade: true, Force: true})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "flattening dev failed")

	// Step one ran, step two did not touch the remote.
	assert.Equal(t, f.git.BranchTip(t, "origin/main"), f.git.BranchTip(t, "testing"))
	assert.Equal(t, devRemote, f.git.BranchTip(t, "origin/dev"))
}
