package review

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/gitstage/gitstage/internal/errors"
	"github.com/gitstage/gitstage/internal/ledger"
	"github.com/gitstage/gitstage/internal/testutil"
)

func newEngine(t *testing.T) (*Engine, *ledger.Store, *testutil.ScriptedPrompter) {
	t.Helper()
	store, err := ledger.Open(filepath.Join(t.TempDir(), "changes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	prompt := &testutil.ScriptedPrompter{}
	return New(store, prompt, &bytes.Buffer{}), store, prompt
}

func TestReviewApproveFlag(t *testing.T) {
	engine, store, prompt := newEngine(t)
	_, err := store.Record("abc123", "Add feature", "unit tests")
	require.NoError(t, err)

	result, err := engine.Review(Options{CommitHash: "abc123", Approve: true})
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusApproved, result.Status)
	assert.Equal(t, int64(1), result.Updated)
	assert.Empty(t, prompt.ConfirmPrompts, "explicit flag must not prompt")

	change, err := store.Get("abc123")
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusApproved, change.Status)
}

func TestReviewInteractiveDeclineRejects(t *testing.T) {
	engine, store, prompt := newEngine(t)
	_, err := store.Record("abc123", "Add feature", "unit tests")
	require.NoError(t, err)
	prompt.Confirms = []bool{false}

	result, err := engine.Review(Options{CommitHash: "abc123"})
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusRejected, result.Status)
	assert.Len(t, prompt.ConfirmPrompts, 1)

	change, err := store.Get("abc123")
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusRejected, change.Status)
}

func TestReviewUnknownHash(t *testing.T) {
	engine, _, _ := newEngine(t)

	_, err := engine.Review(Options{CommitHash: "nope", Approve: true})
	require.Error(t, err)
	cliErr := cerrors.AsCLIError(err)
	require.NotNil(t, cliErr)
	assert.Contains(t, cliErr.Message, "nope")
}

func TestReviewConflictingFlags(t *testing.T) {
	engine, store, _ := newEngine(t)
	_, err := store.Record("abc123", "Add feature", "unit tests")
	require.NoError(t, err)

	_, err = engine.Review(Options{CommitHash: "abc123", Approve: true, Reject: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--approve")
	assert.Contains(t, err.Error(), "--reject")

	change, err := store.Get("abc123")
	require.NoError(t, err)
	assert.Equal(t, ledger.StatusPending, change.Status, "conflict must be reported before any mutation")
}

func TestReviewAllSingleConfirmation(t *testing.T) {
	engine, store, prompt := newEngine(t)
	for _, hash := range []string{"aaa111", "bbb222", "ccc333"} {
		_, err := store.Record(hash, "change "+hash, "tests")
		require.NoError(t, err)
	}
	prompt.Confirms = []bool{true}

	result, err := engine.Review(Options{All: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Updated)
	assert.Len(t, prompt.ConfirmPrompts, 1, "bulk review asks exactly once")

	pending, err := store.ListPending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestReviewAllEmptyLedger(t *testing.T) {
	engine, _, prompt := newEngine(t)

	result, err := engine.Review(Options{All: true, Approve: true})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Updated)
	assert.Empty(t, prompt.ConfirmPrompts)
}
