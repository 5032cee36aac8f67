package ledger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "changes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndGet(t *testing.T) {
	store := openTestStore(t)

	rec, err := store.Record("abc123", "Add feature X", "unit tests pass")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, rec.Status)
	assert.False(t, rec.CreatedAt.IsZero())

	got, err := store.Get("abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", got.CommitHash)
	assert.Equal(t, "Add feature X", got.Summary)
	assert.Equal(t, "unit tests pass", got.TestPlan)
	assert.Equal(t, StatusPending, got.Status)
}

func TestGetUnknownHash(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordDuplicateCommit(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Record("dup", "first", "plan")
	require.NoError(t, err)

	_, err = store.Record("dup", "second", "plan")
	assert.ErrorIs(t, err, ErrDuplicateCommit)

	// The ledger retains exactly the original record.
	got, err := store.Get("dup")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Summary)

	pending, err := store.ListPending()
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestListPendingCreationOrder(t *testing.T) {
	store := openTestStore(t)

	for _, hash := range []string{"c1", "c2", "c3"} {
		_, err := store.Record(hash, "summary "+hash, "plan")
		require.NoError(t, err)
	}

	_, err := store.SetStatus("c2", StatusApproved)
	require.NoError(t, err)

	pending, err := store.ListPending()
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "c1", pending[0].CommitHash)
	assert.Equal(t, "c3", pending[1].CommitHash)
}

func TestSetStatus(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Record("abc", "summary", "plan")
	require.NoError(t, err)

	updated, err := store.SetStatus("abc", StatusApproved)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, StatusApproved, updated.Status)
	assert.True(t, !updated.UpdatedAt.Before(updated.CreatedAt))
}

func TestSetStatusUnknownHashIsNoOp(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Record("abc", "summary", "plan")
	require.NoError(t, err)

	updated, err := store.SetStatus("missing", StatusRejected)
	require.NoError(t, err)
	assert.Nil(t, updated)

	// Ledger unchanged.
	got, err := store.Get("abc")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
}

func TestSetStatusRejectsInvalid(t *testing.T) {
	store := openTestStore(t)
	_, err := store.SetStatus("abc", Status("bogus"))
	assert.Error(t, err)
}

func TestSetStatusForAllPending(t *testing.T) {
	store := openTestStore(t)

	for _, hash := range []string{"c1", "c2", "c3"} {
		_, err := store.Record(hash, "s", "p")
		require.NoError(t, err)
	}
	_, err := store.SetStatus("c3", StatusRejected)
	require.NoError(t, err)

	count, err := store.SetStatusForAllPending(StatusApproved)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	pending, err := store.ListPending()
	require.NoError(t, err)
	assert.Empty(t, pending)

	// The previously rejected row is untouched.
	got, err := store.Get("c3")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, got.Status)
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "changes.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Record("abc", "s", "p")
	assert.NoError(t, err)
}
