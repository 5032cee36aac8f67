package cr

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitstage/gitstage/internal/gitio"
	"github.com/gitstage/gitstage/internal/testutil"
)

func newLog(t *testing.T) (*Log, *testutil.GitRepo) {
	t.Helper()
	git := testutil.NewGitRepo(t, "dev")
	repo, err := gitio.Open(git.Dir)
	require.NoError(t, err)
	return NewLog(repo, &bytes.Buffer{}), git
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "bare number", input: "0001", want: "CR-0001"},
		{name: "full id", input: "CR-0042", want: "CR-0042"},
		{name: "too short", input: "42", wantErr: true},
		{name: "wrong prefix", input: "PR-0001", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddAssignsSequentialIDs(t *testing.T) {
	log, git := newLog(t)

	first, err := log.Add(Request{Summary: "Support nested stages", Motivation: "flows grow"})
	require.NoError(t, err)
	assert.Equal(t, "CR-0001", first.ID)
	assert.Equal(t, "In Progress", first.Status)
	assert.Equal(t, "dev", first.Stage)
	assert.Equal(t, "Test User", first.Author)

	second, err := log.Add(Request{Summary: "Add dry-run everywhere"})
	require.NoError(t, err)
	assert.Equal(t, "CR-0002", second.ID)

	assert.Equal(t, "dev", git.Git(t, "rev-parse", "--abbrev-ref", "HEAD"),
		"operator branch restored after add")
}

func TestAddPublishesLogBranch(t *testing.T) {
	log, git := newLog(t)

	_, err := log.Add(Request{Summary: "Support nested stages"})
	require.NoError(t, err)

	local := git.BranchTip(t, BranchName)
	remote := git.BranchTip(t, "origin/"+BranchName)
	assert.Equal(t, local, remote)
}

func TestListReturnsRequestsInOrder(t *testing.T) {
	log, _ := newLog(t)

	_, err := log.Add(Request{Summary: "first"})
	require.NoError(t, err)
	_, err = log.Add(Request{Summary: "second"})
	require.NoError(t, err)

	requests, err := log.List()
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, "CR-0001", requests[0].ID)
	assert.Equal(t, "first", requests[0].Summary)
	assert.Equal(t, "CR-0002", requests[1].ID)
	assert.Equal(t, "second", requests[1].Summary)
}

func TestListWithoutLogBranch(t *testing.T) {
	log, _ := newLog(t)

	requests, err := log.List()
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestShowRoundTrip(t *testing.T) {
	log, git := newLog(t)

	added, err := log.Add(Request{
		Summary:    "Support nested stages",
		Motivation: "flows grow deeper",
		Acceptance: "nested stage promotes cleanly",
	})
	require.NoError(t, err)

	req, content, err := log.Show("0001")
	require.NoError(t, err)
	assert.Equal(t, added.ID, req.ID)
	assert.Equal(t, added.Summary, req.Summary)
	assert.Equal(t, added.Created, req.Created)
	assert.Contains(t, content, "flows grow deeper")
	assert.Contains(t, content, "**Acceptance Criteria**:")

	assert.Equal(t, "dev", git.Git(t, "rev-parse", "--abbrev-ref", "HEAD"))
}

func TestShowUnknownID(t *testing.T) {
	log, _ := newLog(t)

	_, err := log.Add(Request{Summary: "only one"})
	require.NoError(t, err)

	_, _, err = log.Show("CR-0099")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CR-0099")
}

func TestLogBranchHistory(t *testing.T) {
	log, git := newLog(t)

	_, err := log.Add(Request{Summary: "Support nested stages"})
	require.NoError(t, err)

	out := git.Git(t, "rev-list", "--count", BranchName)
	assert.Equal(t, "2", out, "init commit plus one request")
}
