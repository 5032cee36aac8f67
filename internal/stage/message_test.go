package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The trailer grammar is load-bearing: the idempotence check matches it
// by substring, so the rendered bytes must stay stable.
func TestBuildPromotionMessageExactFormat(t *testing.T) {
	msg := BuildPromotionMessage("Add feature X", "unit tests pass", "dev", "abc123")
	want := "Add feature X\n\nTest Plan:\nunit tests pass\n\nPromoted from dev commit: abc123"
	assert.Equal(t, want, msg)
}

func TestBuildMessage(t *testing.T) {
	assert.Equal(t, "fix\n\nTest Plan:\nmanual", BuildMessage("fix", "manual"))
}

func TestParsePromotionTrailer(t *testing.T) {
	tests := map[string]struct {
		message    string
		wantBranch string
		wantHash   string
		wantOK     bool
	}{
		"full promotion message": {
			message:    BuildPromotionMessage("s", "p", "dev", "abc123"),
			wantBranch: "dev",
			wantHash:   "abc123",
			wantOK:     true,
		},
		"trailer only": {
			message:    "Promoted from release/1.0 commit: deadbeef",
			wantBranch: "release/1.0",
			wantHash:   "deadbeef",
			wantOK:     true,
		},
		"no trailer": {
			message: "plain commit\n\nTest Plan:\nnone",
		},
		"malformed trailer": {
			message: "Promoted from commit:",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			branch, hash, ok := ParsePromotionTrailer(tt.message)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantBranch, branch)
			assert.Equal(t, tt.wantHash, hash)
		})
	}
}

func TestTrailerRoundTrip(t *testing.T) {
	trailer := PromotionTrailer("testing", "0123abc")
	branch, hash, ok := ParsePromotionTrailer(trailer)
	assert.True(t, ok)
	assert.Equal(t, "testing", branch)
	assert.Equal(t, "0123abc", hash)
}
