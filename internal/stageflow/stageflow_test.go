package stageflow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPrevious(t *testing.T) {
	flow, err := New([]string{"dev", "testing", "main"})
	require.NoError(t, err)

	tests := map[string]struct {
		stage    string
		next     string
		nextOK   bool
		prev     string
		prevOK   bool
	}{
		"first":   {stage: "dev", next: "testing", nextOK: true},
		"middle":  {stage: "testing", next: "main", nextOK: true, prev: "dev", prevOK: true},
		"last":    {stage: "main", prev: "testing", prevOK: true},
		"unknown": {stage: "staging"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			next, ok := flow.Next(tt.stage)
			assert.Equal(t, tt.nextOK, ok)
			assert.Equal(t, tt.next, next)

			prev, ok := flow.Previous(tt.stage)
			assert.Equal(t, tt.prevOK, ok)
			assert.Equal(t, tt.prev, prev)
		})
	}
}

// Round-trip property: next(previous(x)) == x when x is not first, and
// previous(next(x)) == x when x is not last.
func TestNextPreviousRoundTrip(t *testing.T) {
	stages := []string{"a", "b/c", "d.e", "f-g", "h"}
	flow, err := New(stages)
	require.NoError(t, err)

	for i, s := range stages {
		if i > 0 {
			prev, ok := flow.Previous(s)
			require.True(t, ok)
			next, ok := flow.Next(prev)
			require.True(t, ok)
			assert.Equal(t, s, next)
		}
		if i < len(stages)-1 {
			next, ok := flow.Next(s)
			require.True(t, ok)
			prev, ok := flow.Previous(next)
			require.True(t, ok)
			assert.Equal(t, s, prev)
		}
	}

	_, ok := flow.Previous(stages[0])
	assert.False(t, ok, "first stage has no previous")
	_, ok = flow.Next(stages[len(stages)-1])
	assert.False(t, ok, "last stage has no next")
}

func TestValidateStageName(t *testing.T) {
	valid := []string{"dev", "testing", "main", "release/1.0", "hot-fix", "v2_beta", "a.b"}
	for _, name := range valid {
		assert.NoError(t, ValidateStageName(name), "expected %q to be valid", name)
	}

	invalid := []string{"", "-dev", "dev branch", "stage!", "deploy:prod", "a\tb"}
	for _, name := range invalid {
		assert.Error(t, ValidateStageName(name), "expected %q to be invalid", name)
	}
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	flow, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []string{"dev", "testing", "main"}, flow.Stages())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	stages := []string{"dev", "qa", "staging", "prod"}

	require.NoError(t, Save(root, stages))

	// Save overwrites any prior document.
	require.NoError(t, Save(root, stages))

	flow, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, stages, flow.Stages())
}

func TestSaveRejectsInvalidName(t *testing.T) {
	root := t.TempDir()
	err := Save(root, []string{"dev", "-bad"})
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(root, ConfigRelPath))
	assert.True(t, os.IsNotExist(statErr), "invalid save must not persist anything")
}

func TestDownstream(t *testing.T) {
	flow, err := New([]string{"dev", "testing", "main"})
	require.NoError(t, err)

	assert.Equal(t, []string{"testing", "dev"}, flow.Downstream("main"))
	assert.Equal(t, []string{"dev"}, flow.Downstream("testing"))
	assert.Empty(t, flow.Downstream("dev"))
	assert.Nil(t, flow.Downstream("nope"))
}

func TestFirstLast(t *testing.T) {
	flow, err := New([]string{"dev", "testing", "main"})
	require.NoError(t, err)
	assert.Equal(t, "dev", flow.First())
	assert.Equal(t, "main", flow.Last())
}
