package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPrompter(t *testing.T, input string, skip bool) (*terminalPrompter, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(out)
	return newTerminalPrompter(cmd, skip), out
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   bool
		want  bool
	}{
		{name: "yes", input: "y\n", def: false, want: true},
		{name: "full yes", input: "yes\n", def: false, want: true},
		{name: "no", input: "n\n", def: true, want: false},
		{name: "empty keeps default true", input: "\n", def: true, want: true},
		{name: "empty keeps default false", input: "\n", def: false, want: false},
		{name: "garbage means no", input: "whatever\n", def: true, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, out := newPrompter(t, tt.input, false)
			got, err := p.Confirm("Proceed?", tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Proceed?")
		})
	}
}

func TestConfirmSkipMode(t *testing.T) {
	p, out := newPrompter(t, "", true)
	got, err := p.Confirm("Proceed?", true)
	require.NoError(t, err)
	assert.True(t, got)
	assert.Empty(t, out.String(), "skip mode must not touch the terminal")
}

func TestAsk(t *testing.T) {
	p, _ := newPrompter(t, "  Add feature X  \n", false)
	got, err := p.Ask("Summary")
	require.NoError(t, err)
	assert.Equal(t, "Add feature X", got)
}

func TestChoose(t *testing.T) {
	options := []string{"push-committed", "commit-all", "select-changes"}

	t.Run("by number", func(t *testing.T) {
		p, _ := newPrompter(t, "2\n", false)
		got, err := p.Choose("Mode", options, "push-committed")
		require.NoError(t, err)
		assert.Equal(t, "commit-all", got)
	})

	t.Run("by name", func(t *testing.T) {
		p, _ := newPrompter(t, "select-changes\n", false)
		got, err := p.Choose("Mode", options, "push-committed")
		require.NoError(t, err)
		assert.Equal(t, "select-changes", got)
	})

	t.Run("empty keeps default", func(t *testing.T) {
		p, _ := newPrompter(t, "\n", false)
		got, err := p.Choose("Mode", options, "push-committed")
		require.NoError(t, err)
		assert.Equal(t, "push-committed", got)
	})
}

func TestSelectFiles(t *testing.T) {
	files := []string{"a.txt", "b.txt", "c.txt"}

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "numbers", input: "1 3\n", want: []string{"a.txt", "c.txt"}},
		{name: "comma separated", input: "1,2\n", want: []string{"a.txt", "b.txt"}},
		{name: "all", input: "all\n", want: files},
		{name: "empty means all", input: "\n", want: files},
		{name: "none", input: "none\n", want: nil},
		{name: "out of range ignored", input: "1 9\n", want: []string{"a.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newPrompter(t, tt.input, false)
			got, err := p.SelectFiles("Files", files)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
