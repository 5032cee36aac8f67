// Package output provides terminal output formatting utilities for the
// gitstage CLI. This package is designed to have minimal dependencies to
// avoid import cycles.
package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// GetTerminalWidth returns the terminal width, defaulting to 80 if unavailable.
func GetTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// IsTTY reports whether stdout is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Successf prints a green checkmarked message.
func Successf(out io.Writer, format string, args ...any) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", green("✓"), fmt.Sprintf(format, args...))
}

// Warnf prints a yellow warning message.
func Warnf(out io.Writer, format string, args ...any) {
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", yellow("⚠"), fmt.Sprintf(format, args...))
}

// Infof prints a dim informational message.
func Infof(out io.Writer, format string, args ...any) {
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(out, "%s\n", dim(fmt.Sprintf(format, args...)))
}

// Stepf prints a cyan step header for a phase of a longer operation.
func Stepf(out io.Writer, format string, args ...any) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", cyan("→"), fmt.Sprintf(format, args...))
}

// Headerf prints a bold section header.
func Headerf(out io.Writer, format string, args ...any) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(out, "\n%s\n", bold(fmt.Sprintf(format, args...)))
}

// ListItemf prints one indented list entry.
func ListItemf(out io.Writer, format string, args ...any) {
	fmt.Fprintf(out, "  %s\n", fmt.Sprintf(format, args...))
}

// NewSpinner returns a started spinner with the given suffix when stdout
// is a TTY, and nil otherwise. Callers must nil-check before Stop.
func NewSpinner(suffix string) *spinner.Spinner {
	if !IsTTY() || os.Getenv("NO_COLOR") != "" {
		return nil
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + suffix
	s.Start()
	return s
}

// StopSpinner stops a spinner if one is running.
func StopSpinner(s *spinner.Spinner) {
	if s != nil {
		s.Stop()
	}
}
