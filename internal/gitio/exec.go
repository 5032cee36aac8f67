package gitio

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// OpError reports a failed git invocation. It carries the command line,
// the exit status, and the command's combined output so the CLI boundary
// can report the failure verbatim. No operation is retried.
type OpError struct {
	Cmd      string
	ExitCode int
	Output   string
}

// Error implements the error interface.
func (e *OpError) Error() string {
	msg := fmt.Sprintf("%s failed (exit %d)", e.Cmd, e.ExitCode)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

// run executes git with the given arguments in the repository root and
// returns its stdout. Failures are wrapped in *OpError.
func (r *Repo) run(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.root

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		opErr := &OpError{
			Cmd:      "git " + strings.Join(args, " "),
			ExitCode: -1,
			Output:   stderr.String(),
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			opErr.ExitCode = exitErr.ExitCode()
		}
		return "", opErr
	}
	return stdout.String(), nil
}

// runLines executes git and splits its stdout into non-empty trimmed lines.
func (r *Repo) runLines(args ...string) ([]string, error) {
	out, err := r.run(args...)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
