package errors

import "fmt"

// Common error constructors for the gitstage CLI.
// These templates ensure consistent, actionable error messages.

// NotAGitRepository creates an error for commands run outside a git repository.
func NotAGitRepository() *CLIError {
	return NewPrerequisiteError(
		"not a git repository (or any parent directory)",
		"Run gitstage from inside a git repository",
		"Or initialize one with: gitstage init",
	)
}

// UnknownStage creates an error for a stage whose branch does not exist locally.
func UnknownStage(role, branch string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("%s branch %q does not exist", role, branch),
		fmt.Sprintf("Create it with: git branch %s", branch),
		"Or re-run 'gitstage init --stages ...' to create all stage branches",
	)
}

// StageNotInFlow creates an error for a branch name absent from the stageflow.
func StageNotInFlow(branch string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("branch %q is not in the stageflow", branch),
		"Check configured stages with: cat .gitstage/stageflow.json",
		"Re-initialize with: gitstage init --stages <stages...>",
	)
}

// NoNextStage creates an error when a source stage has no successor.
func NoNextStage(branch string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("no stage after %q in the stageflow", branch),
		"Pass an explicit destination with --branch-to",
	)
}

// NoPreviousStage creates an error when a destination stage has no predecessor.
func NoPreviousStage(branch string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("no stage before %q in the stageflow", branch),
		"Pass an explicit source with --branch-from",
	)
}

// InvalidStageName creates an error for a stage name failing validation.
func InvalidStageName(name string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("invalid stage name: %q", name),
		"gitstage init --stages dev testing main",
		"Stage names may contain letters, digits, '.', '_', '/' and '-'",
		"Names must be non-empty and must not start with '-'",
	)
}

// NoFilesSelected creates an error when the resolved file set for a push is empty.
func NoFilesSelected() *CLIError {
	return NewRuntimeError(
		"no files selected for commit, aborting push",
		"Select at least one file, or pass --all to carry every changed file",
	)
}

// ConflictingFlags creates an error when mutually exclusive flags are both set.
func ConflictingFlags(a, b string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("cannot use %s and %s together", a, b),
		fmt.Sprintf("Pass either %s or %s, not both", a, b),
	)
}

// ChangeNotFound creates an error for a ledger lookup miss.
func ChangeNotFound(commitHash string) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("no change record found for commit %s", commitHash),
		"List pending changes with: gitstage review --all",
		"Change records are created when a change is pushed to a stage",
	)
}

// BranchSyncRequired creates an error when unpushed commits block a promotion.
func BranchSyncRequired(branch string, ahead int) *CLIError {
	return NewPrerequisiteError(
		fmt.Sprintf("branch %q has %d unpushed commits", branch, ahead),
		fmt.Sprintf("Push them with: git push origin %s", branch),
		"Then re-run the promotion",
	)
}

// PromotionBlocked creates an error for a promotion with commits but no file changes.
func PromotionBlocked(from, to string) *CLIError {
	return NewRuntimeError(
		fmt.Sprintf("commits exist between %s and %s but produce no file changes", to, from),
		"This usually means the changes were already promoted by content",
		"Pass --force-promote to create the promotion commit anyway",
	)
}

// ConfigParseError creates an error for an invalid config file.
func ConfigParseError(path string, err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		fmt.Sprintf("failed to parse config file: %s", path),
		"Check the file for syntax errors",
		"Reset to defaults with: gitstage init",
	)
}
