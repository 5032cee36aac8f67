package stage

import (
	"fmt"
	"strings"
)

// Commit message convention:
//
//	<summary>
//
//	Test Plan:
//	<test plan>
//
//	Promoted from <branch> commit: <hash>
//
// The trailer line doubles as the idempotence marker: before blocking a
// promotion that produces no file changes, the engine checks whether the
// destination history already contains the trailer for the most recent
// source commit. The format is load-bearing and must not change; all
// parsing and rendering of it lives in this file.

// BuildMessage renders the summary/test-plan commit message body.
func BuildMessage(summary, testPlan string) string {
	return fmt.Sprintf("%s\n\nTest Plan:\n%s", summary, testPlan)
}

// PromotionTrailer renders the marker recorded on promotion commits.
func PromotionTrailer(sourceBranch, commitHash string) string {
	return fmt.Sprintf("Promoted from %s commit: %s", sourceBranch, commitHash)
}

// BuildPromotionMessage renders the full message for a promotion commit.
func BuildPromotionMessage(summary, testPlan, sourceBranch, commitHash string) string {
	return BuildMessage(summary, testPlan) + "\n\n" + PromotionTrailer(sourceBranch, commitHash)
}

// ParsePromotionTrailer extracts the source branch and commit hash from a
// commit message containing a promotion trailer. Returns ok=false when no
// trailer is present.
func ParsePromotionTrailer(message string) (sourceBranch, commitHash string, ok bool) {
	const prefix = "Promoted from "
	const marker = " commit: "

	for _, line := range strings.Split(message, "\n") {
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		rest := line[len(prefix):]
		branch, hash, found := strings.Cut(rest, marker)
		if !found || branch == "" || hash == "" {
			continue
		}
		return branch, strings.TrimSpace(hash), true
	}
	return "", "", false
}
