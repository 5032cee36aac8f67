// Package cr keeps change requests on a dedicated orphan branch of the
// same repository. Each request is one numbered markdown file; a counter
// file tracks the next free number. Nothing here touches the stage
// branches: every operation checks out the log branch, works, and
// restores whatever branch the operator was on.
package cr

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	cerrors "github.com/gitstage/gitstage/internal/errors"
	"github.com/gitstage/gitstage/internal/gitio"
	"github.com/gitstage/gitstage/internal/output"
)

const (
	// BranchName is the orphan branch holding the change request log.
	BranchName = "gitstage-cr"

	dirName     = "change_requests"
	counterFile = "next_cr.txt"
)

var idPattern = regexp.MustCompile(`^(?:CR-)?(\d{4})$`)

// NormalizeID accepts "0001" or "CR-0001" and returns the canonical
// "CR-0001" form.
func NormalizeID(input string) (string, error) {
	m := idPattern.FindStringSubmatch(input)
	if m == nil {
		return "", cerrors.NewArgumentError(
			fmt.Sprintf("invalid change request id %q", input),
			"Use the CR-0001 or 0001 form",
		)
	}
	return "CR-" + m[1], nil
}

// Request is one change request record.
type Request struct {
	ID           string
	Summary      string
	Motivation   string
	Dependencies string
	Acceptance   string
	Notes        string

	Status  string
	Stage   string
	Created string
	Author  string
}

// Log reads and writes change requests on the log branch.
type Log struct {
	repo *gitio.Repo
	out  io.Writer
}

// NewLog returns a change request log for the given repository.
func NewLog(repo *gitio.Repo, out io.Writer) *Log {
	return &Log{repo: repo, out: out}
}

// Add records a new change request and returns it with its assigned id.
// The Stage field is filled from the branch the operator is on; Status
// starts as "In Progress".
func (l *Log) Add(req Request) (*Request, error) {
	stage, err := l.repo.CurrentBranch()
	if err != nil {
		return nil, err
	}
	defer l.restoreBranch(stage)()

	if err := l.ensureBranch(); err != nil {
		return nil, err
	}

	number, err := l.nextNumber()
	if err != nil {
		return nil, err
	}

	req.ID = "CR-" + number
	req.Status = "In Progress"
	req.Stage = stage
	req.Created = time.Now().UTC().Format("2006-01-02")
	req.Author = l.repo.UserName()

	relFile := filepath.Join(dirName, req.ID+".md")
	if err := os.WriteFile(filepath.Join(l.repo.Root(), relFile), []byte(render(&req)), 0o644); err != nil {
		return nil, fmt.Errorf("writing change request: %w", err)
	}

	n, _ := strconv.Atoi(number)
	if err := l.writeCounter(fmt.Sprintf("%04d", n+1)); err != nil {
		return nil, err
	}

	if err := l.repo.StageFiles([]string{relFile, counterFile}); err != nil {
		return nil, err
	}
	if _, err := l.repo.Commit(fmt.Sprintf("Add %s: %s", req.ID, req.Summary)); err != nil {
		return nil, err
	}
	if l.repo.HasRemote() {
		if err := l.repo.Push(BranchName); err != nil {
			return nil, err
		}
	}

	output.Successf(l.out, "Recorded %s on %s", req.ID, BranchName)
	return &req, nil
}

// List returns every recorded change request in id order. A repository
// without a log branch has no requests.
func (l *Log) List() ([]Request, error) {
	if !l.repo.BranchExists(BranchName) {
		return nil, nil
	}

	original, err := l.repo.CurrentBranch()
	if err != nil {
		return nil, err
	}
	defer l.restoreBranch(original)()

	if err := l.repo.Checkout(BranchName); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(l.repo.Root(), dirName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading change request directory: %w", err)
	}

	var requests []Request
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "CR-") || !strings.HasSuffix(name, ".md") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(l.repo.Root(), dirName, name))
		if err != nil {
			return nil, fmt.Errorf("reading change request %s: %w", name, err)
		}
		requests = append(requests, parse(string(content)))
	}

	sort.Slice(requests, func(i, j int) bool { return requests[i].ID < requests[j].ID })
	return requests, nil
}

// Show returns one change request and its raw markdown content.
func (l *Log) Show(id string) (*Request, string, error) {
	normalized, err := NormalizeID(id)
	if err != nil {
		return nil, "", err
	}
	if !l.repo.BranchExists(BranchName) {
		return nil, "", notFound(normalized)
	}

	original, err := l.repo.CurrentBranch()
	if err != nil {
		return nil, "", err
	}
	defer l.restoreBranch(original)()

	if err := l.repo.Checkout(BranchName); err != nil {
		return nil, "", err
	}

	content, err := os.ReadFile(filepath.Join(l.repo.Root(), dirName, normalized+".md"))
	if os.IsNotExist(err) {
		return nil, "", notFound(normalized)
	}
	if err != nil {
		return nil, "", fmt.Errorf("reading change request: %w", err)
	}

	req := parse(string(content))
	return &req, string(content), nil
}

// ensureBranch switches to the log branch, creating it as an orphan with
// an initial counter commit on first use. The caller restores the
// original branch.
func (l *Log) ensureBranch() error {
	if l.repo.BranchExists(BranchName) {
		return l.repo.Checkout(BranchName)
	}

	if err := l.repo.CheckoutOrphan(BranchName); err != nil {
		return err
	}
	if err := l.repo.ClearIndex(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(l.repo.Root(), dirName), 0o755); err != nil {
		return fmt.Errorf("creating change request directory: %w", err)
	}
	if err := l.writeCounter("0001"); err != nil {
		return err
	}
	if err := l.repo.StageFiles([]string{counterFile}); err != nil {
		return err
	}
	if _, err := l.repo.Commit("Initialize change request log"); err != nil {
		return err
	}
	if l.repo.HasRemote() {
		if err := l.repo.PushSetUpstream(BranchName); err != nil {
			return err
		}
	}

	output.Infof(l.out, "Created %s branch", BranchName)
	return nil
}

// restoreBranch returns a deferred best-effort switch back to branch.
func (l *Log) restoreBranch(branch string) func() {
	return func() {
		current, err := l.repo.CurrentBranch()
		if err == nil && current == branch {
			return
		}
		if err := l.repo.Checkout(branch); err != nil {
			output.Warnf(l.out, "Failed to return to branch %s: %v", branch, err)
		}
	}
}

func (l *Log) nextNumber() (string, error) {
	data, err := os.ReadFile(filepath.Join(l.repo.Root(), counterFile))
	if os.IsNotExist(err) {
		return "0001", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading change request counter: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (l *Log) writeCounter(value string) error {
	if err := os.WriteFile(filepath.Join(l.repo.Root(), counterFile), []byte(value), 0o644); err != nil {
		return fmt.Errorf("writing change request counter: %w", err)
	}
	return nil
}

func notFound(id string) *cerrors.CLIError {
	return cerrors.NewArgumentError(
		fmt.Sprintf("change request %s not found", id),
		"Run 'gitstage cr list' to see recorded change requests",
	)
}

// render produces the markdown document for a request. parse must be
// able to read back what render writes.
func render(req *Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s: %s\n\n", req.ID, req.Summary)
	fmt.Fprintf(&b, "**Status**: %s  \n", req.Status)
	fmt.Fprintf(&b, "**Stage**: %s  \n", req.Stage)
	fmt.Fprintf(&b, "**Created**: %s  \n", req.Created)
	fmt.Fprintf(&b, "**Author**: %s\n", req.Author)

	writeSection(&b, "Summary", req.Summary)
	writeSection(&b, "Motivation", req.Motivation)
	writeSection(&b, "Dependencies", req.Dependencies)
	writeSection(&b, "Acceptance Criteria", req.Acceptance)
	writeSection(&b, "Notes", req.Notes)
	return b.String()
}

func writeSection(b *strings.Builder, title, body string) {
	if strings.TrimSpace(body) == "" {
		body = "None"
	}
	fmt.Fprintf(b, "\n**%s**:  \n%s\n", title, body)
}

// parse extracts metadata from a change request document.
func parse(content string) Request {
	var req Request
	lines := strings.Split(content, "\n")

	if len(lines) > 0 {
		if id, summary, ok := parseHeader(lines[0]); ok {
			req.ID = id
			req.Summary = summary
		}
	}

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "**Status**:"):
			req.Status = metaValue(line)
		case strings.HasPrefix(line, "**Stage**:"):
			req.Stage = metaValue(line)
		case strings.HasPrefix(line, "**Created**:"):
			req.Created = metaValue(line)
		case strings.HasPrefix(line, "**Author**:"):
			req.Author = metaValue(line)
		}
	}
	return req
}

func parseHeader(line string) (id, summary string, ok bool) {
	rest, found := strings.CutPrefix(line, "### ")
	if !found {
		return "", "", false
	}
	id, summary, found = strings.Cut(rest, ": ")
	if !found || !idPattern.MatchString(id) {
		return "", "", false
	}
	return id, summary, true
}

func metaValue(line string) string {
	_, value, _ := strings.Cut(line, ":")
	return strings.TrimSpace(value)
}
