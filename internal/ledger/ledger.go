// Package ledger provides SQLite-backed storage for change records.
// One row is kept per promoted commit; the review workflow mutates only
// the status column. A single local operator is assumed, so no locking is
// layered on top of what SQLite provides natively.
package ledger

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

var (
	// ErrDuplicateCommit is returned when recording a commit hash that
	// already has a ledger row.
	ErrDuplicateCommit = errors.New("change already recorded for commit")
	// ErrNotFound is returned when a commit hash has no ledger row.
	ErrNotFound = errors.New("change not found")
)

// Status is the review state of a recorded change.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the known review states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Change is one ledger row.
type Change struct {
	ID         int64
	CommitHash string
	Summary    string
	TestPlan   string
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Store wraps a SQLite connection for the change ledger.
type Store struct {
	conn *sql.DB
	path string
}

// DefaultPath returns the ledger location under the user's home directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".gitstage", "changes.db"), nil
}

// Open opens (creating if necessary) the ledger database at the given path.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applying pragma: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{conn: conn, path: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Record inserts a new pending change for the given commit hash.
// Returns ErrDuplicateCommit if a row for the hash already exists.
func (s *Store) Record(commitHash, summary, testPlan string) (*Change, error) {
	now := time.Now().UTC()
	result, err := s.conn.Exec(
		`INSERT INTO changes (commit_hash, summary, test_plan, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		commitHash, summary, testPlan, StatusPending, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCommit, commitHash)
		}
		return nil, fmt.Errorf("recording change: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading insert id: %w", err)
	}

	return &Change{
		ID:         id,
		CommitHash: commitHash,
		Summary:    summary,
		TestPlan:   testPlan,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Get returns the change for a commit hash, or ErrNotFound.
func (s *Store) Get(commitHash string) (*Change, error) {
	row := s.conn.QueryRow(
		`SELECT id, commit_hash, summary, test_plan, status, created_at, updated_at
		 FROM changes WHERE commit_hash = ?`, commitHash,
	)
	return scanChange(row)
}

// ListPending returns all pending changes in creation order.
func (s *Store) ListPending() ([]Change, error) {
	rows, err := s.conn.Query(
		`SELECT id, commit_hash, summary, test_plan, status, created_at, updated_at
		 FROM changes WHERE status = ? ORDER BY id`, StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("listing pending changes: %w", err)
	}
	defer rows.Close()

	var changes []Change
	for rows.Next() {
		c, err := scanChange(rows)
		if err != nil {
			return nil, err
		}
		changes = append(changes, *c)
	}
	return changes, rows.Err()
}

// SetStatus updates the review status of one change. An unknown hash is a
// no-op and returns (nil, nil).
func (s *Store) SetStatus(commitHash string, status Status) (*Change, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid status %q", status)
	}

	result, err := s.conn.Exec(
		`UPDATE changes SET status = ?, updated_at = ? WHERE commit_hash = ?`,
		status, time.Now().UTC(), commitHash,
	)
	if err != nil {
		return nil, fmt.Errorf("updating change status: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return s.Get(commitHash)
}

// SetStatusForAllPending applies the given status to every pending change
// and returns the number of rows updated.
func (s *Store) SetStatusForAllPending(status Status) (int64, error) {
	if !status.Valid() {
		return 0, fmt.Errorf("invalid status %q", status)
	}

	result, err := s.conn.Exec(
		`UPDATE changes SET status = ?, updated_at = ? WHERE status = ?`,
		status, time.Now().UTC(), StatusPending,
	)
	if err != nil {
		return 0, fmt.Errorf("updating pending changes: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChange(row rowScanner) (*Change, error) {
	var c Change
	err := row.Scan(&c.ID, &c.CommitHash, &c.Summary, &c.TestPlan, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning change: %w", err)
	}
	return &c, nil
}

// isUniqueViolation detects the SQLite unique-constraint failure without
// depending on driver-specific error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
