// internal/mockbackend/store.go
package mockbackend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/xkilldash9x/soko-cli/internal/api"
)

// ErrNotFound is returned when an investigation id does not exist.
var ErrNotFound = errors.New("investigation not found")

const schema = `
CREATE TABLE IF NOT EXISTS investigations (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	username   TEXT    NOT NULL,
	status     TEXT    NOT NULL DEFAULT 'pending',
	created_at TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS findings (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	investigation_id INTEGER NOT NULL,
	platform         TEXT    NOT NULL,
	username         TEXT    NOT NULL,
	profile_url      TEXT    NOT NULL DEFAULT '',
	data             TEXT    NOT NULL DEFAULT '',
	found            INTEGER NOT NULL DEFAULT 0,
	scraped_at       TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_findings_investigation ON findings(investigation_id);
`

// Store persists investigations and findings in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// OpenStore opens (and migrates) the database at dsn. ":memory:" gives a
// private in-memory database.
func OpenStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = ":memory:"
	}
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(api.BackendTimeLayout)
}

// CreateInvestigation inserts a pending investigation.
func (s *Store) CreateInvestigation(ctx context.Context, username string) (api.Investigation, error) {
	created := s.timestamp()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO investigations (username, status, created_at) VALUES (?, ?, ?)`,
		username, string(api.StatusPending), created)
	if err != nil {
		return api.Investigation{}, fmt.Errorf("failed to insert investigation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return api.Investigation{}, fmt.Errorf("failed to read investigation id: %w", err)
	}
	return api.Investigation{
		ID:        id,
		Username:  username,
		Status:    api.StatusPending,
		CreatedAt: api.ParseTimestamp(created),
	}, nil
}

// ListInvestigations returns every investigation in insertion order.
func (s *Store) ListInvestigations(ctx context.Context) ([]api.Investigation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, status, created_at FROM investigations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query investigations: %w", err)
	}
	defer rows.Close()

	out := []api.Investigation{}
	for rows.Next() {
		inv, err := scanInvestigation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvestigation(row rowScanner) (api.Investigation, error) {
	var (
		inv           api.Investigation
		status, stamp string
	)
	if err := row.Scan(&inv.ID, &inv.Username, &status, &stamp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return api.Investigation{}, ErrNotFound
		}
		return api.Investigation{}, fmt.Errorf("failed to scan investigation: %w", err)
	}
	inv.Status = api.Status(status)
	inv.CreatedAt = api.ParseTimestamp(stamp)
	return inv, nil
}

// GetInvestigation returns one investigation or ErrNotFound.
func (s *Store) GetInvestigation(ctx context.Context, id int64) (api.Investigation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, status, created_at FROM investigations WHERE id = ?`, id)
	return scanInvestigation(row)
}

// SetStatus updates the status of an investigation.
func (s *Store) SetStatus(ctx context.Context, id int64, status api.Status) error {
	res, err := s.db.ExecContext(ctx, `UPDATE investigations SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddFindings stores findings for an investigation in one transaction.
func (s *Store) AddFindings(ctx context.Context, findings []api.Finding) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO findings
		(investigation_id, platform, username, profile_url, data, found, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare finding insert: %w", err)
	}
	defer stmt.Close()

	scraped := s.timestamp()
	for _, f := range findings {
		found := 0
		if f.Found {
			found = 1
		}
		if _, err := stmt.ExecContext(ctx, f.InvestigationID, f.Platform, f.Username, f.ProfileURL, f.Data, found, scraped); err != nil {
			return fmt.Errorf("failed to insert finding for %s: %w", f.Platform, err)
		}
	}
	return tx.Commit()
}

// Findings returns the findings of an investigation in insertion order.
func (s *Store) Findings(ctx context.Context, id int64) ([]api.Finding, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, investigation_id, platform, username, profile_url, data, found, scraped_at
		FROM findings WHERE investigation_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer rows.Close()

	out := []api.Finding{}
	for rows.Next() {
		var (
			f     api.Finding
			found int
			stamp string
		)
		if err := rows.Scan(&f.ID, &f.InvestigationID, &f.Platform, &f.Username, &f.ProfileURL, &f.Data, &found, &stamp); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		f.Found = found != 0
		f.ScrapedAt = api.ParseTimestamp(stamp)
		out = append(out, f)
	}
	return out, rows.Err()
}

// DeleteInvestigation removes an investigation and its findings.
func (s *Store) DeleteInvestigation(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM findings WHERE investigation_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete findings: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM investigations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete investigation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}
