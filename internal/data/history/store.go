// Package history persists one row per analysis run so diagnostic
// counts can be compared over time, keyed by a generated run id.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Run is one recorded analysis pass over the scan paths.
type Run struct {
	ID              string
	Timestamp       time.Time
	FileCount       int
	CallSiteCount   int
	DiagnosticCount int
	ByCode          map[string]int
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// SaveRun records one analysis pass and its per-code diagnostic counts.
// A missing id or timestamp is filled in; the generated id is returned.
func (s *Store) SaveRun(run Run) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(run.ID) == "" {
		run.ID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}

	err := s.withRetry("save run", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}

		if _, err := tx.Exec(
			`INSERT INTO runs (run_id, ts_utc, schema_version, file_count, call_site_count, diagnostic_count)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.Timestamp.UTC().Format(time.RFC3339Nano),
			SchemaVersion,
			run.FileCount,
			run.CallSiteCount,
			run.DiagnosticCount,
		); err != nil {
			_ = tx.Rollback()
			return err
		}

		for code, count := range run.ByCode {
			if _, err := tx.Exec(
				`INSERT INTO run_diagnostics (run_id, code, count) VALUES (?, ?, ?)`,
				run.ID, code, count,
			); err != nil {
				_ = tx.Rollback()
				return err
			}
		}

		return tx.Commit()
	})
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

// RecentRuns returns the newest runs, most recent first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}

	var rows *sql.Rows
	err := s.withRetry("load runs", func() error {
		var qErr error
		rows, qErr = s.db.Query(
			`SELECT run_id, ts_utc, file_count, call_site_count, diagnostic_count
			 FROM runs ORDER BY ts_utc DESC LIMIT ?`, limit)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0, limit)
	for rows.Next() {
		var (
			run   Run
			tsRaw string
		)
		if err := rows.Scan(&run.ID, &tsRaw, &run.FileCount, &run.CallSiteCount, &run.DiagnosticCount); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", tsRaw, err)
		}
		run.Timestamp = ts.UTC()
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}

	for i := range runs {
		byCode, err := s.loadRunCodes(runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].ByCode = byCode
	}
	return runs, nil
}

// CodeTrend returns total diagnostic counts per code across runs since
// the given time.
func (s *Store) CodeTrend(since time.Time) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
SELECT d.code, SUM(d.count)
FROM run_diagnostics d
JOIN runs r ON r.run_id = d.run_id
`
	args := make([]any, 0, 1)
	if !since.IsZero() {
		query += " WHERE r.ts_utc >= ?"
		args = append(args, since.UTC().Format(time.RFC3339Nano))
	}
	query += " GROUP BY d.code"

	var rows *sql.Rows
	err := s.withRetry("load trend", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trend := make(map[string]int)
	for rows.Next() {
		var (
			code  string
			count int
		)
		if err := rows.Scan(&code, &count); err != nil {
			return nil, fmt.Errorf("scan trend row: %w", err)
		}
		trend[code] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trend rows: %w", err)
	}
	return trend, nil
}

func (s *Store) loadRunCodes(runID string) (map[string]int, error) {
	rows, err := s.db.Query(`SELECT code, count FROM run_diagnostics WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byCode := make(map[string]int)
	for rows.Next() {
		var (
			code  string
			count int
		)
		if err := rows.Scan(&code, &count); err != nil {
			return nil, fmt.Errorf("scan diagnostic row: %w", err)
		}
		byCode[code] = count
	}
	return byCode, rows.Err()
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
