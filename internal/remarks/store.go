package remarks

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store provides durable SQLite-backed remark storage.
type Store struct {
	db *sql.DB
}

// Open creates or opens the remark database at path. The database is
// configured with WAL mode for concurrent reads, NORMAL synchronous mode,
// a 5-second busy timeout, and foreign key enforcement. Opening is
// idempotent: the schema is applied with IF NOT EXISTS.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening remark database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to remark database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying remark schema: %w", err)
	}

	return &Store{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("executing %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Emit implements Emitter by writing with a background context.
func (s *Store) Emit(r Remark) error {
	return s.Write(context.Background(), r)
}

// Write inserts a remark. Duplicate IDs are silently ignored: the ID is
// content-addressed, so a duplicate is the same remark.
func (s *Store) Write(ctx context.Context, r Remark) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO remarks (id, session, seq, fn, pass, before_op, after_op)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, r.ID, r.Session, r.Seq, r.Fn, r.Pass, r.Before, r.After)
	if err != nil {
		return fmt.Errorf("writing remark: %w", err)
	}
	return nil
}

// List returns remarks matching the filter. Results are always ordered by
// (seq, id) so identical stores list identically.
func (s *Store) List(ctx context.Context, f Filter) ([]Remark, error) {
	query, params := f.compile()
	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("querying remarks: %w", err)
	}
	defer rows.Close()

	var out []Remark
	for rows.Next() {
		var r Remark
		if err := rows.Scan(&r.ID, &r.Session, &r.Seq, &r.Fn, &r.Pass, &r.Before, &r.After); err != nil {
			return nil, fmt.Errorf("scanning remark: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading remarks: %w", err)
	}
	return out, nil
}
