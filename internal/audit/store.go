package audit

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump when the schema changes;
// the store refuses to append to a database written by a different version.
const schemaVersion = 1

// ErrSchemaVersion indicates the audit database was written by a different
// schema version.
var ErrSchemaVersion = errors.New("audit database schema version mismatch")

// Entry is one audited attribute pair.
type Entry struct {
	Pseudonym  string
	OutputName string
	Attribute  string
	Original   string
	Cleaned    string
}

// Store records original/cleaned attribute pairs in SQLite. The database is
// the run's identity link and may be deleted once the operator no longer
// needs to trace outputs back to sources.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the audit database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin schema tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return tx.Commit()
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to start fresh)",
			ErrSchemaVersion, version, schemaVersion, s.path)
	}
	return nil
}

// RecordFile stores the attribute pairs for one processed file in a single
// transaction. Attributes present only on one side are recorded with the
// other side empty.
func (s *Store) RecordFile(ctx context.Context, pseudonym, outputName string, original, cleaned map[string]string) error {
	attributes := make(map[string]struct{}, len(original)+len(cleaned))
	for name := range original {
		attributes[name] = struct{}{}
	}
	for name := range cleaned {
		attributes[name] = struct{}{}
	}
	if len(attributes) == 0 {
		return nil
	}

	names := make([]string, 0, len(attributes))
	for name := range attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, name := range names {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO audit_entries (pseudonym, output_name, attribute, original, cleaned, created_at)
             VALUES (?, ?, ?, ?, ?, ?)`,
			pseudonym, outputName, name, original[name], cleaned[name], timestamp,
		)
		if err != nil {
			return fmt.Errorf("insert audit entry: %w", err)
		}
	}
	return tx.Commit()
}

// EntriesFor returns the audit entries recorded for a pseudonym, ordered by
// output name then attribute.
func (s *Store) EntriesFor(ctx context.Context, pseudonym string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pseudonym, output_name, attribute, original, cleaned
         FROM audit_entries WHERE pseudonym = ? ORDER BY output_name, attribute`,
		pseudonym,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Pseudonym, &e.OutputName, &e.Attribute, &e.Original, &e.Cleaned); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the total number of audit entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM audit_entries").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count audit entries: %w", err)
	}
	return count, nil
}
