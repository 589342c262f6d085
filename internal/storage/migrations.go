package storage

import (
	"database/sql"
	"fmt"
	"strconv"
)

// migration represents a single schema migration. Versions follow
// Chrome's own History schema version numbers, which live in the meta
// table rather than a separate bookkeeping table; the output file must
// contain only tables Chrome itself creates.
type migration struct {
	Version int
	Name    string
	Apply   func(tx *sql.Tx) error
}

// MigrationRunner applies pending migrations to a History database.
type MigrationRunner struct {
	db         *sql.DB
	migrations []migration
}

// NewMigrationRunner creates a MigrationRunner with all registered
// migrations.
func NewMigrationRunner(db *sql.DB) *MigrationRunner {
	return &MigrationRunner{
		db: db,
		migrations: []migration{
			{Version: 70, Name: "chrome_history_v70", Apply: migrateV070},
		},
	}
}

// Run applies all pending migrations in order. Chrome writes History with
// a rollback journal and full sync, so those pragmas are set first.
func (r *MigrationRunner) Run() error {
	if _, err := r.db.Exec("PRAGMA journal_mode = DELETE"); err != nil {
		return fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := r.db.Exec("PRAGMA synchronous = FULL"); err != nil {
		return fmt.Errorf("set synchronous: %w", err)
	}

	if _, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS meta(
			key LONGVARCHAR NOT NULL UNIQUE PRIMARY KEY,
			value LONGVARCHAR
		)
	`); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}

	current, err := r.currentVersion()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range r.migrations {
		if m.Version <= current {
			continue
		}
		if err := r.apply(m); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
		}
	}

	return nil
}

// currentVersion reads the recorded schema version from meta, or 0 when
// the database is fresh.
func (r *MigrationRunner) currentVersion() (int, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM meta WHERE key = 'version'").Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("malformed version %q: %w", value, err)
	}
	return v, nil
}

// apply executes a migration inside a transaction and records the new
// version in meta.
func (r *MigrationRunner) apply(m migration) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := m.Apply(tx); err != nil {
		return err
	}

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO meta(key, value) VALUES('version', ?)",
		strconv.Itoa(m.Version),
	); err != nil {
		return fmt.Errorf("record version: %w", err)
	}

	return tx.Commit()
}
