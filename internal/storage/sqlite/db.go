// Package sqlite persists simulation sessions (layout metadata, job
// history, vehicle snapshots) to a local SQLite file via the pure-Go
// modernc.org/sqlite driver. Grounded on internal/db/db.go's DB wrapper and
// PRAGMA setup; migrations run through golang-migrate the same way
// internal/db/migrate.go does.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps *sql.DB with the simulation session store's query methods.
type DB struct {
	*sql.DB
}

// Open opens (creating if absent) a SQLite database at path and applies the
// PRAGMAs the session store needs for single-writer, many-reader access.
func Open(path string) (*DB, error) {
	raw, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	db := &DB{raw}
	if err := applyPragmas(raw); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("apply pragma %q: %w", p, err)
		}
	}
	return nil
}
