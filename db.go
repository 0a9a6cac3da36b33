package stationdb

// Database wraps the single SQLite file that holds a station's settings,
// task queue, logs, measurement protocol and measurement archive.

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/puzpuzpuz/xsync/v3"
)

type Database struct {
	db       *sqlx.DB
	settings *xsync.MapOf[string, string]
}

// Connect opens an existing station database file. Use Create to build a new
// one first; connecting to a path that does not exist yields an empty SQLite
// file without any of the expected tables.
func Connect(path string) (*Database, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return &Database{
		db:       db,
		settings: xsync.NewMapOf[string, string](),
	}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// DB exposes the underlying sqlx handle for callers that need raw queries.
func (d *Database) DB() *sqlx.DB {
	return d.db
}

// Vacuum reclaims free pages in the database file.
func (d *Database) Vacuum() error {
	if _, err := d.db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}

// LastID returns the highest id in one of the id-bearing tables, or 0 when
// the table is empty.
func (d *Database) LastID(table string) (int, error) {
	if !hasRowIDs(table) {
		return 0, fmt.Errorf("cannot get last id: %q is not an id-bearing table", table)
	}
	var last sql.NullInt64
	err := d.db.Get(&last, fmt.Sprintf("SELECT MAX(id) FROM %s", table))
	if err != nil {
		return 0, fmt.Errorf("failed to get last id from %s: %w", table, err)
	}
	if !last.Valid {
		return 0, nil
	}
	return int(last.Int64), nil
}
