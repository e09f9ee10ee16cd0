package storage

import (
	"database/sql"
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLite is the SQLite dialect (modernc.org/sqlite, pure Go).
var SQLite = Dialect{
	Name:      "sqlite",
	Bind:      func(int) string { return "?" },
	Identity:  "INTEGER PRIMARY KEY AUTOINCREMENT",
	Timestamp: "TIMESTAMP",
	UniqueViolation: func(err error) (string, bool) {
		var sqliteErr *sqlite.Error
		if !errors.As(err, &sqliteErr) {
			return "", false
		}
		code := sqliteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "UNIQUE")) {
			return sqliteErr.Error(), true
		}
		return "", false
	},
}

// NewSQLite constructs a SQLite-backed store for table.
func NewSQLite[T any](db *sql.DB, table Table[T]) *SQL[T] {
	return NewSQL(db, SQLite, table)
}
