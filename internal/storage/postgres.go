package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const pqUniqueViolation = pq.ErrorCode("23505")

// Postgres is the PostgreSQL dialect (lib/pq driver).
var Postgres = Dialect{
	Name:      "postgres",
	Bind:      func(n int) string { return fmt.Sprintf("$%d", n) },
	Identity:  "BIGSERIAL PRIMARY KEY",
	Timestamp: "TIMESTAMPTZ",
	UniqueViolation: func(err error) (string, bool) {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return pqErr.Constraint + " " + pqErr.Detail, true
		}
		return "", false
	},
}

// NewPostgres constructs a PostgreSQL-backed store for table.
func NewPostgres[T any](db *sql.DB, table Table[T]) *SQL[T] {
	return NewSQL(db, Postgres, table)
}
