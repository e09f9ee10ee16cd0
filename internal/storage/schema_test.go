package storage

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"municipal/pkg/platform/sentinel"
)

func TestSchemaRendersCleanly(t *testing.T) {
	for _, dialect := range []Dialect{Postgres, SQLite} {
		t.Run(dialect.Name, func(t *testing.T) {
			stmts := schemaFor(dialect)
			require.Len(t, stmts, len(schemaStatements))
			for _, ddl := range stmts {
				assert.NotContains(t, ddl, "{{")
				assert.NotContains(t, ddl, "%!")
			}
			assert.Contains(t, stmts[0], "citizen_id "+dialect.Identity)
			assert.Contains(t, stmts[0], "registration_date "+dialect.Timestamp+" NOT NULL")
			assert.Equal(t, "CREATE UNIQUE INDEX IF NOT EXISTS citizens_email_key ON citizens (email)", stmts[1])
		})
	}
}

func TestMigrateSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(ctx, db, SQLite))
	require.NoError(t, Migrate(ctx, db, SQLite), "migrate must be repeatable")

	t.Run("unique index is in place", func(t *testing.T) {
		staff := NewSQLite(db, StaffTable)
		_, err := staff.Insert(ctx, staffMember())
		require.NoError(t, err)
		_, err = staff.Insert(ctx, staffMember())
		require.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
	})
}
