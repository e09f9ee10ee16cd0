// Package database opens the SQL backends of the record store.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"municipal/internal/platform/config"
	"municipal/internal/storage"
)

// Open connects to the configured SQL backend, verifies it answers and
// creates the record tables. It must not be called for the memory driver.
func Open(ctx context.Context, cfg config.StoreConfig) (*sql.DB, storage.Dialect, error) {
	var dialect storage.Dialect
	switch cfg.Driver {
	case config.DriverPostgres:
		dialect = storage.Postgres
	case config.DriverSQLite:
		dialect = storage.SQLite
	default:
		return nil, storage.Dialect{}, fmt.Errorf("driver %q has no SQL backend", cfg.Driver)
	}

	db, err := sql.Open(dialect.Name, cfg.DatabaseURL)
	if err != nil {
		return nil, storage.Dialect{}, fmt.Errorf("open %s: %w", dialect.Name, err)
	}
	if dialect.Name == storage.SQLite.Name {
		// One connection: SQLite has a single writer and ":memory:" lives
		// only as long as its connection.
		db.SetMaxOpenConns(1)
		db.SetConnMaxIdleTime(0)
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
			db.SetMaxIdleConns(cfg.MaxOpenConns)
		}
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, storage.Dialect{}, fmt.Errorf("ping %s: %w", dialect.Name, err)
	}
	if err := storage.Migrate(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, storage.Dialect{}, err
	}
	return db, dialect, nil
}
