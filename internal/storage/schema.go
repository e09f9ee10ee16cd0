package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// schemaStatements is the fixed record schema. {{identity}} is the identity
// column definition and {{timestamp}} the timestamp type of the dialect.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS citizens (
		citizen_id {{identity}},
		version BIGINT NOT NULL DEFAULT 1,
		full_name VARCHAR(100) NOT NULL,
		address VARCHAR(200) NOT NULL,
		phone_number VARCHAR(10) NOT NULL,
		email VARCHAR(320) NULL,
		date_of_birth {{timestamp}} NULL,
		registration_date {{timestamp}} NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS citizens_email_key ON citizens (email)`,
	`CREATE TABLE IF NOT EXISTS staff (
		staff_id {{identity}},
		version BIGINT NOT NULL DEFAULT 1,
		full_name VARCHAR(100) NOT NULL,
		position VARCHAR(100) NOT NULL,
		department VARCHAR(100) NOT NULL,
		email VARCHAR(320) NOT NULL,
		hired_date {{timestamp}} NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS staff_email_key ON staff (email)`,
	`CREATE TABLE IF NOT EXISTS service_requests (
		request_id {{identity}},
		version BIGINT NOT NULL DEFAULT 1,
		citizen_id BIGINT NOT NULL,
		service_type VARCHAR(50) NOT NULL,
		request_date {{timestamp}} NOT NULL,
		status VARCHAR(30) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reports (
		report_id {{identity}},
		version BIGINT NOT NULL DEFAULT 1,
		citizen_id BIGINT NOT NULL,
		report_type TEXT NOT NULL,
		details TEXT NOT NULL,
		submission_date {{timestamp}} NOT NULL,
		status TEXT NOT NULL
	)`,
}

// Migrate creates the record tables if they do not exist. The citizen
// reference columns carry no foreign key: references are checked when a
// request or report is created and are allowed to dangle afterwards.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	for _, ddl := range schemaFor(dialect) {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("migrate %s: %w", firstLine(ddl), err)
		}
	}
	return nil
}

// schemaFor renders the schema statements for dialect.
func schemaFor(dialect Dialect) []string {
	r := strings.NewReplacer("{{identity}}", dialect.Identity, "{{timestamp}}", dialect.Timestamp)
	out := make([]string, 0, len(schemaStatements))
	for _, stmt := range schemaStatements {
		out = append(out, r.Replace(stmt))
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
