package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"municipal/pkg/platform/sentinel"
)

// Dialect captures the differences between the SQL backends.
type Dialect struct {
	Name string
	// Bind renders the n-th (1-based) placeholder.
	Bind func(n int) string
	// Identity is the column definition of an auto-assigned, never reused key.
	Identity string
	// Timestamp is the column type used for instants.
	Timestamp string
	// UniqueViolation reports whether err is a unique-index violation and, if so,
	// returns driver text naming the violated constraint.
	UniqueViolation func(err error) (string, bool)
}

// SQL persists records through database/sql. Rows carry a version column;
// updates only succeed against the version they were loaded at.
type SQL[T any] struct {
	db      *sql.DB
	dialect Dialect
	table   Table[T]
}

// NewSQL constructs a store for table over db.
func NewSQL[T any](db *sql.DB, dialect Dialect, table Table[T]) *SQL[T] {
	return &SQL[T]{db: db, dialect: dialect, table: table}
}

func (s *SQL[T]) selectList() string {
	cols := make([]string, 0, len(s.table.Columns)+2)
	cols = append(cols, s.table.IDColumn, "version")
	for _, c := range s.table.Columns {
		cols = append(cols, c.Name)
	}
	return strings.Join(cols, ", ")
}

func (s *SQL[T]) scanTargets(rec *T) []any {
	targets := make([]any, 0, len(s.table.Columns)+2)
	targets = append(targets, s.table.ID(rec), s.table.Version(rec))
	for _, c := range s.table.Columns {
		targets = append(targets, c.Target(rec))
	}
	return targets
}

func (s *SQL[T]) GetAll(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", s.selectList(), s.table.Name, s.table.IDColumn)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, unavailable("list "+s.table.Name, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var rec T
		if err := rows.Scan(s.scanTargets(&rec)...); err != nil {
			return nil, unavailable("scan "+s.table.Name, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list "+s.table.Name, err)
	}
	return out, nil
}

func (s *SQL[T]) GetByID(ctx context.Context, id int64) (T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		s.selectList(), s.table.Name, s.table.IDColumn, s.dialect.Bind(1))
	var rec T
	err := s.db.QueryRowContext(ctx, query, id).Scan(s.scanTargets(&rec)...)
	if err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, sentinel.ErrNotFound
		}
		return zero, unavailable("find "+s.table.Name, err)
	}
	return rec, nil
}

func (s *SQL[T]) AnyWhere(ctx context.Context, p Predicate) (bool, error) {
	if !s.table.hasField(p.Field) {
		return false, fmt.Errorf("%s: unknown field %q", s.table.Name, p.Field)
	}
	where := fmt.Sprintf("%s = %s", p.Field, s.dialect.Bind(1))
	args := []any{p.Value}
	if p.ExcludeID != 0 {
		where += fmt.Sprintf(" AND %s <> %s", s.table.IDColumn, s.dialect.Bind(2))
		args = append(args, p.ExcludeID)
	}
	query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s)", s.table.Name, where)

	var found bool
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, unavailable("probe "+s.table.Name, err)
	}
	return found, nil
}

func (s *SQL[T]) Insert(ctx context.Context, rec T) (T, error) {
	names := make([]string, 0, len(s.table.Columns)+1)
	binds := make([]string, 0, len(s.table.Columns)+1)
	args := make([]any, 0, len(s.table.Columns))
	names = append(names, "version")
	binds = append(binds, "1")
	for i, c := range s.table.Columns {
		names = append(names, c.Name)
		binds = append(binds, s.dialect.Bind(i+1))
		args = append(args, c.Value(&rec))
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		s.table.Name, strings.Join(names, ", "), strings.Join(binds, ", "), s.table.IDColumn)

	var id int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		var zero T
		return zero, s.classifyWrite("insert "+s.table.Name, err)
	}
	*s.table.ID(&rec) = id
	*s.table.Version(&rec) = 1
	return rec, nil
}

func (s *SQL[T]) Update(ctx context.Context, rec T) (T, error) {
	var zero T
	sets := make([]string, 0, len(s.table.Columns)+1)
	args := make([]any, 0, len(s.table.Columns)+2)
	for i, c := range s.table.Columns {
		sets = append(sets, fmt.Sprintf("%s = %s", c.Name, s.dialect.Bind(i+1)))
		args = append(args, c.Value(&rec))
	}
	sets = append(sets, "version = version + 1")
	n := len(args)
	id := *s.table.ID(&rec)
	version := *s.table.Version(&rec)
	args = append(args, id, version)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s AND version = %s",
		s.table.Name, strings.Join(sets, ", "), s.table.IDColumn, s.dialect.Bind(n+1), s.dialect.Bind(n+2))

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return zero, s.classifyWrite("update "+s.table.Name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return zero, unavailable("update "+s.table.Name, err)
	}
	if affected == 0 {
		exists, err := s.AnyWhere(ctx, Where(s.table.IDColumn, id))
		if err != nil {
			return zero, err
		}
		if !exists {
			return zero, sentinel.ErrNotFound
		}
		return zero, sentinel.ErrConflict
	}
	*s.table.Version(&rec) = version + 1
	return rec, nil
}

func (s *SQL[T]) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = %s", s.table.Name, s.table.IDColumn, s.dialect.Bind(1))
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return unavailable("delete "+s.table.Name, err)
	}
	return nil
}

// Ping reports whether the backing database is reachable.
func (s *SQL[T]) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (s *SQL[T]) classifyWrite(op string, err error) error {
	if s.dialect.UniqueViolation != nil {
		if hint, ok := s.dialect.UniqueViolation(err); ok {
			return &DuplicateKeyError{Table: s.table.Name, Field: s.uniqueField(hint)}
		}
	}
	return unavailable(op, err)
}

// uniqueField picks the unique column named in the driver's message; with a
// single unique column the message is not needed.
func (s *SQL[T]) uniqueField(hint string) string {
	for _, field := range s.table.Unique {
		if strings.Contains(hint, field) {
			return field
		}
	}
	if len(s.table.Unique) > 0 {
		return s.table.Unique[0]
	}
	return ""
}
