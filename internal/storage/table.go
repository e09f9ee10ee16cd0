package storage

// Column maps one persisted field of T.
type Column[T any] struct {
	Name string
	// Value is what gets written; nil is stored as NULL.
	Value func(*T) any
	// Target is the scan destination inside *T.
	Target func(*T) any
}

// Table describes how a record type is laid out. Every backend works from the
// same descriptor, so each entity is described once.
type Table[T any] struct {
	Name     string
	IDColumn string
	ID       func(*T) *int64
	Version  func(*T) *int64
	// Columns excludes the identifier and version.
	Columns []Column[T]
	// Unique lists columns the store itself keeps unique. NULL values never collide.
	Unique []string
}

func (t Table[T]) column(name string) (Column[T], bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column[T]{}, false
}

// hasField reports whether name is the identifier or a declared column.
func (t Table[T]) hasField(name string) bool {
	if name == t.IDColumn {
		return true
	}
	_, ok := t.column(name)
	return ok
}

func (t Table[T]) value(rec *T, field string) (any, bool) {
	if field == t.IDColumn {
		return *t.ID(rec), true
	}
	c, ok := t.column(field)
	if !ok {
		return nil, false
	}
	return c.Value(rec), true
}

func (t Table[T]) matches(rec *T, p Predicate) bool {
	if p.ExcludeID != 0 && *t.ID(rec) == p.ExcludeID {
		return false
	}
	v, ok := t.value(rec, p.Field)
	if !ok || v == nil {
		return false
	}
	return v == p.Value
}
