package storage

import "context"

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks Store

// Store is the persistence collaborator for one record type. Workflows receive
// a Store explicitly; there is no process-wide handle.
//
// Implementations return sentinel errors (optionally wrapped):
// sentinel.ErrNotFound, sentinel.ErrConflict, sentinel.ErrAlreadyUsed via
// *DuplicateKeyError, and sentinel.ErrUnavailable for anything unclassified.
type Store[T any] interface {
	// GetAll returns every record in creation order.
	GetAll(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id int64) (T, error)
	AnyWhere(ctx context.Context, p Predicate) (bool, error)
	// Insert assigns the identifier and the initial version.
	Insert(ctx context.Context, rec T) (T, error)
	// Update writes rec if its version matches the stored one and returns
	// the record with its new version.
	Update(ctx context.Context, rec T) (T, error)
	// Delete is idempotent: an absent identifier is not an error.
	Delete(ctx context.Context, id int64) error
}

// Predicate is an equality test over one column, optionally ignoring one row.
// It is structured rather than a closure so SQL backends can push it down.
type Predicate struct {
	Field     string
	Value     any
	ExcludeID int64
}

// Where builds a predicate matching rows whose field equals value.
func Where(field string, value any) Predicate {
	return Predicate{Field: field, Value: value}
}

// Excluding returns p that skips the row with the given identifier.
func (p Predicate) Excluding(id int64) Predicate {
	p.ExcludeID = id
	return p
}
