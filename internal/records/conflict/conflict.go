// Package conflict classifies failed updates. Conflicts are reported, never
// retried or merged.
package conflict

import (
	"context"
	"errors"
	"fmt"

	"municipal/pkg/platform/sentinel"
)

// Outcome is the classified result of an update attempt.
type Outcome int

const (
	Success Outcome = iota
	NotFound
	Conflict
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// ExistsFunc reports whether the record with id is still stored.
type ExistsFunc func(ctx context.Context, id int64) (bool, error)

// Resolve classifies updateErr. A nil error is Success. A NotFound or Conflict
// failure is re-checked against exists: a vanished record is NotFound, one that
// is still there is Conflict. Any other failure, or a failing existence probe,
// is returned unchanged for the caller to propagate.
func Resolve(ctx context.Context, updateErr error, id int64, exists ExistsFunc) (Outcome, error) {
	if updateErr == nil {
		return Success, nil
	}
	if !errors.Is(updateErr, sentinel.ErrNotFound) && !errors.Is(updateErr, sentinel.ErrConflict) {
		return Success, updateErr
	}
	found, err := exists(ctx, id)
	if err != nil {
		return Success, err
	}
	if !found {
		return NotFound, nil
	}
	return Conflict, nil
}
