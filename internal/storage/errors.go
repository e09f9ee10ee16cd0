package storage

import (
	"fmt"

	"municipal/pkg/platform/sentinel"
)

// DuplicateKeyError reports a unique-index violation enforced by the store itself.
type DuplicateKeyError struct {
	Table string
	Field string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s.%s: duplicate key", e.Table, e.Field)
}

func (e *DuplicateKeyError) Unwrap() error {
	return sentinel.ErrAlreadyUsed
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
}
