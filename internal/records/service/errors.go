package service

import (
	"errors"
	"fmt"

	"municipal/internal/records/integrity"
	"municipal/internal/records/models"
	"municipal/internal/storage"
	dErrors "municipal/pkg/domain-errors"
	"municipal/pkg/platform/sentinel"
)

func notFound(kind models.Kind) error {
	return dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("%s not found", kind))
}

func conflicted(kind models.Kind) error {
	return dErrors.New(dErrors.CodeConflict, fmt.Sprintf("%s was modified by another user; reload and try again", kind))
}

// translate maps store and guard failures onto domain errors. Validation
// errors pass through unchanged.
func translate[T any](kind models.Kind, engine *integrity.Engine[T], err error) error {
	if err == nil {
		return nil
	}
	var verr *integrity.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	var dup *storage.DuplicateKeyError
	if errors.As(err, &dup) {
		if verr := engine.DuplicateKey(dup.Field); verr != nil {
			return verr
		}
		return dErrors.Wrap(err, dErrors.CodeConflict, fmt.Sprintf("%s %s already exists", kind, dup.Field))
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return notFound(kind)
	case errors.Is(err, sentinel.ErrConflict):
		return conflicted(kind)
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "record store unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("failed to process %s", kind))
	}
}

// outcome is the metrics label for a workflow result.
func outcome(err error) string {
	switch dErrors.CodeOf(err) {
	case "":
		return "success"
	case dErrors.CodeValidation:
		return "invalid"
	case dErrors.CodeNotFound:
		return "not_found"
	case dErrors.CodeConflict:
		return "conflict"
	case dErrors.CodeUnavailable:
		return "unavailable"
	default:
		return "error"
	}
}
