package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally wrapped)
// so services can translate them into domain errors.
//
// These represent factual states about records, not validation failures:
// - ErrNotFound: record does not exist in the store
// - ErrConflict: record changed since it was loaded (stale version)
// - ErrAlreadyUsed: a unique column value is already taken (duplicate key)
// - ErrUnavailable: the backing store could not be reached or failed unexpectedly
//
// For validation errors (bad input, missing fields), use the integrity package.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrAlreadyUsed = errors.New("already used")
	ErrUnavailable = errors.New("unavailable")
)
