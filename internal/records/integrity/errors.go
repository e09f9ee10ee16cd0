package integrity

import (
	"fmt"
	"sort"
	"strings"

	"municipal/internal/records/models"
	dErrors "municipal/pkg/domain-errors"
)

// FieldErrors maps a field name to every message raised against it.
type FieldErrors map[string][]string

// Add records msg against field.
func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// Has reports whether field has at least one message.
func (f FieldErrors) Has(field string) bool {
	return len(f[field]) > 0
}

// Fields returns the offending field names, sorted.
func (f FieldErrors) Fields() []string {
	out := make([]string, 0, len(f))
	for k := range f {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ValidationError is recoverable: the caller re-presents the original input
// together with the field messages.
type ValidationError struct {
	Kind   models.Kind
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Kind, strings.Join(e.Fields.Fields(), ", "))
}

// DomainCode classifies the error for transports.
func (e *ValidationError) DomainCode() dErrors.Code {
	return dErrors.CodeValidation
}

// Result is the outcome of Validate. A Result with no errors is Valid.
type Result struct {
	Kind   models.Kind
	Errors FieldErrors
}

func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Err returns nil for a valid result and a *ValidationError otherwise.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &ValidationError{Kind: r.Kind, Fields: r.Errors}
}
