package integrity

import (
	"context"
	"fmt"

	"municipal/internal/records/models"
	"municipal/internal/storage"
)

// Prober answers existence questions against one record collection.
type Prober interface {
	AnyWhere(ctx context.Context, p storage.Predicate) (bool, error)
}

// Unique declares that no two records of a kind may share a non-empty value.
type Unique[T any] struct {
	Field   string
	Value   func(T) string
	Message string
}

// Reference declares that a field must name an existing row in another collection.
type Reference[T any] struct {
	Field  string
	Value  func(T) int64
	Target Prober
	// Column is the identifier column of the referenced collection.
	Column  string
	Message string
}

// Schema is the rule set for one record kind. Shape rules come from struct tags;
// Messages overrides the default text keyed by "field.tag".
type Schema[T any] struct {
	Kind       models.Kind
	Messages   map[string]string
	Unique     []Unique[T]
	References []Reference[T]
}

// Engine evaluates a Schema against candidate records.
type Engine[T any] struct {
	schema  Schema[T]
	records Prober
}

// New builds an engine whose uniqueness rules probe records.
func New[T any](schema Schema[T], records Prober) *Engine[T] {
	return &Engine[T]{schema: schema, records: records}
}

// Kind returns the record kind the engine validates.
func (e *Engine[T]) Kind() models.Kind {
	return e.schema.Kind
}

// Validate runs shape, uniqueness and reference rules and collects every
// violation. excludedID is the identifier of the record being edited, or 0 on
// create. Uniqueness and reference rules are skipped for a field that already
// failed its shape rule. The returned error is non-nil only when a probe
// could not be answered.
func (e *Engine[T]) Validate(ctx context.Context, candidate T, excludedID int64) (Result, error) {
	res := Result{Kind: e.schema.Kind, Errors: FieldErrors{}}
	if err := checkShape(candidate, e.schema.Messages, res.Errors); err != nil {
		return res, err
	}

	for _, rule := range e.schema.Unique {
		if res.Errors.Has(rule.Field) {
			continue
		}
		value := rule.Value(candidate)
		if value == "" {
			continue
		}
		taken, err := e.records.AnyWhere(ctx, storage.Where(rule.Field, value).Excluding(excludedID))
		if err != nil {
			return res, fmt.Errorf("unique %s: %w", rule.Field, err)
		}
		if taken {
			res.Errors.Add(rule.Field, rule.Message)
		}
	}

	for _, rule := range e.schema.References {
		if res.Errors.Has(rule.Field) {
			continue
		}
		id := rule.Value(candidate)
		found := false
		if id > 0 {
			var err error
			found, err = rule.Target.AnyWhere(ctx, storage.Where(rule.Column, id))
			if err != nil {
				return res, fmt.Errorf("reference %s: %w", rule.Field, err)
			}
		}
		if !found {
			res.Errors.Add(rule.Field, rule.Message)
		}
	}
	return res, nil
}

// DuplicateKey converts a store-level unique violation on field into the same
// validation error the uniqueness rule would have produced. It returns nil when
// the schema has no uniqueness rule for the field.
func (e *Engine[T]) DuplicateKey(field string) *ValidationError {
	for _, rule := range e.schema.Unique {
		if rule.Field == field {
			fe := FieldErrors{}
			fe.Add(field, rule.Message)
			return &ValidationError{Kind: e.schema.Kind, Fields: fe}
		}
	}
	return nil
}
