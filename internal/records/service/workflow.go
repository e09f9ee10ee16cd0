// Package service runs the record workflows: list, get, create, edit, the
// two-step delete and status updates. Every workflow completes in one pass
// with a success or a classified domain error; nothing is retried.
package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"municipal/internal/records/conflict"
	"municipal/internal/records/guard"
	"municipal/internal/records/integrity"
	"municipal/internal/records/models"
	"municipal/internal/storage"
	"municipal/pkg/platform/sentinel"
	"municipal/pkg/requestcontext"
)

const (
	opList          = "list"
	opGet           = "get"
	opCreate        = "create"
	opEdit          = "edit"
	opConfirmDelete = "confirm_delete"
	opDelete        = "delete"
	opStatus        = "update_status"
)

// Definition is the per-kind metadata the generic workflow runs on.
type Definition[T models.Record] struct {
	Kind   models.Kind
	Engine *integrity.Engine[T]
	// Unique names the value guarded across concurrent writers. An empty
	// value is not guarded.
	Unique func(T) (field, value string)
	// Prepare fills creation defaults.
	Prepare func(ctx context.Context, rec T) T
	// Merge carries stored values an edit payload left out.
	Merge func(stored, edited T) T
}

// Workflow implements the workflows shared by every record kind.
type Workflow[T models.Record] struct {
	def   Definition[T]
	store storage.Store[T]
	options
}

func newWorkflow[T models.Record](def Definition[T], store storage.Store[T], opts []Option) *Workflow[T] {
	return &Workflow[T]{def: def, store: store, options: buildOptions(opts)}
}

// Kind returns the record kind handled by w.
func (w *Workflow[T]) Kind() models.Kind {
	return w.def.Kind
}

// List returns every record in creation order.
func (w *Workflow[T]) List(ctx context.Context) (_ []T, err error) {
	ctx, done := w.observe(ctx, opList)
	defer done(&err)

	recs, err := w.store.GetAll(ctx)
	if err != nil {
		return nil, w.translate(err)
	}
	if recs == nil {
		recs = []T{}
	}
	return recs, nil
}

// Get returns the record with id. A non-positive id is NotFound.
func (w *Workflow[T]) Get(ctx context.Context, id int64) (_ T, err error) {
	ctx, done := w.observe(ctx, opGet)
	defer done(&err)
	return w.get(ctx, id)
}

// ConfirmDelete fetches the record shown on the delete confirmation step.
func (w *Workflow[T]) ConfirmDelete(ctx context.Context, id int64) (_ T, err error) {
	ctx, done := w.observe(ctx, opConfirmDelete)
	defer done(&err)
	return w.get(ctx, id)
}

func (w *Workflow[T]) get(ctx context.Context, id int64) (T, error) {
	var zero T
	if id <= 0 {
		return zero, notFound(w.def.Kind)
	}
	rec, err := w.store.GetByID(ctx, id)
	if err != nil {
		return zero, w.translate(err)
	}
	return rec, nil
}

// Create validates candidate and persists it. On a validation failure the
// candidate is returned unmodified together with a *integrity.ValidationError.
func (w *Workflow[T]) Create(ctx context.Context, candidate T) (_ T, err error) {
	ctx, done := w.observe(ctx, opCreate)
	defer done(&err)

	input := candidate
	if w.def.Prepare != nil {
		candidate = w.def.Prepare(ctx, candidate)
	}

	release, err := w.claim(ctx, candidate)
	if err != nil {
		return input, err
	}
	defer release()

	res, err := w.def.Engine.Validate(ctx, candidate, 0)
	if err != nil {
		return input, w.translate(err)
	}
	if !res.Valid() {
		w.logger.InfoContext(ctx, "record rejected",
			"kind", w.def.Kind,
			"op", opCreate,
			"fields", res.Errors.Fields(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return input, res.Err()
	}

	saved, err := w.store.Insert(ctx, candidate)
	if err != nil {
		return input, w.translate(err)
	}
	w.logger.InfoContext(ctx, "record created",
		"kind", w.def.Kind,
		"id", saved.RecordID(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return saved, nil
}

// Delete removes the record with id. It succeeds whether or not the record exists.
func (w *Workflow[T]) Delete(ctx context.Context, id int64) (err error) {
	ctx, done := w.observe(ctx, opDelete)
	defer done(&err)

	if id <= 0 {
		return nil
	}
	if err := w.store.Delete(ctx, id); err != nil {
		return w.translate(err)
	}
	w.logger.InfoContext(ctx, "record deleted",
		"kind", w.def.Kind,
		"id", id,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// update persists rec and classifies a failure through the conflict resolver.
func (w *Workflow[T]) update(ctx context.Context, rec T) (T, error) {
	var zero T
	saved, err := w.store.Update(ctx, rec)
	if err == nil {
		return saved, nil
	}
	out, err := conflict.Resolve(ctx, err, rec.RecordID(), w.exists)
	if err != nil {
		return zero, w.translate(err)
	}
	w.logger.WarnContext(ctx, "record update rejected",
		"kind", w.def.Kind,
		"id", rec.RecordID(),
		"outcome", out.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	if out == conflict.NotFound {
		return zero, notFound(w.def.Kind)
	}
	return zero, conflicted(w.def.Kind)
}

func (w *Workflow[T]) exists(ctx context.Context, id int64) (bool, error) {
	_, err := w.store.GetByID(ctx, id)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// claim holds the unique value of rec until the returned release is called.
func (w *Workflow[T]) claim(ctx context.Context, rec T) (func(), error) {
	noop := func() {}
	if w.def.Unique == nil {
		return noop, nil
	}
	field, value := w.def.Unique(rec)
	if value == "" {
		return noop, nil
	}
	c, err := w.claims.Claim(ctx, w.def.Kind, field, value)
	if errors.Is(err, guard.ErrHeld) {
		if verr := w.def.Engine.DuplicateKey(field); verr != nil {
			return nil, verr
		}
		return nil, conflicted(w.def.Kind)
	}
	if err != nil {
		return nil, w.translate(err)
	}
	return func() {
		if err := c.Release(context.WithoutCancel(ctx)); err != nil {
			w.logger.WarnContext(ctx, "failed to release claim",
				"kind", w.def.Kind,
				"field", field,
				"error", err,
			)
		}
	}, nil
}

// uniqueChanged reports whether edited carries a different unique value than stored.
func (w *Workflow[T]) uniqueChanged(stored, edited T) bool {
	if w.def.Unique == nil {
		return false
	}
	_, before := w.def.Unique(stored)
	_, after := w.def.Unique(edited)
	return before != after
}

func (w *Workflow[T]) translate(err error) error {
	return translate(w.def.Kind, w.def.Engine, err)
}

// observe opens a span for op and returns the function that closes it and
// records the outcome of *errp.
func (w *Workflow[T]) observe(ctx context.Context, op string) (context.Context, func(errp *error)) {
	start := time.Now()
	kind := w.def.Kind.String()
	ctx, span := w.tracer.Start(ctx, "records."+op,
		trace.WithAttributes(
			attribute.String("record.kind", kind),
			attribute.String("record.op", op),
		))
	return ctx, func(errp *error) {
		out := outcome(*errp)
		span.SetAttributes(attribute.String("record.outcome", out))
		switch out {
		case "success", "invalid", "not_found":
		default:
			span.RecordError(*errp)
			span.SetStatus(codes.Error, out)
		}
		span.End()
		w.metrics.Observe(kind, op, out, start)
	}
}

// EditWorkflow adds full-record edits.
type EditWorkflow[T models.Record] struct {
	*Workflow[T]
}

// Edit replaces the record at id with candidate. The payload identifier must
// match id; a mismatch is NotFound. candidate must carry the version it was
// loaded with, otherwise the update is a Conflict.
func (w *EditWorkflow[T]) Edit(ctx context.Context, id int64, candidate T) (_ T, err error) {
	ctx, done := w.observe(ctx, opEdit)
	defer done(&err)

	input := candidate
	if id <= 0 || candidate.RecordID() != id {
		return input, notFound(w.def.Kind)
	}
	stored, err := w.store.GetByID(ctx, id)
	if err != nil {
		return input, w.translate(err)
	}
	if w.def.Merge != nil {
		candidate = w.def.Merge(stored, candidate)
	}

	// A record keeping its own unique value takes no claim; concurrent edits
	// of the same row are settled by the version check.
	release := func() {}
	if w.uniqueChanged(stored, candidate) {
		release, err = w.claim(ctx, candidate)
		if err != nil {
			return input, err
		}
	}
	defer release()

	res, err := w.def.Engine.Validate(ctx, candidate, id)
	if err != nil {
		return input, w.translate(err)
	}
	if !res.Valid() {
		w.logger.InfoContext(ctx, "record rejected",
			"kind", w.def.Kind,
			"op", opEdit,
			"id", id,
			"fields", res.Errors.Fields(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return input, res.Err()
	}

	saved, err := w.update(ctx, candidate)
	if err != nil {
		return input, err
	}
	w.logger.InfoContext(ctx, "record updated",
		"kind", w.def.Kind,
		"id", id,
		"version", saved.RecordVersion(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return saved, nil
}
