package service

import (
	"context"

	"municipal/internal/records/models"
	"municipal/internal/records/status"
	"municipal/pkg/requestcontext"
)

// StatusWorkflow adds status-only updates.
type StatusWorkflow[T models.StatusRecord[T]] struct {
	*Workflow[T]
	policy status.Policy
}

// UpdateStatus re-reads the record at id and persists it with only the status
// replaced. A rejected status leaves the stored record untouched and returns
// the current record with a *integrity.ValidationError.
func (w *StatusWorkflow[T]) UpdateStatus(ctx context.Context, id int64, newStatus string) (_ T, err error) {
	ctx, done := w.observe(ctx, opStatus)
	defer done(&err)

	current, err := w.get(ctx, id)
	if err != nil {
		return current, err
	}
	next, err := status.Apply(w.policy, current, newStatus)
	if err != nil {
		return current, err
	}
	saved, err := w.update(ctx, next)
	if err != nil {
		return current, err
	}
	w.logger.InfoContext(ctx, "record status changed",
		"kind", w.def.Kind,
		"id", id,
		"from", current.CurrentStatus(),
		"to", saved.CurrentStatus(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return saved, nil
}
