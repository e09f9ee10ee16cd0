package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"municipal/internal/records/integrity"
	"municipal/internal/records/models"
	dErrors "municipal/pkg/domain-errors"
	"municipal/pkg/platform/httputil"
	"municipal/pkg/requestcontext"
)

// Records is the workflow set every record kind supports.
type Records[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, candidate T) (T, error)
	ConfirmDelete(ctx context.Context, id int64) (T, error)
	Delete(ctx context.Context, id int64) error
}

// Editor adds full edits (citizens, staff).
type Editor[T any] interface {
	Records[T]
	Edit(ctx context.Context, id int64, candidate T) (T, error)
}

// StatusUpdater adds status-only updates (service requests, reports).
type StatusUpdater[T any] interface {
	Records[T]
	UpdateStatus(ctx context.Context, id int64, status string) (T, error)
}

// Handler exposes the record workflows over JSON.
type Handler struct {
	logger   *slog.Logger
	citizens Editor[models.Citizen]
	staff    Editor[models.Staff]
	requests StatusUpdater[models.ServiceRequest]
	reports  StatusUpdater[models.Report]
}

func New(
	citizens Editor[models.Citizen],
	staff Editor[models.Staff],
	requests StatusUpdater[models.ServiceRequest],
	reports StatusUpdater[models.Report],
	logger *slog.Logger,
) *Handler {
	return &Handler{
		logger:   logger,
		citizens: citizens,
		staff:    staff,
		requests: requests,
		reports:  reports,
	}
}

// Register mounts the record routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/citizens", func(r chi.Router) {
		mountRecords(r, h.citizens, h.logger)
		r.Put("/{id}", handleEdit(h.citizens, h.logger))
	})
	r.Route("/staff", func(r chi.Router) {
		mountRecords(r, h.staff, h.logger)
		r.Put("/{id}", handleEdit(h.staff, h.logger))
	})
	r.Route("/service-requests", func(r chi.Router) {
		mountRecords(r, h.requests, h.logger)
		mountStatus(r, "/service-requests", h.requests, h.logger)
	})
	r.Route("/reports", func(r chi.Router) {
		mountRecords(r, h.reports, h.logger)
		mountStatus(r, "/reports", h.reports, h.logger)
	})
}

func mountRecords[T any](r chi.Router, svc Records[T], logger *slog.Logger) {
	r.Get("/", handleList(svc, logger))
	r.Post("/", handleCreate(svc, logger))
	r.Get("/{id}", handleGet(svc.Get, logger))
	r.Get("/{id}/delete", handleGet(svc.ConfirmDelete, logger))
	r.Delete("/{id}", handleDelete(svc, logger))
}

func mountStatus[T any](r chi.Router, listPath string, svc StatusUpdater[T], logger *slog.Logger) {
	r.Get("/{id}/status", handleGet(svc.Get, logger))
	r.Post("/{id}/status", handleUpdateStatus(listPath, svc, logger))
}

// invalidResponse re-presents the submitted record with its field errors.
type invalidResponse[T any] struct {
	Record T                     `json:"record"`
	Errors integrity.FieldErrors `json:"errors"`
}

// statusRequest is the body of a status update.
type statusRequest struct {
	Status string `json:"status"`
}

func handleList[T any](svc Records[T], logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := svc.List(r.Context())
		if err != nil {
			writeFailure(r.Context(), w, logger, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, recs)
	}
}

func handleGet[T any](get func(context.Context, int64) (T, error), logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := get(r.Context(), pathID(r))
		if err != nil {
			writeFailure(r.Context(), w, logger, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, rec)
	}
}

func handleCreate[T any](svc Records[T], logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var candidate T
		if err := httputil.DecodeJSON(r, &candidate); err != nil {
			httputil.WriteError(w, err)
			return
		}
		rec, err := svc.Create(r.Context(), candidate)
		if err != nil {
			writeRecordFailure(r.Context(), w, logger, rec, err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, rec)
	}
}

func handleEdit[T any](svc Editor[T], logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var candidate T
		if err := httputil.DecodeJSON(r, &candidate); err != nil {
			httputil.WriteError(w, err)
			return
		}
		rec, err := svc.Edit(r.Context(), pathID(r), candidate)
		if err != nil {
			writeRecordFailure(r.Context(), w, logger, rec, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, rec)
	}
}

func handleDelete[T any](svc Records[T], logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), pathID(r)); err != nil {
			writeFailure(r.Context(), w, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleUpdateStatus redirects to the list whether or not the status was
// accepted; only missing records, conflicts and store failures are errors.
func handleUpdateStatus[T any](listPath string, svc StatusUpdater[T], logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.WriteError(w, err)
			return
		}
		_, err := svc.UpdateStatus(r.Context(), pathID(r), req.Status)
		if err != nil && !dErrors.HasCode(err, dErrors.CodeValidation) {
			writeFailure(r.Context(), w, logger, err)
			return
		}
		http.Redirect(w, r, listPath, http.StatusSeeOther)
	}
}

// pathID returns the {id} parameter, or 0 when it is missing or malformed so
// the workflow reports NotFound.
func pathID(r *http.Request) int64 {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func writeRecordFailure[T any](ctx context.Context, w http.ResponseWriter, logger *slog.Logger, rec T, err error) {
	var verr *integrity.ValidationError
	if errors.As(err, &verr) {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, invalidResponse[T]{Record: rec, Errors: verr.Fields})
		return
	}
	writeFailure(ctx, w, logger, err)
}

func writeFailure(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeUnavailable, dErrors.CodeInternal:
		logger.ErrorContext(ctx, "record request failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}
