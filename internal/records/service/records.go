package service

import (
	"context"

	"municipal/internal/records/integrity"
	"municipal/internal/records/models"
	"municipal/internal/records/status"
	"municipal/internal/storage"
	"municipal/pkg/requestcontext"
)

type (
	Citizens        = EditWorkflow[models.Citizen]
	Staff           = EditWorkflow[models.Staff]
	ServiceRequests = StatusWorkflow[models.ServiceRequest]
	Reports         = StatusWorkflow[models.Report]
)

// NewCitizens builds the citizen workflows. RegistrationDate defaults to the
// request time and survives edits that omit it.
func NewCitizens(citizens storage.Store[models.Citizen], opts ...Option) *Citizens {
	def := Definition[models.Citizen]{
		Kind:   models.KindCitizen,
		Engine: integrity.NewCitizenEngine(citizens),
		Unique: func(c models.Citizen) (string, string) { return storage.ColumnEmail, c.Email },
		Prepare: func(ctx context.Context, c models.Citizen) models.Citizen {
			if c.RegistrationDate.IsZero() {
				c.RegistrationDate = requestcontext.Now(ctx).UTC()
			}
			return c
		},
		Merge: func(stored, edited models.Citizen) models.Citizen {
			if edited.RegistrationDate.IsZero() {
				edited.RegistrationDate = stored.RegistrationDate
			}
			return edited
		},
	}
	return &Citizens{Workflow: newWorkflow(def, citizens, opts)}
}

// NewStaff builds the staff workflows.
func NewStaff(staff storage.Store[models.Staff], opts ...Option) *Staff {
	def := Definition[models.Staff]{
		Kind:   models.KindStaff,
		Engine: integrity.NewStaffEngine(staff),
		Unique: func(s models.Staff) (string, string) { return storage.ColumnEmail, s.Email },
	}
	return &Staff{Workflow: newWorkflow(def, staff, opts)}
}

// NewServiceRequests builds the service request workflows; citizens answers
// the reference check on create.
func NewServiceRequests(requests storage.Store[models.ServiceRequest], citizens integrity.Prober, opts ...Option) *ServiceRequests {
	policy := status.ServiceRequestPolicy
	def := Definition[models.ServiceRequest]{
		Kind:   models.KindServiceRequest,
		Engine: integrity.NewServiceRequestEngine(citizens),
		Prepare: func(ctx context.Context, r models.ServiceRequest) models.ServiceRequest {
			if r.RequestDate.IsZero() {
				r.RequestDate = requestcontext.Now(ctx).UTC()
			}
			r.Status = policy.InitialOr(r.Status)
			return r
		},
	}
	return &ServiceRequests{Workflow: newWorkflow(def, requests, opts), policy: policy}
}

// NewReports builds the report workflows; citizens answers the reference
// check on create.
func NewReports(reports storage.Store[models.Report], citizens integrity.Prober, opts ...Option) *Reports {
	policy := status.ReportPolicy
	def := Definition[models.Report]{
		Kind:   models.KindReport,
		Engine: integrity.NewReportEngine(citizens),
		Prepare: func(ctx context.Context, r models.Report) models.Report {
			if r.SubmissionDate.IsZero() {
				r.SubmissionDate = requestcontext.Now(ctx).UTC()
			}
			r.Status = policy.InitialOr(r.Status)
			return r
		},
	}
	return &Reports{Workflow: newWorkflow(def, reports, opts), policy: policy}
}
