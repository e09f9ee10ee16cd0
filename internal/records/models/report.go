package models

import "time"

// ReportInitialStatus is assigned when a report is submitted without a status.
const ReportInitialStatus = "Under Review"

// Report is a citizen-submitted report (complaint, incident, observation).
// Status has no length bound.
type Report struct {
	ReportID       int64     `json:"report_id"`
	CitizenID      int64     `json:"citizen_id"`
	ReportType     string    `json:"report_type" validate:"required"`
	Details        string    `json:"details" validate:"required"`
	SubmissionDate time.Time `json:"submission_date" validate:"required"`
	Status         string    `json:"status"`
	Version        int64     `json:"version"`
}

func (r Report) RecordID() int64       { return r.ReportID }
func (r Report) RecordVersion() int64  { return r.Version }
func (r Report) CurrentStatus() string { return r.Status }

// WithStatus returns a copy of r with only the status replaced.
func (r Report) WithStatus(status string) Report {
	r.Status = status
	return r
}
