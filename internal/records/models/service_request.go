package models

import "time"

const (
	// ServiceRequestInitialStatus is assigned when a request is created without one.
	ServiceRequestInitialStatus = "Pending"
	// ServiceRequestStatusMaxLen bounds the free-text status.
	ServiceRequestStatusMaxLen = 30
)

// ServiceRequest is a citizen's request for a municipal service.
//
// Invariants:
//   - CitizenID references a citizen that existed at creation time
//   - ServiceType is required, at most 50 characters
//   - Status is free text, at most 30 characters
//
// The citizen reference is not maintained afterwards: deleting the citizen
// leaves the request pointing at a missing row.
type ServiceRequest struct {
	RequestID   int64     `json:"request_id"`
	CitizenID   int64     `json:"citizen_id"`
	ServiceType string    `json:"service_type" validate:"required,max=50"`
	RequestDate time.Time `json:"request_date" validate:"required"`
	Status      string    `json:"status" validate:"max=30"`
	Version     int64     `json:"version"`
}

func (r ServiceRequest) RecordID() int64       { return r.RequestID }
func (r ServiceRequest) RecordVersion() int64  { return r.Version }
func (r ServiceRequest) CurrentStatus() string { return r.Status }

// WithStatus returns a copy of r with only the status replaced.
func (r ServiceRequest) WithStatus(status string) ServiceRequest {
	r.Status = status
	return r
}
