package storage

import (
	"fmt"
	"time"

	"municipal/internal/records/models"
)

// Column names that the integrity rules refer to.
const (
	ColumnEmail     = "email"
	ColumnCitizenID = "citizen_id"
)

// CitizenTable describes the citizens table.
var CitizenTable = Table[models.Citizen]{
	Name:     "citizens",
	IDColumn: ColumnCitizenID,
	ID:       func(c *models.Citizen) *int64 { return &c.CitizenID },
	Version:  func(c *models.Citizen) *int64 { return &c.Version },
	Columns: []Column[models.Citizen]{
		{Name: "full_name", Value: func(c *models.Citizen) any { return c.FullName }, Target: func(c *models.Citizen) any { return &c.FullName }},
		{Name: "address", Value: func(c *models.Citizen) any { return c.Address }, Target: func(c *models.Citizen) any { return &c.Address }},
		{Name: "phone_number", Value: func(c *models.Citizen) any { return c.PhoneNumber }, Target: func(c *models.Citizen) any { return &c.PhoneNumber }},
		{Name: ColumnEmail, Value: func(c *models.Citizen) any { return nullIfEmpty(c.Email) }, Target: func(c *models.Citizen) any { return (*nullString)(&c.Email) }},
		{Name: "date_of_birth", Value: func(c *models.Citizen) any { return nullTime(c.DateOfBirth) }, Target: func(c *models.Citizen) any { return &c.DateOfBirth }},
		{Name: "registration_date", Value: func(c *models.Citizen) any { return c.RegistrationDate }, Target: func(c *models.Citizen) any { return &c.RegistrationDate }},
	},
	Unique: []string{ColumnEmail},
}

// StaffTable describes the staff table.
var StaffTable = Table[models.Staff]{
	Name:     "staff",
	IDColumn: "staff_id",
	ID:       func(s *models.Staff) *int64 { return &s.StaffID },
	Version:  func(s *models.Staff) *int64 { return &s.Version },
	Columns: []Column[models.Staff]{
		{Name: "full_name", Value: func(s *models.Staff) any { return s.FullName }, Target: func(s *models.Staff) any { return &s.FullName }},
		{Name: "position", Value: func(s *models.Staff) any { return s.Position }, Target: func(s *models.Staff) any { return &s.Position }},
		{Name: "department", Value: func(s *models.Staff) any { return s.Department }, Target: func(s *models.Staff) any { return &s.Department }},
		{Name: ColumnEmail, Value: func(s *models.Staff) any { return s.Email }, Target: func(s *models.Staff) any { return &s.Email }},
		{Name: "hired_date", Value: func(s *models.Staff) any { return s.HiredDate }, Target: func(s *models.Staff) any { return &s.HiredDate }},
	},
	Unique: []string{ColumnEmail},
}

// ServiceRequestTable describes the service_requests table.
var ServiceRequestTable = Table[models.ServiceRequest]{
	Name:     "service_requests",
	IDColumn: "request_id",
	ID:       func(r *models.ServiceRequest) *int64 { return &r.RequestID },
	Version:  func(r *models.ServiceRequest) *int64 { return &r.Version },
	Columns: []Column[models.ServiceRequest]{
		{Name: ColumnCitizenID, Value: func(r *models.ServiceRequest) any { return r.CitizenID }, Target: func(r *models.ServiceRequest) any { return &r.CitizenID }},
		{Name: "service_type", Value: func(r *models.ServiceRequest) any { return r.ServiceType }, Target: func(r *models.ServiceRequest) any { return &r.ServiceType }},
		{Name: "request_date", Value: func(r *models.ServiceRequest) any { return r.RequestDate }, Target: func(r *models.ServiceRequest) any { return &r.RequestDate }},
		{Name: "status", Value: func(r *models.ServiceRequest) any { return r.Status }, Target: func(r *models.ServiceRequest) any { return &r.Status }},
	},
}

// ReportTable describes the reports table.
var ReportTable = Table[models.Report]{
	Name:     "reports",
	IDColumn: "report_id",
	ID:       func(r *models.Report) *int64 { return &r.ReportID },
	Version:  func(r *models.Report) *int64 { return &r.Version },
	Columns: []Column[models.Report]{
		{Name: ColumnCitizenID, Value: func(r *models.Report) any { return r.CitizenID }, Target: func(r *models.Report) any { return &r.CitizenID }},
		{Name: "report_type", Value: func(r *models.Report) any { return r.ReportType }, Target: func(r *models.Report) any { return &r.ReportType }},
		{Name: "details", Value: func(r *models.Report) any { return r.Details }, Target: func(r *models.Report) any { return &r.Details }},
		{Name: "submission_date", Value: func(r *models.Report) any { return r.SubmissionDate }, Target: func(r *models.Report) any { return &r.SubmissionDate }},
		{Name: "status", Value: func(r *models.Report) any { return r.Status }, Target: func(r *models.Report) any { return &r.Status }},
	},
}

// nullString scans NULL as the empty string; absent citizen emails are NULL in
// the database so the unique index ignores them.
type nullString string

func (n *nullString) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*n = ""
	case string:
		*n = nullString(v)
	case []byte:
		*n = nullString(v)
	default:
		return fmt.Errorf("scan %T into string", src)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
