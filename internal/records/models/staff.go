package models

import "time"

// Staff is a municipal employee. Unlike citizens, staff email is mandatory,
// so email uniqueness is total.
type Staff struct {
	StaffID    int64     `json:"staff_id"`
	FullName   string    `json:"full_name" validate:"required,max=100"`
	Position   string    `json:"position" validate:"required,max=100"`
	Department string    `json:"department" validate:"required,max=100"`
	Email      string    `json:"email" validate:"required,email"`
	HiredDate  time.Time `json:"hired_date" validate:"required"`
	Version    int64     `json:"version"`
}

func (s Staff) RecordID() int64      { return s.StaffID }
func (s Staff) RecordVersion() int64 { return s.Version }
