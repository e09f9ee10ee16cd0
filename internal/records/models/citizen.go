package models

import "time"

// Citizen is a resident registered with the municipality.
//
// Invariants:
//   - FullName is required, at most 100 characters
//   - Address is required, at most 200 characters
//   - PhoneNumber is exactly 10 digits
//   - Email is optional; when present it is well formed and unique among citizens
//   - RegistrationDate defaults to the creation instant and is kept across edits
type Citizen struct {
	CitizenID        int64      `json:"citizen_id"`
	FullName         string     `json:"full_name" validate:"required,max=100"`
	Address          string     `json:"address" validate:"required,max=200"`
	PhoneNumber      string     `json:"phone_number" validate:"required,digits=10"`
	Email            string     `json:"email,omitempty" validate:"omitempty,email"`
	DateOfBirth      *time.Time `json:"date_of_birth,omitempty"`
	RegistrationDate time.Time  `json:"registration_date"`
	Version          int64      `json:"version"`
}

func (c Citizen) RecordID() int64      { return c.CitizenID }
func (c Citizen) RecordVersion() int64 { return c.Version }
