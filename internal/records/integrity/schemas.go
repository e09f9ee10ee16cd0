package integrity

import (
	"municipal/internal/records/models"
	"municipal/internal/storage"
)

// Messages shown to operators.
const (
	MsgCitizenEmailTaken     = "This email is already registered by another citizen."
	MsgStaffEmailTaken       = "This email is already registered by another staff member."
	MsgRequestCitizenUnknown = "Invalid Citizen ID."
	MsgReportCitizenUnknown  = "Invalid Citizen ID. Please enter a valid Citizen."
	MsgNameTooLong           = "Max character limit for name is 100."
	MsgAddressTooLong        = "Max character limit for address is 200."
	MsgPhoneDigits           = "Phone number must be 10 digits."
)

// NewCitizenEngine validates citizens; citizens is probed for email collisions.
func NewCitizenEngine(citizens Prober) *Engine[models.Citizen] {
	return New(Schema[models.Citizen]{
		Kind: models.KindCitizen,
		Messages: map[string]string{
			"full_name.max":       MsgNameTooLong,
			"address.max":         MsgAddressTooLong,
			"phone_number.digits": MsgPhoneDigits,
		},
		Unique: []Unique[models.Citizen]{{
			Field:   storage.ColumnEmail,
			Value:   func(c models.Citizen) string { return c.Email },
			Message: MsgCitizenEmailTaken,
		}},
	}, citizens)
}

// NewStaffEngine validates staff members; staff is probed for email collisions.
func NewStaffEngine(staff Prober) *Engine[models.Staff] {
	return New(Schema[models.Staff]{
		Kind: models.KindStaff,
		Unique: []Unique[models.Staff]{{
			Field:   storage.ColumnEmail,
			Value:   func(s models.Staff) string { return s.Email },
			Message: MsgStaffEmailTaken,
		}},
	}, staff)
}

// NewServiceRequestEngine validates service requests against the citizen collection.
func NewServiceRequestEngine(citizens Prober) *Engine[models.ServiceRequest] {
	return New(Schema[models.ServiceRequest]{
		Kind: models.KindServiceRequest,
		References: []Reference[models.ServiceRequest]{{
			Field:   storage.ColumnCitizenID,
			Value:   func(r models.ServiceRequest) int64 { return r.CitizenID },
			Target:  citizens,
			Column:  storage.ColumnCitizenID,
			Message: MsgRequestCitizenUnknown,
		}},
	}, nil)
}

// NewReportEngine validates reports against the citizen collection.
func NewReportEngine(citizens Prober) *Engine[models.Report] {
	return New(Schema[models.Report]{
		Kind: models.KindReport,
		References: []Reference[models.Report]{{
			Field:   storage.ColumnCitizenID,
			Value:   func(r models.Report) int64 { return r.CitizenID },
			Target:  citizens,
			Column:  storage.ColumnCitizenID,
			Message: MsgReportCitizenUnknown,
		}},
	}, nil)
}
