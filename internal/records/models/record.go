package models

// Kind names one of the four record types.
type Kind string

const (
	KindCitizen        Kind = "citizen"
	KindStaff          Kind = "staff"
	KindServiceRequest Kind = "service_request"
	KindReport         Kind = "report"
)

func (k Kind) String() string { return string(k) }

// Record is satisfied by every persisted entity. Identifiers are assigned by the
// store on insert; zero means "not yet persisted".
type Record interface {
	RecordID() int64
	RecordVersion() int64
}

// StatusRecord is a record whose status field can be replaced in isolation.
type StatusRecord[T any] interface {
	Record
	CurrentStatus() string
	WithStatus(status string) T
}
