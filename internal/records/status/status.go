// Package status replaces the free-text status of service requests and
// reports. Any value may follow any other; only the length is bounded.
package status

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"municipal/internal/records/integrity"
	"municipal/internal/records/models"
)

// Field is the key status violations are reported under.
const Field = "status"

// Policy bounds the status of one record kind. MaxLen of zero means unbounded.
type Policy struct {
	Kind    models.Kind
	MaxLen  int
	Initial string
}

var (
	ServiceRequestPolicy = Policy{
		Kind:    models.KindServiceRequest,
		MaxLen:  models.ServiceRequestStatusMaxLen,
		Initial: models.ServiceRequestInitialStatus,
	}
	ReportPolicy = Policy{
		Kind:    models.KindReport,
		Initial: models.ReportInitialStatus,
	}
)

// InitialOr returns status, or the policy's initial status when status is blank.
func (p Policy) InitialOr(status string) string {
	if strings.TrimSpace(status) == "" {
		return p.Initial
	}
	return status
}

// Check reports the violations of status under p, or nil.
func (p Policy) Check(status string) *integrity.ValidationError {
	fe := integrity.FieldErrors{}
	switch {
	case strings.TrimSpace(status) == "":
		fe.Add(Field, "The Status field is required.")
	case p.MaxLen > 0 && utf8.RuneCountInString(status) > p.MaxLen:
		fe.Add(Field, fmt.Sprintf("The field Status must be a string with a maximum length of %d.", p.MaxLen))
	default:
		return nil
	}
	return &integrity.ValidationError{Kind: p.Kind, Fields: fe}
}

// Apply returns rec with only its status replaced. On a violation rec is
// returned unchanged together with the error.
func Apply[T models.StatusRecord[T]](p Policy, rec T, status string) (T, error) {
	if verr := p.Check(status); verr != nil {
		return rec, verr
	}
	return rec.WithStatus(status), nil
}
