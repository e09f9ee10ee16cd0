package integrity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"municipal/internal/records/models"
	"municipal/internal/storage"
	dErrors "municipal/pkg/domain-errors"
	"municipal/pkg/platform/sentinel"
)

type EngineSuite struct {
	suite.Suite
	ctx      context.Context
	citizens *storage.Memory[models.Citizen]
	staff    *storage.Memory[models.Staff]
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.ctx = context.Background()
	s.citizens = storage.NewMemory(storage.CitizenTable)
	s.staff = storage.NewMemory(storage.StaffTable)
}

func validCitizen() models.Citizen {
	return models.Citizen{
		FullName:         "Ada Lovelace",
		Address:          "12 Main St",
		PhoneNumber:      "5551234567",
		Email:            "ada@example.com",
		RegistrationDate: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func validStaff() models.Staff {
	return models.Staff{
		FullName:   "Grace Hopper",
		Position:   "Clerk",
		Department: "Permits",
		Email:      "grace@city.gov",
		HiredDate:  time.Date(2020, 1, 6, 0, 0, 0, 0, time.UTC),
	}
}

func (s *EngineSuite) insertCitizen(c models.Citizen) models.Citizen {
	saved, err := s.citizens.Insert(s.ctx, c)
	s.Require().NoError(err)
	return saved
}

func (s *EngineSuite) TestCitizenShape() {
	engine := NewCitizenEngine(s.citizens)

	s.Run("valid citizen passes", func() {
		res, err := engine.Validate(s.ctx, validCitizen(), 0)
		s.Require().NoError(err)
		s.True(res.Valid())
		s.NoError(res.Err())
	})

	s.Run("name over 100 characters", func() {
		c := validCitizen()
		c.FullName = strings.Repeat("a", 101)
		res, err := engine.Validate(s.ctx, c, 0)
		s.Require().NoError(err)
		s.Equal([]string{MsgNameTooLong}, res.Errors["full_name"])
	})

	s.Run("name of exactly 100 characters is accepted", func() {
		c := validCitizen()
		c.FullName = strings.Repeat("a", 100)
		res, err := engine.Validate(s.ctx, c, 0)
		s.Require().NoError(err)
		s.True(res.Valid())
	})

	s.Run("address over 200 characters", func() {
		c := validCitizen()
		c.Address = strings.Repeat("b", 201)
		res, err := engine.Validate(s.ctx, c, 0)
		s.Require().NoError(err)
		s.Equal([]string{MsgAddressTooLong}, res.Errors["address"])
	})

	s.Run("phone numbers must be exactly ten digits", func() {
		for _, phone := range []string{"555123456", "55512345678", "555-123-45", "55512345a7"} {
			c := validCitizen()
			c.PhoneNumber = phone
			res, err := engine.Validate(s.ctx, c, 0)
			s.Require().NoError(err)
			s.Equal([]string{MsgPhoneDigits}, res.Errors["phone_number"], phone)
		}
	})

	s.Run("missing phone reports required only", func() {
		c := validCitizen()
		c.PhoneNumber = ""
		res, err := engine.Validate(s.ctx, c, 0)
		s.Require().NoError(err)
		s.Equal([]string{"The PhoneNumber field is required."}, res.Errors["phone_number"])
	})

	s.Run("email is optional", func() {
		c := validCitizen()
		c.Email = ""
		res, err := engine.Validate(s.ctx, c, 0)
		s.Require().NoError(err)
		s.True(res.Valid())
	})

	s.Run("malformed email", func() {
		c := validCitizen()
		c.Email = "not-an-email"
		res, err := engine.Validate(s.ctx, c, 0)
		s.Require().NoError(err)
		s.True(res.Errors.Has("email"))
	})

	s.Run("all violations are collected", func() {
		c := validCitizen()
		c.FullName = ""
		c.Address = ""
		c.PhoneNumber = "12"
		res, err := engine.Validate(s.ctx, c, 0)
		s.Require().NoError(err)
		s.Equal([]string{"address", "full_name", "phone_number"}, res.Errors.Fields())
	})
}

func (s *EngineSuite) TestCitizenEmailUniqueness() {
	engine := NewCitizenEngine(s.citizens)
	existing := s.insertCitizen(validCitizen())

	s.Run("collision on create", func() {
		c := validCitizen()
		c.FullName = "Someone Else"
		res, err := engine.Validate(s.ctx, c, 0)
		s.Require().NoError(err)
		s.Equal([]string{MsgCitizenEmailTaken}, res.Errors["email"])
	})

	s.Run("editing a record keeps its own email", func() {
		res, err := engine.Validate(s.ctx, existing, existing.CitizenID)
		s.Require().NoError(err)
		s.True(res.Valid())
	})

	s.Run("editing into another record's email collides", func() {
		other := validCitizen()
		other.Email = "other@example.com"
		other = s.insertCitizen(other)
		other.Email = existing.Email
		res, err := engine.Validate(s.ctx, other, other.CitizenID)
		s.Require().NoError(err)
		s.Equal([]string{MsgCitizenEmailTaken}, res.Errors["email"])
	})

	s.Run("empty emails never collide", func() {
		a := validCitizen()
		a.Email = ""
		s.insertCitizen(a)
		res, err := engine.Validate(s.ctx, a, 0)
		s.Require().NoError(err)
		s.True(res.Valid())
	})
}

func (s *EngineSuite) TestStaff() {
	engine := NewStaffEngine(s.staff)

	s.Run("valid staff passes", func() {
		res, err := engine.Validate(s.ctx, validStaff(), 0)
		s.Require().NoError(err)
		s.True(res.Valid())
	})

	s.Run("email is mandatory", func() {
		st := validStaff()
		st.Email = ""
		res, err := engine.Validate(s.ctx, st, 0)
		s.Require().NoError(err)
		s.Equal([]string{"The Email field is required."}, res.Errors["email"])
	})

	s.Run("hired date is mandatory", func() {
		st := validStaff()
		st.HiredDate = time.Time{}
		res, err := engine.Validate(s.ctx, st, 0)
		s.Require().NoError(err)
		s.True(res.Errors.Has("hired_date"))
	})

	s.Run("email collision with another staff member", func() {
		_, err := s.staff.Insert(s.ctx, validStaff())
		s.Require().NoError(err)
		res, err := engine.Validate(s.ctx, validStaff(), 0)
		s.Require().NoError(err)
		s.Equal([]string{MsgStaffEmailTaken}, res.Errors["email"])
	})

	s.Run("citizen emails do not collide with staff", func() {
		c := validCitizen()
		c.Email = "shared@city.gov"
		s.insertCitizen(c)
		st := validStaff()
		st.Email = "shared@city.gov"
		res, err := engine.Validate(s.ctx, st, 0)
		s.Require().NoError(err)
		s.True(res.Valid())
	})
}

func (s *EngineSuite) TestReferences() {
	citizen := s.insertCitizen(validCitizen())
	requests := NewServiceRequestEngine(s.citizens)
	reports := NewReportEngine(s.citizens)

	s.Run("service request to an existing citizen", func() {
		res, err := requests.Validate(s.ctx, models.ServiceRequest{
			CitizenID:   citizen.CitizenID,
			ServiceType: "Waste Collection",
			RequestDate: time.Now(),
		}, 0)
		s.Require().NoError(err)
		s.True(res.Valid())
	})

	s.Run("service request to a missing citizen", func() {
		res, err := requests.Validate(s.ctx, models.ServiceRequest{
			CitizenID:   citizen.CitizenID + 100,
			ServiceType: "Waste Collection",
			RequestDate: time.Now(),
		}, 0)
		s.Require().NoError(err)
		s.Equal([]string{MsgRequestCitizenUnknown}, res.Errors["citizen_id"])
	})

	s.Run("service request without a citizen", func() {
		res, err := requests.Validate(s.ctx, models.ServiceRequest{
			ServiceType: "Waste Collection",
			RequestDate: time.Now(),
		}, 0)
		s.Require().NoError(err)
		s.Equal([]string{MsgRequestCitizenUnknown}, res.Errors["citizen_id"])
	})

	s.Run("service request status over 30 characters", func() {
		res, err := requests.Validate(s.ctx, models.ServiceRequest{
			CitizenID:   citizen.CitizenID,
			ServiceType: "Waste Collection",
			RequestDate: time.Now(),
			Status:      strings.Repeat("x", 31),
		}, 0)
		s.Require().NoError(err)
		s.True(res.Errors.Has("status"))
	})

	s.Run("report to a missing citizen", func() {
		res, err := reports.Validate(s.ctx, models.Report{
			CitizenID:      9999,
			ReportType:     "Noise",
			Details:        "Loud music after midnight",
			SubmissionDate: time.Now(),
		}, 0)
		s.Require().NoError(err)
		s.Equal([]string{MsgReportCitizenUnknown}, res.Errors["citizen_id"])
	})

	s.Run("report shape and reference violations together", func() {
		res, err := reports.Validate(s.ctx, models.Report{
			CitizenID:      9999,
			SubmissionDate: time.Now(),
		}, 0)
		s.Require().NoError(err)
		s.Equal([]string{"citizen_id", "details", "report_type"}, res.Errors.Fields())
	})
}

type failingProber struct{}

func (failingProber) AnyWhere(context.Context, storage.Predicate) (bool, error) {
	return false, sentinel.ErrUnavailable
}

func (s *EngineSuite) TestProbeFailure() {
	s.Run("uniqueness probe failure surfaces as an error", func() {
		_, err := NewCitizenEngine(failingProber{}).Validate(s.ctx, validCitizen(), 0)
		s.Require().ErrorIs(err, sentinel.ErrUnavailable)
	})

	s.Run("reference probe failure surfaces as an error", func() {
		_, err := NewReportEngine(failingProber{}).Validate(s.ctx, models.Report{
			CitizenID:      1,
			ReportType:     "Noise",
			Details:        "d",
			SubmissionDate: time.Now(),
		}, 0)
		s.Require().ErrorIs(err, sentinel.ErrUnavailable)
	})
}

func (s *EngineSuite) TestValidationError() {
	engine := NewStaffEngine(s.staff)

	s.Run("duplicate key maps to the uniqueness message", func() {
		verr := engine.DuplicateKey(storage.ColumnEmail)
		s.Require().NotNil(verr)
		s.Equal([]string{MsgStaffEmailTaken}, verr.Fields["email"])
		s.Equal(dErrors.CodeValidation, dErrors.CodeOf(verr))
	})

	s.Run("unknown field has no mapping", func() {
		s.Nil(engine.DuplicateKey("phone"))
	})

	s.Run("result error is a validation error", func() {
		st := validStaff()
		st.FullName = ""
		res, err := engine.Validate(s.ctx, st, 0)
		s.Require().NoError(err)
		var verr *ValidationError
		s.Require().True(errors.As(res.Err(), &verr))
		s.Equal(models.KindStaff, verr.Kind)
		s.Contains(verr.Error(), "full_name")
	})
}
