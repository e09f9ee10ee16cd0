package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"municipal/internal/records/models"
	"municipal/internal/records/service"
	"municipal/internal/storage"
	"municipal/internal/storage/mocks"
	"municipal/pkg/platform/sentinel"
	"municipal/pkg/testutil"
)

type RecordsHandlerSuite struct {
	suite.Suite
	router   chi.Router
	citizens *storage.Memory[models.Citizen]
	requests *storage.Memory[models.ServiceRequest]
}

func TestRecordsHandlerSuite(t *testing.T) {
	suite.Run(t, new(RecordsHandlerSuite))
}

func (s *RecordsHandlerSuite) SetupTest() {
	logger := testutil.DiscardLogger()
	s.citizens = storage.NewMemory(storage.CitizenTable)
	s.requests = storage.NewMemory(storage.ServiceRequestTable)
	staff := storage.NewMemory(storage.StaffTable)
	reports := storage.NewMemory(storage.ReportTable)

	opts := []service.Option{service.WithLogger(logger)}
	h := New(
		service.NewCitizens(s.citizens, opts...),
		service.NewStaff(staff, opts...),
		service.NewServiceRequests(s.requests, s.citizens, opts...),
		service.NewReports(reports, s.citizens, opts...),
		logger,
	)
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *RecordsHandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	return testutil.Send(s.T(), s.router, method, path, body)
}

func (s *RecordsHandlerSuite) citizenBody(email string) map[string]any {
	return map[string]any{
		"full_name":    "Ada Lovelace",
		"address":      "12 Main St",
		"phone_number": "5551234567",
		"email":        email,
	}
}

func (s *RecordsHandlerSuite) seedCitizen(email string) models.Citizen {
	c, err := s.citizens.Insert(context.Background(), models.Citizen{
		FullName: "Seed", Address: "1 Plaza", PhoneNumber: "5550000000", Email: email,
		RegistrationDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)
	return c
}

func (s *RecordsHandlerSuite) TestCreateCitizen() {
	s.Run("created", func() {
		w := s.do(http.MethodPost, "/citizens", s.citizenBody("ada@example.com"))
		s.Equal(http.StatusCreated, w.Code)

		var got models.Citizen
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
		s.Positive(got.CitizenID)
		s.Equal(int64(1), got.Version)
	})

	s.Run("duplicate email re-presents the input", func() {
		body := s.citizenBody("ada@example.com")
		body["full_name"] = "Second"
		w := s.do(http.MethodPost, "/citizens", body)
		s.Equal(http.StatusUnprocessableEntity, w.Code)

		var resp struct {
			Record models.Citizen       `json:"record"`
			Errors map[string][]string `json:"errors"`
		}
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		s.Equal("Second", resp.Record.FullName)
		s.Contains(resp.Errors, "email")

		all, err := s.citizens.GetAll(context.Background())
		s.Require().NoError(err)
		s.Len(all, 1)
	})

	s.Run("malformed body", func() {
		req := httptest.NewRequest(http.MethodPost, "/citizens", strings.NewReader(`{"full_name":`))
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *RecordsHandlerSuite) TestGetAndList() {
	c := s.seedCitizen("seed@example.com")

	w := s.do(http.MethodGet, "/citizens", nil)
	s.Equal(http.StatusOK, w.Code)
	var all []models.Citizen
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &all))
	s.Len(all, 1)

	s.Equal(http.StatusOK, s.do(http.MethodGet, "/citizens/1", nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/citizens/999", nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/citizens/abc", nil).Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/citizens/1/delete", nil).Code)
	s.Equal(c.CitizenID, all[0].CitizenID)

	w = s.do(http.MethodGet, "/reports", nil)
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`[]`, w.Body.String())
}

func (s *RecordsHandlerSuite) TestEditCitizen() {
	c := s.seedCitizen("seed@example.com")

	s.Run("updated", func() {
		c.Address = "2 New Rd"
		w := s.do(http.MethodPut, "/citizens/1", c)
		s.Equal(http.StatusOK, w.Code)
		var got models.Citizen
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &got))
		s.Equal(int64(2), got.Version)
	})

	s.Run("path and payload mismatch", func() {
		s.Equal(http.StatusNotFound, s.do(http.MethodPut, "/citizens/2", c).Code)
	})

	s.Run("stale version", func() {
		s.Equal(http.StatusConflict, s.do(http.MethodPut, "/citizens/1", c).Code)
	})

	s.Run("invalid phone", func() {
		c.Version = 2
		c.PhoneNumber = "12"
		s.Equal(http.StatusUnprocessableEntity, s.do(http.MethodPut, "/citizens/1", c).Code)
	})

	s.Run("service requests cannot be edited", func() {
		s.Equal(http.StatusMethodNotAllowed, s.do(http.MethodPut, "/service-requests/1", map[string]any{}).Code)
	})
}

func (s *RecordsHandlerSuite) TestDeleteAlwaysSucceeds() {
	s.seedCitizen("")
	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/citizens/1", nil).Code)
	s.Equal(http.StatusNoContent, s.do(http.MethodDelete, "/citizens/1", nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/citizens/1/delete", nil).Code)
}

func (s *RecordsHandlerSuite) TestServiceRequests() {
	c := s.seedCitizen("")

	s.Run("unknown citizen", func() {
		w := s.do(http.MethodPost, "/service-requests", map[string]any{"citizen_id": 42, "service_type": "Pothole"})
		s.Equal(http.StatusUnprocessableEntity, w.Code)
		s.Contains(w.Body.String(), "citizen_id")
	})

	w := s.do(http.MethodPost, "/service-requests", map[string]any{"citizen_id": c.CitizenID, "service_type": "Pothole"})
	s.Require().Equal(http.StatusCreated, w.Code)
	var req models.ServiceRequest
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &req))
	s.Equal(models.ServiceRequestInitialStatus, req.Status)

	s.Run("status page", func() {
		s.Equal(http.StatusOK, s.do(http.MethodGet, "/service-requests/1/status", nil).Code)
	})

	s.Run("status update redirects to the list", func() {
		w := s.do(http.MethodPost, "/service-requests/1/status", statusRequest{Status: "Completed"})
		s.Equal(http.StatusSeeOther, w.Code)
		s.Equal("/service-requests", w.Header().Get("Location"))

		stored, err := s.requests.GetByID(context.Background(), req.RequestID)
		s.Require().NoError(err)
		s.Equal("Completed", stored.Status)
		s.Equal("Pothole", stored.ServiceType)
	})

	s.Run("invalid status still redirects and changes nothing", func() {
		w := s.do(http.MethodPost, "/service-requests/1/status", statusRequest{Status: strings.Repeat("x", 31)})
		s.Equal(http.StatusSeeOther, w.Code)

		stored, err := s.requests.GetByID(context.Background(), req.RequestID)
		s.Require().NoError(err)
		s.Equal("Completed", stored.Status)
	})

	s.Run("missing record", func() {
		s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/service-requests/77/status", statusRequest{Status: "x"}).Code)
		s.Equal(http.StatusNotFound, s.do(http.MethodPost, "/service-requests/0/status", statusRequest{Status: "x"}).Code)
	})
}

func TestUnavailableStoreIs503(t *testing.T) {
	ctrl := gomock.NewController(t)
	staff := mocks.NewMockStore[models.Staff](ctrl)
	staff.EXPECT().GetAll(gomock.Any()).Return(nil, sentinel.ErrUnavailable)

	logger := testutil.DiscardLogger()
	citizens := storage.NewMemory(storage.CitizenTable)
	h := New(
		service.NewCitizens(citizens),
		service.NewStaff(staff, service.WithLogger(logger)),
		service.NewServiceRequests(storage.NewMemory(storage.ServiceRequestTable), citizens),
		service.NewReports(storage.NewMemory(storage.ReportTable), citizens),
		logger,
	)
	r := chi.NewRouter()
	h.Register(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/staff", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
