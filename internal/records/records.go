package records

import (
	"database/sql"
	"log/slog"

	"municipal/internal/records/handler"
	"municipal/internal/records/models"
	"municipal/internal/records/service"
	"municipal/internal/storage"
)

// Handler wires HTTP endpoints to the record workflows.
type Handler = handler.Handler

// Stores holds one store per record kind.
type Stores struct {
	Citizens        storage.Store[models.Citizen]
	Staff           storage.Store[models.Staff]
	ServiceRequests storage.Store[models.ServiceRequest]
	Reports         storage.Store[models.Report]
}

// MemoryStores returns empty in-process stores.
func MemoryStores() Stores {
	return Stores{
		Citizens:        storage.NewMemory(storage.CitizenTable),
		Staff:           storage.NewMemory(storage.StaffTable),
		ServiceRequests: storage.NewMemory(storage.ServiceRequestTable),
		Reports:         storage.NewMemory(storage.ReportTable),
	}
}

// SQLStores returns stores backed by db. The tables must already exist.
func SQLStores(db *sql.DB, dialect storage.Dialect) Stores {
	return Stores{
		Citizens:        storage.NewSQL(db, dialect, storage.CitizenTable),
		Staff:           storage.NewSQL(db, dialect, storage.StaffTable),
		ServiceRequests: storage.NewSQL(db, dialect, storage.ServiceRequestTable),
		Reports:         storage.NewSQL(db, dialect, storage.ReportTable),
	}
}

// Services holds the workflows of every record kind.
type Services struct {
	Citizens        *service.Citizens
	Staff           *service.Staff
	ServiceRequests *service.ServiceRequests
	Reports         *service.Reports
}

// NewServices builds the workflows over st. Service requests and reports
// check their citizen reference against st.Citizens.
func NewServices(st Stores, opts ...service.Option) Services {
	return Services{
		Citizens:        service.NewCitizens(st.Citizens, opts...),
		Staff:           service.NewStaff(st.Staff, opts...),
		ServiceRequests: service.NewServiceRequests(st.ServiceRequests, st.Citizens, opts...),
		Reports:         service.NewReports(st.Reports, st.Citizens, opts...),
	}
}

// NewHandler constructs the HTTP handler for the record routes.
func NewHandler(s Services, logger *slog.Logger) *Handler {
	return handler.New(s.Citizens, s.Staff, s.ServiceRequests, s.Reports, logger)
}
