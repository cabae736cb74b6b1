package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/bookinglist"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/catalog"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/database"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/models"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/onboarding"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/reports"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/service"
)

// MockBookingService is a mock implementation of BookingService
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) ListBookings(ctx context.Context, q service.BookingListQuery) (*bookinglist.Page, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookinglist.Page), args.Error(1)
}

func (m *MockBookingService) ListCompanyBookings(ctx context.Context, companyID string, q service.BookingListQuery) (*bookinglist.Page, error) {
	args := m.Called(ctx, companyID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookinglist.Page), args.Error(1)
}

func (m *MockBookingService) SearchBookings(ctx context.Context, q database.BookingQuery) (*database.BookingPage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.BookingPage), args.Error(1)
}

func (m *MockBookingService) ExportBookings(ctx context.Context, q service.BookingListQuery) ([]bookinglist.Row, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bookinglist.Row), args.Error(1)
}

func (m *MockBookingService) DeleteBooking(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockReportService is a mock implementation of ReportService
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Revenue(ctx context.Context) (*reports.RevenueSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reports.RevenueSummary), args.Error(1)
}

func (m *MockReportService) CompanyRevenue(ctx context.Context, companyID string) (*reports.RevenueSummary, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reports.RevenueSummary), args.Error(1)
}

func (m *MockReportService) AvailableRoutes(ctx context.Context) ([]reports.RouteOccupancy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reports.RouteOccupancy), args.Error(1)
}

func (m *MockReportService) SeatMap(ctx context.Context, routeID string, totalSeats int) (*reports.SeatMap, error) {
	args := m.Called(ctx, routeID, totalSeats)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reports.SeatMap), args.Error(1)
}

// MockCatalogService is a mock implementation of CatalogService
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListCompanies(ctx context.Context, kind models.TransportKind, page int) (*catalog.Page[models.Company], error) {
	args := m.Called(ctx, kind, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Page[models.Company]), args.Error(1)
}

func (m *MockCatalogService) GetCompany(ctx context.Context, kind models.TransportKind, id string) (*models.Company, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockCatalogService) CreateCompany(ctx context.Context, kind models.TransportKind, in service.CompanyInput) (*models.Company, error) {
	args := m.Called(ctx, kind, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockCatalogService) UpdateCompany(ctx context.Context, kind models.TransportKind, id string, in service.CompanyInput) (*models.Company, error) {
	args := m.Called(ctx, kind, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockCatalogService) DeleteCompany(ctx context.Context, kind models.TransportKind, id string) error {
	args := m.Called(ctx, kind, id)
	return args.Error(0)
}

func (m *MockCatalogService) ListBuses(ctx context.Context, page int) (*catalog.Page[models.Bus], error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Page[models.Bus]), args.Error(1)
}

func (m *MockCatalogService) CreateBus(ctx context.Context, b *models.Bus) (*models.Bus, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bus), args.Error(1)
}

func (m *MockCatalogService) UpdateBus(ctx context.Context, id string, b *models.Bus) (*models.Bus, error) {
	args := m.Called(ctx, id, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bus), args.Error(1)
}

func (m *MockCatalogService) DeleteBus(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCatalogService) ListRoutes(ctx context.Context, kind models.TransportKind, companyID string, page int) (*catalog.Page[models.Route], error) {
	args := m.Called(ctx, kind, companyID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Page[models.Route]), args.Error(1)
}

func (m *MockCatalogService) CreateRoute(ctx context.Context, kind models.TransportKind, companyID string, rt *models.Route) (*models.Route, error) {
	args := m.Called(ctx, kind, companyID, rt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Route), args.Error(1)
}

func (m *MockCatalogService) UpdateRoute(ctx context.Context, kind models.TransportKind, id string, rt *models.Route) (*models.Route, error) {
	args := m.Called(ctx, kind, id, rt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Route), args.Error(1)
}

func (m *MockCatalogService) DeleteRoute(ctx context.Context, kind models.TransportKind, id string) error {
	args := m.Called(ctx, kind, id)
	return args.Error(0)
}

func (m *MockCatalogService) ListEmployees(ctx context.Context, page int) (*catalog.Page[models.Employee], error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Page[models.Employee]), args.Error(1)
}

func (m *MockCatalogService) CreateEmployee(ctx context.Context, in service.EmployeeInput) (*onboarding.Result, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*onboarding.Result), args.Error(1)
}

func (m *MockCatalogService) UpdateEmployee(ctx context.Context, id string, e *models.Employee) (*models.Employee, error) {
	args := m.Called(ctx, id, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Employee), args.Error(1)
}

func (m *MockCatalogService) DeleteEmployee(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCatalogService) DownloadFile(ctx context.Context, bucket, name string, w io.Writer) error {
	args := m.Called(ctx, bucket, name, w)
	return args.Error(0)
}
