package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/bookinglist"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/catalog"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/database"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/models"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/onboarding"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/realtime"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/storage"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/logger"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/metrics"
)

// mockRecordStore backs the booking views and the seat reports
type mockRecordStore struct {
	mock.Mock
}

func (m *mockRecordStore) ListBookings(ctx context.Context, routeIDs []string) ([]models.Booking, error) {
	args := m.Called(ctx, routeIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *mockRecordStore) ListRouteLabels(ctx context.Context, companyID string) ([]models.RouteLabel, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RouteLabel), args.Error(1)
}

func (m *mockRecordStore) DeleteBooking(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRecordStore) CompanyExists(ctx context.Context, companyID string) (bool, error) {
	args := m.Called(ctx, companyID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRecordStore) SearchBookings(ctx context.Context, q database.BookingQuery) (*database.BookingPage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*database.BookingPage), args.Error(1)
}

func (m *mockRecordStore) ListAvailableRoutes(ctx context.Context) ([]models.AvailableRoute, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AvailableRoute), args.Error(1)
}

func (m *mockRecordStore) ListConfirmedSeatNumbers(ctx context.Context, routeID string) ([]int, error) {
	args := m.Called(ctx, routeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *mockRecordStore) RouteCapacity(ctx context.Context, routeID string) (int, error) {
	args := m.Called(ctx, routeID)
	return args.Int(0), args.Error(1)
}

// mockCatalogStore only implements the calls the tests make; anything
// else panics on the nil embedded interface.
type mockCatalogStore struct {
	mock.Mock
	CatalogStore
}

func (m *mockCatalogStore) ListCompanies(ctx context.Context, kind models.TransportKind, page, size int) (*catalog.Page[models.Company], error) {
	args := m.Called(ctx, kind, page, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Page[models.Company]), args.Error(1)
}

func (m *mockCatalogStore) CreateCompany(ctx context.Context, kind models.TransportKind, c *models.Company) error {
	args := m.Called(ctx, kind, c)
	return args.Error(0)
}

func (m *mockCatalogStore) UpdateCompany(ctx context.Context, kind models.TransportKind, id uuid.UUID, c *models.Company) error {
	args := m.Called(ctx, kind, id, c)
	return args.Error(0)
}

func (m *mockCatalogStore) CreateBus(ctx context.Context, b *models.Bus) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *mockCatalogStore) CreateRoute(ctx context.Context, kind models.TransportKind, rt *models.Route) error {
	args := m.Called(ctx, kind, rt)
	return args.Error(0)
}

func (m *mockCatalogStore) ListRoutes(ctx context.Context, kind models.TransportKind, companyID uuid.UUID, page, size int) (*catalog.Page[models.Route], error) {
	args := m.Called(ctx, kind, companyID, page, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Page[models.Route]), args.Error(1)
}

func (m *mockCatalogStore) DeleteEmployee(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// memFiles is an in-memory FileStore
type memFiles struct {
	files map[string][]byte
	err   error
}

func newMemFiles() *memFiles {
	return &memFiles{files: make(map[string][]byte)}
}

func (f *memFiles) Upload(_ context.Context, bucket, name string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.files[bucket+"/"+name] = data
	return name, nil
}

func (f *memFiles) PublicURL(bucket, name string) string {
	return storage.PublicURL("http://files.test", bucket, name)
}

func (f *memFiles) Download(_ context.Context, bucket, name string, w io.Writer) error {
	data, ok := f.files[bucket+"/"+name]
	if !ok {
		return storage.ErrNotFound
	}
	_, err := io.Copy(w, bytes.NewReader(data))
	return err
}

// stubOnboarder returns a fixed result
type stubOnboarder struct {
	result *onboarding.Result
	err    error
	calls  []onboarding.Request
}

func (o *stubOnboarder) Onboard(_ context.Context, req onboarding.Request) (*onboarding.Result, error) {
	o.calls = append(o.calls, req)
	return o.result, o.err
}

var testNow = time.Date(2024, 10, 29, 9, 30, 0, 0, time.UTC)

const (
	testCompanyA = "0b6f3c1e-7d5a-4c1f-9a51-3f2a8c4d1e01"
	testCompanyB = "0b6f3c1e-7d5a-4c1f-9a51-3f2a8c4d1e02"
)

var testRoutes = []models.RouteLabel{
	{ID: "r1", CompanyID: testCompanyA, Origin: "Luanda", Destination: "Benguela"},
	{ID: "r2", CompanyID: testCompanyB, Origin: "Luanda", Destination: "Huambo"},
}

func strPtr(s string) *string {
	return &s
}

func testBookings() []models.Booking {
	return []models.Booking{
		{
			ID:            "a1",
			RouteID:       "r1",
			Passengers:    models.Passengers{{Name: "João Silva", IDNumber: "123", TicketID: "TKT-A1"}},
			ContactPhone:  strPtr("900111"),
			BookingStatus: models.BookingStatusPending,
			BookingDate:   "2024-10-29",
			TotalPrice:    15000,
			CreatedAt:     testNow,
		},
		{
			ID:            "b2",
			RouteID:       "r2",
			Passengers:    models.Passengers{{Name: "Maria", IDNumber: "456", TicketID: "TKT-B2"}},
			ContactEmail:  strPtr("maria@example.ao"),
			BookingStatus: models.BookingStatusConfirmed,
			BookingDate:   "2024-10-28",
			TotalPrice:    8000,
			CreatedAt:     testNow.Add(-time.Hour),
		},
	}
}

// newTestRegistry wires a registry over store; the returned func closes
// it and its broker.
func newTestRegistry(store *mockRecordStore) (*bookinglist.Registry, func()) {
	broker := realtime.NewBroker(logger.NewNop(), 0)
	reg := bookinglist.NewRegistry(store, broker, logger.NewNop(), metrics.NewNop(), 0, 0)
	return reg, func() {
		reg.Close()
		broker.Close()
	}
}

func expectGlobalLoad(store *mockRecordStore) {
	store.On("ListRouteLabels", mock.Anything, "").Return(testRoutes, nil)
	store.On("ListBookings", mock.Anything, []string(nil)).Return(testBookings(), nil)
}

func numberedCompanies(n int) []models.Company {
	out := make([]models.Company, n)
	for i := range out {
		out[i] = models.Company{ID: uuid.New(), Name: fmt.Sprintf("Company %d", i)}
	}
	return out
}
