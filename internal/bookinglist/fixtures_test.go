package bookinglist

import (
	"context"
	"fmt"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/models"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) ListBookings(ctx context.Context, routeIDs []string) ([]models.Booking, error) {
	args := m.Called(ctx, routeIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *mockStore) ListRouteLabels(ctx context.Context, companyID string) ([]models.RouteLabel, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RouteLabel), args.Error(1)
}

func (m *mockStore) DeleteBooking(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockStore) CompanyExists(ctx context.Context, companyID string) (bool, error) {
	args := m.Called(ctx, companyID)
	return args.Bool(0), args.Error(1)
}

var baseTime = time.Date(2024, 10, 29, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string {
	return &s
}

// scenarioBookings returns a1 (João Silva, pending) and b2 (Maria, confirmed).
func scenarioBookings() []models.Booking {
	return []models.Booking{
		{
			ID:            "a1",
			RouteID:       "r1",
			Passengers:    models.Passengers{{Name: "João Silva", IDNumber: "123", TicketID: "TKT-A1"}},
			ContactPhone:  strPtr("900111"),
			BookingStatus: models.BookingStatusPending,
			BookingDate:   "2024-10-29",
			TotalPrice:    15000,
			CreatedAt:     baseTime,
		},
		{
			ID:            "b2",
			RouteID:       "r2",
			Passengers:    models.Passengers{{Name: "Maria", IDNumber: "456", TicketID: "TKT-B2"}},
			ContactPhone:  strPtr("900222"),
			ContactEmail:  strPtr("maria@example.ao"),
			BookingStatus: models.BookingStatusConfirmed,
			BookingDate:   "2024-10-28",
			TotalPrice:    120.5,
			CreatedAt:     baseTime.Add(-time.Hour),
		},
	}
}

// numberedBookings returns n bookings, newest first.
func numberedBookings(n int) []models.Booking {
	out := make([]models.Booking, n)
	for i := 0; i < n; i++ {
		status := models.BookingStatusPending
		if i%3 == 0 {
			status = models.BookingStatusConfirmed
		}
		out[i] = models.Booking{
			ID:            fmt.Sprintf("bk-%02d", i),
			RouteID:       "r1",
			Passengers:    models.Passengers{{Name: fmt.Sprintf("Passenger %d", i)}},
			BookingStatus: status,
			TotalPrice:    float64(1000 * (i + 1)),
			CreatedAt:     baseTime.Add(-time.Duration(i) * time.Minute),
		}
	}
	return out
}

func ids(bookings []models.Booking) []string {
	out := make([]string, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.ID)
	}
	return out
}
