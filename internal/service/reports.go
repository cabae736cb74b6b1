package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/bookinglist"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/models"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/reports"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/logger"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/metrics"
)

// SeatStore reads route occupancy from the database
type SeatStore interface {
	ListAvailableRoutes(ctx context.Context) ([]models.AvailableRoute, error)
	ListConfirmedSeatNumbers(ctx context.Context, routeID string) ([]int, error)
	RouteCapacity(ctx context.Context, routeID string) (int, error)
}

// ReportService defines the dashboard reports
type ReportService interface {
	Revenue(ctx context.Context) (*reports.RevenueSummary, error)
	CompanyRevenue(ctx context.Context, companyID string) (*reports.RevenueSummary, error)
	AvailableRoutes(ctx context.Context) ([]reports.RouteOccupancy, error)
	SeatMap(ctx context.Context, routeID string, totalSeats int) (*reports.SeatMap, error)
}

// reportServiceImpl implements ReportService
type reportServiceImpl struct {
	views        *bookinglist.Registry
	seats        SeatStore
	defaultSeats int
	now          func() time.Time
	log          logger.Logger
	metrics      *metrics.Metrics
}

// NewReportService creates a new ReportService. Seat maps use the
// route's own capacity, or defaultSeats when the route has none.
func NewReportService(views *bookinglist.Registry, seats SeatStore, defaultSeats int, log logger.Logger, m *metrics.Metrics) ReportService {
	return &reportServiceImpl{
		views:        views,
		seats:        seats,
		defaultSeats: defaultSeats,
		now:          time.Now,
		log:          log,
		metrics:      m,
	}
}

func (s *reportServiceImpl) Revenue(ctx context.Context) (*reports.RevenueSummary, error) {
	v, err := s.views.Global(ctx)
	if err != nil {
		return nil, err
	}
	summary := reports.Revenue(v.Bookings(), v.Routes(), s.now())
	return &summary, nil
}

// CompanyRevenue only counts bookings on the company's routes.
func (s *reportServiceImpl) CompanyRevenue(ctx context.Context, companyID string) (*reports.RevenueSummary, error) {
	v, err := companyView(ctx, s.views, companyID, s.log, s.metrics)
	if err != nil {
		return nil, err
	}
	summary := reports.Revenue(v.Bookings(), v.Routes(), s.now())
	return &summary, nil
}

func (s *reportServiceImpl) AvailableRoutes(ctx context.Context) ([]reports.RouteOccupancy, error) {
	routes, err := s.seats.ListAvailableRoutes(ctx)
	if err != nil {
		return nil, storeFailure(s.log, s.metrics, KindFetch, "list_available_routes", "available_routes", err)
	}
	return reports.WithOccupancy(routes), nil
}

// SeatMap lays out a route's seats. A positive totalSeats overrides the
// capacity stored on the route.
func (s *reportServiceImpl) SeatMap(ctx context.Context, routeID string, totalSeats int) (*reports.SeatMap, error) {
	routeID = strings.TrimSpace(routeID)
	if routeID == "" {
		return nil, invalid("route_id", "is required")
	}
	if totalSeats < 0 {
		return nil, invalid("total_seats", "must not be negative")
	}
	if totalSeats > reports.MaxSeats {
		return nil, invalid("total_seats", fmt.Sprintf("must not exceed %d", reports.MaxSeats))
	}
	if totalSeats == 0 {
		capacity, err := s.seats.RouteCapacity(ctx, routeID)
		if err != nil {
			return nil, storeFailure(s.log, s.metrics, KindFetch, "route_capacity", "bus_routes", err)
		}
		totalSeats = capacity
		if totalSeats < 1 {
			totalSeats = s.defaultSeats
		}
	}

	occupied, err := s.seats.ListConfirmedSeatNumbers(ctx, routeID)
	if err != nil {
		return nil, storeFailure(s.log, s.metrics, KindFetch, "list_confirmed_seats", "passenger_bookings", err)
	}
	m := reports.BuildSeatMap(routeID, totalSeats, occupied)
	return &m, nil
}
