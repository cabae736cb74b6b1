package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/bookinglist"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/database"
	"github.com/Wolf-Quiteque/100destinosBackend/internal/models"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/logger"
	"github.com/Wolf-Quiteque/100destinosBackend/pkg/metrics"
)

// BookingListQuery is what the list screen sends
type BookingListQuery struct {
	Search string
	Status models.BookingStatus
	Page   int
}

func (q BookingListQuery) state() bookinglist.ListState {
	s := bookinglist.NewListState()
	s.SetSearchTerm(q.Search)
	s.SetStatusFilter(q.Status)
	if q.Page > 1 {
		s.CurrentPage = q.Page
	}
	return s
}

// BookingSearcher runs booking searches in the database
type BookingSearcher interface {
	SearchBookings(ctx context.Context, q database.BookingQuery) (*database.BookingPage, error)
}

// BookingService defines the booking list operations
type BookingService interface {
	ListBookings(ctx context.Context, q BookingListQuery) (*bookinglist.Page, error)
	ListCompanyBookings(ctx context.Context, companyID string, q BookingListQuery) (*bookinglist.Page, error)
	SearchBookings(ctx context.Context, q database.BookingQuery) (*database.BookingPage, error)
	ExportBookings(ctx context.Context, q BookingListQuery) ([]bookinglist.Row, error)
	DeleteBooking(ctx context.Context, id string) error
}

// bookingServiceImpl implements BookingService on the shared views
type bookingServiceImpl struct {
	views    *bookinglist.Registry
	searcher BookingSearcher
	log      logger.Logger
	metrics  *metrics.Metrics
}

// NewBookingService creates a new BookingService
func NewBookingService(views *bookinglist.Registry, searcher BookingSearcher, log logger.Logger, m *metrics.Metrics) BookingService {
	return &bookingServiceImpl{views: views, searcher: searcher, log: log, metrics: m}
}

func (s *bookingServiceImpl) ListBookings(ctx context.Context, q BookingListQuery) (*bookinglist.Page, error) {
	v, err := s.views.Global(ctx)
	if err != nil {
		return nil, err
	}
	page := v.Render(q.state())
	return &page, nil
}

func (s *bookingServiceImpl) ListCompanyBookings(ctx context.Context, companyID string, q BookingListQuery) (*bookinglist.Page, error) {
	v, err := companyView(ctx, s.views, companyID, s.log, s.metrics)
	if err != nil {
		return nil, err
	}
	page := v.Render(q.state())
	return &page, nil
}

func (s *bookingServiceImpl) SearchBookings(ctx context.Context, q database.BookingQuery) (*database.BookingPage, error) {
	page, err := s.searcher.SearchBookings(ctx, q)
	if err != nil {
		return nil, s.fail(KindFetch, "search_bookings", "bookings", err)
	}
	return page, nil
}

// ExportBookings returns every row matching q, ignoring the page.
func (s *bookingServiceImpl) ExportBookings(ctx context.Context, q BookingListQuery) ([]bookinglist.Row, error) {
	v, err := s.views.Global(ctx)
	if err != nil {
		return nil, err
	}
	routes := v.Routes()
	filtered := bookinglist.Filter(v.Bookings(), q.Search, q.Status)

	rows := make([]bookinglist.Row, 0, len(filtered))
	for _, b := range filtered {
		rows = append(rows, bookinglist.NewRow(b, routes))
	}
	return rows, nil
}

func (s *bookingServiceImpl) DeleteBooking(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return invalid("id", "is required")
	}
	v, err := s.views.Global(ctx)
	if err != nil {
		return err
	}
	if err := v.Delete(ctx, id); err != nil {
		return &StoreError{Kind: KindMutation, Op: "delete", Table: "bookings", Err: err}
	}
	return nil
}

// companyView opens the view of an existing company. Ids are
// canonicalised so one company never has two views.
func companyView(ctx context.Context, views *bookinglist.Registry, companyID string, log logger.Logger, m *metrics.Metrics) (*bookinglist.View, error) {
	if strings.TrimSpace(companyID) == "" {
		return nil, invalid("company_id", "is required")
	}
	id, err := parseID("company_id", companyID)
	if err != nil {
		return nil, err
	}

	v, err := views.Company(ctx, id.String())
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, bookinglist.ErrUnknownCompany):
		return nil, fmt.Errorf("company %s: %w", id, ErrNotFound)
	case errors.Is(err, bookinglist.ErrClosed), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	default:
		return nil, storeFailure(log, m, KindFetch, "company_exists", "bus_companies", err)
	}
}

// fail logs and counts a store error unless it is a plain miss.
func (s *bookingServiceImpl) fail(kind ErrorKind, op, table string, err error) error {
	return storeFailure(s.log, s.metrics, kind, op, table, err)
}

func storeFailure(log logger.Logger, m *metrics.Metrics, kind ErrorKind, op, table string, err error) error {
	if !IsNotFound(err) {
		log.Error("store call failed", "kind", string(kind), "operation", op, "table", table, "error", err)
		if m != nil {
			m.StoreErrors.WithLabelValues(op).Inc()
		}
	}
	return &StoreError{Kind: kind, Op: op, Table: table, Err: err}
}
