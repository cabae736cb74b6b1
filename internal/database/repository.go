package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/models"
)

// Repository handles booking and route reads on the record store
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Ping checks the connection to the database
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

const bookingColumns = `
	id::text, route_id::text, COALESCE(passengers::text, ''), contact_phone, contact_email,
	booking_status, to_char(booking_date, 'YYYY-MM-DD'), total_price::float8, created_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (models.Booking, error) {
	var (
		b   models.Booking
		raw string
	)
	err := row.Scan(
		&b.ID, &b.RouteID, &raw, &b.ContactPhone, &b.ContactEmail,
		&b.BookingStatus, &b.BookingDate, &b.TotalPrice, &b.CreatedAt,
	)
	if err != nil {
		return b, err
	}

	b.Passengers, err = models.ParsePassengers([]byte(raw))
	if err != nil {
		// keep the booking visible even when its passenger blob is broken
		b.Passengers = models.Passengers{}
	}
	return b, nil
}

func collectBookings(rows pgx.Rows) ([]models.Booking, error) {
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return bookings, nil
}

// --- Booking Operations ---

// ListBookings returns bookings newest first. A nil routeIDs returns every
// booking; an empty non-nil slice returns none.
func (r *Repository) ListBookings(ctx context.Context, routeIDs []string) ([]models.Booking, error) {
	if routeIDs != nil && len(routeIDs) == 0 {
		return []models.Booking{}, nil
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	args := []any{}
	if routeIDs != nil {
		query += ` WHERE route_id::text = ANY($1)`
		args = append(args, routeIDs)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	return collectBookings(rows)
}

// GetBooking returns a booking by ID
func (r *Repository) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id::text = $1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

// DeleteBooking removes a booking. Seat rows go with it via cascade.
func (r *Repository) DeleteBooking(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id::text = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// BookingQuery is a server-side search over bookings. Term matching
// follows the in-memory list view: a passenger name containing the term,
// an exact ID number, an exact ticket id, or the term inside phone, email
// or booking id. Status narrows the result.
type BookingQuery struct {
	Term     string
	Status   models.BookingStatus
	RouteIDs []string
	Page     int
	PageSize int
}

// BookingPage is one page of a BookingQuery result
type BookingPage struct {
	Bookings []models.Booking `json:"bookings"`
	Total    int              `json:"total"`
}

const searchPredicate = `
	WHERE (
		$1 = ''
		OR position($1 IN lower(COALESCE(contact_phone, ''))) > 0
		OR position($1 IN lower(COALESCE(contact_email, ''))) > 0
		OR position($1 IN lower(id::text)) > 0
		OR EXISTS (
			SELECT 1
			FROM jsonb_array_elements(
				CASE jsonb_typeof(passengers)
					WHEN 'array' THEN passengers
					WHEN 'string' THEN (passengers #>> '{}')::jsonb
					ELSE '[]'::jsonb
				END
			) AS p
			WHERE position($1 IN lower(COALESCE(p ->> 'name', ''))) > 0
			   OR p ->> 'idNumber' = $1
			   OR lower(COALESCE(p ->> 'ticketId', '')) = $1
		)
	)
	AND ($2 = '' OR booking_status = $2)
	AND ($3::text[] IS NULL OR route_id::text = ANY($3::text[]))
`

// MaxSearchPageSize caps BookingQuery.PageSize
const MaxSearchPageSize = 100

// pageOffset returns the row offset of page, or false when the page lies
// past the last of total rows. page and size must be at least one.
func pageOffset(page, size, total int) (int, bool) {
	pages := total / size
	if total%size != 0 {
		pages++
	}
	if page-1 >= pages {
		return 0, false
	}
	return (page - 1) * size, true
}

// SearchBookings runs q in the database and returns the requested page
// together with the total match count.
func (r *Repository) SearchBookings(ctx context.Context, q BookingQuery) (*BookingPage, error) {
	if q.RouteIDs != nil && len(q.RouteIDs) == 0 {
		return &BookingPage{Bookings: []models.Booking{}}, nil
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}
	if q.PageSize > MaxSearchPageSize {
		q.PageSize = MaxSearchPageSize
	}

	term := strings.ToLower(strings.TrimSpace(q.Term))
	status := string(q.Status)

	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`+searchPredicate, term, status, q.RouteIDs).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}

	offset, ok := pageOffset(q.Page, q.PageSize, total)
	if !ok {
		return &BookingPage{Bookings: []models.Booking{}, Total: total}, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings`+searchPredicate+` ORDER BY created_at DESC LIMIT $4 OFFSET $5`,
		term, status, q.RouteIDs, q.PageSize, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search bookings: %w", err)
	}
	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, err
	}

	return &BookingPage{Bookings: bookings, Total: total}, nil
}

// --- Route Operations ---

// CompanyExists reports whether a bus or plane company has id
func (r *Repository) CompanyExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM bus_companies WHERE id::text = $1)
		    OR EXISTS (SELECT 1 FROM plane_companies WHERE id::text = $1)
	`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to look up company: %w", err)
	}
	return exists, nil
}

// RouteCapacity returns a bus route's total seat count
func (r *Repository) RouteCapacity(ctx context.Context, routeID string) (int, error) {
	var seats int
	err := r.pool.QueryRow(ctx, `SELECT total_seats FROM bus_routes WHERE id::text = $1`, routeID).Scan(&seats)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get route capacity: %w", err)
	}
	return seats, nil
}

// ListRouteLabels returns the route lookup used to label bookings. An
// empty companyID returns every route.
func (r *Repository) ListRouteLabels(ctx context.Context, companyID string) ([]models.RouteLabel, error) {
	query := `SELECT id::text, company_id::text, origin, destination FROM bus_routes`
	args := []any{}
	if companyID != "" {
		query += ` WHERE company_id::text = $1`
		args = append(args, companyID)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	defer rows.Close()

	routes := []models.RouteLabel{}
	for rows.Next() {
		var rl models.RouteLabel
		if err := rows.Scan(&rl.ID, &rl.CompanyID, &rl.Origin, &rl.Destination); err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}
		routes = append(routes, rl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate routes: %w", err)
	}
	return routes, nil
}

// ListAvailableRoutes reads the available_routes view
func (r *Repository) ListAvailableRoutes(ctx context.Context) ([]models.AvailableRoute, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, company_name, origin, destination, departure_time, arrival_time,
		       total_seats, available_seats
		FROM available_routes
		ORDER BY departure_time ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query available routes: %w", err)
	}
	defer rows.Close()

	routes := []models.AvailableRoute{}
	for rows.Next() {
		var ar models.AvailableRoute
		err := rows.Scan(
			&ar.ID, &ar.CompanyName, &ar.Origin, &ar.Destination,
			&ar.DepartureTime, &ar.ArrivalTime, &ar.TotalSeats, &ar.AvailableSeats,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan available route: %w", err)
		}
		routes = append(routes, ar)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate available routes: %w", err)
	}
	return routes, nil
}

// --- Seat Operations ---

// ListConfirmedSeatNumbers returns the seats taken on a route
func (r *Repository) ListConfirmedSeatNumbers(ctx context.Context, routeID string) ([]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT seat_number
		FROM passenger_bookings
		WHERE route_id::text = $1 AND status = 'confirmed'
		ORDER BY seat_number
	`, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query seats: %w", err)
	}

	seats, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("failed to scan seats: %w", err)
	}
	return seats, nil
}
