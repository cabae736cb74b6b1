// Package bookinglist keeps an in-memory snapshot of bookings and derives
// the operator's list screen from it: search, status filter, pagination
// and summary counts.
package bookinglist

import (
	"strings"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/models"
)

const (
	GlobalPageSize  = 5
	CompanyPageSize = 10
)

// Filter returns the bookings matching searchTerm and status, in input
// order. The term matches a passenger (name substring, exact ID number,
// exact ticket id) or the booking itself (phone, email or id substring);
// either side is enough. The status must always match.
func Filter(bookings []models.Booking, searchTerm string, status models.BookingStatus) []models.Booking {
	q := strings.ToLower(strings.TrimSpace(searchTerm))

	out := make([]models.Booking, 0, len(bookings))
	for i := range bookings {
		if matches(&bookings[i], q, status) {
			out = append(out, bookings[i])
		}
	}
	return out
}

func matches(b *models.Booking, q string, status models.BookingStatus) bool {
	if status != "" && b.BookingStatus != status {
		return false
	}
	return bookingMatches(b, q) || passengerMatches(b.Passengers, q)
}

func passengerMatches(passengers models.Passengers, q string) bool {
	for _, p := range passengers {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			p.IDNumber == q ||
			strings.ToLower(p.TicketID) == q {
			return true
		}
	}
	return false
}

func bookingMatches(b *models.Booking, q string) bool {
	return q == "" ||
		strings.Contains(strings.ToLower(b.Phone()), q) ||
		strings.Contains(strings.ToLower(b.Email()), q) ||
		strings.Contains(strings.ToLower(b.ID), q)
}

// Paginate returns page (1-based) of items. Pages past the end are empty.
func Paginate(items []models.Booking, page, size int) []models.Booking {
	if page < 1 {
		page = 1
	}
	if size < 1 || page-1 >= TotalPages(len(items), size) || len(items) == 0 {
		return []models.Booking{}
	}

	start := (page - 1) * size
	end := len(items)
	if size < end-start {
		end = start + size
	}
	return items[start:end]
}

// TotalPages is never less than one, so an empty list still has page 1.
func TotalPages(count, size int) int {
	if size < 1 || count <= 0 {
		return 1
	}
	pages := count / size
	if count%size != 0 {
		pages++
	}
	return pages
}

// Stats are counts over the unfiltered collection
type Stats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
}

// ComputeStats counts bookings by status
func ComputeStats(bookings []models.Booking) Stats {
	s := Stats{Total: len(bookings)}
	for i := range bookings {
		switch bookings[i].BookingStatus {
		case models.BookingStatusPending:
			s.Pending++
		case models.BookingStatusConfirmed:
			s.Confirmed++
		}
	}
	return s
}
