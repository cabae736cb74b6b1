package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// ParseBookingStatus accepts "" (no filter) or one of the known statuses.
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch status := BookingStatus(strings.TrimSpace(s)); status {
	case "", BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("unknown booking status %q", s)
	}
}

// Label is the operator-facing name of the status.
func (s BookingStatus) Label() string {
	switch s {
	case BookingStatusConfirmed:
		return "confirmado"
	case BookingStatusCancelled:
		return "cancelado"
	default:
		return "pendente"
	}
}

// Passenger is one traveller on a booking
type Passenger struct {
	Name     string `json:"name"`
	IDNumber string `json:"idNumber"`
	TicketID string `json:"ticketId"`
}

// Passengers is stored upstream as JSON text. It decodes from either a
// JSON array or a JSON string holding the serialized array.
type Passengers []Passenger

// ParsePassengers normalizes raw column data into the structured form.
// Empty input and null decode to an empty list.
func ParsePassengers(raw []byte) (Passengers, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Passengers{}, nil
	}

	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return nil, fmt.Errorf("failed to decode passengers text: %w", err)
		}
		return ParsePassengers([]byte(text))
	}

	var list []Passenger
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, fmt.Errorf("failed to decode passengers: %w", err)
	}
	if list == nil {
		list = []Passenger{}
	}
	return Passengers(list), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Passengers) UnmarshalJSON(data []byte) error {
	list, err := ParsePassengers(data)
	if err != nil {
		return err
	}
	*p = list
	return nil
}

// Names joins passenger names for display.
func (p Passengers) Names() string {
	names := make([]string, 0, len(p))
	for _, passenger := range p {
		names = append(names, passenger.Name)
	}
	return strings.Join(names, ", ")
}

// Booking is a reservation for one or more passengers on one route
type Booking struct {
	ID            string        `json:"id"`
	RouteID       string        `json:"route_id"`
	Passengers    Passengers    `json:"passengers"`
	ContactPhone  *string       `json:"contact_phone,omitempty"`
	ContactEmail  *string       `json:"contact_email,omitempty"`
	BookingStatus BookingStatus `json:"booking_status"`
	BookingDate   string        `json:"booking_date"`
	TotalPrice    float64       `json:"total_price"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Phone returns the contact phone or "".
func (b *Booking) Phone() string {
	if b.ContactPhone == nil {
		return ""
	}
	return *b.ContactPhone
}

// Email returns the contact email or "".
func (b *Booking) Email() string {
	if b.ContactEmail == nil {
		return ""
	}
	return *b.ContactEmail
}

// RouteLabel is the lookup projection of a route used by booking views
type RouteLabel struct {
	ID          string `json:"id"`
	CompanyID   string `json:"company_id,omitempty"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// Name renders "origin - destination".
func (r RouteLabel) Name() string {
	return r.Origin + " - " + r.Destination
}

// UnknownRoute is shown for bookings whose route is not in the lookup.
var UnknownRoute = RouteLabel{Origin: "N/A", Destination: "N/A"}
