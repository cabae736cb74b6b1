package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TransportKind separates bus and plane operators
type TransportKind string

const (
	TransportBus   TransportKind = "bus"
	TransportPlane TransportKind = "plane"
)

// ParseTransportKind defaults to bus when s is empty.
func ParseTransportKind(s string) (TransportKind, error) {
	switch kind := TransportKind(strings.ToLower(strings.TrimSpace(s))); kind {
	case "":
		return TransportBus, nil
	case TransportBus, TransportPlane:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown transport kind %q", s)
	}
}

// CompanyTable is the table holding companies of this kind.
func (k TransportKind) CompanyTable() string {
	if k == TransportPlane {
		return "plane_companies"
	}
	return "bus_companies"
}

// RouteTable is the table holding routes of this kind.
func (k TransportKind) RouteTable() string {
	if k == TransportPlane {
		return "plane_routes"
	}
	return "bus_routes"
}

// Company is a transport operator
type Company struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name          string    `json:"name"`
	ContactNumber string    `json:"contact_number"`
	LogoURL       *string   `json:"logo_url"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName overrides the default table name
func (Company) TableName() string {
	return "bus_companies"
}

// Bus is a vehicle owned by a bus company
type Bus struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Reference string    `json:"reference"`
	Seats     int       `json:"seats"`
	CompanyID uuid.UUID `json:"company_id" gorm:"type:uuid"`
	Company   *Company  `json:"bus_companies,omitempty" gorm:"foreignKey:CompanyID"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the default table name
func (Bus) TableName() string {
	return "buses"
}

// Route is a scheduled connection between two cities
type Route struct {
	ID            uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	CompanyID     uuid.UUID     `json:"company_id" gorm:"type:uuid"`
	Origin        string        `json:"origin"`
	Destination   string        `json:"destination"`
	DepartureTime string        `json:"departure_time"`
	ArrivalTime   string        `json:"arrival_time"`
	Duration      string        `json:"duration"`
	BasePrice     float64       `json:"base_price"`
	TotalSeats    int           `json:"total_seats"`
	Type          TransportKind `json:"type"`
	FlightNumber  *string       `json:"flight_number,omitempty"`
	AirlineCode   *string       `json:"airline_code,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// TableName overrides the default table name
func (Route) TableName() string {
	return "bus_routes"
}

// Employee is a staff member of a company, linked to an auth user
type Employee struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Address     string    `json:"address"`
	PhoneNumber string    `json:"phone_number"`
	IDNumber    string    `json:"id_number"`
	Role        string    `json:"role"`
	CompanyID   uuid.UUID `json:"company_id" gorm:"type:uuid"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid"`
	Company     *Company  `json:"bus_companies,omitempty" gorm:"foreignKey:CompanyID"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName overrides the default table name
func (Employee) TableName() string {
	return "employees"
}

// AvailableRoute is a row of the available_routes view
type AvailableRoute struct {
	ID             string `json:"id"`
	CompanyName    string `json:"company_name"`
	Origin         string `json:"origin"`
	Destination    string `json:"destination"`
	DepartureTime  string `json:"departure_time"`
	ArrivalTime    string `json:"arrival_time"`
	TotalSeats     int    `json:"total_seats"`
	AvailableSeats int    `json:"available_seats"`
}

// RouteDuration returns arrival minus departure as HH:MM:00. Arrivals
// earlier than the departure are taken to be on the next day. Either
// time empty yields "".
func RouteDuration(departure, arrival string) (string, error) {
	if departure == "" || arrival == "" {
		return "", nil
	}
	dep, err := minutesOfDay(departure)
	if err != nil {
		return "", fmt.Errorf("invalid departure time: %w", err)
	}
	arr, err := minutesOfDay(arrival)
	if err != nil {
		return "", fmt.Errorf("invalid arrival time: %w", err)
	}

	total := arr - dep
	if total < 0 {
		total += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d:00", total/60, total%60), nil
}

func minutesOfDay(hhmm string) (int, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, hhmm); err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("expected HH:MM, got %q", hhmm)
}
