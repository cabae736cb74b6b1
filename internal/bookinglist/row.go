package bookinglist

import (
	"strconv"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/models"
)

// Row is a booking as shown in the list
type Row struct {
	ID             string               `json:"id"`
	RouteID        string               `json:"route_id"`
	RouteName      string               `json:"route_name"`
	PassengerNames string               `json:"passenger_names"`
	Passengers     models.Passengers    `json:"passengers"`
	ContactPhone   string               `json:"contact_phone"`
	ContactEmail   string               `json:"contact_email"`
	Status         models.BookingStatus `json:"booking_status"`
	StatusLabel    string               `json:"status_label"`
	BookingDate    string               `json:"booking_date"`
	TotalPrice     float64              `json:"total_price"`
	Price          string               `json:"price"`
}

// FormatPrice renders an amount in kwanza, e.g. "15000 AOA".
func FormatPrice(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64) + " AOA"
}

// NewRow labels b using the route lookup.
func NewRow(b models.Booking, routes map[string]models.RouteLabel) Row {
	route, ok := routes[b.RouteID]
	if !ok {
		route = models.UnknownRoute
	}

	names := b.Passengers.Names()
	if len(b.Passengers) == 0 {
		names = "N/A"
	}

	return Row{
		ID:             b.ID,
		RouteID:        b.RouteID,
		RouteName:      route.Name(),
		PassengerNames: names,
		Passengers:     b.Passengers,
		ContactPhone:   b.Phone(),
		ContactEmail:   b.Email(),
		Status:         b.BookingStatus,
		StatusLabel:    b.BookingStatus.Label(),
		BookingDate:    b.BookingDate,
		TotalPrice:     b.TotalPrice,
		Price:          FormatPrice(b.TotalPrice),
	}
}
