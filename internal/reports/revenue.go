// Package reports derives revenue and seat occupancy figures and renders
// them as PDF and spreadsheet exports.
package reports

import (
	"sort"
	"time"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/models"
)

// RouteUsage is the number of bookings on one route
type RouteUsage struct {
	Route    string `json:"name"`
	Bookings int    `json:"value"`
}

// RevenueSummary is the finance dashboard
type RevenueSummary struct {
	Date              string       `json:"date"`
	TotalRevenue      float64      `json:"total_revenue"`
	TodayRevenue      float64      `json:"today_revenue"`
	TotalBookings     int          `json:"total_bookings"`
	TodayBookings     int          `json:"today_bookings"`
	PendingBookings   int          `json:"pending_bookings"`
	ConfirmedBookings int          `json:"confirmed_bookings"`
	RouteUsage        []RouteUsage `json:"route_usage"`
}

// Revenue sums bookings regardless of status. Route usage counts only
// bookings whose route is known, busiest first; ties keep the order in
// which the routes first appear.
func Revenue(bookings []models.Booking, routes map[string]models.RouteLabel, today time.Time) RevenueSummary {
	day := today.Format("2006-01-02")
	s := RevenueSummary{
		Date:          day,
		TotalBookings: len(bookings),
		RouteUsage:    []RouteUsage{},
	}

	index := make(map[string]int)
	for _, b := range bookings {
		s.TotalRevenue += b.TotalPrice
		if b.BookingDate == day {
			s.TodayRevenue += b.TotalPrice
			s.TodayBookings++
		}

		switch b.BookingStatus {
		case models.BookingStatusPending:
			s.PendingBookings++
		case models.BookingStatusConfirmed:
			s.ConfirmedBookings++
		}

		route, ok := routes[b.RouteID]
		if !ok {
			continue
		}
		name := route.Name()
		if i, seen := index[name]; seen {
			s.RouteUsage[i].Bookings++
			continue
		}
		index[name] = len(s.RouteUsage)
		s.RouteUsage = append(s.RouteUsage, RouteUsage{Route: name, Bookings: 1})
	}

	sort.SliceStable(s.RouteUsage, func(i, j int) bool {
		return s.RouteUsage[i].Bookings > s.RouteUsage[j].Bookings
	})
	return s
}
