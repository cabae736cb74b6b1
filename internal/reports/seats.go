package reports

import "github.com/Wolf-Quiteque/100destinosBackend/internal/models"

// Seat is one cell of the seat grid
type Seat struct {
	Number   int  `json:"number"`
	Occupied bool `json:"occupied"`
}

// SeatMap is the occupancy of one route
type SeatMap struct {
	RouteID          string  `json:"route_id"`
	TotalSeats       int     `json:"total_seats"`
	Occupied         int     `json:"occupied"`
	Available        int     `json:"available"`
	OccupancyPercent float64 `json:"occupancy_percent"`
	Seats            []Seat  `json:"seats"`
}

// MaxSeats is the largest seat grid BuildSeatMap lays out
const MaxSeats = 1000

// BuildSeatMap lays out seats 1..total, marking the occupied numbers.
// Numbers outside the range are ignored. total is clamped to MaxSeats.
func BuildSeatMap(routeID string, total int, occupied []int) SeatMap {
	if total < 0 {
		total = 0
	}
	if total > MaxSeats {
		total = MaxSeats
	}
	taken := make(map[int]bool, len(occupied))
	for _, n := range occupied {
		if n >= 1 && n <= total {
			taken[n] = true
		}
	}

	seats := make([]Seat, total)
	for i := range seats {
		seats[i] = Seat{Number: i + 1, Occupied: taken[i+1]}
	}

	available := total - len(taken)
	return SeatMap{
		RouteID:          routeID,
		TotalSeats:       total,
		Occupied:         len(taken),
		Available:        available,
		OccupancyPercent: OccupancyPercent(total, available),
		Seats:            seats,
	}
}

// OccupancyPercent is the share of sold seats, 0 for a route without seats.
func OccupancyPercent(total, available int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(total-available) / float64(total) * 100
}

// RouteOccupancy is an available route with its occupancy
type RouteOccupancy struct {
	models.AvailableRoute
	OccupancyPercent float64 `json:"occupancy_percent"`
}

// WithOccupancy annotates the available_routes rows.
func WithOccupancy(routes []models.AvailableRoute) []RouteOccupancy {
	out := make([]RouteOccupancy, 0, len(routes))
	for _, r := range routes {
		out = append(out, RouteOccupancy{
			AvailableRoute:   r,
			OccupancyPercent: OccupancyPercent(r.TotalSeats, r.AvailableSeats),
		})
	}
	return out
}
