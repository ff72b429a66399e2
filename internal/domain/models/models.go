package models

import (
	"strings"
	"time"

	"buslines/internal/domain"
)

// Route is a recurring service definition between two towns.
type Route struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	DistanceKM    float64 `json:"distance_km"`
	DurationHours float64 `json:"duration_hours"`
	// OperatingDays is a comma-separated list of weekday names,
	// e.g. "Monday,Wednesday,Friday".
	OperatingDays  string    `json:"operating_days"`
	BasePriceCents int64     `json:"base_price_cents"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// OperatingDaysList splits OperatingDays into trimmed weekday names.
func (r Route) OperatingDaysList() []string {
	parts := strings.Split(r.OperatingDays, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// OperatesOn reports whether the route runs on the given weekday name.
func (r Route) OperatesOn(dayName string) bool {
	for _, d := range r.OperatingDaysList() {
		if d == dayName {
			return true
		}
	}
	return false
}

// Bus is a seat-capacity resource assignable to schedules.
type Bus struct {
	ID         int64     `json:"id"`
	BusNumber  string    `json:"bus_number"`
	BusType    string    `json:"bus_type"`
	TotalSeats int       `json:"total_seats"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Schedule is one dated, timed, bus-assigned instance of a route.
// (route_id, departure_time) is unique; the maintenance engine relies on it.
type Schedule struct {
	ID             int64     `json:"id"`
	RouteID        int64     `json:"route_id"`
	BusID          int64     `json:"bus_id"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	AvailableSeats int       `json:"available_seats"`
	PriceCents     int64     `json:"price_cents"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ScheduleDetail joins a schedule with its route and bus for display,
// payment descriptions and ticket rendering.
type ScheduleDetail struct {
	Schedule
	RouteName   string `json:"route_name"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	BusNumber   string `json:"bus_number"`
	BusType     string `json:"bus_type"`
	TotalSeats  int    `json:"total_seats"`
}

// Booking is a single-seat reservation against one schedule. Bookings are
// never deleted by the lifecycle, only moved to a terminal status.
type Booking struct {
	ID               int64                `json:"id"`
	BookingID        string               `json:"booking_id"` // external UUID
	BookingReference string               `json:"booking_reference"`
	ScheduleID       int64                `json:"schedule_id"`
	PassengerName    string               `json:"passenger_name"`
	PassengerEmail   string               `json:"passenger_email"`
	PassengerPhone   string               `json:"passenger_phone"`
	SeatCount        int                  `json:"seat_count"` // always 1
	OriginalCents    int64                `json:"original_cents"`
	DiscountType     domain.DiscountType  `json:"discount_type"`
	DiscountCents    int64                `json:"discount_cents"`
	TotalCents       int64                `json:"total_cents"`
	Status           domain.BookingStatus `json:"status"`
	PaymentID        string               `json:"payment_id"`      // gateway correlation id
	GatewayStatus    string               `json:"gateway_status"`  // raw gateway status string
	PaymentDate      *time.Time           `json:"payment_date"`    // set on COMPLETE
	FailureReason    string               `json:"failure_reason"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}
