package domain

import (
	"strings"
	"time"
)

// Ride is a published trip offering seats for sale along a route.
// Location fields are stored lowercase so search matching stays
// case-insensitive.
type Ride struct {
	ID              string
	DepartureAt     time.Time
	FromLocation    string
	ToLocation      string
	PickupLocation  string
	DropoffLocation string
	Gender          string
	Seats           int
	SeatPrice       float64
	CarID           string
	DriverID        string
	Expired         bool
	AvailableSeats  int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Departed reports whether the ride's departure instant has passed.
func (r *Ride) Departed(now time.Time) bool {
	return !r.DepartureAt.After(now)
}

// RideSummary is a ride enriched with display data from the owning
// car and driver, returned by search and ordered-ride listings.
// It never carries the passenger list.
type RideSummary struct {
	Ride
	CarModel    string
	CarColor    string
	CarType     string
	DriverName  string
	DriverPhone string
}

// NormalizeLocation lowercases and trims a location string into the
// canonical form used for both storage and search comparison.
func NormalizeLocation(loc string) string {
	return strings.ToLower(strings.TrimSpace(loc))
}
