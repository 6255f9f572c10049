package domain

import "time"

// Passenger is a reservation of seats on a ride by a user. The price
// is always recomputed server-side from the ride's seat price at
// booking time and never trusted from the caller. Records are
// immutable once written.
type Passenger struct {
	ID        string
	RideID    string
	UserID    string
	NoSeats   int
	Price     float64
	CreatedAt time.Time
}
