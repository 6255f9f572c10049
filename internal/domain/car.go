package domain

import "time"

// Car is a vehicle registered by a driver. Its display fields feed
// search-result enrichment.
type Car struct {
	ID        string
	Brand     string
	Color     string
	CType     string
	CLicense  string
	UserID    string
	CreatedAt time.Time
}
