package domain

import "time"

// Driver is a verification profile attached to a user. IsVerified is
// flipped by staff after reviewing the submitted documents and gates
// ride publication when the verification policy is enabled.
type Driver struct {
	ID            string
	UserID        string
	NIN           string
	DriverLicense string
	IsVerified    bool
	CreatedAt     time.Time
}
