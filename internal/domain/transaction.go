package domain

import "time"

// Transaction is a payment log entry recorded after a booking is
// paid for through the external gateway. It is a log only; the
// service never settles or reverses money.
type Transaction struct {
	ID            string
	UserID        string
	Name          string
	Message       string
	Amount        float64
	Status        string
	Seats         int
	ReferenceID   string
	TransactionID string
	Timestamp     time.Time
}
