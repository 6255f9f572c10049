package domain

import "errors"

var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoSeats is returned when a booking would drive the ride's
	// available seat count below zero.
	ErrNoSeats = errors.New("not enough available seats")

	// ErrRideExpired is returned when booking a ride already in its
	// terminal expired state.
	ErrRideExpired = errors.New("ride has expired")

	// ErrInactiveUser is returned when an unverified account attempts
	// an operation that requires an active user.
	ErrInactiveUser = errors.New("user is not active")

	// ErrNotVerified is returned when ride creation is gated on driver
	// verification and the driver has not been verified.
	ErrNotVerified = errors.New("driver is not verified")

	// ErrOwnershipMismatch is returned when a caller asks for data
	// belonging to a different user.
	ErrOwnershipMismatch = errors.New("credential mismatch")

	// ErrEmailTaken is returned on registration with an email that
	// already has an account.
	ErrEmailTaken = errors.New("user with the mail already exists")

	// ErrInvalidCredentials is returned on login or password-reset
	// failure.
	ErrInvalidCredentials = errors.New("incorrect email or password")
)
