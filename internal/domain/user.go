package domain

import "time"

// User is a marketplace account. IsActive flips to true once the
// email verification link is followed.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	NIN          string
	DateOfBirth  *time.Time
	About        string
	PasswordHash string
	IsActive     bool
	Picture      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserDisplay carries the public display fields used when enriching
// search results with driver information.
type UserDisplay struct {
	Name  string
	Phone string
}
