package domain

import "time"

// ContactMessage is a contact-us submission from the public site.
type ContactMessage struct {
	ID        string
	FullName  string
	Phone     string
	Email     string
	Message   string
	CreatedAt time.Time
}

// SupportRequest is a support submission from a signed-in or
// anonymous user.
type SupportRequest struct {
	ID        string
	Email     string
	Subject   string
	Body      string
	CreatedAt time.Time
}
