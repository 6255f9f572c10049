package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/wenyfour/rideshare/config"
	"github.com/wenyfour/rideshare/internal/kafka"
)

// Sender delivers notification mail over plain SMTP. Callers treat
// every send as fire-and-forget; failures are logged by the caller,
// never propagated to a request.
type Sender struct {
	cfg config.MailConfig
}

func NewSender(cfg config.MailConfig) *Sender {
	return &Sender{cfg: cfg}
}

// Send renders and delivers the mail for a notification event.
func (s *Sender) Send(ctx context.Context, event kafka.NotificationEvent) error {
	subject, body := s.render(event)
	return s.deliver(event.Recipient, subject, body)
}

// SendRaw delivers an already-composed message, used for contact-us
// and support mail forwarded to staff.
func (s *Sender) SendRaw(to, subject, body string) error {
	return s.deliver(to, subject, body)
}

func (s *Sender) render(event kafka.NotificationEvent) (subject, body string) {
	p := event.Payload
	switch event.Kind {
	case kafka.KindAccountCreated:
		subject = "Verify your email"
		body = fmt.Sprintf("Hello %s,\n\nfollow this link to verify your account:\n%s/api/auth/users/verify/%s?token=%s\n",
			p["name"], s.cfg.BaseURL, p["user_id"], p["token"])
	case kafka.KindPasswordReset:
		subject = "Reset your password"
		body = fmt.Sprintf("Hello %s,\n\nfollow this link to reset your password:\n%s/api/auth/users/reset/%s?token=%s\n",
			p["name"], s.cfg.BaseURL, p["user_id"], p["token"])
	case kafka.KindRideCreated:
		subject = "Your ride is published"
		body = fmt.Sprintf("Your ride from %s to %s on %s is now visible to passengers.\n",
			p["from"], p["to"], p["departure"])
	case kafka.KindRideBooked:
		subject = "Booking confirmed"
		body = fmt.Sprintf("You booked %s seat(s) from %s to %s for %s.\n",
			p["seats"], p["from"], p["to"], p["price"])
	default:
		subject = "Notification"
		body = fmt.Sprintf("Kind: %s\n", event.Kind)
	}
	return subject, body
}

func (s *Sender) deliver(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String()))
}
