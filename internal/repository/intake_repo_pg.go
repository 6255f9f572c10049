package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wenyfour/rideshare/internal/domain"
)

// IntakeRepository stores contact-us and support submissions.
type IntakeRepository interface {
	CreateContact(ctx context.Context, msg *domain.ContactMessage) error
	CreateSupport(ctx context.Context, req *domain.SupportRequest) error
}

type PGIntakeRepository struct {
	db *pgxpool.Pool
}

func NewIntakeRepository(db *pgxpool.Pool) IntakeRepository {
	return &PGIntakeRepository{db: db}
}

func (r *PGIntakeRepository) CreateContact(ctx context.Context, msg *domain.ContactMessage) error {
	return r.db.QueryRow(ctx, `INSERT INTO contact_messages (id, fullname, phone, email, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		msg.ID, msg.FullName, msg.Phone, msg.Email, msg.Message).
		Scan(&msg.CreatedAt)
}

func (r *PGIntakeRepository) CreateSupport(ctx context.Context, req *domain.SupportRequest) error {
	return r.db.QueryRow(ctx, `INSERT INTO support_requests (id, email, subject, body)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		req.ID, req.Email, req.Subject, req.Body).
		Scan(&req.CreatedAt)
}

var _ IntakeRepository = (*PGIntakeRepository)(nil)
