package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wenyfour/rideshare/internal/domain"
)

type DriverRepository interface {
	Create(ctx context.Context, driver *domain.Driver) error
	GetByID(ctx context.Context, id string) (*domain.Driver, error)
	GetByUserID(ctx context.Context, userID string) (*domain.Driver, error)
	IsVerified(ctx context.Context, userID string) (bool, error)
	SetVerified(ctx context.Context, id string, verified bool) error
}

type PGDriverRepository struct {
	db *pgxpool.Pool
}

func NewDriverRepository(db *pgxpool.Pool) DriverRepository {
	return &PGDriverRepository{db: db}
}

func (r *PGDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	return r.db.QueryRow(ctx, `INSERT INTO drivers (id, user_id, nin, driver_license, is_verified)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		driver.ID, driver.UserID, driver.NIN, driver.DriverLicense, driver.IsVerified).
		Scan(&driver.CreatedAt)
}

func (r *PGDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	return r.getOne(ctx, `SELECT id, user_id, nin, driver_license, is_verified, created_at FROM drivers WHERE id=$1`, id)
}

func (r *PGDriverRepository) GetByUserID(ctx context.Context, userID string) (*domain.Driver, error) {
	return r.getOne(ctx, `SELECT id, user_id, nin, driver_license, is_verified, created_at FROM drivers WHERE user_id=$1`, userID)
}

// IsVerified reports the verification flag for the driver profile
// owned by the given user. A user without a driver profile is never
// verified.
func (r *PGDriverRepository) IsVerified(ctx context.Context, userID string) (bool, error) {
	var verified bool
	err := r.db.QueryRow(ctx, `SELECT is_verified FROM drivers WHERE user_id=$1`, userID).Scan(&verified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return verified, nil
}

func (r *PGDriverRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	res, err := r.db.Exec(ctx, `UPDATE drivers SET is_verified=$2 WHERE id=$1`, id, verified)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGDriverRepository) getOne(ctx context.Context, query string, arg any) (*domain.Driver, error) {
	var d domain.Driver
	err := r.db.QueryRow(ctx, query, arg).Scan(&d.ID, &d.UserID, &d.NIN, &d.DriverLicense, &d.IsVerified, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

var _ DriverRepository = (*PGDriverRepository)(nil)
