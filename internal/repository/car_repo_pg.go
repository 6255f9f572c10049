package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wenyfour/rideshare/internal/domain"
)

type CarRepository interface {
	Create(ctx context.Context, car *domain.Car) error
	GetByID(ctx context.Context, id string) (*domain.Car, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Car, error)
}

type PGCarRepository struct {
	db *pgxpool.Pool
}

func NewCarRepository(db *pgxpool.Pool) CarRepository {
	return &PGCarRepository{db: db}
}

func (r *PGCarRepository) Create(ctx context.Context, car *domain.Car) error {
	return r.db.QueryRow(ctx, `INSERT INTO cars (id, brand, color, c_type, c_license, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		car.ID, car.Brand, car.Color, car.CType, car.CLicense, car.UserID).
		Scan(&car.CreatedAt)
}

func (r *PGCarRepository) GetByID(ctx context.Context, id string) (*domain.Car, error) {
	var c domain.Car
	err := r.db.QueryRow(ctx, `SELECT id, brand, color, c_type, c_license, user_id, created_at FROM cars WHERE id=$1`, id).
		Scan(&c.ID, &c.Brand, &c.Color, &c.CType, &c.CLicense, &c.UserID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGCarRepository) ListByUser(ctx context.Context, userID string) ([]domain.Car, error) {
	rows, err := r.db.Query(ctx, `SELECT id, brand, color, c_type, c_license, user_id, created_at FROM cars WHERE user_id=$1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cars := make([]domain.Car, 0)
	for rows.Next() {
		var c domain.Car
		if err := rows.Scan(&c.ID, &c.Brand, &c.Color, &c.CType, &c.CLicense, &c.UserID, &c.CreatedAt); err != nil {
			return nil, err
		}
		cars = append(cars, c)
	}
	return cars, rows.Err()
}

var _ CarRepository = (*PGCarRepository)(nil)
