package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wenyfour/rideshare/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetDisplay(ctx context.Context, id string) (*domain.UserDisplay, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	SetActive(ctx context.Context, id string) error
	SetPassword(ctx context.Context, id, passwordHash string) error
	SetPasswordByEmail(ctx context.Context, email, passwordHash string) error
	SetPicture(ctx context.Context, id, url string) error
	Delete(ctx context.Context, id string) error
}

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

const userColumns = `id, name, email, phone, nin, date_of_birth, about, password_hash, is_active, picture, created_at, updated_at`

func (r *PGUserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.QueryRow(ctx, `INSERT INTO users (id, name, email, phone, nin, date_of_birth, about, password_hash, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false)
		RETURNING created_at, updated_at`,
		user.ID, user.Name, user.Email, user.Phone, user.NIN, user.DateOfBirth, user.About, user.PasswordHash).
		Scan(&user.CreatedAt, &user.UpdatedAt)
}

func (r *PGUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *PGUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

func (r *PGUserRepository) GetDisplay(ctx context.Context, id string) (*domain.UserDisplay, error) {
	var d domain.UserDisplay
	err := r.db.QueryRow(ctx, `SELECT name, phone FROM users WHERE id=$1`, id).Scan(&d.Name, &d.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *PGUserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *PGUserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	res, err := r.db.Exec(ctx, `UPDATE users SET name=$2, phone=$3, date_of_birth=$4, about=$5, updated_at=now() WHERE id=$1`,
		user.ID, user.Name, user.Phone, user.DateOfBirth, user.About)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PGUserRepository) SetActive(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE users SET is_active = true, updated_at = now() WHERE id=$1`, id)
}

func (r *PGUserRepository) SetPassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash=$2, updated_at=now() WHERE id=$1`, id, passwordHash)
}

func (r *PGUserRepository) SetPasswordByEmail(ctx context.Context, email, passwordHash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash=$2, updated_at=now() WHERE email=$1`, email, passwordHash)
}

func (r *PGUserRepository) SetPicture(ctx context.Context, id, url string) error {
	return r.exec(ctx, `UPDATE users SET picture=$2, updated_at=now() WHERE id=$1`, id, url)
}

func (r *PGUserRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM users WHERE id=$1`, id)
}

func (r *PGUserRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *PGUserRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.NIN, &user.DateOfBirth,
		&user.About, &user.PasswordHash, &user.IsActive, &user.Picture, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}

var _ UserRepository = (*PGUserRepository)(nil)
