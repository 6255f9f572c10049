package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wenyfour/rideshare/internal/domain"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error)
}

type PGTransactionRepository struct {
	db *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) TransactionRepository {
	return &PGTransactionRepository{db: db}
}

const transactionColumns = `id, user_id, name, message, amount, status, seats, reference_id, transaction_id, ts`

func (r *PGTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	_, err := r.db.Exec(ctx, `INSERT INTO transactions (id, user_id, name, message, amount, status, seats, reference_id, transaction_id, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		tx.ID, tx.UserID, tx.Name, tx.Message, tx.Amount, tx.Status, tx.Seats, tx.ReferenceID, tx.TransactionID, tx.Timestamp)
	return err
}

func (r *PGTransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	var t domain.Transaction
	err := r.db.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id=$1`, id).
		Scan(&t.ID, &t.UserID, &t.Name, &t.Message, &t.Amount, &t.Status, &t.Seats, &t.ReferenceID, &t.TransactionID, &t.Timestamp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *PGTransactionRepository) ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	rows, err := r.db.Query(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE user_id=$1 ORDER BY ts DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := make([]domain.Transaction, 0)
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Message, &t.Amount, &t.Status, &t.Seats, &t.ReferenceID, &t.TransactionID, &t.Timestamp); err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

var _ TransactionRepository = (*PGTransactionRepository)(nil)
