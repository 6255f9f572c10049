package transactions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/wenyfour/rideshare/internal/domain"
	"github.com/wenyfour/rideshare/internal/repository"
)

type TransactionUseCase interface {
	Create(ctx context.Context, input CreateTransactionInput, userID, userName string) (*domain.Transaction, error)
	ListByUser(ctx context.Context, targetUserID, userID string) ([]domain.Transaction, error)
	Get(ctx context.Context, id string) (*domain.Transaction, error)
}

type CreateTransactionInput struct {
	Message       string  `json:"message"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
	Seats         int     `json:"seats"`
	ReferenceID   string  `json:"trxn_referenceid"`
	TransactionID string  `json:"transactionid"`
	Timestamp     string  `json:"timestamp,omitempty"`
}

type TransactionService struct {
	transactions repository.TransactionRepository
	now          func() time.Time
}

func NewTransactionService(transactions repository.TransactionRepository) *TransactionService {
	return &TransactionService{transactions: transactions, now: time.Now}
}

// Create records a gateway transaction against the session user. The
// user id and display name always come from the session, never the
// payload.
func (s *TransactionService) Create(ctx context.Context, input CreateTransactionInput, userID, userName string) (*domain.Transaction, error) {
	if input.ReferenceID == "" || input.TransactionID == "" {
		return nil, errors.New("transaction reference is required")
	}

	ts := s.now()
	if input.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, input.Timestamp)
		if err != nil {
			return nil, errors.New("invalid timestamp")
		}
		ts = parsed
	}

	tx := &domain.Transaction{
		ID:            uuid.NewString(),
		UserID:        userID,
		Name:          userName,
		Message:       input.Message,
		Amount:        input.Amount,
		Status:        input.Status,
		Seats:         input.Seats,
		ReferenceID:   input.ReferenceID,
		TransactionID: input.TransactionID,
		Timestamp:     ts,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *TransactionService) ListByUser(ctx context.Context, targetUserID, userID string) ([]domain.Transaction, error) {
	if targetUserID != userID {
		return nil, domain.ErrOwnershipMismatch
	}
	return s.transactions.ListByUser(ctx, userID)
}

func (s *TransactionService) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.transactions.GetByID(ctx, id)
}

var _ TransactionUseCase = (*TransactionService)(nil)
