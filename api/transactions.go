package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wenyfour/rideshare/internal/auth"
	"github.com/wenyfour/rideshare/internal/domain"
	"github.com/wenyfour/rideshare/internal/service/transactions"
)

type TransactionHandler struct {
	service transactions.TransactionUseCase
}

type transactionResponse struct {
	ID            string  `json:"id"`
	UserID        string  `json:"userid"`
	Name          string  `json:"name"`
	Message       string  `json:"message"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
	Seats         int     `json:"seats"`
	ReferenceID   string  `json:"trxn_referenceid"`
	TransactionID string  `json:"transactionid"`
	Timestamp     string  `json:"timestamp"`
}

func NewTransactionHandler(service transactions.TransactionUseCase) *TransactionHandler {
	return &TransactionHandler{service: service}
}

func (h *TransactionHandler) Register(router *gin.RouterGroup) {
	router.POST("/create", h.create)
	router.GET("/:userId/transactions", h.list)
	router.GET("/:userId/transactions/:transactionId", h.get)
}

func (h *TransactionHandler) create(c *gin.Context) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	var req transactions.CreateTransactionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	// The identity on the record comes from the session claims, not
	// from the payload.
	tx, err := h.service.Create(c.Request.Context(), req, claims.UserID, claims.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTransactionResponse(tx))
}

func (h *TransactionHandler) list(c *gin.Context) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	txs, err := h.service.ListByUser(c.Request.Context(), c.Param("userId"), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for i := range txs {
		out = append(out, toTransactionResponse(&txs[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *TransactionHandler) get(c *gin.Context) {
	tx, err := h.service.Get(c.Request.Context(), c.Param("transactionId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTransactionResponse(tx))
}

func toTransactionResponse(tx *domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:            tx.ID,
		UserID:        tx.UserID,
		Name:          tx.Name,
		Message:       tx.Message,
		Amount:        tx.Amount,
		Status:        tx.Status,
		Seats:         tx.Seats,
		ReferenceID:   tx.ReferenceID,
		TransactionID: tx.TransactionID,
		Timestamp:     tx.Timestamp.Format(time.RFC3339),
	}
}
