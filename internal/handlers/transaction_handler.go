package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "dindin/internal/errors"
	"dindin/internal/models"
	"dindin/internal/services"
	"dindin/internal/session"
)

// TransactionHandler handles transaction reads and mutations. Reads come
// from the session mirror; writes go through the mutator and become
// visible only via the store subscription.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	sessions           *session.Registry
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, sessions *session.Registry) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, sessions: sessions}
}

// TransactionRequest is one candidate transaction record. Ids and
// month_reference are never accepted from the client.
type TransactionRequest struct {
	Type          models.TransactionType `json:"type" binding:"required,transaction_type"`
	AmountCents   int64                  `json:"amount_cents" binding:"required,gt=0"`
	Date          string                 `json:"date" binding:"required,tx_date"`
	Category      string                 `json:"category" binding:"max=100"`
	Description   string                 `json:"description" binding:"max=500"`
	Account       string                 `json:"account" binding:"max=100"`
	InstallmentID *string                `json:"installment_id" binding:"omitempty,uuid"`
}

func (r TransactionRequest) toInput() services.TransactionInput {
	return services.TransactionInput{
		Type:          r.Type,
		AmountCents:   r.AmountCents,
		Date:          r.Date,
		Category:      r.Category,
		Description:   r.Description,
		Account:       r.Account,
		InstallmentID: r.InstallmentID,
	}
}

// CreateTransactionsRequest is an atomic batch of candidate records.
type CreateTransactionsRequest struct {
	Transactions []TransactionRequest `json:"transactions" binding:"required,min=1,max=100,dive"`
}

// RenegotiationRequest is the new plan for a renegotiated installment group.
type RenegotiationRequest struct {
	NewTotalAmountCents  int64 `json:"new_total_amount_cents" binding:"required,gt=0"`
	NewInstallmentsCount int   `json:"new_installments_count" binding:"required,gt=0"`
}

// UpdateTransactionRequest is a full replacement payload plus the
// installment update policy.
type UpdateTransactionRequest struct {
	Transaction   TransactionRequest    `json:"transaction" binding:"required"`
	UpdateMode    string                `json:"update_mode" binding:"omitempty,update_mode"`
	Renegotiation *RenegotiationRequest `json:"renegotiation"`
}

// ListTransactions returns the session mirror filtered to a month,
// newest first.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	sess, err := getSession(c, h.sessions)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month := c.Query("month")
	if month != "" && !services.IsValidPeriod(month) {
		respondWithError(c, apperrors.ErrInvalidPeriod)
		return
	}

	transactions, err := sess.Transactions(month)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

// CreateTransactions writes a batch of candidate records atomically:
// either all of them appear with derived month_reference, or none do.
func (h *TransactionHandler) CreateTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	inputs := make([]services.TransactionInput, len(req.Transactions))
	for i, t := range req.Transactions {
		inputs[i] = t.toInput()
	}

	saved, err := h.transactionService.SaveBatch(userID, inputs)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"transactions": saved,
		"notification": notifySuccess("Transação salva!"),
	})
}

// UpdateTransaction applies a replacement payload to one transaction, or to
// its installment group under the all-future and renegotiate modes.
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var reneg *services.Renegotiation
	if req.Renegotiation != nil {
		reneg = &services.Renegotiation{
			NewTotalAmountCents:  req.Renegotiation.NewTotalAmountCents,
			NewInstallmentsCount: req.Renegotiation.NewInstallmentsCount,
		}
	}

	updated, err := h.transactionService.Update(
		userID,
		transactionID,
		req.Transaction.toInput(),
		services.UpdateMode(req.UpdateMode),
		reneg,
	)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": updated,
		"notification": notifySuccess("Transação atualizada!"),
	})
}

// DeleteTransaction removes one transaction. A missing id yields a labeled
// not-found, never an unhandled fault.
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.Delete(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notification": notifySuccess("Transação excluída com sucesso!"),
	})
}
