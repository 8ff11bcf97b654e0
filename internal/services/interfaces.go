package services

import "dindin/internal/models"

// UserServicer defines the contract for the auth/profile collaborator.
type UserServicer interface {
	CreateUser(name, email, password string) (*models.User, error)
	AttemptLogin(email, password string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	ReplaceProfile(userID string, profile ProfileInput) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// ProfileInput is a whole-document profile replacement payload.
type ProfileInput struct {
	Name       string
	Username   string
	PhotoURL   string
	Accounts   []string
	Categories []string
}

// UpdateMode selects how an update applies to an installment group.
type UpdateMode string

const (
	// UpdateModeSingle replaces only the targeted document.
	UpdateModeSingle UpdateMode = "single"
	// UpdateModeAllFuture cascades the change over the target and every
	// later installment in its group.
	UpdateModeAllFuture UpdateMode = "all-future"
	// UpdateModeRenegotiate replaces the target and every later installment
	// with a redistributed plan for a new total and installment count.
	UpdateModeRenegotiate UpdateMode = "renegotiate"
)

// TransactionInput is a candidate transaction record: no id, no
// month_reference. The mutator derives month_reference from Date and the
// store assigns the id.
type TransactionInput struct {
	Type        models.TransactionType
	AmountCents int64
	Date        string
	Category    string
	Description string
	Account     string

	// InstallmentID groups batch-created installment records. Empty for
	// standalone transactions.
	InstallmentID *string
}

// Renegotiation describes the new plan for UpdateModeRenegotiate.
type Renegotiation struct {
	NewTotalAmountCents  int64
	NewInstallmentsCount int
}

// TransactionServicer is the transaction mutator: every write to the
// transaction collection flows through it, one atomic batch at a time.
// Writes become visible to readers only via the store subscription.
type TransactionServicer interface {
	SaveBatch(userID string, inputs []TransactionInput) ([]models.Transaction, error)
	Update(userID, transactionID string, input TransactionInput, mode UpdateMode, reneg *Renegotiation) ([]models.Transaction, error)
	Delete(userID, transactionID string) error
}
