package models

// TransactionType represents the type of transaction.
type TransactionType string

const (
	TransactionTypeIncome      TransactionType = "income"
	TransactionTypeExpense     TransactionType = "expense"
	TransactionTypeLoanPayment TransactionType = "loan_payment"
)

// FallbackCategory is used when a transaction has no category.
const FallbackCategory = "Outros"

// Transaction is one document in a user's transaction collection.
//
// MonthReference is denormalized from Date at write time for query
// efficiency and is never recomputed on read. Every write that changes Date
// must keep the invariant MonthReference == Date[:7].
type Transaction struct {
	Base
	UserID         string          `gorm:"type:uuid;index;not null" json:"user_id"`
	Type           TransactionType `gorm:"size:16;not null" json:"type"`
	AmountCents    int64           `gorm:"type:bigint;not null" json:"amount_cents"`
	Date           string          `gorm:"size:10;not null" json:"date"`
	MonthReference string          `gorm:"size:7;index;not null" json:"month_reference"`
	Category       string          `json:"category"`
	Description    string          `json:"description"`
	Account        string          `json:"account"`

	// InstallmentID links sibling records of one installment plan.
	InstallmentID *string `gorm:"type:uuid;index" json:"installment_id,omitempty"`
}
