package services

import (
	"time"

	apperrors "dindin/internal/errors"
	"dindin/internal/models"
	"dindin/internal/store"
	"dindin/internal/uuid"
)

const dateFormat = "2006-01-02"

// transactionService is the transaction mutator. Every operation is one
// atomic batch against the document store; readers observe the result only
// through the store subscription, never through an optimistic local update.
type transactionService struct {
	docs *store.Store
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(docs *store.Store) TransactionServicer {
	return &transactionService{docs: docs}
}

// SaveBatch creates N candidate records as one atomic batch: either all N
// documents appear, with month_reference derived from each record's date,
// or none do.
func (s *transactionService) SaveBatch(userID string, inputs []TransactionInput) ([]models.Transaction, error) {
	if len(inputs) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one transaction is required")
	}

	creates := make([]*models.Transaction, 0, len(inputs))
	for _, input := range inputs {
		record, err := buildRecord(input)
		if err != nil {
			return nil, err
		}
		creates = append(creates, record)
	}

	if err := s.docs.Commit(userID, store.Batch{Creates: creates}); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	saved := make([]models.Transaction, len(creates))
	for i, record := range creates {
		saved[i] = *record
	}
	return saved, nil
}

// Update applies a full replacement payload to an existing transaction.
// UpdateModeSingle touches only the targeted document. The installment
// modes locate the target's group siblings and apply the requested policy
// to the target and every later installment, atomically.
func (s *transactionService) Update(userID, transactionID string, input TransactionInput, mode UpdateMode, reneg *Renegotiation) ([]models.Transaction, error) {
	target, err := s.docs.Transaction(userID, transactionID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	switch mode {
	case UpdateModeSingle, "":
		return s.updateSingle(userID, target, input)
	case UpdateModeAllFuture:
		return s.updateAllFuture(userID, target, input)
	case UpdateModeRenegotiate:
		return s.renegotiate(userID, target, input, reneg)
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown update mode")
	}
}

func (s *transactionService) updateSingle(userID string, target *models.Transaction, input TransactionInput) ([]models.Transaction, error) {
	record, err := buildRecord(input)
	if err != nil {
		return nil, err
	}
	record.ID = target.ID
	if record.InstallmentID == nil {
		// A plain edit keeps the record in its installment group.
		record.InstallmentID = target.InstallmentID
	}

	if err := s.docs.Commit(userID, store.Batch{Updates: []*models.Transaction{record}}); err != nil {
		if store.IsNotFound(err) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return []models.Transaction{*record}, nil
}

// updateAllFuture cascades the replacement over the target and every later
// installment in its group: each sibling takes the new amount, category and
// metadata, and its date shifts by the same day delta the target moved.
func (s *transactionService) updateAllFuture(userID string, target *models.Transaction, input TransactionInput) ([]models.Transaction, error) {
	if target.InstallmentID == nil {
		return nil, apperrors.ErrNotAnInstallment
	}
	record, err := buildRecord(input)
	if err != nil {
		return nil, err
	}

	oldDate, err := time.Parse(dateFormat, target.Date)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	newDate, _ := time.Parse(dateFormat, record.Date)
	dayDelta := int(newDate.Sub(oldDate).Hours() / 24)

	siblings, err := s.futureSiblings(userID, *target.InstallmentID, target)
	if err != nil {
		return nil, err
	}

	updates := make([]*models.Transaction, 0, len(siblings))
	for _, sibling := range siblings {
		date, err := time.Parse(dateFormat, sibling.Date)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		shifted := date.AddDate(0, 0, dayDelta).Format(dateFormat)

		updates = append(updates, &models.Transaction{
			Base:           models.Base{ID: sibling.ID},
			Type:           record.Type,
			AmountCents:    record.AmountCents,
			Date:           shifted,
			MonthReference: shifted[:7],
			Category:       record.Category,
			Description:    record.Description,
			Account:        record.Account,
			InstallmentID:  target.InstallmentID,
		})
	}

	if err := s.docs.Commit(userID, store.Batch{Updates: updates}); err != nil {
		if store.IsNotFound(err) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := make([]models.Transaction, len(updates))
	for i, u := range updates {
		result[i] = *u
	}
	return result, nil
}

// renegotiate deletes the target and every later installment and recreates
// the remainder of the plan: the new total spread over the new installment
// count, monthly from the replacement date, in the same group. Delete and
// create land in one batch so no partial plan is ever observable.
func (s *transactionService) renegotiate(userID string, target *models.Transaction, input TransactionInput, reneg *Renegotiation) ([]models.Transaction, error) {
	if target.InstallmentID == nil {
		return nil, apperrors.ErrNotAnInstallment
	}
	if reneg == nil || reneg.NewTotalAmountCents <= 0 || reneg.NewInstallmentsCount <= 0 {
		return nil, apperrors.ErrInvalidRenegotiation
	}
	record, err := buildRecord(input)
	if err != nil {
		return nil, err
	}

	siblings, err := s.futureSiblings(userID, *target.InstallmentID, target)
	if err != nil {
		return nil, err
	}

	deleteIDs := make([]string, len(siblings))
	for i, sibling := range siblings {
		deleteIDs[i] = sibling.ID
	}

	firstDate, _ := time.Parse(dateFormat, record.Date)
	count := reneg.NewInstallmentsCount
	base := reneg.NewTotalAmountCents / int64(count)
	remainder := reneg.NewTotalAmountCents % int64(count)

	creates := make([]*models.Transaction, 0, count)
	for i := 0; i < count; i++ {
		amount := base
		if int64(i) < remainder {
			amount++
		}
		date := firstDate.AddDate(0, i, 0).Format(dateFormat)
		creates = append(creates, &models.Transaction{
			Type:           record.Type,
			AmountCents:    amount,
			Date:           date,
			MonthReference: date[:7],
			Category:       record.Category,
			Description:    record.Description,
			Account:        record.Account,
			InstallmentID:  target.InstallmentID,
		})
	}

	if err := s.docs.Commit(userID, store.Batch{Creates: creates, DeleteIDs: deleteIDs}); err != nil {
		if store.IsNotFound(err) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := make([]models.Transaction, len(creates))
	for i, c := range creates {
		result[i] = *c
	}
	return result, nil
}

// Delete removes one transaction document. Deleting an id that is already
// gone reports a labeled not-found; it never faults.
func (s *transactionService) Delete(userID, transactionID string) error {
	if !uuid.IsValid(transactionID) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid transaction id")
	}
	if err := s.docs.Commit(userID, store.Batch{DeleteIDs: []string{transactionID}}); err != nil {
		if store.IsNotFound(err) {
			return apperrors.ErrTransactionNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// futureSiblings returns the target plus its group members dated on or
// after the target, oldest first.
func (s *transactionService) futureSiblings(userID, installmentID string, target *models.Transaction) ([]models.Transaction, error) {
	group, err := s.docs.InstallmentGroup(userID, installmentID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	future := make([]models.Transaction, 0, len(group))
	for _, member := range group {
		if member.Date >= target.Date || member.ID == target.ID {
			future = append(future, member)
		}
	}
	return future, nil
}

// buildRecord validates a candidate record and derives its
// month_reference, keeping the MonthReference == Date[:7] invariant on
// every write path.
func buildRecord(input TransactionInput) (*models.Transaction, error) {
	switch input.Type {
	case models.TransactionTypeIncome, models.TransactionTypeExpense, models.TransactionTypeLoanPayment:
	default:
		return nil, apperrors.ErrInvalidTransactionType
	}
	if input.AmountCents <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if _, err := time.Parse(dateFormat, input.Date); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be in YYYY-MM-DD format")
	}
	if input.InstallmentID != nil && !uuid.IsValid(*input.InstallmentID) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid installment id")
	}

	return &models.Transaction{
		Type:           input.Type,
		AmountCents:    input.AmountCents,
		Date:           input.Date,
		MonthReference: input.Date[:7],
		Category:       input.Category,
		Description:    input.Description,
		Account:        input.Account,
		InstallmentID:  input.InstallmentID,
	}, nil
}
