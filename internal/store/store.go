// Package store is the document-store adapter. It exposes the remote
// backend the rest of the application is written against: a per-user profile
// document with whole-document read/replace, and a per-user transaction
// collection with snapshot reads, atomic batch writes, and live snapshot
// subscriptions.
//
// All atomicity is delegated to the underlying database transaction; there
// is no client-side merge logic anywhere above this package.
package store

import (
	"errors"
	"fmt"

	"dindin/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a referenced document does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// Store wraps the database with document-oriented access and change
// notification.
type Store struct {
	db  *gorm.DB
	hub *hub
}

// New creates a Store over an open GORM connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db, hub: newHub()}
}

// GetUser reads the profile document for an identity.
func (s *Store) GetUser(id string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ReplaceUser replaces the profile document keyed by user.ID. Auth
// bookkeeping columns (password hash, refresh token hash, lockout counters)
// are left untouched; profile mutations never rotate credentials.
func (s *Store) ReplaceUser(user *models.User) error {
	res := s.db.Model(&models.User{}).
		Where("id = ?", user.ID).
		Select("name", "username", "photo_url", "accounts", "categories").
		Updates(user)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Transactions returns a full snapshot of one user's transaction
// collection, newest date first with id as tiebreaker so snapshots are
// deterministic.
func (s *Store) Transactions(userID string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := s.db.
		Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// Transaction reads a single document from a user's collection.
func (s *Store) Transaction(userID, id string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.
		Where("id = ? AND user_id = ?", id, userID).
		First(&transaction).Error; err != nil {
		return nil, err
	}
	return &transaction, nil
}

// InstallmentGroup returns the members of one installment group in date
// order (oldest first).
func (s *Store) InstallmentGroup(userID, installmentID string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := s.db.
		Where("user_id = ? AND installment_id = ?", userID, installmentID).
		Order("date ASC, id ASC").
		Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// Batch is one atomic write against a user's transaction collection:
// either every create, update, and delete in it is applied, or none are.
type Batch struct {
	Creates   []*models.Transaction
	Updates   []*models.Transaction
	DeleteIDs []string
}

func (b Batch) empty() bool {
	return len(b.Creates) == 0 && len(b.Updates) == 0 && len(b.DeleteIDs) == 0
}

// Commit applies the batch in a single database transaction and, on
// success, publishes a fresh snapshot to every live subscriber of the
// user's collection. Updates are whole-document replacements; a referenced
// id that does not exist fails the whole batch with ErrNotFound.
func (s *Store) Commit(userID string, b Batch) error {
	if b.empty() {
		return nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, create := range b.Creates {
			create.UserID = userID
			if err := tx.Create(create).Error; err != nil {
				return err
			}
		}

		for _, update := range b.Updates {
			res := tx.Model(&models.Transaction{}).
				Where("id = ? AND user_id = ?", update.ID, userID).
				Select("type", "amount_cents", "date", "month_reference",
					"category", "description", "account", "installment_id").
				Updates(update)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("update %s: %w", update.ID, ErrNotFound)
			}
		}

		for _, id := range b.DeleteIDs {
			res := tx.Where("id = ? AND user_id = ?", id, userID).
				Delete(&models.Transaction{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("delete %s: %w", id, ErrNotFound)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.publish(userID)
	return nil
}

// IsNotFound reports whether err is a missing-document error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
