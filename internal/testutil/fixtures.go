package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"dindin/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email. The password
// is always "password123".
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:      email,
		Password:   string(hash),
		Name:       fmt.Sprintf("Test User %d", nextID()),
		Username:   fmt.Sprintf("user%d", nextID()),
		Accounts:   models.DefaultAccounts,
		Categories: models.DefaultCategories,
		IsActive:   true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestTransaction inserts one transaction for a user with a derived
// month_reference.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, txType models.TransactionType, amountCents int64, date, category string) *models.Transaction {
	t.Helper()

	transaction := &models.Transaction{
		UserID:         userID,
		Type:           txType,
		AmountCents:    amountCents,
		Date:           date,
		MonthReference: date[:7],
		Category:       category,
	}
	if err := db.Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return transaction
}
