package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"moneta/internal/models"

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

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestBudget creates a budget with zeroed accumulators.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID uint) *models.Budget {
	t.Helper()
	return CreateTestBudgetWithTotals(t, db, userID, 0, 0)
}

// CreateTestBudgetWithTotals creates a budget with the given accumulated
// income and expense totals (in cents).
func CreateTestBudgetWithTotals(t *testing.T, db *gorm.DB, userID uint, income, expense int64) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:             userID,
		Name:               fmt.Sprintf("Test Budget %d", nextID()),
		AccumulatedIncome:  income,
		AccumulatedExpense: expense,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestTransaction creates a transaction of the given type and amount (in cents).
// It writes the row directly without touching the budget accumulators.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, budgetID uint, txType models.TransactionType, amount int64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:   userID,
		BudgetID: budgetID,
		Name:     fmt.Sprintf("Test Transaction %d", nextID()),
		Type:     txType,
		Amount:   amount,
		Date:     time.Now().UTC(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// ReloadBudget fetches the current database state of a budget.
func ReloadBudget(t *testing.T, db *gorm.DB, budgetID uint) *models.Budget {
	t.Helper()

	var budget models.Budget
	if err := db.First(&budget, budgetID).Error; err != nil {
		t.Fatalf("failed to reload budget %d: %v", budgetID, err)
	}
	return &budget
}
