package services

import (
	"time"

	"gorm.io/gorm"

	"moneta/internal/models"
	"moneta/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	UpdateLastLogin(userID uint) error
}

// BudgetDelta is a signed adjustment applied to a budget's accumulators.
// The income and expense totals are tracked independently and are never
// netted against each other.
type BudgetDelta struct {
	Income  int64
	Expense int64
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID uint, name string) (*models.Budget, error)
	GetUserBudgets(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID uint) (*models.Budget, error)
	DeleteBudget(userID, budgetID uint) error
	AdjustTotals(tx *gorm.DB, budgetID uint, delta BudgetDelta, userID uint) error
}

// TransactionUpdateFields holds the optional fields for a partial
// transaction update. Nil fields are left unchanged.
type TransactionUpdateFields struct {
	Name   *string
	Type   *models.TransactionType
	Amount *int64
	Note   *string
	Date   *time.Time
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID, budgetID uint, name string, transactionType models.TransactionType, amount int64, note string, date time.Time) (*models.Transaction, error)
	GetUserTransactions(userID uint, month *time.Time) ([]models.Transaction, error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID uint, fields TransactionUpdateFields) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uint) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
}
