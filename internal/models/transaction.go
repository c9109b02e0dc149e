package models

import "time"

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "Income"
	TransactionTypeExpense TransactionType = "Expense"
)

// Transaction represents a single income or expense event attributed to
// one budget and one owner. Amount is always a non-negative magnitude in
// cents; direction is carried by Type, never by the stored number.
type Transaction struct {
	Base
	UserID   uint            `gorm:"not null;index" json:"user_id"`
	BudgetID uint            `gorm:"not null;index" json:"budget_id"`
	Name     string          `gorm:"not null" json:"name"`
	Type     TransactionType `gorm:"not null" json:"type"`
	Amount   int64           `gorm:"type:bigint;not null" json:"amount"`
	Note     string          `json:"note"`
	Date     time.Time       `gorm:"not null" json:"date"`

	// Relationships
	Budget Budget `gorm:"foreignKey:BudgetID" json:"budget"`
}
