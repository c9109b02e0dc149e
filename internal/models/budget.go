package models

// Budget represents a budget category with independently tracked income
// and expense totals. The accumulators always equal the sum of the
// magnitudes of all live transactions referencing this budget.
type Budget struct {
	Base
	UserID             uint   `gorm:"not null;index" json:"user_id"`
	Name               string `gorm:"not null" json:"name"`
	AccumulatedIncome  int64  `gorm:"type:bigint;not null;default:0" json:"accumulated_income"`
	AccumulatedExpense int64  `gorm:"type:bigint;not null;default:0" json:"accumulated_expense"`

	// Relationships
	Transactions []Transaction `gorm:"foreignKey:BudgetID" json:"transactions,omitempty"`
}
