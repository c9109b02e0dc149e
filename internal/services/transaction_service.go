package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
)

// transactionService reconciles transaction mutations with the owning
// budget's accumulated totals. Every mutation adjusts the budget before
// the transaction row is written, and both run inside a single database
// transaction so a failure on either side rolls back the other.
type transactionService struct {
	db            *gorm.DB
	budgetService BudgetServicer
	userService   UserServicer

	// now is injected so tests can pin the current-month window.
	now func() time.Time
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, budgetService BudgetServicer, userService UserServicer) TransactionServicer {
	return &transactionService{
		db:            db,
		budgetService: budgetService,
		userService:   userService,
		now:           time.Now,
	}
}

// deltaFor routes a signed amount to the accumulator matching the
// transaction type. Income and expense totals are independent; a delta
// never touches both.
func deltaFor(transactionType models.TransactionType, amount int64) BudgetDelta {
	if transactionType == models.TransactionTypeIncome {
		return BudgetDelta{Income: amount}
	}
	return BudgetDelta{Expense: amount}
}

// CreateTransaction records a new income or expense event for a budget the
// user owns. The transaction date must fall within the current calendar
// month (UTC) and must not be in the future.
func (s *transactionService) CreateTransaction(
	userID, budgetID uint,
	name string,
	transactionType models.TransactionType,
	amount int64,
	note string,
	date time.Time,
) (*models.Transaction, error) {
	// Validate input
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}

	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	if budgetID == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget ID is required")
	}

	if transactionType != models.TransactionTypeIncome && transactionType != models.TransactionTypeExpense {
		return nil, apperrors.ErrInvalidTransactionType
	}

	if date.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required")
	}

	// Ensure the caller resolves to an existing user
	if _, err := s.userService.GetUserByID(userID); err != nil {
		return nil, err
	}

	// Dates are compared in UTC throughout; the month window and the
	// future check must not mix timezones.
	currentDate := s.now().UTC()
	transactionDate := date.UTC()

	if transactionDate.Year() != currentDate.Year() || transactionDate.Month() != currentDate.Month() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "the date must be within the current month")
	}

	if transactionDate.After(currentDate) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "the date cannot be in the future")
	}

	transaction := &models.Transaction{
		UserID:   userID,
		BudgetID: budgetID,
		Name:     name,
		Type:     transactionType,
		Amount:   amount,
		Note:     note,
		Date:     transactionDate,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Budget adjustment happens before the row is persisted; the
		// enclosing transaction makes the pair atomic.
		if err := s.budgetService.AdjustTotals(tx, budgetID, deltaFor(transactionType, amount), userID); err != nil {
			return err
		}

		// Re-fetch to attach the adjusted budget to the new record.
		var budget models.Budget
		if err := tx.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrBudgetNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		transaction.Budget = budget
		return nil
	})
	if err != nil {
		return nil, err
	}

	return transaction, nil
}

// GetUserTransactions retrieves all transactions for the user, most recent
// first. When month is provided, results are filtered to the calendar
// month (UTC) containing that date, inclusive of its last instant.
func (s *transactionService) GetUserTransactions(userID uint, month *time.Time) ([]models.Transaction, error) {
	query := s.db.Where("user_id = ?", userID)

	if month != nil {
		m := month.UTC()
		startOfMonth := time.Date(m.Year(), m.Month(), 1, 0, 0, 0, 0, time.UTC)
		endOfMonth := startOfMonth.AddDate(0, 1, 0).Add(-time.Nanosecond)
		query = query.Where("date BETWEEN ? AND ?", startOfMonth, endOfMonth)
	}

	var transactions []models.Transaction
	if err := query.Preload("Budget").Order("date DESC").Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// GetTransactionByID retrieves a transaction by ID for a specific user.
// A transaction owned by someone else is reported as not found, never as
// a permission failure, so ids cannot be probed across accounts.
func (s *transactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Budget").Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction merges the provided fields onto an existing
// transaction and applies the reconciling delta to the owning budget in
// one combined adjustment:
//
//   - same type before and after: delta = new amount - old amount,
//     applied to that type's accumulator.
//   - type flips: delta = new amount + old amount, positive when the new
//     type is Income and negative when it is Expense, applied to the new
//     type's accumulator.
//
// The flip rule is the historical contract for these accumulators; do not
// replace it with a reverse-then-reapply pair, which changes observable
// totals.
func (s *transactionService) UpdateTransaction(userID, transactionID uint, fields TransactionUpdateFields) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	if fields.Amount != nil && *fields.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	if fields.Type != nil && *fields.Type != models.TransactionTypeIncome && *fields.Type != models.TransactionTypeExpense {
		return nil, apperrors.ErrInvalidTransactionType
	}

	originalAmount := transaction.Amount
	originalType := transaction.Type

	newAmount := originalAmount
	if fields.Amount != nil {
		newAmount = *fields.Amount
	}
	newType := originalType
	if fields.Type != nil {
		newType = *fields.Type
	}

	var amountDifference int64
	if originalType == newType {
		amountDifference = newAmount - originalAmount
	} else {
		amountDifference = newAmount + originalAmount
		if newType == models.TransactionTypeExpense {
			amountDifference = -amountDifference
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// A zero delta still runs the adjustment: it doubles as the
		// ownership check on the budget.
		if err := s.budgetService.AdjustTotals(tx, transaction.BudgetID, deltaFor(newType, amountDifference), userID); err != nil {
			return err
		}

		// Merge partial changes onto the existing entity.
		if fields.Name != nil {
			transaction.Name = *fields.Name
		}
		transaction.Type = newType
		transaction.Amount = newAmount
		if fields.Note != nil {
			transaction.Note = *fields.Note
		}
		if fields.Date != nil {
			transaction.Date = fields.Date.UTC()
		}

		if err := tx.Omit("Budget").Save(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var budget models.Budget
		if err := tx.Where("id = ? AND user_id = ?", transaction.BudgetID, userID).First(&budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		transaction.Budget = budget
		return nil
	})
	if err != nil {
		return nil, err
	}

	return transaction, nil
}

// DeleteTransaction removes a transaction after compensating the owning
// budget, netting the accumulator back to its value before the
// transaction existed. The row is only deleted once the compensation has
// been accepted.
func (s *transactionService) DeleteTransaction(userID, transactionID uint) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	compensation := deltaFor(transaction.Type, -transaction.Amount)

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.budgetService.AdjustTotals(tx, transaction.BudgetID, compensation, userID); err != nil {
			return err
		}

		if err := tx.Delete(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		return nil
	})
}
