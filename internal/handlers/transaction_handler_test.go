package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/services"
)

// --- mock transaction service ---

type mockTransactionService struct {
	createTransactionFn   func(userID, budgetID uint, name string, transactionType models.TransactionType, amount int64, note string, date time.Time) (*models.Transaction, error)
	getUserTransactionsFn func(userID uint, month *time.Time) ([]models.Transaction, error)
	getTransactionByIDFn  func(userID, transactionID uint) (*models.Transaction, error)
	updateTransactionFn   func(userID, transactionID uint, fields services.TransactionUpdateFields) (*models.Transaction, error)
	deleteTransactionFn   func(userID, transactionID uint) error
}

func (m *mockTransactionService) CreateTransaction(userID, budgetID uint, name string, transactionType models.TransactionType, amount int64, note string, date time.Time) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(userID, budgetID, name, transactionType, amount, note, date)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetUserTransactions(userID uint, month *time.Time) ([]models.Transaction, error) {
	if m.getUserTransactionsFn != nil {
		return m.getUserTransactionsFn(userID, month)
	}
	return []models.Transaction{}, nil
}

func (m *mockTransactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(userID, transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(userID, transactionID uint, fields services.TransactionUpdateFields) (*models.Transaction, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(userID, transactionID, fields)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(userID, transactionID uint) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(userID, transactionID)
	}
	return nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1))
	auth.POST("/transactions", handler.CreateTransaction)
	auth.GET("/transactions", handler.GetUserTransactions)
	auth.GET("/transactions/:id", handler.GetTransactionByID)
	auth.PUT("/transactions/:id", handler.UpdateTransaction)
	auth.DELETE("/transactions/:id", handler.DeleteTransaction)
	return r
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		txSvc := &mockTransactionService{
			createTransactionFn: func(userID, budgetID uint, name string, txType models.TransactionType, amount int64, _ string, _ time.Time) (*models.Transaction, error) {
				return &models.Transaction{
					Base:     models.Base{ID: 1},
					UserID:   userID,
					BudgetID: budgetID,
					Name:     name,
					Type:     txType,
					Amount:   amount,
				}, nil
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"name":"Salary","type":"Income","amount":5000,"budget_id":1,"date":"2025-06-15"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		tx := result["transaction"].(map[string]interface{})
		if tx["amount"].(float64) != 5000 {
			t.Errorf("expected amount 5000, got %v", tx["amount"])
		}
		if tx["type"] != "Income" {
			t.Errorf("expected type Income, got %v", tx["type"])
		}
	})

	t.Run("returns 400 on missing budget_id", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"name":"Salary","type":"Income","amount":5000,"date":"2025-06-15"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on zero amount", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"name":"Salary","type":"Income","amount":0,"budget_id":1,"date":"2025-06-15"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on invalid type", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"name":"Salary","type":"Transfer","amount":1000,"budget_id":1,"date":"2025-06-15"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on unparseable date", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"name":"Salary","type":"Income","amount":1000,"budget_id":1,"date":"15/06/2025"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 403 when budget belongs to someone else", func(t *testing.T) {
		txSvc := &mockTransactionService{
			createTransactionFn: func(_, _ uint, _ string, _ models.TransactionType, _ int64, _ string, _ time.Time) (*models.Transaction, error) {
				return nil, apperrors.ErrBudgetForbidden
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "POST", "/transactions",
			`{"name":"Salary","type":"Income","amount":1000,"budget_id":999,"date":"2025-06-15"}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BUDGET_FORBIDDEN")
	})
}

func TestTransactionHandler_GetUserTransactions(t *testing.T) {
	t.Run("returns 200 with transactions", func(t *testing.T) {
		txSvc := &mockTransactionService{
			getUserTransactionsFn: func(userID uint, month *time.Time) ([]models.Transaction, error) {
				if month != nil {
					t.Error("expected no month filter")
				}
				return []models.Transaction{
					{Base: models.Base{ID: 2}, UserID: userID, Name: "Rent", Type: models.TransactionTypeExpense, Amount: 2000},
					{Base: models.Base{ID: 1}, UserID: userID, Name: "Salary", Type: models.TransactionTypeIncome, Amount: 5000},
				}, nil
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		txs := result["transactions"].([]interface{})
		if len(txs) != 2 {
			t.Errorf("expected 2 transactions, got %d", len(txs))
		}
	})

	t.Run("passes month filter through", func(t *testing.T) {
		var gotMonth *time.Time
		txSvc := &mockTransactionService{
			getUserTransactionsFn: func(_ uint, month *time.Time) ([]models.Transaction, error) {
				gotMonth = month
				return []models.Transaction{}, nil
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions?date=2025-06-01", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotMonth == nil {
			t.Fatal("expected month filter to be passed")
		}
		if gotMonth.Month() != time.June || gotMonth.Year() != 2025 {
			t.Errorf("expected June 2025, got %v", gotMonth)
		}
	})

	t.Run("returns 400 on bad date", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions?date=june", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_GetTransactionByID(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		txSvc := &mockTransactionService{
			getTransactionByIDFn: func(userID, transactionID uint) (*models.Transaction, error) {
				return &models.Transaction{
					Base:   models.Base{ID: transactionID},
					UserID: userID,
					Name:   "Salary",
					Amount: 5000,
				}, nil
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions/7", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		tx := result["transaction"].(map[string]interface{})
		if tx["id"].(float64) != 7 {
			t.Errorf("expected id 7, got %v", tx["id"])
		}
	})

	t.Run("returns 400 on non-numeric id", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions/abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		txSvc := &mockTransactionService{
			getTransactionByIDFn: func(_, _ uint) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "GET", "/transactions/999", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})
}

func TestTransactionHandler_UpdateTransaction(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		var gotFields services.TransactionUpdateFields
		txSvc := &mockTransactionService{
			updateTransactionFn: func(userID, transactionID uint, fields services.TransactionUpdateFields) (*models.Transaction, error) {
				gotFields = fields
				return &models.Transaction{
					Base:   models.Base{ID: transactionID},
					UserID: userID,
					Amount: *fields.Amount,
				}, nil
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "PUT", "/transactions/3", `{"amount":7000}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotFields.Amount == nil || *gotFields.Amount != 7000 {
			t.Errorf("expected amount field 7000, got %v", gotFields.Amount)
		}
		if gotFields.Name != nil || gotFields.Type != nil || gotFields.Note != nil || gotFields.Date != nil {
			t.Error("expected untouched fields to stay nil")
		}
	})

	t.Run("returns 400 on invalid type", func(t *testing.T) {
		handler := NewTransactionHandler(&mockTransactionService{}, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "PUT", "/transactions/3", `{"type":"Transfer"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		txSvc := &mockTransactionService{
			updateTransactionFn: func(_, _ uint, _ services.TransactionUpdateFields) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "PUT", "/transactions/999", `{"amount":7000}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		var deletedID uint
		txSvc := &mockTransactionService{
			deleteTransactionFn: func(_, transactionID uint) error {
				deletedID = transactionID
				return nil
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "DELETE", "/transactions/5", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if deletedID != 5 {
			t.Errorf("expected transaction 5 deleted, got %d", deletedID)
		}
		result := parseJSON(t, rec)
		if result["message"] != "Transaction with ID 5 deleted successfully." {
			t.Errorf("unexpected message: %v", result["message"])
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		txSvc := &mockTransactionService{
			deleteTransactionFn: func(_, _ uint) error {
				return apperrors.ErrTransactionNotFound
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "DELETE", "/transactions/999", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("returns 403 when budget adjustment is refused", func(t *testing.T) {
		txSvc := &mockTransactionService{
			deleteTransactionFn: func(_, _ uint) error {
				return apperrors.ErrBudgetForbidden
			},
		}
		handler := NewTransactionHandler(txSvc, &mockAuditService{})
		r := setupTransactionRouter(handler)

		rec := doRequest(r, "DELETE", "/transactions/5", "")

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})
}
