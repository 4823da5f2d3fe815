package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/centimeapp/centime-backend/internal/service"
	"github.com/centimeapp/centime-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func vatTestHandler() (*VatHandler, *testutil.MockInvoiceRepository, *testutil.MockExpenseRepository) {
	invoiceRepo := testutil.NewMockInvoiceRepository()
	expenseRepo := testutil.NewMockExpenseRepository()
	vatService := service.NewVatService(invoiceRepo, expenseRepo)
	return NewVatHandler(vatService), invoiceRepo, expenseRepo
}

func TestGetDeclaration_Success(t *testing.T) {
	e := echo.New()
	handler, invoiceRepo, expenseRepo := vatTestHandler()

	userID := uuid.New()
	paid := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	invoiceRepo.AddInvoice(&domain.Invoice{
		UserID:      userID,
		ClientName:  "Acme SARL",
		InvoiceDate: time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC),
		PaymentDate: &paid,
		AmountHT:    decimal.NewFromInt(1000),
		TaxRate:     decimal.NewFromInt(20),
		AmountTTC:   decimal.NewFromInt(1200),
	})
	expenseRepo.AddExpense(&domain.Expense{
		UserID:          userID,
		Description:     "Software subscription",
		ExpenseDate:     time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		AmountHT:        decimal.NewFromInt(200),
		TaxAmount:       decimal.NewFromInt(40),
		TaxRecoveryRate: decimal.NewFromInt(100),
		Category:        domain.CategoryProfessional,
	})
	expenseRepo.AddExpense(&domain.Expense{
		UserID:          userID,
		Description:     "EU hosting",
		ExpenseDate:     time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
		AmountHT:        decimal.NewFromInt(300),
		TaxAmount:       decimal.Zero,
		TaxRecoveryRate: decimal.Zero,
		Category:        domain.CategoryProfessional,
		IsIntraEU:       true,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vat/declaration/2025/3", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("year", "month")
	c.SetParamValues("2025", "3")

	setupUserContext(c, userID)

	err := handler.GetDeclaration(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response VatDeclarationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.CaseA1 != 1000 {
		t.Errorf("Expected case A1 1000, got %d", response.CaseA1)
	}

	if response.CaseB2 != 300 {
		t.Errorf("Expected case B2 300, got %d", response.CaseB2)
	}

	if response.Case08 != 1300 {
		t.Errorf("Expected case 08 1300, got %d", response.Case08)
	}

	// Intra-EU self-assessed VAT: 300 * 20% = 60
	if response.Case17 != 60 {
		t.Errorf("Expected case 17 60, got %d", response.Case17)
	}

	// Case 20 = case 17 + deductible VAT on domestic expenses under threshold
	if response.Case20 != 100 {
		t.Errorf("Expected case 20 100, got %d", response.Case20)
	}

	if response.TvaCollected != 260 {
		t.Errorf("Expected TVA collected 260, got %d", response.TvaCollected)
	}

	if response.TvaNet != 160 {
		t.Errorf("Expected TVA net 160, got %d", response.TvaNet)
	}
}

func TestGetDeclaration_ImmobilisationThreshold(t *testing.T) {
	e := echo.New()
	handler, _, expenseRepo := vatTestHandler()

	userID := uuid.New()
	expenseRepo.AddExpense(&domain.Expense{
		UserID:          userID,
		Description:     "Workstation",
		ExpenseDate:     time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
		AmountHT:        decimal.NewFromInt(2000),
		TaxAmount:       decimal.NewFromInt(400),
		TaxRecoveryRate: decimal.NewFromInt(100),
		Category:        domain.CategoryOneTime,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vat/declaration/2025/6", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("year", "month")
	c.SetParamValues("2025", "6")

	setupUserContext(c, userID)

	err := handler.GetDeclaration(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var response VatDeclarationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	// Over the immobilisation threshold: VAT lands in case 19, not 20
	if response.Case19 != 400 {
		t.Errorf("Expected case 19 400, got %d", response.Case19)
	}

	if response.Case20 != 0 {
		t.Errorf("Expected case 20 0, got %d", response.Case20)
	}
}

func TestGetDeclaration_InvalidMonth(t *testing.T) {
	e := echo.New()
	handler, _, _ := vatTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vat/declaration/2025/13", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("year", "month")
	c.SetParamValues("2025", "13")

	setupUserContext(c, uuid.New())

	err := handler.GetDeclaration(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	var problemDetails ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problemDetails); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if len(problemDetails.Errors) != 1 || problemDetails.Errors[0].Field != "month" {
		t.Error("Expected validation error for 'month' field")
	}
}

func TestGetPeriodSummary_Success(t *testing.T) {
	e := echo.New()
	handler, invoiceRepo, expenseRepo := vatTestHandler()

	userID := uuid.New()
	paid := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	invoiceRepo.AddInvoice(&domain.Invoice{
		UserID:      userID,
		ClientName:  "Acme SARL",
		InvoiceDate: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		PaymentDate: &paid,
		AmountHT:    decimal.NewFromInt(1000),
		TaxRate:     decimal.NewFromInt(20),
		AmountTTC:   decimal.NewFromInt(1200),
	})
	expenseRepo.AddExpense(&domain.Expense{
		UserID:          userID,
		Description:     "Accounting fees",
		ExpenseDate:     time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
		AmountHT:        decimal.NewFromInt(200),
		TaxAmount:       decimal.NewFromInt(40),
		TaxRecoveryRate: decimal.NewFromInt(100),
		Category:        domain.CategoryProfessional,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vat/summary?start=2025-01-01&end=2025-03-31", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupUserContext(c, userID)

	err := handler.GetPeriodSummary(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response VatPeriodSummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Collected != "200.00" {
		t.Errorf("Expected collected '200.00', got %s", response.Collected)
	}

	if response.Recoverable != "40.00" {
		t.Errorf("Expected recoverable '40.00', got %s", response.Recoverable)
	}

	if response.Net != "160.00" {
		t.Errorf("Expected net '160.00', got %s", response.Net)
	}
}

func TestGetPeriodSummary_EndBeforeStart(t *testing.T) {
	e := echo.New()
	handler, _, _ := vatTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vat/summary?start=2025-03-31&end=2025-01-01", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupUserContext(c, uuid.New())

	err := handler.GetPeriodSummary(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}
