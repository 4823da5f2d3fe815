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

type dashboardTestEnv struct {
	handler     *DashboardHandler
	invoiceRepo *testutil.MockInvoiceRepository
	expenseRepo *testutil.MockExpenseRepository
	balanceRepo *testutil.MockAccountBalanceRepository
	settings    *testutil.MockSettingsRepository
}

func newDashboardTestEnv() *dashboardTestEnv {
	invoiceRepo := testutil.NewMockInvoiceRepository()
	expenseRepo := testutil.NewMockExpenseRepository()
	vatPaymentRepo := testutil.NewMockVatPaymentRepository()
	urssafPaymentRepo := testutil.NewMockUrssafPaymentRepository()
	incomeTaxPaymentRepo := testutil.NewMockIncomeTaxPaymentRepository()
	bracketRepo := testutil.NewMockTaxBracketRepository()
	settingsRepo := testutil.NewMockSettingsRepository()
	balanceRepo := testutil.NewMockAccountBalanceRepository()

	settingsService := service.NewSettingsService(settingsRepo)
	vatService := service.NewVatService(invoiceRepo, expenseRepo)
	urssafService := service.NewUrssafService(invoiceRepo, urssafPaymentRepo, settingsService)
	incomeTaxService := service.NewIncomeTaxService(invoiceRepo, bracketRepo, settingsService)
	dashboardService := service.NewDashboardService(invoiceRepo, expenseRepo, urssafService, incomeTaxService)
	availabilityService := service.NewAvailabilityService(
		balanceRepo, vatPaymentRepo, urssafPaymentRepo, incomeTaxPaymentRepo,
		vatService, urssafService, incomeTaxService, settingsService,
	)

	return &dashboardTestEnv{
		handler:     NewDashboardHandler(dashboardService, availabilityService),
		invoiceRepo: invoiceRepo,
		expenseRepo: expenseRepo,
		balanceRepo: balanceRepo,
		settings:    settingsRepo,
	}
}

func TestGetMonthSummary_Success(t *testing.T) {
	e := echo.New()
	env := newDashboardTestEnv()

	userID := uuid.New()
	paid := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	env.invoiceRepo.AddInvoice(&domain.Invoice{
		UserID:      userID,
		ClientName:  "Acme SARL",
		InvoiceDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		PaymentDate: &paid,
		AmountHT:    decimal.NewFromInt(2000),
		TaxRate:     decimal.NewFromInt(20),
		AmountTTC:   decimal.NewFromInt(2400),
	})
	env.expenseRepo.AddExpense(&domain.Expense{
		UserID:          userID,
		Description:     "Coworking desk",
		ExpenseDate:     time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		AmountHT:        decimal.NewFromInt(300),
		TaxAmount:       decimal.NewFromInt(60),
		TaxRecoveryRate: decimal.NewFromInt(100),
		Category:        domain.CategoryFixed,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/months/2025/3", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("year", "month")
	c.SetParamValues("2025", "3")

	setupUserContext(c, userID)

	err := env.handler.GetMonthSummary(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response MonthSummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Revenue != "2000.00" {
		t.Errorf("Expected revenue '2000.00', got %s", response.Revenue)
	}

	if response.Expenses != "300.00" {
		t.Errorf("Expected expenses '300.00', got %s", response.Expenses)
	}

	if response.VatCollected != "400.00" {
		t.Errorf("Expected VAT collected '400.00', got %s", response.VatCollected)
	}

	if response.VatRecoverable != "60.00" {
		t.Errorf("Expected VAT recoverable '60.00', got %s", response.VatRecoverable)
	}

	if response.VatNet != "340.00" {
		t.Errorf("Expected VAT net '340.00', got %s", response.VatNet)
	}
}

func TestGetMonthSummary_InvalidMonth(t *testing.T) {
	e := echo.New()
	env := newDashboardTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/months/2025/0", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("year", "month")
	c.SetParamValues("2025", "0")

	setupUserContext(c, uuid.New())

	err := env.handler.GetMonthSummary(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetYearSummary_Success(t *testing.T) {
	e := echo.New()
	env := newDashboardTestEnv()

	userID := uuid.New()
	env.settings.Upsert(&domain.Settings{
		UserID:        userID,
		UrssafRate:    decimal.NewFromFloat(22),
		DeductionRate: decimal.NewFromInt(34),
	})

	paid := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	env.invoiceRepo.AddInvoice(&domain.Invoice{
		UserID:      userID,
		ClientName:  "Acme SARL",
		InvoiceDate: time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC),
		PaymentDate: &paid,
		AmountHT:    decimal.NewFromInt(5000),
		TaxRate:     decimal.NewFromInt(20),
		AmountTTC:   decimal.NewFromInt(6000),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/years/2025", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("year")
	c.SetParamValues("2025")

	setupUserContext(c, userID)

	err := env.handler.GetYearSummary(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response YearSummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Revenue != "5000.00" {
		t.Errorf("Expected revenue '5000.00', got %s", response.Revenue)
	}

	if len(response.Months) != 12 {
		t.Fatalf("Expected 12 months, got %d", len(response.Months))
	}

	if response.Months[5].Revenue != "5000.00" {
		t.Errorf("Expected June revenue '5000.00', got %s", response.Months[5].Revenue)
	}

	if response.Urssaf == nil {
		t.Fatal("Expected an Urssaf year summary")
	}

	if response.IncomeTax == nil {
		t.Fatal("Expected an income tax estimate")
	}

	if response.IncomeTax.TaxableIncome != "3300.00" {
		t.Errorf("Expected taxable income '3300.00', got %s", response.IncomeTax.TaxableIncome)
	}
}

func TestGetAvailability_Success(t *testing.T) {
	e := echo.New()
	env := newDashboardTestEnv()

	userID := uuid.New()
	env.balanceRepo.Upsert(&domain.AccountBalance{
		UserID: userID,
		Amount: decimal.NewFromInt(12000),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/availability", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	setupUserContext(c, userID)

	err := env.handler.GetAvailability(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response AvailabilityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.CurrentBalance != "12000.00" {
		t.Errorf("Expected balance '12000.00', got %s", response.CurrentBalance)
	}

	// No revenue and no declarations: nothing is owed, the whole balance is free
	if response.Obligations.Total != "0.00" {
		t.Errorf("Expected total obligations '0.00', got %s", response.Obligations.Total)
	}

	if response.AvailableFunds != "12000.00" {
		t.Errorf("Expected available funds '12000.00', got %s", response.AvailableFunds)
	}

	if response.BalanceUpdatedAt == nil {
		t.Error("Expected a balance timestamp")
	}
}

func TestGetAvailability_MissingUserID(t *testing.T) {
	e := echo.New()
	env := newDashboardTestEnv()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/availability", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := env.handler.GetAvailability(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}
