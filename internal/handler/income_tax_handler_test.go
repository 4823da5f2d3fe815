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

func incomeTaxTestHandler() (*IncomeTaxHandler, *testutil.MockInvoiceRepository, *testutil.MockTaxBracketRepository, *testutil.MockSettingsRepository) {
	invoiceRepo := testutil.NewMockInvoiceRepository()
	bracketRepo := testutil.NewMockTaxBracketRepository()
	settingsRepo := testutil.NewMockSettingsRepository()
	settingsService := service.NewSettingsService(settingsRepo)
	incomeTaxService := service.NewIncomeTaxService(invoiceRepo, bracketRepo, settingsService)
	return NewIncomeTaxHandler(incomeTaxService), invoiceRepo, bracketRepo, settingsRepo
}

func TestGetEstimate_CustomBrackets(t *testing.T) {
	e := echo.New()
	handler, invoiceRepo, bracketRepo, settingsRepo := incomeTaxTestHandler()

	userID := uuid.New()
	settingsRepo.Upsert(&domain.Settings{
		UserID:        userID,
		DeductionRate: decimal.NewFromInt(34),
	})

	max1 := decimal.NewFromInt(10000)
	max2 := decimal.NewFromInt(20000)
	bracketRepo.ReplaceForUserYear(userID, 2025, []*domain.TaxBracket{
		{UserID: &userID, Year: 2025, MinIncome: decimal.Zero, MaxIncome: &max1, Rate: decimal.Zero},
		{UserID: &userID, Year: 2025, MinIncome: max1, MaxIncome: &max2, Rate: decimal.NewFromInt(10)},
		{UserID: &userID, Year: 2025, MinIncome: max2, Rate: decimal.NewFromInt(20)},
	})

	paid := time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)
	invoiceRepo.AddInvoice(&domain.Invoice{
		UserID:      userID,
		ClientName:  "Acme SARL",
		InvoiceDate: time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
		PaymentDate: &paid,
		AmountHT:    decimal.NewFromInt(30000),
		TaxRate:     decimal.NewFromInt(20),
		AmountTTC:   decimal.NewFromInt(36000),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/income-tax/estimate/2025", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("year")
	c.SetParamValues("2025")

	setupUserContext(c, userID)

	err := handler.GetEstimate(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response IncomeTaxEstimateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Revenue != "30000.00" {
		t.Errorf("Expected revenue '30000.00', got %s", response.Revenue)
	}

	// 30000 less the 34% abatement
	if response.TaxableIncome != "19800.00" {
		t.Errorf("Expected taxable income '19800.00', got %s", response.TaxableIncome)
	}

	// Second bracket only: (19800 - 10000) * 10%
	if response.TotalTax != "980.00" {
		t.Errorf("Expected total tax '980.00', got %s", response.TotalTax)
	}

	if len(response.Brackets) != 2 {
		t.Fatalf("Expected 2 contributing brackets, got %d", len(response.Brackets))
	}

	if response.Brackets[1].TaxAmount != "980.00" {
		t.Errorf("Expected second bracket tax '980.00', got %s", response.Brackets[1].TaxAmount)
	}
}

func TestGetEstimate_FallsBackToBuiltinScale(t *testing.T) {
	e := echo.New()
	handler, _, _, settingsRepo := incomeTaxTestHandler()

	userID := uuid.New()
	settingsRepo.Upsert(&domain.Settings{
		UserID:        userID,
		DeductionRate: decimal.NewFromInt(34),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/income-tax/estimate/2025", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("year")
	c.SetParamValues("2025")

	setupUserContext(c, userID)

	err := handler.GetEstimate(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response IncomeTaxEstimateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	// No revenue, no custom or default brackets: the built-in scale applies
	// and zero income owes zero tax.
	if response.TotalTax != "0.00" {
		t.Errorf("Expected total tax '0.00', got %s", response.TotalTax)
	}
}

func TestGetEstimate_InvalidYear(t *testing.T) {
	e := echo.New()
	handler, _, _, _ := incomeTaxTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/income-tax/estimate/abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("year")
	c.SetParamValues("abc")

	setupUserContext(c, uuid.New())

	err := handler.GetEstimate(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}
