package service

import (
	"testing"
	"time"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/centimeapp/centime-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newDashboardService(invoiceRepo *testutil.MockInvoiceRepository, expenseRepo *testutil.MockExpenseRepository, settingsRepo *testutil.MockSettingsRepository) *DashboardService {
	settingsService := NewSettingsService(settingsRepo)
	urssafService := NewUrssafService(invoiceRepo, testutil.NewMockUrssafPaymentRepository(), settingsService)
	incomeTaxService := NewIncomeTaxService(invoiceRepo, testutil.NewMockTaxBracketRepository(), settingsService)
	return NewDashboardService(invoiceRepo, expenseRepo, urssafService, incomeTaxService)
}

func TestDashboardService_MonthSummary(t *testing.T) {
	userID := uuid.New()
	invoiceRepo := testutil.NewMockInvoiceRepository()
	expenseRepo := testutil.NewMockExpenseRepository()
	settingsRepo := testutil.NewMockSettingsRepository()

	invoiceRepo.AddInvoice(paidInvoice(userID, 2000, time.Date(2025, time.May, 12, 0, 0, 0, 0, time.UTC)))
	// Paid in June: out of the May summary
	invoiceRepo.AddInvoice(paidInvoice(userID, 999, time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)))

	expenseRepo.AddExpense(&domain.Expense{
		UserID:          userID,
		Description:     "Coworking",
		ExpenseDate:     time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC),
		AmountHT:        decimal.NewFromInt(300),
		TaxAmount:       decimal.NewFromInt(60),
		TaxRecoveryRate: decimal.NewFromInt(100),
		Category:        domain.CategoryFixed,
	})

	service := newDashboardService(invoiceRepo, expenseRepo, settingsRepo)

	summary, err := service.MonthSummary(userID, 2025, time.May)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !summary.Revenue.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("expected revenue 2000, got %s", summary.Revenue)
	}
	if !summary.Expenses.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected expenses 300, got %s", summary.Expenses)
	}
	if !summary.VatCollected.Equal(decimal.NewFromInt(400)) {
		t.Errorf("expected collected VAT 400, got %s", summary.VatCollected)
	}
	if !summary.VatRecoverable.Equal(decimal.NewFromInt(60)) {
		t.Errorf("expected recoverable VAT 60, got %s", summary.VatRecoverable)
	}
	if !summary.VatNet.Equal(decimal.NewFromInt(340)) {
		t.Errorf("expected net VAT 340, got %s", summary.VatNet)
	}
}

func TestDashboardService_MonthSummary_IncludesRecurringOccurrence(t *testing.T) {
	userID := uuid.New()
	invoiceRepo := testutil.NewMockInvoiceRepository()
	expenseRepo := testutil.NewMockExpenseRepository()
	settingsRepo := testutil.NewMockSettingsRepository()

	period := domain.RecurrenceYearly
	start := time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC)
	day := int32(15)
	expenseRepo.AddExpense(&domain.Expense{
		UserID:           userID,
		Description:      "Insurance premium",
		ExpenseDate:      start,
		AmountHT:         decimal.NewFromInt(600),
		TaxAmount:        decimal.Zero,
		TaxRecoveryRate:  decimal.Zero,
		Category:         domain.CategoryRecurring,
		IsRecurring:      true,
		RecurrencePeriod: &period,
		StartMonth:       &start,
		PaymentDay:       &day,
	})

	service := newDashboardService(invoiceRepo, expenseRepo, settingsRepo)

	// Yearly recurrence lands on September of any later year
	september, err := service.MonthSummary(userID, 2025, time.September)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !september.Expenses.Equal(decimal.NewFromInt(600)) {
		t.Errorf("expected expenses 600, got %s", september.Expenses)
	}

	october, err := service.MonthSummary(userID, 2025, time.October)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !october.Expenses.IsZero() {
		t.Errorf("expected no expenses in October, got %s", october.Expenses)
	}
}

func TestDashboardService_YearSummary(t *testing.T) {
	userID := uuid.New()
	invoiceRepo := testutil.NewMockInvoiceRepository()
	expenseRepo := testutil.NewMockExpenseRepository()
	settingsRepo := testutil.NewMockSettingsRepository()

	settingsRepo.Upsert(&domain.Settings{
		UserID:        userID,
		UrssafRate:    decimal.NewFromInt(22),
		DeductionRate: decimal.NewFromInt(25),
	})

	invoiceRepo.AddInvoice(paidInvoice(userID, 20000, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)))
	invoiceRepo.AddInvoice(paidInvoice(userID, 20000, time.Date(2025, time.October, 10, 0, 0, 0, 0, time.UTC)))
	// Previous year, excluded
	invoiceRepo.AddInvoice(paidInvoice(userID, 7777, time.Date(2024, time.December, 20, 0, 0, 0, 0, time.UTC)))

	service := newDashboardService(invoiceRepo, expenseRepo, settingsRepo)

	summary, err := service.YearSummary(userID, 2025)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(summary.Months) != 12 {
		t.Fatalf("expected 12 months, got %d", len(summary.Months))
	}
	if !summary.Revenue.Equal(decimal.NewFromInt(40000)) {
		t.Errorf("expected revenue 40000, got %s", summary.Revenue)
	}
	if !summary.Months[2].Revenue.Equal(decimal.NewFromInt(20000)) {
		t.Errorf("expected March revenue 20000, got %s", summary.Months[2].Revenue)
	}
	if !summary.Months[3].Revenue.IsZero() {
		t.Errorf("expected April revenue 0, got %s", summary.Months[3].Revenue)
	}

	if summary.Urssaf == nil {
		t.Fatal("expected Urssaf summary")
	}
	// Q1 estimate: 20000 x 22% = 4400
	if !summary.Urssaf.Quarters[0].EstimatedAmount.Equal(decimal.NewFromInt(4400)) {
		t.Errorf("expected Q1 Urssaf estimate 4400, got %s", summary.Urssaf.Quarters[0].EstimatedAmount)
	}

	if summary.IncomeTax == nil {
		t.Fatal("expected income tax estimate")
	}
	// 40000 x 75% = 30000 taxable -> 2165.48 on the built-in scale
	if !summary.IncomeTax.TotalTax.Equal(decimal.NewFromFloat(2165.48)) {
		t.Errorf("expected income tax 2165.48, got %s", summary.IncomeTax.TotalTax)
	}
}
