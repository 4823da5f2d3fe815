package service

import (
	"errors"
	"testing"
	"time"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/centimeapp/centime-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newUrssafService(invoiceRepo *testutil.MockInvoiceRepository, paymentRepo *testutil.MockUrssafPaymentRepository, settingsRepo *testutil.MockSettingsRepository) *UrssafService {
	return NewUrssafService(invoiceRepo, paymentRepo, NewSettingsService(settingsRepo))
}

func TestUrssafService_QuarterReport_EstimateFromRevenue(t *testing.T) {
	userID := uuid.New()
	invoiceRepo := testutil.NewMockInvoiceRepository()
	paymentRepo := testutil.NewMockUrssafPaymentRepository()
	settingsRepo := testutil.NewMockSettingsRepository()

	settingsRepo.Upsert(&domain.Settings{
		UserID:     userID,
		UrssafRate: decimal.NewFromFloat(22.0),
	})

	// Q2 2025 covers April through June
	invoiceRepo.AddInvoice(paidInvoice(userID, 5000, time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC)))
	invoiceRepo.AddInvoice(paidInvoice(userID, 3000, time.Date(2025, time.June, 28, 0, 0, 0, 0, time.UTC)))
	// Q3, must not count
	invoiceRepo.AddInvoice(paidInvoice(userID, 2000, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)))

	service := newUrssafService(invoiceRepo, paymentRepo, settingsRepo)

	quarter, err := service.QuarterReport(userID, 2025, 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !quarter.Revenue.Equal(decimal.NewFromInt(8000)) {
		t.Errorf("expected revenue 8000, got %s", quarter.Revenue)
	}
	// 8000 x 22% = 1760
	if !quarter.EstimatedAmount.Equal(decimal.NewFromInt(1760)) {
		t.Errorf("expected estimate 1760, got %s", quarter.EstimatedAmount)
	}
	if quarter.Declared != nil {
		t.Error("expected no declared payment")
	}
}

func TestUrssafService_QuarterReport_InvalidTrimester(t *testing.T) {
	service := newUrssafService(testutil.NewMockInvoiceRepository(), testutil.NewMockUrssafPaymentRepository(), testutil.NewMockSettingsRepository())

	for _, trimester := range []int{0, 5, -1} {
		_, err := service.QuarterReport(uuid.New(), 2025, trimester)
		if !errors.Is(err, domain.ErrInvalidTrimester) {
			t.Errorf("trimester %d: expected ErrInvalidTrimester, got %v", trimester, err)
		}
	}
}

func TestUrssafService_QuarterReport_WithDeclaredPayment(t *testing.T) {
	userID := uuid.New()
	invoiceRepo := testutil.NewMockInvoiceRepository()
	paymentRepo := testutil.NewMockUrssafPaymentRepository()
	settingsRepo := testutil.NewMockSettingsRepository()

	paymentRepo.AddPayment(&domain.UrssafPayment{
		UserID:          userID,
		Year:            2025,
		Trimester:       1,
		DeclaredRevenue: decimal.NewFromInt(10000),
		Amount:          decimal.NewFromInt(2200),
		Status:          domain.PaymentStatusPaid,
	})

	service := newUrssafService(invoiceRepo, paymentRepo, settingsRepo)

	quarter, err := service.QuarterReport(userID, 2025, 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if quarter.Declared == nil {
		t.Fatal("expected declared payment")
	}
	if !quarter.Declared.Amount.Equal(decimal.NewFromInt(2200)) {
		t.Errorf("expected declared amount 2200, got %s", quarter.Declared.Amount)
	}
}

func TestUrssafService_QuarterReportTruncated_CutsRevenueWindow(t *testing.T) {
	userID := uuid.New()
	invoiceRepo := testutil.NewMockInvoiceRepository()
	paymentRepo := testutil.NewMockUrssafPaymentRepository()
	settingsRepo := testutil.NewMockSettingsRepository()

	settingsRepo.Upsert(&domain.Settings{
		UserID:     userID,
		UrssafRate: decimal.NewFromInt(22),
	})

	invoiceRepo.AddInvoice(paidInvoice(userID, 5000, time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC)))
	invoiceRepo.AddInvoice(paidInvoice(userID, 3000, time.Date(2025, time.June, 28, 0, 0, 0, 0, time.UTC)))

	service := newUrssafService(invoiceRepo, paymentRepo, settingsRepo)

	// As of end of April the June invoice has not happened yet
	cutoff := time.Date(2025, time.April, 30, 23, 59, 59, 0, time.UTC)
	quarter, err := service.QuarterReportTruncated(userID, 2025, 2, cutoff)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !quarter.Revenue.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("expected truncated revenue 5000, got %s", quarter.Revenue)
	}
	if !quarter.EstimatedAmount.Equal(decimal.NewFromInt(1100)) {
		t.Errorf("expected estimate 1100, got %s", quarter.EstimatedAmount)
	}
}

func TestUrssafService_YearSummary_DeclaredOnlyTotals(t *testing.T) {
	userID := uuid.New()
	invoiceRepo := testutil.NewMockInvoiceRepository()
	paymentRepo := testutil.NewMockUrssafPaymentRepository()
	settingsRepo := testutil.NewMockSettingsRepository()

	settingsRepo.Upsert(&domain.Settings{
		UserID:     userID,
		UrssafRate: decimal.NewFromInt(22),
	})

	// Revenue exists in all quarters, but only Q1 and Q2 are declared
	for _, m := range []time.Month{time.February, time.May, time.August, time.November} {
		invoiceRepo.AddInvoice(paidInvoice(userID, 6000, time.Date(2025, m, 15, 0, 0, 0, 0, time.UTC)))
	}
	paymentRepo.AddPayment(&domain.UrssafPayment{
		UserID:          userID,
		Year:            2025,
		Trimester:       1,
		DeclaredRevenue: decimal.NewFromInt(6000),
		Amount:          decimal.NewFromInt(1320),
		Status:          domain.PaymentStatusPaid,
	})
	paymentRepo.AddPayment(&domain.UrssafPayment{
		UserID:          userID,
		Year:            2025,
		Trimester:       2,
		DeclaredRevenue: decimal.NewFromInt(6000),
		Amount:          decimal.NewFromInt(1320),
		Status:          domain.PaymentStatusPending,
	})

	service := newUrssafService(invoiceRepo, paymentRepo, settingsRepo)

	summary, err := service.YearSummary(userID, 2025)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(summary.Quarters) != 4 {
		t.Fatalf("expected 4 quarters, got %d", len(summary.Quarters))
	}
	// Undeclared Q3/Q4 revenue never reaches the totals
	if !summary.TotalRevenue.Equal(decimal.NewFromInt(12000)) {
		t.Errorf("expected total revenue 12000, got %s", summary.TotalRevenue)
	}
	if !summary.TotalAmount.Equal(decimal.NewFromInt(2640)) {
		t.Errorf("expected total amount 2640, got %s", summary.TotalAmount)
	}
	if !summary.TotalPaid.Equal(decimal.NewFromInt(1320)) {
		t.Errorf("expected total paid 1320, got %s", summary.TotalPaid)
	}
	if !summary.TotalPending.Equal(decimal.NewFromInt(1320)) {
		t.Errorf("expected total pending 1320, got %s", summary.TotalPending)
	}
	// Estimates still show per quarter for the undeclared ones
	if !summary.Quarters[2].EstimatedAmount.Equal(decimal.NewFromInt(1320)) {
		t.Errorf("expected Q3 estimate 1320, got %s", summary.Quarters[2].EstimatedAmount)
	}
}
