package service

import (
	"errors"
	"time"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/centimeapp/centime-backend/internal/util"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UrssafService computes quarterly social-contribution figures
type UrssafService struct {
	invoiceRepo     domain.InvoiceRepository
	paymentRepo     domain.UrssafPaymentRepository
	settingsService *SettingsService
}

// NewUrssafService creates a new UrssafService
func NewUrssafService(invoiceRepo domain.InvoiceRepository, paymentRepo domain.UrssafPaymentRepository, settingsService *SettingsService) *UrssafService {
	return &UrssafService{
		invoiceRepo:     invoiceRepo,
		paymentRepo:     paymentRepo,
		settingsService: settingsService,
	}
}

// QuarterReport returns the revenue, estimate, and declared payment (if any)
// for one trimester.
func (s *UrssafService) QuarterReport(userID uuid.UUID, year, trimester int) (*domain.UrssafQuarter, error) {
	return s.quarterReport(userID, year, trimester, nil)
}

// QuarterReportTruncated is QuarterReport with the revenue window cut at
// cutoff. The availability projector uses it for the in-progress quarter,
// whose revenue only covers months elapsed so far.
func (s *UrssafService) QuarterReportTruncated(userID uuid.UUID, year, trimester int, cutoff time.Time) (*domain.UrssafQuarter, error) {
	return s.quarterReport(userID, year, trimester, &cutoff)
}

func (s *UrssafService) quarterReport(userID uuid.UUID, year, trimester int, cutoff *time.Time) (*domain.UrssafQuarter, error) {
	if trimester < 1 || trimester > 4 {
		return nil, domain.ErrInvalidTrimester
	}

	start, end := util.QuarterRange(year, trimester)
	revenueEnd := end
	if cutoff != nil && cutoff.Before(end) {
		revenueEnd = *cutoff
	}

	invoices, err := s.invoiceRepo.ListPaidBetween(userID, start, revenueEnd)
	if err != nil {
		return nil, err
	}

	revenue := decimal.Zero
	for _, inv := range invoices {
		if inv.CountsAsRevenueBetween(start, revenueEnd) {
			revenue = revenue.Add(inv.AmountHT)
		}
	}

	rates, err := s.settingsService.EffectiveRates(userID, year)
	if err != nil {
		return nil, err
	}
	estimated := revenue.Mul(rates.UrssafRate).Div(decimal.NewFromInt(100))

	quarter := &domain.UrssafQuarter{
		Year:            year,
		Trimester:       trimester,
		StartDate:       start,
		EndDate:         end,
		Revenue:         revenue,
		EstimatedAmount: estimated,
	}

	declared, err := s.paymentRepo.GetByQuarter(userID, year, trimester)
	if err != nil && !errors.Is(err, domain.ErrPaymentNotFound) {
		return nil, err
	}
	quarter.Declared = declared

	return quarter, nil
}

// YearSummary aggregates the four trimesters of a year. Totals cover declared
// payments only; undeclared quarters contribute nothing to them.
func (s *UrssafService) YearSummary(userID uuid.UUID, year int) (*domain.UrssafYearSummary, error) {
	summary := &domain.UrssafYearSummary{
		Year:         year,
		Quarters:     make([]domain.UrssafQuarter, 0, 4),
		TotalRevenue: decimal.Zero,
		TotalAmount:  decimal.Zero,
		TotalPaid:    decimal.Zero,
		TotalPending: decimal.Zero,
	}

	for trimester := 1; trimester <= 4; trimester++ {
		quarter, err := s.QuarterReport(userID, year, trimester)
		if err != nil {
			return nil, err
		}
		summary.Quarters = append(summary.Quarters, *quarter)

		if quarter.Declared == nil {
			continue
		}
		summary.TotalRevenue = summary.TotalRevenue.Add(quarter.Declared.DeclaredRevenue)
		summary.TotalAmount = summary.TotalAmount.Add(quarter.Declared.Amount)
		switch quarter.Declared.Status {
		case domain.PaymentStatusPaid:
			summary.TotalPaid = summary.TotalPaid.Add(quarter.Declared.Amount)
		case domain.PaymentStatusPending:
			summary.TotalPending = summary.TotalPending.Add(quarter.Declared.Amount)
		}
	}

	return summary, nil
}
