package service

import (
	"time"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/centimeapp/centime-backend/internal/util"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardService composes the calculation engines into monthly and yearly
// summary views
type DashboardService struct {
	invoiceRepo      domain.InvoiceRepository
	expenseRepo      domain.ExpenseRepository
	urssafService    *UrssafService
	incomeTaxService *IncomeTaxService
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	invoiceRepo domain.InvoiceRepository,
	expenseRepo domain.ExpenseRepository,
	urssafService *UrssafService,
	incomeTaxService *IncomeTaxService,
) *DashboardService {
	return &DashboardService{
		invoiceRepo:      invoiceRepo,
		expenseRepo:      expenseRepo,
		urssafService:    urssafService,
		incomeTaxService: incomeTaxService,
	}
}

// MonthSummary returns the dashboard figures for one calendar month
func (s *DashboardService) MonthSummary(userID uuid.UUID, year int, month time.Month) (*domain.MonthSummary, error) {
	start, end := util.MonthRange(year, month)

	invoices, err := s.invoiceRepo.ListPaidBetween(userID, start, end)
	if err != nil {
		return nil, err
	}
	nonRecurring, err := s.expenseRepo.ListNonRecurringBetween(userID, start, end)
	if err != nil {
		return nil, err
	}
	recurring, err := s.expenseRepo.ListRecurring(userID)
	if err != nil {
		return nil, err
	}

	summary := computeMonthSummary(invoices, nonRecurring, recurring, year, month)
	return summary, nil
}

// YearSummary returns the twelve month summaries for a year plus the Urssaf
// and income-tax views. Ledger rows are fetched once for the whole year and
// sliced per month in memory.
func (s *DashboardService) YearSummary(userID uuid.UUID, year int) (*domain.YearSummary, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	invoices, err := s.invoiceRepo.ListPaidBetween(userID, start, end)
	if err != nil {
		return nil, err
	}
	nonRecurring, err := s.expenseRepo.ListNonRecurringBetween(userID, start, end)
	if err != nil {
		return nil, err
	}
	recurring, err := s.expenseRepo.ListRecurring(userID)
	if err != nil {
		return nil, err
	}

	summary := &domain.YearSummary{
		Year:     year,
		Revenue:  decimal.Zero,
		Expenses: decimal.Zero,
		VatNet:   decimal.Zero,
		Months:   make([]domain.MonthSummary, 0, 12),
	}

	for month := time.January; month <= time.December; month++ {
		monthSummary := computeMonthSummary(invoices, nonRecurring, recurring, year, month)
		summary.Months = append(summary.Months, *monthSummary)
		summary.Revenue = summary.Revenue.Add(monthSummary.Revenue)
		summary.Expenses = summary.Expenses.Add(monthSummary.Expenses)
		summary.VatNet = summary.VatNet.Add(monthSummary.VatNet)
	}

	urssaf, err := s.urssafService.YearSummary(userID, year)
	if err != nil {
		return nil, err
	}
	summary.Urssaf = urssaf

	incomeTax, err := s.incomeTaxService.Estimate(userID, year)
	if err != nil {
		return nil, err
	}
	summary.IncomeTax = incomeTax

	return summary, nil
}

func computeMonthSummary(invoices []*domain.Invoice, nonRecurring, recurring []*domain.Expense, year int, month time.Month) *domain.MonthSummary {
	start, end := util.MonthRange(year, month)

	revenue := decimal.Zero
	for _, inv := range invoices {
		if inv.CountsAsRevenueBetween(start, end) {
			revenue = revenue.Add(inv.AmountHT)
		}
	}

	expenses := decimal.Zero
	for _, e := range nonRecurring {
		if e.ExpenseDate.Before(start) || e.ExpenseDate.After(end) {
			continue
		}
		expenses = expenses.Add(e.AmountHT)
	}
	for _, e := range recurring {
		if c, ok := e.MonthContribution(year, month); ok {
			expenses = expenses.Add(c.AmountHT)
		}
	}

	vat := computeVatPeriod(invoices, nonRecurring, recurring, start, end)

	return &domain.MonthSummary{
		Year:           year,
		Month:          int(month),
		Revenue:        revenue,
		Expenses:       expenses,
		VatCollected:   vat.Collected,
		VatRecoverable: vat.Recoverable,
		VatNet:         vat.Net,
	}
}
