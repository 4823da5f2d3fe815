package service

import (
	"time"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/centimeapp/centime-backend/internal/util"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// immobilisationThreshold is the HT amount above which a non-intra-EU expense
// counts as an immobilisation (declaration case 19) instead of other
// deductible VAT (case 20).
var immobilisationThreshold = decimal.NewFromInt(500)

var standardVatRate = decimal.NewFromFloat(0.20)

// VatService computes VAT figures from the ledger
type VatService struct {
	invoiceRepo domain.InvoiceRepository
	expenseRepo domain.ExpenseRepository
}

// NewVatService creates a new VatService
func NewVatService(invoiceRepo domain.InvoiceRepository, expenseRepo domain.ExpenseRepository) *VatService {
	return &VatService{
		invoiceRepo: invoiceRepo,
		expenseRepo: expenseRepo,
	}
}

// PeriodSummary returns collected, recoverable, and net VAT for [start, end].
// Nothing is rounded until the API boundary formats the result.
func (s *VatService) PeriodSummary(userID uuid.UUID, start, end time.Time) (*domain.VatPeriodSummary, error) {
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

	return computeVatPeriod(invoices, nonRecurring, recurring, start, end), nil
}

// MonthlyDeclaration produces the official VAT return for a single month,
// broken into cases A1, B2, 08, 17, 19, and 20. Each case value is rounded to
// the nearest whole currency unit only at the end, from unrounded running sums.
func (s *VatService) MonthlyDeclaration(userID uuid.UUID, year int, month time.Month) (*domain.VatDeclaration, error) {
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

	return computeDeclaration(invoices, nonRecurring, recurring, year, month), nil
}

// expenseLine is a normalized expense row for declaration aggregation:
// either a non-recurring expense or one month's occurrence of a recurring one.
type expenseLine struct {
	amountHT       decimal.Decimal
	taxAmount      decimal.Decimal
	recoverableTax decimal.Decimal
	intraEU        bool
}

// monthExpenseLines merges non-recurring expenses dated in the month with the
// recurring expenses whose expansion lands on the month. Both go through the
// same classification afterwards.
func monthExpenseLines(nonRecurring, recurring []*domain.Expense, year int, month time.Month) []expenseLine {
	lines := make([]expenseLine, 0, len(nonRecurring))
	for _, e := range nonRecurring {
		if e.ExpenseDate.Year() != year || e.ExpenseDate.Month() != month {
			continue
		}
		lines = append(lines, expenseLine{
			amountHT:       e.AmountHT,
			taxAmount:      e.TaxAmount,
			recoverableTax: e.RecoverableTax(),
			intraEU:        e.IsIntraEU,
		})
	}
	for _, e := range recurring {
		c, ok := e.MonthContribution(year, month)
		if !ok {
			continue
		}
		lines = append(lines, expenseLine{
			amountHT:       c.AmountHT,
			taxAmount:      c.TaxAmount,
			recoverableTax: c.RecoverableTax,
			intraEU:        e.IsIntraEU,
		})
	}
	return lines
}

func computeDeclaration(invoices []*domain.Invoice, nonRecurring, recurring []*domain.Expense, year int, month time.Month) *domain.VatDeclaration {
	start, end := util.MonthRange(year, month)

	caseA1 := decimal.Zero
	for _, inv := range invoices {
		if inv.CountsAsRevenueBetween(start, end) {
			caseA1 = caseA1.Add(inv.AmountHT)
		}
	}

	caseB2 := decimal.Zero
	case19 := decimal.Zero
	otherDeductible := decimal.Zero
	for _, line := range monthExpenseLines(nonRecurring, recurring, year, month) {
		if line.intraEU {
			caseB2 = caseB2.Add(line.amountHT)
			continue
		}
		if line.taxAmount.IsPositive() {
			if line.amountHT.GreaterThan(immobilisationThreshold) {
				case19 = case19.Add(line.recoverableTax)
			} else {
				otherDeductible = otherDeductible.Add(line.recoverableTax)
			}
		}
	}

	case08 := caseA1.Add(caseB2)
	case17 := caseB2.Mul(standardVatRate)
	case20 := case17.Add(otherDeductible)

	collected := case08.Mul(standardVatRate)
	deductible := case19.Add(case20)
	net := collected.Sub(deductible)

	return &domain.VatDeclaration{
		Year:          year,
		Month:         int(month),
		CaseA1:        roundWhole(caseA1),
		CaseB2:        roundWhole(caseB2),
		Case08:        roundWhole(case08),
		Case17:        roundWhole(case17),
		Case19:        roundWhole(case19),
		Case20:        roundWhole(case20),
		TvaCollected:  roundWhole(collected),
		TvaDeductible: roundWhole(deductible),
		TvaNet:        roundWhole(net),
	}
}

func computeVatPeriod(invoices []*domain.Invoice, nonRecurring, recurring []*domain.Expense, start, end time.Time) *domain.VatPeriodSummary {
	collected := decimal.Zero
	for _, inv := range invoices {
		if inv.CountsAsRevenueBetween(start, end) {
			collected = collected.Add(inv.VatAmount())
		}
	}

	recoverable := decimal.Zero
	for _, e := range nonRecurring {
		if e.ExpenseDate.Before(start) || e.ExpenseDate.After(end) {
			continue
		}
		recoverable = recoverable.Add(e.RecoverableTax())
	}
	for _, ym := range monthsIn(start, end) {
		for _, e := range recurring {
			c, ok := e.MonthContribution(ym.year, ym.month)
			if !ok {
				continue
			}
			recoverable = recoverable.Add(c.RecoverableTax)
		}
	}

	return &domain.VatPeriodSummary{
		StartDate:   start,
		EndDate:     end,
		Collected:   collected,
		Recoverable: recoverable,
		Net:         collected.Sub(recoverable),
	}
}

type yearMonth struct {
	year  int
	month time.Month
}

// monthsIn returns every calendar month overlapped by [start, end], in order
func monthsIn(start, end time.Time) []yearMonth {
	var months []yearMonth
	cursor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(last) {
		months = append(months, yearMonth{cursor.Year(), cursor.Month()})
		cursor = cursor.AddDate(0, 1, 0)
	}
	return months
}

func roundWhole(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
