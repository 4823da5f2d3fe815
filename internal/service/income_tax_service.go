package service

import (
	"fmt"
	"time"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// bracketProvider is one tier of the bracket-source fallback chain
type bracketProvider func(userID uuid.UUID, year int) ([]*domain.TaxBracket, error)

// IncomeTaxService computes the progressive income-tax estimate
type IncomeTaxService struct {
	invoiceRepo     domain.InvoiceRepository
	bracketRepo     domain.TaxBracketRepository
	settingsService *SettingsService
}

// NewIncomeTaxService creates a new IncomeTaxService
func NewIncomeTaxService(invoiceRepo domain.InvoiceRepository, bracketRepo domain.TaxBracketRepository, settingsService *SettingsService) *IncomeTaxService {
	return &IncomeTaxService{
		invoiceRepo:     invoiceRepo,
		bracketRepo:     bracketRepo,
		settingsService: settingsService,
	}
}

// ResolveBrackets walks the bracket-source chain for a year: the user's custom
// brackets, then the global defaults, then the built-in snapshot. The first
// non-empty tier wins. An empty result from every tier is a misconfiguration
// surfaced as an error; zero tax for any income must never come from an empty
// bracket set silently.
func (s *IncomeTaxService) ResolveBrackets(userID uuid.UUID, year int) ([]*domain.TaxBracket, error) {
	providers := []bracketProvider{
		func(userID uuid.UUID, year int) ([]*domain.TaxBracket, error) {
			return s.bracketRepo.ListForUserYear(userID, year)
		},
		func(_ uuid.UUID, year int) ([]*domain.TaxBracket, error) {
			return s.bracketRepo.ListDefaultsForYear(year)
		},
		func(uuid.UUID, int) ([]*domain.TaxBracket, error) {
			return domain.FallbackBrackets(), nil
		},
	}

	for _, provider := range providers {
		brackets, err := provider(userID, year)
		if err != nil {
			return nil, err
		}
		if len(brackets) > 0 {
			return brackets, nil
		}
	}

	return nil, fmt.Errorf("%w: year %d", domain.ErrNoBracketsConfigured, year)
}

// Estimate computes the year's income-tax estimate from cashed-in revenue,
// the flat micro-entreprise abatement, and the resolved progressive brackets.
func (s *IncomeTaxService) Estimate(userID uuid.UUID, year int) (*domain.IncomeTaxEstimate, error) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	invoices, err := s.invoiceRepo.ListPaidBetween(userID, start, end)
	if err != nil {
		return nil, err
	}
	revenue := decimal.Zero
	for _, inv := range invoices {
		if inv.CountsAsRevenueBetween(start, end) {
			revenue = revenue.Add(inv.AmountHT)
		}
	}

	rates, err := s.settingsService.EffectiveRates(userID, year)
	if err != nil {
		return nil, err
	}

	brackets, err := s.ResolveBrackets(userID, year)
	if err != nil {
		return nil, err
	}

	return EstimateFromRevenue(year, revenue, rates.DeductionRate, rates.AdditionalIncome, brackets), nil
}

// EstimateFromRevenue is the pure bracket calculation:
// taxableIncome = revenue x (1 - deductionRate/100) + additionalIncome,
// then progressive application of the brackets in ascending order.
func EstimateFromRevenue(year int, revenue, deductionRate, additionalIncome decimal.Decimal, brackets []*domain.TaxBracket) *domain.IncomeTaxEstimate {
	hundred := decimal.NewFromInt(100)
	taxable := revenue.Mul(hundred.Sub(deductionRate)).Div(hundred).Add(additionalIncome)

	total, breakdown := ApplyBrackets(taxable, brackets)

	return &domain.IncomeTaxEstimate{
		Year:             year,
		Revenue:          revenue,
		DeductionRate:    deductionRate,
		AdditionalIncome: additionalIncome,
		TaxableIncome:    taxable,
		TotalTax:         total,
		Brackets:         breakdown,
	}
}

// ApplyBrackets runs the progressive calculation over brackets assumed sorted
// by ascending MinIncome. It returns the total tax and the per-bracket
// breakdown of contributing brackets, in ascending order.
func ApplyBrackets(taxableIncome decimal.Decimal, brackets []*domain.TaxBracket) (decimal.Decimal, []domain.BracketTax) {
	total := decimal.Zero
	var breakdown []domain.BracketTax

	for _, b := range brackets {
		if taxableIncome.LessThanOrEqual(b.MinIncome) {
			break
		}

		upper := taxableIncome
		if b.MaxIncome != nil && b.MaxIncome.LessThan(upper) {
			upper = *b.MaxIncome
		}
		inBracket := upper.Sub(b.MinIncome)
		tax := inBracket.Mul(b.Rate).Div(decimal.NewFromInt(100))
		total = total.Add(tax)

		breakdown = append(breakdown, domain.BracketTax{
			MinIncome:     b.MinIncome,
			MaxIncome:     b.MaxIncome,
			Rate:          b.Rate,
			TaxableAmount: inBracket,
			TaxAmount:     tax,
		})
	}

	return total, breakdown
}
