package service

import (
	"errors"
	"time"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/centimeapp/centime-backend/internal/util"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AvailabilityService projects how much of the bank balance is actually
// disposable once every owed or projected obligation is set aside
type AvailabilityService struct {
	balanceRepo          domain.AccountBalanceRepository
	vatPaymentRepo       domain.VatPaymentRepository
	urssafPaymentRepo    domain.UrssafPaymentRepository
	incomeTaxPaymentRepo domain.IncomeTaxPaymentRepository
	vatService           *VatService
	urssafService        *UrssafService
	incomeTaxService     *IncomeTaxService
	settingsService      *SettingsService
}

// NewAvailabilityService creates a new AvailabilityService
func NewAvailabilityService(
	balanceRepo domain.AccountBalanceRepository,
	vatPaymentRepo domain.VatPaymentRepository,
	urssafPaymentRepo domain.UrssafPaymentRepository,
	incomeTaxPaymentRepo domain.IncomeTaxPaymentRepository,
	vatService *VatService,
	urssafService *UrssafService,
	incomeTaxService *IncomeTaxService,
	settingsService *SettingsService,
) *AvailabilityService {
	return &AvailabilityService{
		balanceRepo:          balanceRepo,
		vatPaymentRepo:       vatPaymentRepo,
		urssafPaymentRepo:    urssafPaymentRepo,
		incomeTaxPaymentRepo: incomeTaxPaymentRepo,
		vatService:           vatService,
		urssafService:        urssafService,
		incomeTaxService:     incomeTaxService,
		settingsService:      settingsService,
	}
}

// Project computes the availability picture as of now
func (s *AvailabilityService) Project(userID uuid.UUID) (*domain.Availability, error) {
	return s.ProjectAt(userID, time.Now().UTC())
}

// ProjectAt computes availableFunds = balance - obligations - monthly salary
// as of the given reference time.
//
// Estimated VAT and Urssaf only fill gaps: a month or quarter that already
// has a declaration (paid or pending) is excluded from the estimate. The
// income-tax estimate is different by design: it is always added, layered
// under any declared income-tax payments.
func (s *AvailabilityService) ProjectAt(userID uuid.UUID, now time.Time) (*domain.Availability, error) {
	availability := &domain.Availability{
		CurrentBalance: decimal.Zero,
	}

	balance, err := s.balanceRepo.GetByUser(userID)
	if err != nil && !errors.Is(err, domain.ErrBalanceNotFound) {
		return nil, err
	}
	if balance != nil {
		availability.CurrentBalance = balance.Amount
		updatedAt := balance.UpdatedAt
		availability.BalanceUpdatedAt = &updatedAt
	}

	obligations, err := s.computeObligations(userID, now)
	if err != nil {
		return nil, err
	}
	availability.Obligations = *obligations

	rates, err := s.settingsService.EffectiveRates(userID, now.Year())
	if err != nil {
		return nil, err
	}
	availability.MonthlySalary = rates.MonthlySalary

	availability.AvailableFunds = availability.CurrentBalance.
		Sub(obligations.Total()).
		Sub(rates.MonthlySalary)

	return availability, nil
}

func (s *AvailabilityService) computeObligations(userID uuid.UUID, now time.Time) (*domain.Obligations, error) {
	obligations := &domain.Obligations{
		PendingVat:         decimal.Zero,
		EstimatedVat:       decimal.Zero,
		PendingUrssaf:      decimal.Zero,
		EstimatedUrssaf:    decimal.Zero,
		PendingIncomeTax:   decimal.Zero,
		EstimatedIncomeTax: decimal.Zero,
	}

	// Declared-but-unpaid amounts
	vatPayments, err := s.vatPaymentRepo.ListByUser(userID, nil, nil)
	if err != nil {
		return nil, err
	}
	declaredVatPeriods := make(map[string]bool, len(vatPayments))
	for _, p := range vatPayments {
		declaredVatPeriods[p.Period] = true
		if p.Status == domain.PaymentStatusPending {
			obligations.PendingVat = obligations.PendingVat.Add(p.Amount)
		}
	}

	urssafPayments, err := s.urssafPaymentRepo.ListByUser(userID, nil)
	if err != nil {
		return nil, err
	}
	for _, p := range urssafPayments {
		if p.Status == domain.PaymentStatusPending {
			obligations.PendingUrssaf = obligations.PendingUrssaf.Add(p.Amount)
		}
	}

	incomeTaxPayments, err := s.incomeTaxPaymentRepo.ListByUser(userID, nil)
	if err != nil {
		return nil, err
	}
	for _, p := range incomeTaxPayments {
		if p.Status == domain.PaymentStatusPending {
			obligations.PendingIncomeTax = obligations.PendingIncomeTax.Add(p.Amount)
		}
	}

	// Estimated VAT: positive monthly net VAT over last year and this year up
	// to the current month, for months with no declaration. Negative months
	// (VAT credit) floor at zero instead of reducing the estimate.
	estimatedVat, err := s.estimateUndeclaredVat(userID, now, declaredVatPeriods)
	if err != nil {
		return nil, err
	}
	obligations.EstimatedVat = estimatedVat

	estimatedUrssaf, err := s.estimateUndeclaredUrssaf(userID, now)
	if err != nil {
		return nil, err
	}
	obligations.EstimatedUrssaf = estimatedUrssaf

	estimatedIncomeTax, err := s.estimateIncomeTax(userID, now.Year())
	if err != nil {
		return nil, err
	}
	obligations.EstimatedIncomeTax = estimatedIncomeTax

	return obligations, nil
}

func (s *AvailabilityService) estimateUndeclaredVat(userID uuid.UUID, now time.Time, declaredPeriods map[string]bool) (decimal.Decimal, error) {
	estimated := decimal.Zero

	cursor := time.Date(now.Year()-1, time.January, 1, 0, 0, 0, 0, time.UTC)
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(current) {
		year, month := cursor.Year(), cursor.Month()
		cursor = cursor.AddDate(0, 1, 0)

		if declaredPeriods[util.MonthKey(year, month)] {
			continue
		}

		start, end := util.MonthRange(year, month)
		summary, err := s.vatService.PeriodSummary(userID, start, end)
		if err != nil {
			return decimal.Zero, err
		}
		if summary.Net.IsPositive() {
			estimated = estimated.Add(summary.Net)
		}
	}

	return estimated, nil
}

func (s *AvailabilityService) estimateUndeclaredUrssaf(userID uuid.UUID, now time.Time) (decimal.Decimal, error) {
	estimated := decimal.Zero

	currentQuarter := util.QuarterOf(now.Month())
	_, currentMonthEnd := util.MonthRange(now.Year(), now.Month())

	for _, year := range []int{now.Year() - 1, now.Year()} {
		lastQuarter := 4
		if year == now.Year() {
			lastQuarter = currentQuarter
		}
		for trimester := 1; trimester <= lastQuarter; trimester++ {
			var quarter *domain.UrssafQuarter
			var err error
			if year == now.Year() && trimester == currentQuarter {
				// In-progress quarter: revenue covers months elapsed so far
				quarter, err = s.urssafService.QuarterReportTruncated(userID, year, trimester, currentMonthEnd)
			} else {
				quarter, err = s.urssafService.QuarterReport(userID, year, trimester)
			}
			if err != nil {
				return decimal.Zero, err
			}
			if quarter.Declared != nil {
				continue
			}
			estimated = estimated.Add(quarter.EstimatedAmount)
		}
	}

	return estimated, nil
}

// estimateIncomeTax projects the current year's income tax. The flat-rate
// shortcut from settings takes precedence when configured; otherwise the
// progressive bracket calculation runs on the year's revenue.
func (s *AvailabilityService) estimateIncomeTax(userID uuid.UUID, year int) (decimal.Decimal, error) {
	rates, err := s.settingsService.EffectiveRates(userID, year)
	if err != nil {
		return decimal.Zero, err
	}

	estimate, err := s.incomeTaxService.Estimate(userID, year)
	if err != nil {
		return decimal.Zero, err
	}

	if rates.IncomeTaxRate.IsPositive() {
		return estimate.Revenue.Mul(rates.IncomeTaxRate).Div(decimal.NewFromInt(100)), nil
	}
	return estimate.TotalTax, nil
}
