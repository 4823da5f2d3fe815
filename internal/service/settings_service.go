package service

import (
	"errors"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/centimeapp/centime-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettingsService manages per-user rates and the year-override fallback chain
type SettingsService struct {
	settingsRepo   domain.SettingsRepository
	eventPublisher websocket.EventPublisher
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(settingsRepo domain.SettingsRepository) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *SettingsService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *SettingsService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// GetSettings returns the user's base settings, creating a zeroed row on first access
func (s *SettingsService) GetSettings(userID uuid.UUID) (*domain.Settings, error) {
	settings, err := s.settingsRepo.GetByUser(userID)
	if errors.Is(err, domain.ErrSettingsNotFound) {
		return s.settingsRepo.Upsert(&domain.Settings{UserID: userID})
	}
	return settings, err
}

// UpdateSettingsInput holds the input for updating settings
type UpdateSettingsInput struct {
	UrssafRate       decimal.Decimal
	IncomeTaxRate    decimal.Decimal
	DeductionRate    decimal.Decimal
	MonthlySalary    decimal.Decimal
	AdditionalIncome decimal.Decimal
}

// UpdateSettings validates and stores the user's base settings
func (s *SettingsService) UpdateSettings(userID uuid.UUID, input UpdateSettingsInput) (*domain.Settings, error) {
	if err := validateRate(input.UrssafRate); err != nil {
		return nil, err
	}
	if err := validateRate(input.IncomeTaxRate); err != nil {
		return nil, err
	}
	if err := validateRate(input.DeductionRate); err != nil {
		return nil, err
	}
	if input.MonthlySalary.IsNegative() || input.AdditionalIncome.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	updated, err := s.settingsRepo.Upsert(&domain.Settings{
		UserID:           userID,
		UrssafRate:       input.UrssafRate,
		IncomeTaxRate:    input.IncomeTaxRate,
		DeductionRate:    input.DeductionRate,
		MonthlySalary:    input.MonthlySalary,
		AdditionalIncome: input.AdditionalIncome,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.SettingsUpdated(updated))
	return updated, nil
}

// SetYearOverrideInput holds the input for a per-year rate override
type SetYearOverrideInput struct {
	Year          int
	UrssafRate    *decimal.Decimal
	IncomeTaxRate *decimal.Decimal
	DeductionRate *decimal.Decimal
}

// SetYearOverride stores per-year rate overrides for the user
func (s *SettingsService) SetYearOverride(userID uuid.UUID, input SetYearOverrideInput) (*domain.YearlyRates, error) {
	for _, rate := range []*decimal.Decimal{input.UrssafRate, input.IncomeTaxRate, input.DeductionRate} {
		if rate != nil {
			if err := validateRate(*rate); err != nil {
				return nil, err
			}
		}
	}

	return s.settingsRepo.UpsertYearOverride(&domain.YearlyRates{
		UserID:        userID,
		Year:          input.Year,
		UrssafRate:    input.UrssafRate,
		IncomeTaxRate: input.IncomeTaxRate,
		DeductionRate: input.DeductionRate,
	})
}

// DeleteYearOverride removes a per-year override
func (s *SettingsService) DeleteYearOverride(userID uuid.UUID, year int) error {
	return s.settingsRepo.DeleteYearOverride(userID, year)
}

// EffectiveRates resolves the rates in effect for a year: each rate is taken
// from the year override when present, falling back to the base settings.
// A user with no settings row at all gets zero rates.
func (s *SettingsService) EffectiveRates(userID uuid.UUID, year int) (*domain.EffectiveRates, error) {
	base, err := s.settingsRepo.GetByUser(userID)
	if errors.Is(err, domain.ErrSettingsNotFound) {
		base = &domain.Settings{UserID: userID}
	} else if err != nil {
		return nil, err
	}

	rates := &domain.EffectiveRates{
		Year:             year,
		UrssafRate:       base.UrssafRate,
		IncomeTaxRate:    base.IncomeTaxRate,
		DeductionRate:    base.DeductionRate,
		MonthlySalary:    base.MonthlySalary,
		AdditionalIncome: base.AdditionalIncome,
	}

	override, err := s.settingsRepo.GetYearOverride(userID, year)
	if errors.Is(err, domain.ErrNotFound) {
		return rates, nil
	}
	if err != nil {
		return nil, err
	}

	if override.UrssafRate != nil {
		rates.UrssafRate = *override.UrssafRate
	}
	if override.IncomeTaxRate != nil {
		rates.IncomeTaxRate = *override.IncomeTaxRate
	}
	if override.DeductionRate != nil {
		rates.DeductionRate = *override.DeductionRate
	}

	return rates, nil
}

func validateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return domain.ErrInvalidTaxRate
	}
	return nil
}
