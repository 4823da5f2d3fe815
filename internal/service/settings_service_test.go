package service

import (
	"errors"
	"testing"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/centimeapp/centime-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestSettingsService_GetSettings_CreatesZeroedRow(t *testing.T) {
	userID := uuid.New()
	settingsRepo := testutil.NewMockSettingsRepository()
	service := NewSettingsService(settingsRepo)

	settings, err := service.GetSettings(userID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if settings.UserID != userID {
		t.Errorf("expected user %s, got %s", userID, settings.UserID)
	}
	if !settings.UrssafRate.IsZero() {
		t.Errorf("expected zero Urssaf rate, got %s", settings.UrssafRate)
	}

	// The row is persisted, not synthesized per call
	if _, err := settingsRepo.GetByUser(userID); err != nil {
		t.Errorf("expected persisted settings, got %v", err)
	}
}

func TestSettingsService_UpdateSettings_RejectsInvalidRates(t *testing.T) {
	service := NewSettingsService(testutil.NewMockSettingsRepository())

	_, err := service.UpdateSettings(uuid.New(), UpdateSettingsInput{
		UrssafRate: decimal.NewFromInt(101),
	})
	if !errors.Is(err, domain.ErrInvalidTaxRate) {
		t.Errorf("expected ErrInvalidTaxRate, got %v", err)
	}

	_, err = service.UpdateSettings(uuid.New(), UpdateSettingsInput{
		MonthlySalary: decimal.NewFromInt(-1),
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestSettingsService_EffectiveRates_OverrideChain(t *testing.T) {
	userID := uuid.New()
	settingsRepo := testutil.NewMockSettingsRepository()
	service := NewSettingsService(settingsRepo)

	settingsRepo.Upsert(&domain.Settings{
		UserID:        userID,
		UrssafRate:    decimal.NewFromInt(22),
		DeductionRate: decimal.NewFromInt(25),
		MonthlySalary: decimal.NewFromInt(2500),
	})

	overrideRate := decimal.NewFromFloat(21.2)
	_, err := service.SetYearOverride(userID, SetYearOverrideInput{
		Year:       2024,
		UrssafRate: &overrideRate,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Overridden year: the one overridden rate changes, the rest stay base
	rates, err := service.EffectiveRates(userID, 2024)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !rates.UrssafRate.Equal(overrideRate) {
		t.Errorf("expected Urssaf rate 21.2, got %s", rates.UrssafRate)
	}
	if !rates.DeductionRate.Equal(decimal.NewFromInt(25)) {
		t.Errorf("expected deduction rate 25, got %s", rates.DeductionRate)
	}
	if !rates.MonthlySalary.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("expected monthly salary 2500, got %s", rates.MonthlySalary)
	}

	// Other years fall back to base entirely
	rates, err = service.EffectiveRates(userID, 2025)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !rates.UrssafRate.Equal(decimal.NewFromInt(22)) {
		t.Errorf("expected base Urssaf rate 22, got %s", rates.UrssafRate)
	}
}

func TestSettingsService_EffectiveRates_NoSettingsRow(t *testing.T) {
	service := NewSettingsService(testutil.NewMockSettingsRepository())

	rates, err := service.EffectiveRates(uuid.New(), 2025)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !rates.UrssafRate.IsZero() || !rates.MonthlySalary.IsZero() {
		t.Error("expected all-zero rates for a user with no settings")
	}
}

func TestSettingsService_DeleteYearOverride(t *testing.T) {
	userID := uuid.New()
	settingsRepo := testutil.NewMockSettingsRepository()
	service := NewSettingsService(settingsRepo)

	rate := decimal.NewFromInt(20)
	if _, err := service.SetYearOverride(userID, SetYearOverrideInput{Year: 2024, UrssafRate: &rate}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := service.DeleteYearOverride(userID, 2024); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	rates, err := service.EffectiveRates(userID, 2024)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !rates.UrssafRate.IsZero() {
		t.Errorf("expected base rate after delete, got %s", rates.UrssafRate)
	}
}
