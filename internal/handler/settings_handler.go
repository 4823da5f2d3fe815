package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/centimeapp/centime-backend/internal/middleware"
	"github.com/centimeapp/centime-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// SettingsHandler handles settings-related HTTP requests
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// SettingsRequest represents the update settings request body
type SettingsRequest struct {
	UrssafRate       string `json:"urssafRate"`
	IncomeTaxRate    string `json:"incomeTaxRate"`
	DeductionRate    string `json:"deductionRate"`
	MonthlySalary    string `json:"monthlySalary"`
	AdditionalIncome string `json:"additionalIncome"`
}

// YearOverrideRequest represents the per-year rate override request body
type YearOverrideRequest struct {
	UrssafRate    *string `json:"urssafRate,omitempty"`
	IncomeTaxRate *string `json:"incomeTaxRate,omitempty"`
	DeductionRate *string `json:"deductionRate,omitempty"`
}

// SettingsResponse represents settings in API responses
type SettingsResponse struct {
	UrssafRate       string `json:"urssafRate"`
	IncomeTaxRate    string `json:"incomeTaxRate"`
	DeductionRate    string `json:"deductionRate"`
	MonthlySalary    string `json:"monthlySalary"`
	AdditionalIncome string `json:"additionalIncome"`
	UpdatedAt        string `json:"updatedAt"`
}

// YearOverrideResponse represents a per-year rate override in API responses
type YearOverrideResponse struct {
	Year          int     `json:"year"`
	UrssafRate    *string `json:"urssafRate,omitempty"`
	IncomeTaxRate *string `json:"incomeTaxRate,omitempty"`
	DeductionRate *string `json:"deductionRate,omitempty"`
}

// EffectiveRatesResponse represents the rates in force for a year
type EffectiveRatesResponse struct {
	Year             int    `json:"year"`
	UrssafRate       string `json:"urssafRate"`
	IncomeTaxRate    string `json:"incomeTaxRate"`
	DeductionRate    string `json:"deductionRate"`
	MonthlySalary    string `json:"monthlySalary"`
	AdditionalIncome string `json:"additionalIncome"`
}

func toSettingsResponse(s *domain.Settings) SettingsResponse {
	return SettingsResponse{
		UrssafRate:       s.UrssafRate.StringFixed(2),
		IncomeTaxRate:    s.IncomeTaxRate.StringFixed(2),
		DeductionRate:    s.DeductionRate.StringFixed(2),
		MonthlySalary:    s.MonthlySalary.StringFixed(2),
		AdditionalIncome: s.AdditionalIncome.StringFixed(2),
		UpdatedAt:        s.UpdatedAt.Format(time.RFC3339),
	}
}

func decimalString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

func toYearOverrideResponse(y *domain.YearlyRates) YearOverrideResponse {
	return YearOverrideResponse{
		Year:          y.Year,
		UrssafRate:    decimalString(y.UrssafRate),
		IncomeTaxRate: decimalString(y.IncomeTaxRate),
		DeductionRate: decimalString(y.DeductionRate),
	}
}

// GetSettings handles GET /api/v1/settings
func (h *SettingsHandler) GetSettings(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	settings, err := h.settingsService.GetSettings(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get settings")
		return NewInternalError(c, "Failed to get settings")
	}

	return c.JSON(http.StatusOK, toSettingsResponse(settings))
}

// UpdateSettings handles PUT /api/v1/settings
func (h *SettingsHandler) UpdateSettings(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req SettingsRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	fields := map[string]string{
		"urssafRate":       req.UrssafRate,
		"incomeTaxRate":    req.IncomeTaxRate,
		"deductionRate":    req.DeductionRate,
		"monthlySalary":    req.MonthlySalary,
		"additionalIncome": req.AdditionalIncome,
	}
	parsed := make(map[string]decimal.Decimal, len(fields))
	for field, raw := range fields {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return NewValidationError(c, "Invalid value", []ValidationError{
				{Field: field, Message: "Must be a valid decimal number"},
			})
		}
		parsed[field] = d
	}

	settings, err := h.settingsService.UpdateSettings(userID, service.UpdateSettingsInput{
		UrssafRate:       parsed["urssafRate"],
		IncomeTaxRate:    parsed["incomeTaxRate"],
		DeductionRate:    parsed["deductionRate"],
		MonthlySalary:    parsed["monthlySalary"],
		AdditionalIncome: parsed["additionalIncome"],
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTaxRate) {
			return NewValidationError(c, "Rates must be between 0 and 100", nil)
		}
		if errors.Is(err, domain.ErrInvalidAmount) {
			return NewValidationError(c, "Amounts must not be negative", nil)
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to update settings")
		return NewInternalError(c, "Failed to update settings")
	}

	log.Info().Str("user_id", userID.String()).Msg("Settings updated")

	return c.JSON(http.StatusOK, toSettingsResponse(settings))
}

// GetEffectiveRates handles GET /api/v1/settings/rates/:year
func (h *SettingsHandler) GetEffectiveRates(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return NewValidationError(c, "Invalid year", []ValidationError{
			{Field: "year", Message: "Must be a number"},
		})
	}

	rates, err := h.settingsService.EffectiveRates(userID, year)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Int("year", year).Msg("Failed to get effective rates")
		return NewInternalError(c, "Failed to get effective rates")
	}

	return c.JSON(http.StatusOK, EffectiveRatesResponse{
		Year:             rates.Year,
		UrssafRate:       rates.UrssafRate.StringFixed(2),
		IncomeTaxRate:    rates.IncomeTaxRate.StringFixed(2),
		DeductionRate:    rates.DeductionRate.StringFixed(2),
		MonthlySalary:    rates.MonthlySalary.StringFixed(2),
		AdditionalIncome: rates.AdditionalIncome.StringFixed(2),
	})
}

// SetYearOverride handles PUT /api/v1/settings/rates/:year
func (h *SettingsHandler) SetYearOverride(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return NewValidationError(c, "Invalid year", []ValidationError{
			{Field: "year", Message: "Must be a number"},
		})
	}

	var req YearOverrideRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	parseOptional := func(field string, raw *string) (*decimal.Decimal, error) {
		if raw == nil || *raw == "" {
			return nil, nil
		}
		d, err := decimal.NewFromString(*raw)
		if err != nil {
			return nil, NewValidationError(c, "Invalid value", []ValidationError{
				{Field: field, Message: "Must be a valid decimal number"},
			})
		}
		return &d, nil
	}

	urssafRate, errResp := parseOptional("urssafRate", req.UrssafRate)
	if errResp != nil {
		return errResp
	}
	incomeTaxRate, errResp := parseOptional("incomeTaxRate", req.IncomeTaxRate)
	if errResp != nil {
		return errResp
	}
	deductionRate, errResp := parseOptional("deductionRate", req.DeductionRate)
	if errResp != nil {
		return errResp
	}

	override, err := h.settingsService.SetYearOverride(userID, service.SetYearOverrideInput{
		Year:          year,
		UrssafRate:    urssafRate,
		IncomeTaxRate: incomeTaxRate,
		DeductionRate: deductionRate,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTaxRate) {
			return NewValidationError(c, "Rates must be between 0 and 100", nil)
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("year", year).Msg("Failed to set year override")
		return NewInternalError(c, "Failed to set year override")
	}

	return c.JSON(http.StatusOK, toYearOverrideResponse(override))
}

// DeleteYearOverride handles DELETE /api/v1/settings/rates/:year
func (h *SettingsHandler) DeleteYearOverride(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return NewValidationError(c, "Invalid year", []ValidationError{
			{Field: "year", Message: "Must be a number"},
		})
	}

	if err := h.settingsService.DeleteYearOverride(userID, year); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return NewNotFoundError(c, "No override for this year")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("year", year).Msg("Failed to delete year override")
		return NewInternalError(c, "Failed to delete year override")
	}

	return c.NoContent(http.StatusNoContent)
}
