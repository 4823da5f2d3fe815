package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/centimeapp/centime-backend/internal/middleware"
	"github.com/centimeapp/centime-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// IncomeTaxHandler handles income tax estimation HTTP requests
type IncomeTaxHandler struct {
	incomeTaxService *service.IncomeTaxService
}

// NewIncomeTaxHandler creates a new IncomeTaxHandler
func NewIncomeTaxHandler(incomeTaxService *service.IncomeTaxService) *IncomeTaxHandler {
	return &IncomeTaxHandler{incomeTaxService: incomeTaxService}
}

// BracketTaxResponse represents the tax owed inside a single bracket
type BracketTaxResponse struct {
	MinIncome     string  `json:"minIncome"`
	MaxIncome     *string `json:"maxIncome,omitempty"`
	Rate          string  `json:"rate"`
	TaxableAmount string  `json:"taxableAmount"`
	TaxAmount     string  `json:"taxAmount"`
}

// IncomeTaxEstimateResponse represents the progressive income tax estimate
type IncomeTaxEstimateResponse struct {
	Year             int                  `json:"year"`
	Revenue          string               `json:"revenue"`
	DeductionRate    string               `json:"deductionRate"`
	AdditionalIncome string               `json:"additionalIncome"`
	TaxableIncome    string               `json:"taxableIncome"`
	TotalTax         string               `json:"totalTax"`
	Brackets         []BracketTaxResponse `json:"brackets"`
}

func toIncomeTaxEstimateResponse(e *domain.IncomeTaxEstimate) IncomeTaxEstimateResponse {
	brackets := make([]BracketTaxResponse, len(e.Brackets))
	for i, b := range e.Brackets {
		br := BracketTaxResponse{
			MinIncome:     b.MinIncome.StringFixed(2),
			Rate:          b.Rate.StringFixed(2),
			TaxableAmount: b.TaxableAmount.StringFixed(2),
			TaxAmount:     b.TaxAmount.StringFixed(2),
		}
		if b.MaxIncome != nil {
			max := b.MaxIncome.StringFixed(2)
			br.MaxIncome = &max
		}
		brackets[i] = br
	}
	return IncomeTaxEstimateResponse{
		Year:             e.Year,
		Revenue:          e.Revenue.StringFixed(2),
		DeductionRate:    e.DeductionRate.StringFixed(2),
		AdditionalIncome: e.AdditionalIncome.StringFixed(2),
		TaxableIncome:    e.TaxableIncome.StringFixed(2),
		TotalTax:         e.TotalTax.StringFixed(2),
		Brackets:         brackets,
	}
}

// GetEstimate handles GET /api/v1/income-tax/estimate/:year
func (h *IncomeTaxHandler) GetEstimate(c echo.Context) error {
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

	estimate, err := h.incomeTaxService.Estimate(userID, year)
	if err != nil {
		if errors.Is(err, domain.ErrNoBracketsConfigured) {
			return NewValidationError(c, "No tax brackets available for this year", nil)
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("year", year).Msg("Failed to compute income tax estimate")
		return NewInternalError(c, "Failed to compute income tax estimate")
	}

	return c.JSON(http.StatusOK, toIncomeTaxEstimateResponse(estimate))
}
