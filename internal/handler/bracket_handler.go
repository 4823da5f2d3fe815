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
	"github.com/shopspring/decimal"
)

// BracketHandler handles tax bracket HTTP requests
type BracketHandler struct {
	bracketService   *service.BracketService
	incomeTaxService *service.IncomeTaxService
}

// NewBracketHandler creates a new BracketHandler
func NewBracketHandler(bracketService *service.BracketService, incomeTaxService *service.IncomeTaxService) *BracketHandler {
	return &BracketHandler{
		bracketService:   bracketService,
		incomeTaxService: incomeTaxService,
	}
}

// BracketRequest represents one bracket in the replace request body
type BracketRequest struct {
	MinIncome string  `json:"minIncome"`
	MaxIncome *string `json:"maxIncome,omitempty"`
	Rate      string  `json:"rate"`
}

// ReplaceBracketsRequest represents the replace brackets request body
type ReplaceBracketsRequest struct {
	Brackets []BracketRequest `json:"brackets"`
}

// BracketResponse represents a tax bracket in API responses
type BracketResponse struct {
	MinIncome string  `json:"minIncome"`
	MaxIncome *string `json:"maxIncome,omitempty"`
	Rate      string  `json:"rate"`
	Custom    bool    `json:"custom"`
}

func toBracketResponse(b *domain.TaxBracket) BracketResponse {
	resp := BracketResponse{
		MinIncome: b.MinIncome.StringFixed(2),
		Rate:      b.Rate.StringFixed(2),
		Custom:    b.UserID != nil,
	}
	if b.MaxIncome != nil {
		max := b.MaxIncome.StringFixed(2)
		resp.MaxIncome = &max
	}
	return resp
}

// GetBrackets handles GET /api/v1/brackets/:year.
// Returns the bracket set the calculator would use for the year: the user's
// custom set if one exists, otherwise the defaults, otherwise the built-in scale.
func (h *BracketHandler) GetBrackets(c echo.Context) error {
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

	brackets, err := h.incomeTaxService.ResolveBrackets(userID, year)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Int("year", year).Msg("Failed to resolve brackets")
		return NewInternalError(c, "Failed to resolve brackets")
	}

	response := make([]BracketResponse, len(brackets))
	for i, b := range brackets {
		response[i] = toBracketResponse(b)
	}
	return c.JSON(http.StatusOK, response)
}

// ReplaceBrackets handles PUT /api/v1/brackets/:year
func (h *BracketHandler) ReplaceBrackets(c echo.Context) error {
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

	var req ReplaceBracketsRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	inputs := make([]service.BracketInput, len(req.Brackets))
	for i, b := range req.Brackets {
		minIncome, err := decimal.NewFromString(b.MinIncome)
		if err != nil {
			return NewValidationError(c, "Invalid bracket", []ValidationError{
				{Field: "minIncome", Message: "Must be a valid decimal number"},
			})
		}
		rate, err := decimal.NewFromString(b.Rate)
		if err != nil {
			return NewValidationError(c, "Invalid bracket", []ValidationError{
				{Field: "rate", Message: "Must be a valid decimal number"},
			})
		}
		var maxIncome *decimal.Decimal
		if b.MaxIncome != nil && *b.MaxIncome != "" {
			max, err := decimal.NewFromString(*b.MaxIncome)
			if err != nil {
				return NewValidationError(c, "Invalid bracket", []ValidationError{
					{Field: "maxIncome", Message: "Must be a valid decimal number"},
				})
			}
			maxIncome = &max
		}
		inputs[i] = service.BracketInput{
			MinIncome: minIncome,
			MaxIncome: maxIncome,
			Rate:      rate,
		}
	}

	brackets, err := h.bracketService.ReplaceBrackets(userID, year, inputs)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoBracketsConfigured):
			return NewValidationError(c, "At least one bracket is required", nil)
		case errors.Is(err, domain.ErrInvalidAmount):
			return NewValidationError(c, "Bracket incomes must not be negative", nil)
		case errors.Is(err, domain.ErrInvalidTaxRate):
			return NewValidationError(c, "Bracket rates must be between 0 and 100", nil)
		case errors.Is(err, domain.ErrBracketOrderInvalid):
			return NewValidationError(c, "Brackets must be ordered by ascending minimum income", nil)
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("year", year).Msg("Failed to replace brackets")
		return NewInternalError(c, "Failed to replace brackets")
	}

	log.Info().Str("user_id", userID.String()).Int("year", year).Int("count", len(brackets)).Msg("Tax brackets replaced")

	response := make([]BracketResponse, len(brackets))
	for i, b := range brackets {
		response[i] = toBracketResponse(b)
	}
	return c.JSON(http.StatusOK, response)
}

// DeleteBrackets handles DELETE /api/v1/brackets/:year
func (h *BracketHandler) DeleteBrackets(c echo.Context) error {
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

	if err := h.bracketService.DeleteBrackets(userID, year); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Int("year", year).Msg("Failed to delete brackets")
		return NewInternalError(c, "Failed to delete brackets")
	}

	return c.NoContent(http.StatusNoContent)
}
