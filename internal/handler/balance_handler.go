package handler

import (
	"net/http"
	"time"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/centimeapp/centime-backend/internal/middleware"
	"github.com/centimeapp/centime-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BalanceHandler handles account balance HTTP requests
type BalanceHandler struct {
	balanceService *service.BalanceService
}

// NewBalanceHandler creates a new BalanceHandler
func NewBalanceHandler(balanceService *service.BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceService: balanceService}
}

// BalanceRequest represents the set balance request body
type BalanceRequest struct {
	Amount string `json:"amount"`
}

// BalanceResponse represents the account balance in API responses
type BalanceResponse struct {
	Amount    string  `json:"amount"`
	UpdatedAt *string `json:"updatedAt,omitempty"`
}

func toBalanceResponse(b *domain.AccountBalance) BalanceResponse {
	resp := BalanceResponse{Amount: b.Amount.StringFixed(2)}
	if !b.UpdatedAt.IsZero() {
		t := b.UpdatedAt.Format(time.RFC3339)
		resp.UpdatedAt = &t
	}
	return resp
}

// GetBalance handles GET /api/v1/balance
func (h *BalanceHandler) GetBalance(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	balance, err := h.balanceService.GetBalance(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get balance")
		return NewInternalError(c, "Failed to get balance")
	}

	return c.JSON(http.StatusOK, toBalanceResponse(balance))
}

// SetBalance handles PUT /api/v1/balance
func (h *BalanceHandler) SetBalance(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req BalanceRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	balance, err := h.balanceService.SetBalance(userID, amount)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to set balance")
		return NewInternalError(c, "Failed to set balance")
	}

	log.Info().Str("user_id", userID.String()).Str("amount", amount.StringFixed(2)).Msg("Account balance updated")

	return c.JSON(http.StatusOK, toBalanceResponse(balance))
}
