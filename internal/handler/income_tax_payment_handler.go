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

// IncomeTaxPaymentHandler handles income tax payment HTTP requests
type IncomeTaxPaymentHandler struct {
	paymentService *service.IncomeTaxPaymentService
}

// NewIncomeTaxPaymentHandler creates a new IncomeTaxPaymentHandler
func NewIncomeTaxPaymentHandler(paymentService *service.IncomeTaxPaymentService) *IncomeTaxPaymentHandler {
	return &IncomeTaxPaymentHandler{paymentService: paymentService}
}

// IncomeTaxPaymentRequest represents the create/update income tax payment request body
type IncomeTaxPaymentRequest struct {
	Year        int     `json:"year"`
	Amount      string  `json:"amount"`
	Status      string  `json:"status"`
	PaymentDate *string `json:"paymentDate,omitempty"`
	Reference   *string `json:"reference,omitempty"`
}

// IncomeTaxPaymentResponse represents an income tax payment in API responses
type IncomeTaxPaymentResponse struct {
	ID          int32   `json:"id"`
	Year        int     `json:"year"`
	Amount      string  `json:"amount"`
	Status      string  `json:"status"`
	PaymentDate *string `json:"paymentDate,omitempty"`
	Reference   *string `json:"reference,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toIncomeTaxPaymentResponse(p *domain.IncomeTaxPayment) IncomeTaxPaymentResponse {
	resp := IncomeTaxPaymentResponse{
		ID:        p.ID,
		Year:      p.Year,
		Amount:    p.Amount.StringFixed(2),
		Status:    string(p.Status),
		Reference: p.Reference,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
	if p.PaymentDate != nil {
		d := p.PaymentDate.Format("2006-01-02")
		resp.PaymentDate = &d
	}
	return resp
}

func (h *IncomeTaxPaymentHandler) parseInput(c echo.Context, req IncomeTaxPaymentRequest) (service.IncomeTaxPaymentInput, error) {
	var input service.IncomeTaxPaymentInput

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return input, NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	var paymentDate *time.Time
	if req.PaymentDate != nil && *req.PaymentDate != "" {
		d, err := time.Parse("2006-01-02", *req.PaymentDate)
		if err != nil {
			return input, NewValidationError(c, "Invalid payment date", []ValidationError{
				{Field: "paymentDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		paymentDate = &d
	}

	return service.IncomeTaxPaymentInput{
		Year:        req.Year,
		Amount:      amount,
		Status:      domain.PaymentStatus(req.Status),
		PaymentDate: paymentDate,
		Reference:   req.Reference,
	}, nil
}

// CreatePayment handles POST /api/v1/income-tax/payments
func (h *IncomeTaxPaymentHandler) CreatePayment(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req IncomeTaxPaymentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, errResp := h.parseInput(c, req)
	if errResp != nil {
		return errResp
	}

	payment, err := h.paymentService.CreatePayment(userID, input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidStatus) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "status", Message: "Must be 'pending' or 'paid'"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create income tax payment")
		return NewInternalError(c, "Failed to create income tax payment")
	}

	log.Info().Str("user_id", userID.String()).Int("year", payment.Year).Msg("Income tax payment recorded")

	return c.JSON(http.StatusCreated, toIncomeTaxPaymentResponse(payment))
}

// GetPayments handles GET /api/v1/income-tax/payments
func (h *IncomeTaxPaymentHandler) GetPayments(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var year *int
	if yearParam := c.QueryParam("year"); yearParam != "" {
		y, err := strconv.Atoi(yearParam)
		if err != nil {
			return NewValidationError(c, "Invalid year parameter", []ValidationError{
				{Field: "year", Message: "Must be a number"},
			})
		}
		year = &y
	}

	payments, err := h.paymentService.ListPayments(userID, year)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list income tax payments")
		return NewInternalError(c, "Failed to list income tax payments")
	}

	response := make([]IncomeTaxPaymentResponse, len(payments))
	for i, p := range payments {
		response[i] = toIncomeTaxPaymentResponse(p)
	}
	return c.JSON(http.StatusOK, response)
}

// UpdatePayment handles PUT /api/v1/income-tax/payments/:id
func (h *IncomeTaxPaymentHandler) UpdatePayment(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid payment ID", nil)
	}

	var req IncomeTaxPaymentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, errResp := h.parseInput(c, req)
	if errResp != nil {
		return errResp
	}

	payment, err := h.paymentService.UpdatePayment(userID, id, input)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return NewNotFoundError(c, "Payment not found")
		}
		if errors.Is(err, domain.ErrInvalidStatus) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "status", Message: "Must be 'pending' or 'paid'"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("payment_id", id).Msg("Failed to update income tax payment")
		return NewInternalError(c, "Failed to update income tax payment")
	}

	return c.JSON(http.StatusOK, toIncomeTaxPaymentResponse(payment))
}

// DeletePayment handles DELETE /api/v1/income-tax/payments/:id
func (h *IncomeTaxPaymentHandler) DeletePayment(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid payment ID", nil)
	}

	if err := h.paymentService.DeletePayment(userID, id); err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return NewNotFoundError(c, "Payment not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("payment_id", id).Msg("Failed to delete income tax payment")
		return NewInternalError(c, "Failed to delete income tax payment")
	}

	return c.NoContent(http.StatusNoContent)
}
