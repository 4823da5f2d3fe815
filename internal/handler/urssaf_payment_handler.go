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

// UrssafPaymentHandler handles Urssaf declaration payment HTTP requests
type UrssafPaymentHandler struct {
	paymentService *service.UrssafPaymentService
}

// NewUrssafPaymentHandler creates a new UrssafPaymentHandler
func NewUrssafPaymentHandler(paymentService *service.UrssafPaymentService) *UrssafPaymentHandler {
	return &UrssafPaymentHandler{paymentService: paymentService}
}

// UrssafPaymentRequest represents the create/update Urssaf payment request body
type UrssafPaymentRequest struct {
	Year            int     `json:"year"`
	Trimester       int     `json:"trimester"`
	DeclaredRevenue string  `json:"declaredRevenue"`
	Amount          string  `json:"amount"`
	Status          string  `json:"status"`
	PaymentDate     *string `json:"paymentDate,omitempty"`
	Reference       *string `json:"reference,omitempty"`
}

// UrssafPaymentResponse represents an Urssaf payment in API responses
type UrssafPaymentResponse struct {
	ID              int32   `json:"id"`
	Year            int     `json:"year"`
	Trimester       int     `json:"trimester"`
	DeclaredRevenue string  `json:"declaredRevenue"`
	Amount          string  `json:"amount"`
	Status          string  `json:"status"`
	PaymentDate     *string `json:"paymentDate,omitempty"`
	Reference       *string `json:"reference,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

func toUrssafPaymentResponse(p *domain.UrssafPayment) UrssafPaymentResponse {
	resp := UrssafPaymentResponse{
		ID:              p.ID,
		Year:            p.Year,
		Trimester:       p.Trimester,
		DeclaredRevenue: p.DeclaredRevenue.StringFixed(2),
		Amount:          p.Amount.StringFixed(2),
		Status:          string(p.Status),
		Reference:       p.Reference,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       p.UpdatedAt.Format(time.RFC3339),
	}
	if p.PaymentDate != nil {
		d := p.PaymentDate.Format("2006-01-02")
		resp.PaymentDate = &d
	}
	return resp
}

func (h *UrssafPaymentHandler) parseInput(c echo.Context, req UrssafPaymentRequest) (service.UrssafPaymentInput, error) {
	var input service.UrssafPaymentInput

	revenue, err := decimal.NewFromString(req.DeclaredRevenue)
	if err != nil {
		return input, NewValidationError(c, "Invalid declared revenue", []ValidationError{
			{Field: "declaredRevenue", Message: "Must be a valid decimal number"},
		})
	}

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

	return service.UrssafPaymentInput{
		Year:            req.Year,
		Trimester:       req.Trimester,
		DeclaredRevenue: revenue,
		Amount:          amount,
		Status:          domain.PaymentStatus(req.Status),
		PaymentDate:     paymentDate,
		Reference:       req.Reference,
	}, nil
}

func urssafPaymentErrorResponse(c echo.Context, err error) (error, bool) {
	switch {
	case errors.Is(err, domain.ErrInvalidTrimester):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "trimester", Message: "Must be between 1 and 4"},
		}), true
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "declaredRevenue", Message: "Must not be negative"},
		}), true
	case errors.Is(err, domain.ErrInvalidStatus):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "status", Message: "Must be 'pending' or 'paid'"},
		}), true
	case errors.Is(err, domain.ErrDuplicateDeclaration):
		return NewConflictError(c, "A declaration already exists for this quarter"), true
	}
	return nil, false
}

// CreatePayment handles POST /api/v1/urssaf/payments
func (h *UrssafPaymentHandler) CreatePayment(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req UrssafPaymentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, errResp := h.parseInput(c, req)
	if errResp != nil {
		return errResp
	}

	payment, err := h.paymentService.CreatePayment(userID, input)
	if err != nil {
		if resp, ok := urssafPaymentErrorResponse(c, err); ok {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create Urssaf payment")
		return NewInternalError(c, "Failed to create Urssaf payment")
	}

	log.Info().
		Str("user_id", userID.String()).
		Int("year", payment.Year).
		Int("trimester", payment.Trimester).
		Msg("Urssaf payment recorded")

	return c.JSON(http.StatusCreated, toUrssafPaymentResponse(payment))
}

// GetPayments handles GET /api/v1/urssaf/payments
func (h *UrssafPaymentHandler) GetPayments(c echo.Context) error {
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
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list Urssaf payments")
		return NewInternalError(c, "Failed to list Urssaf payments")
	}

	response := make([]UrssafPaymentResponse, len(payments))
	for i, p := range payments {
		response[i] = toUrssafPaymentResponse(p)
	}
	return c.JSON(http.StatusOK, response)
}

// UpdatePayment handles PUT /api/v1/urssaf/payments/:id
func (h *UrssafPaymentHandler) UpdatePayment(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid payment ID", nil)
	}

	var req UrssafPaymentRequest
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
		if resp, ok := urssafPaymentErrorResponse(c, err); ok {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("payment_id", id).Msg("Failed to update Urssaf payment")
		return NewInternalError(c, "Failed to update Urssaf payment")
	}

	return c.JSON(http.StatusOK, toUrssafPaymentResponse(payment))
}

// DeletePayment handles DELETE /api/v1/urssaf/payments/:id
func (h *UrssafPaymentHandler) DeletePayment(c echo.Context) error {
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
		log.Error().Err(err).Str("user_id", userID.String()).Int32("payment_id", id).Msg("Failed to delete Urssaf payment")
		return NewInternalError(c, "Failed to delete Urssaf payment")
	}

	return c.NoContent(http.StatusNoContent)
}
