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

// VatPaymentHandler handles VAT declaration payment HTTP requests
type VatPaymentHandler struct {
	paymentService *service.VatPaymentService
}

// NewVatPaymentHandler creates a new VatPaymentHandler
func NewVatPaymentHandler(paymentService *service.VatPaymentService) *VatPaymentHandler {
	return &VatPaymentHandler{paymentService: paymentService}
}

// VatPaymentRequest represents the create/update VAT payment request body
type VatPaymentRequest struct {
	Amount      string  `json:"amount"`
	Period      string  `json:"period"`
	Status      string  `json:"status"`
	PaymentDate *string `json:"paymentDate,omitempty"`
	Reference   *string `json:"reference,omitempty"`
	Note        *string `json:"note,omitempty"`
}

// VatPaymentResponse represents a VAT payment in API responses
type VatPaymentResponse struct {
	ID          int32   `json:"id"`
	Amount      string  `json:"amount"`
	Period      string  `json:"period"`
	Status      string  `json:"status"`
	PaymentDate *string `json:"paymentDate,omitempty"`
	Reference   *string `json:"reference,omitempty"`
	Note        *string `json:"note,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toVatPaymentResponse(p *domain.VatPayment) VatPaymentResponse {
	resp := VatPaymentResponse{
		ID:        p.ID,
		Amount:    p.Amount.StringFixed(2),
		Period:    p.Period,
		Status:    string(p.Status),
		Reference: p.Reference,
		Note:      p.Note,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
	if p.PaymentDate != nil {
		d := p.PaymentDate.Format("2006-01-02")
		resp.PaymentDate = &d
	}
	return resp
}

func (h *VatPaymentHandler) parseInput(c echo.Context, req VatPaymentRequest) (service.VatPaymentInput, error) {
	var input service.VatPaymentInput

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

	return service.VatPaymentInput{
		Amount:      amount,
		Period:      req.Period,
		Status:      domain.PaymentStatus(req.Status),
		PaymentDate: paymentDate,
		Reference:   req.Reference,
		Note:        req.Note,
	}, nil
}

func vatPaymentErrorResponse(c echo.Context, err error) (error, bool) {
	switch {
	case errors.Is(err, domain.ErrInvalidPeriod):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "period", Message: "Must be in YYYY-MM format"},
		}), true
	case errors.Is(err, domain.ErrInvalidStatus):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "status", Message: "Must be 'pending' or 'paid'"},
		}), true
	case errors.Is(err, domain.ErrDuplicateDeclaration):
		return NewConflictError(c, "A declaration already exists for this period"), true
	}
	return nil, false
}

// CreatePayment handles POST /api/v1/vat/payments
func (h *VatPaymentHandler) CreatePayment(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req VatPaymentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, errResp := h.parseInput(c, req)
	if errResp != nil {
		return errResp
	}

	payment, err := h.paymentService.CreatePayment(userID, input)
	if err != nil {
		if resp, ok := vatPaymentErrorResponse(c, err); ok {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create VAT payment")
		return NewInternalError(c, "Failed to create VAT payment")
	}

	log.Info().Str("user_id", userID.String()).Str("period", payment.Period).Msg("VAT payment recorded")

	return c.JSON(http.StatusCreated, toVatPaymentResponse(payment))
}

// GetPayments handles GET /api/v1/vat/payments
func (h *VatPaymentHandler) GetPayments(c echo.Context) error {
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

	var status *domain.PaymentStatus
	if statusParam := c.QueryParam("status"); statusParam != "" {
		s := domain.PaymentStatus(statusParam)
		if !domain.ValidPaymentStatus(s) {
			return NewValidationError(c, "Invalid status parameter", []ValidationError{
				{Field: "status", Message: "Must be 'pending' or 'paid'"},
			})
		}
		status = &s
	}

	payments, err := h.paymentService.ListPayments(userID, year, status)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list VAT payments")
		return NewInternalError(c, "Failed to list VAT payments")
	}

	response := make([]VatPaymentResponse, len(payments))
	for i, p := range payments {
		response[i] = toVatPaymentResponse(p)
	}
	return c.JSON(http.StatusOK, response)
}

// UpdatePayment handles PUT /api/v1/vat/payments/:id
func (h *VatPaymentHandler) UpdatePayment(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid payment ID", nil)
	}

	var req VatPaymentRequest
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
		if resp, ok := vatPaymentErrorResponse(c, err); ok {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("payment_id", id).Msg("Failed to update VAT payment")
		return NewInternalError(c, "Failed to update VAT payment")
	}

	return c.JSON(http.StatusOK, toVatPaymentResponse(payment))
}

// MarkPaid handles PATCH /api/v1/vat/payments/:id/mark-paid
func (h *VatPaymentHandler) MarkPaid(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid payment ID", nil)
	}

	var req MarkPaidRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	paymentDate, err := time.Parse("2006-01-02", req.PaymentDate)
	if err != nil {
		return NewValidationError(c, "Invalid payment date", []ValidationError{
			{Field: "paymentDate", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	payment, err := h.paymentService.MarkPaid(userID, id, paymentDate)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) {
			return NewNotFoundError(c, "Payment not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("payment_id", id).Msg("Failed to mark VAT payment paid")
		return NewInternalError(c, "Failed to mark VAT payment paid")
	}

	return c.JSON(http.StatusOK, toVatPaymentResponse(payment))
}

// DeletePayment handles DELETE /api/v1/vat/payments/:id
func (h *VatPaymentHandler) DeletePayment(c echo.Context) error {
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
		log.Error().Err(err).Str("user_id", userID.String()).Int32("payment_id", id).Msg("Failed to delete VAT payment")
		return NewInternalError(c, "Failed to delete VAT payment")
	}

	return c.NoContent(http.StatusNoContent)
}
