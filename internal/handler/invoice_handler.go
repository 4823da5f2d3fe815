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

// InvoiceHandler handles invoice-related HTTP requests
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// InvoiceRequest represents the create/update invoice request body
type InvoiceRequest struct {
	ClientName  string  `json:"clientName"`
	InvoiceDate string  `json:"invoiceDate"`
	PaymentDate *string `json:"paymentDate,omitempty"`
	AmountHT    string  `json:"amountHt"`
	TaxRate     string  `json:"taxRate"`
	IsCanceled  bool    `json:"isCanceled"`
}

// MarkPaidRequest carries the payment date for the mark-paid action
type MarkPaidRequest struct {
	PaymentDate string `json:"paymentDate"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID          int32   `json:"id"`
	ClientName  string  `json:"clientName"`
	InvoiceDate string  `json:"invoiceDate"`
	PaymentDate *string `json:"paymentDate,omitempty"`
	AmountHT    string  `json:"amountHt"`
	TaxRate     string  `json:"taxRate"`
	AmountTTC   string  `json:"amountTtc"`
	IsCanceled  bool    `json:"isCanceled"`
	HasReceipt  bool    `json:"hasReceipt"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toInvoiceResponse(inv *domain.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:          inv.ID,
		ClientName:  inv.ClientName,
		InvoiceDate: inv.InvoiceDate.Format("2006-01-02"),
		AmountHT:    inv.AmountHT.StringFixed(2),
		TaxRate:     inv.TaxRate.StringFixed(2),
		AmountTTC:   inv.AmountTTC.StringFixed(2),
		IsCanceled:  inv.IsCanceled,
		HasReceipt:  inv.ReceiptKey != nil,
		CreatedAt:   inv.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   inv.UpdatedAt.Format(time.RFC3339),
	}
	if inv.PaymentDate != nil {
		d := inv.PaymentDate.Format("2006-01-02")
		resp.PaymentDate = &d
	}
	return resp
}

func (h *InvoiceHandler) parseInput(c echo.Context, req InvoiceRequest) (service.InvoiceInput, error) {
	var input service.InvoiceInput

	invoiceDate, err := time.Parse("2006-01-02", req.InvoiceDate)
	if err != nil {
		return input, NewValidationError(c, "Invalid invoice date", []ValidationError{
			{Field: "invoiceDate", Message: "Must be in YYYY-MM-DD format"},
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

	amountHT, err := decimal.NewFromString(req.AmountHT)
	if err != nil {
		return input, NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amountHt", Message: "Must be a valid decimal number"},
		})
	}

	taxRate, err := decimal.NewFromString(req.TaxRate)
	if err != nil {
		return input, NewValidationError(c, "Invalid tax rate", []ValidationError{
			{Field: "taxRate", Message: "Must be a valid decimal number"},
		})
	}

	return service.InvoiceInput{
		ClientName:  req.ClientName,
		InvoiceDate: invoiceDate,
		PaymentDate: paymentDate,
		AmountHT:    amountHT,
		TaxRate:     taxRate,
		IsCanceled:  req.IsCanceled,
	}, nil
}

func invoiceValidationResponse(c echo.Context, err error) (error, bool) {
	switch {
	case errors.Is(err, domain.ErrClientNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "clientName", Message: "Client name is required"},
		}), true
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "clientName", Message: "Client name must be 255 characters or less"},
		}), true
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amountHt", Message: "Amount must not be negative"},
		}), true
	case errors.Is(err, domain.ErrInvalidTaxRate):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "taxRate", Message: "Tax rate must be between 0 and 100"},
		}), true
	}
	return nil, false
}

// CreateInvoice handles POST /api/v1/invoices
func (h *InvoiceHandler) CreateInvoice(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req InvoiceRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, errResp := h.parseInput(c, req)
	if errResp != nil {
		return errResp
	}

	invoice, err := h.invoiceService.CreateInvoice(userID, input)
	if err != nil {
		if resp, ok := invoiceValidationResponse(c, err); ok {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create invoice")
		return NewInternalError(c, "Failed to create invoice")
	}

	log.Info().Str("user_id", userID.String()).Int32("invoice_id", invoice.ID).Msg("Invoice created")

	return c.JSON(http.StatusCreated, toInvoiceResponse(invoice))
}

// GetInvoices handles GET /api/v1/invoices
func (h *InvoiceHandler) GetInvoices(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var filters domain.InvoiceFilters
	if yearParam := c.QueryParam("year"); yearParam != "" {
		year, err := strconv.Atoi(yearParam)
		if err != nil {
			return NewValidationError(c, "Invalid year parameter", []ValidationError{
				{Field: "year", Message: "Must be a number"},
			})
		}
		filters.Year = &year
	}
	if canceledParam := c.QueryParam("canceled"); canceledParam != "" {
		canceled, err := strconv.ParseBool(canceledParam)
		if err != nil {
			return NewValidationError(c, "Invalid canceled parameter", []ValidationError{
				{Field: "canceled", Message: "Must be true or false"},
			})
		}
		filters.Canceled = &canceled
	}
	if paidParam := c.QueryParam("paid"); paidParam != "" {
		paid, err := strconv.ParseBool(paidParam)
		if err != nil {
			return NewValidationError(c, "Invalid paid parameter", []ValidationError{
				{Field: "paid", Message: "Must be true or false"},
			})
		}
		filters.Paid = &paid
	}

	invoices, err := h.invoiceService.ListInvoices(userID, &filters)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list invoices")
		return NewInternalError(c, "Failed to list invoices")
	}

	response := make([]InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		response[i] = toInvoiceResponse(inv)
	}
	return c.JSON(http.StatusOK, response)
}

// GetInvoice handles GET /api/v1/invoices/:id
func (h *InvoiceHandler) GetInvoice(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid invoice ID", nil)
	}

	invoice, err := h.invoiceService.GetInvoice(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrInvoiceNotFound) {
			return NewNotFoundError(c, "Invoice not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("invoice_id", id).Msg("Failed to get invoice")
		return NewInternalError(c, "Failed to get invoice")
	}

	return c.JSON(http.StatusOK, toInvoiceResponse(invoice))
}

// UpdateInvoice handles PUT /api/v1/invoices/:id
func (h *InvoiceHandler) UpdateInvoice(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid invoice ID", nil)
	}

	var req InvoiceRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, errResp := h.parseInput(c, req)
	if errResp != nil {
		return errResp
	}

	invoice, err := h.invoiceService.UpdateInvoice(userID, id, input)
	if err != nil {
		if errors.Is(err, domain.ErrInvoiceNotFound) {
			return NewNotFoundError(c, "Invoice not found")
		}
		if resp, ok := invoiceValidationResponse(c, err); ok {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("invoice_id", id).Msg("Failed to update invoice")
		return NewInternalError(c, "Failed to update invoice")
	}

	return c.JSON(http.StatusOK, toInvoiceResponse(invoice))
}

// ToggleCanceled handles PATCH /api/v1/invoices/:id/toggle-canceled
func (h *InvoiceHandler) ToggleCanceled(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid invoice ID", nil)
	}

	invoice, err := h.invoiceService.ToggleCanceled(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrInvoiceNotFound) {
			return NewNotFoundError(c, "Invoice not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("invoice_id", id).Msg("Failed to toggle invoice")
		return NewInternalError(c, "Failed to toggle invoice")
	}

	return c.JSON(http.StatusOK, toInvoiceResponse(invoice))
}

// MarkPaid handles PATCH /api/v1/invoices/:id/mark-paid
func (h *InvoiceHandler) MarkPaid(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid invoice ID", nil)
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

	invoice, err := h.invoiceService.MarkPaid(userID, id, paymentDate)
	if err != nil {
		if errors.Is(err, domain.ErrInvoiceNotFound) {
			return NewNotFoundError(c, "Invoice not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("invoice_id", id).Msg("Failed to mark invoice paid")
		return NewInternalError(c, "Failed to mark invoice paid")
	}

	return c.JSON(http.StatusOK, toInvoiceResponse(invoice))
}

// DeleteInvoice handles DELETE /api/v1/invoices/:id
func (h *InvoiceHandler) DeleteInvoice(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid invoice ID", nil)
	}

	if err := h.invoiceService.DeleteInvoice(userID, id); err != nil {
		if errors.Is(err, domain.ErrInvoiceNotFound) {
			return NewNotFoundError(c, "Invoice not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("invoice_id", id).Msg("Failed to delete invoice")
		return NewInternalError(c, "Failed to delete invoice")
	}

	return c.NoContent(http.StatusNoContent)
}

// parseIDParam parses the :id route parameter as an int32
func parseIDParam(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(id), nil
}
