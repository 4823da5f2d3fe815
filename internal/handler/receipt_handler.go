package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/centimeapp/centime-backend/internal/middleware"
	"github.com/centimeapp/centime-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ReceiptHandler handles receipt upload/download HTTP requests for
// invoices and expenses.
type ReceiptHandler struct {
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// ReceiptURLResponse carries the presigned download URL
type ReceiptURLResponse struct {
	URL string `json:"url"`
}

func receiptEntityFromParam(c echo.Context) (service.ReceiptEntity, bool) {
	switch c.Param("entity") {
	case "invoices":
		return service.ReceiptEntityInvoice, true
	case "expenses":
		return service.ReceiptEntityExpense, true
	}
	return "", false
}

// Upload handles POST /api/v1/receipts/:entity/:id
func (h *ReceiptHandler) Upload(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if h.receiptService == nil || !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipt uploads are disabled (storage not configured)")
	}

	entity, ok := receiptEntityFromParam(c)
	if !ok {
		return NewValidationError(c, "Invalid entity", []ValidationError{
			{Field: "entity", Message: "Must be 'invoices' or 'expenses'"},
		})
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid entity ID", nil)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	key, err := h.receiptService.Attach(c.Request().Context(), userID, entity, id, data, file.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReceiptTooLarge):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "File too large. Maximum size is 10MB"},
			})
		case errors.Is(err, service.ErrInvalidReceiptFormat):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid format. Supported: JPEG, PNG, WebP, PDF"},
			})
		case errors.Is(err, service.ErrInvalidReceiptData):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "File could not be decoded"},
			})
		case errors.Is(err, domain.ErrInvoiceNotFound), errors.Is(err, domain.ErrExpenseNotFound):
			return NewNotFoundError(c, "Entity not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("entity_id", id).Msg("Failed to attach receipt")
		return NewInternalError(c, "Failed to attach receipt")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("entity", string(entity)).
		Int32("entity_id", id).
		Str("key", key).
		Msg("Receipt attached")

	return c.NoContent(http.StatusCreated)
}

// GetURL handles GET /api/v1/receipts/:entity/:id
func (h *ReceiptHandler) GetURL(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if h.receiptService == nil || !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipt storage not configured")
	}

	entity, ok := receiptEntityFromParam(c)
	if !ok {
		return NewValidationError(c, "Invalid entity", []ValidationError{
			{Field: "entity", Message: "Must be 'invoices' or 'expenses'"},
		})
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid entity ID", nil)
	}

	url, err := h.receiptService.URL(c.Request().Context(), userID, entity, id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoReceipt):
			return NewNotFoundError(c, "No receipt attached")
		case errors.Is(err, domain.ErrInvoiceNotFound), errors.Is(err, domain.ErrExpenseNotFound):
			return NewNotFoundError(c, "Entity not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("entity_id", id).Msg("Failed to generate receipt URL")
		return NewInternalError(c, "Failed to generate receipt URL")
	}

	return c.JSON(http.StatusOK, ReceiptURLResponse{URL: url})
}

// Delete handles DELETE /api/v1/receipts/:entity/:id
func (h *ReceiptHandler) Delete(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	if h.receiptService == nil || !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipt storage not configured")
	}

	entity, ok := receiptEntityFromParam(c)
	if !ok {
		return NewValidationError(c, "Invalid entity", []ValidationError{
			{Field: "entity", Message: "Must be 'invoices' or 'expenses'"},
		})
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid entity ID", nil)
	}

	if err := h.receiptService.Detach(c.Request().Context(), userID, entity, id); err != nil {
		switch {
		case errors.Is(err, service.ErrNoReceipt):
			return NewNotFoundError(c, "No receipt attached")
		case errors.Is(err, domain.ErrInvoiceNotFound), errors.Is(err, domain.ErrExpenseNotFound):
			return NewNotFoundError(c, "Entity not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("entity_id", id).Msg("Failed to detach receipt")
		return NewInternalError(c, "Failed to detach receipt")
	}

	return c.NoContent(http.StatusNoContent)
}
