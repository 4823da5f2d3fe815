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

// ExpenseHandler handles expense-related HTTP requests
type ExpenseHandler struct {
	expenseService *service.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// ExpenseRequest represents the create/update expense request body
type ExpenseRequest struct {
	Description      string  `json:"description"`
	ExpenseDate      string  `json:"expenseDate"`
	AmountHT         string  `json:"amountHt"`
	TaxAmount        string  `json:"taxAmount"`
	TaxRecoveryRate  string  `json:"taxRecoveryRate"`
	Category         string  `json:"category"`
	IsIntraEU        bool    `json:"isIntraEu"`
	IsRecurring      bool    `json:"isRecurring"`
	RecurrencePeriod *string `json:"recurrencePeriod,omitempty"`
	StartMonth       *string `json:"startMonth,omitempty"`
	EndMonth         *string `json:"endMonth,omitempty"`
	PaymentDay       *int32  `json:"paymentDay,omitempty"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID               int32   `json:"id"`
	Description      string  `json:"description"`
	ExpenseDate      string  `json:"expenseDate"`
	AmountHT         string  `json:"amountHt"`
	TaxAmount        string  `json:"taxAmount"`
	TaxRecoveryRate  string  `json:"taxRecoveryRate"`
	Category         string  `json:"category"`
	IsIntraEU        bool    `json:"isIntraEu"`
	IsRecurring      bool    `json:"isRecurring"`
	RecurrencePeriod *string `json:"recurrencePeriod,omitempty"`
	StartMonth       *string `json:"startMonth,omitempty"`
	EndMonth         *string `json:"endMonth,omitempty"`
	PaymentDay       *int32  `json:"paymentDay,omitempty"`
	HasReceipt       bool    `json:"hasReceipt"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt"`
}

func toExpenseResponse(e *domain.Expense) ExpenseResponse {
	resp := ExpenseResponse{
		ID:              e.ID,
		Description:     e.Description,
		ExpenseDate:     e.ExpenseDate.Format("2006-01-02"),
		AmountHT:        e.AmountHT.StringFixed(2),
		TaxAmount:       e.TaxAmount.StringFixed(2),
		TaxRecoveryRate: e.TaxRecoveryRate.StringFixed(2),
		Category:        string(e.Category),
		IsIntraEU:       e.IsIntraEU,
		IsRecurring:     e.IsRecurring,
		PaymentDay:      e.PaymentDay,
		HasReceipt:      e.ReceiptKey != nil,
		CreatedAt:       e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       e.UpdatedAt.Format(time.RFC3339),
	}
	if e.RecurrencePeriod != nil {
		p := string(*e.RecurrencePeriod)
		resp.RecurrencePeriod = &p
	}
	if e.StartMonth != nil {
		d := e.StartMonth.Format("2006-01-02")
		resp.StartMonth = &d
	}
	if e.EndMonth != nil {
		d := e.EndMonth.Format("2006-01-02")
		resp.EndMonth = &d
	}
	return resp
}

func (h *ExpenseHandler) parseInput(c echo.Context, req ExpenseRequest) (service.ExpenseInput, error) {
	var input service.ExpenseInput

	expenseDate, err := time.Parse("2006-01-02", req.ExpenseDate)
	if err != nil {
		return input, NewValidationError(c, "Invalid expense date", []ValidationError{
			{Field: "expenseDate", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	amountHT, err := decimal.NewFromString(req.AmountHT)
	if err != nil {
		return input, NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amountHt", Message: "Must be a valid decimal number"},
		})
	}

	taxAmount, err := decimal.NewFromString(req.TaxAmount)
	if err != nil {
		return input, NewValidationError(c, "Invalid tax amount", []ValidationError{
			{Field: "taxAmount", Message: "Must be a valid decimal number"},
		})
	}

	recoveryRate, err := decimal.NewFromString(req.TaxRecoveryRate)
	if err != nil {
		return input, NewValidationError(c, "Invalid recovery rate", []ValidationError{
			{Field: "taxRecoveryRate", Message: "Must be a valid decimal number"},
		})
	}

	var period *domain.RecurrencePeriod
	if req.RecurrencePeriod != nil && *req.RecurrencePeriod != "" {
		p := domain.RecurrencePeriod(*req.RecurrencePeriod)
		period = &p
	}

	var startMonth, endMonth *time.Time
	if req.StartMonth != nil && *req.StartMonth != "" {
		d, err := time.Parse("2006-01-02", *req.StartMonth)
		if err != nil {
			return input, NewValidationError(c, "Invalid start month", []ValidationError{
				{Field: "startMonth", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		startMonth = &d
	}
	if req.EndMonth != nil && *req.EndMonth != "" {
		d, err := time.Parse("2006-01-02", *req.EndMonth)
		if err != nil {
			return input, NewValidationError(c, "Invalid end month", []ValidationError{
				{Field: "endMonth", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		endMonth = &d
	}

	return service.ExpenseInput{
		Description:      req.Description,
		ExpenseDate:      expenseDate,
		AmountHT:         amountHT,
		TaxAmount:        taxAmount,
		TaxRecoveryRate:  recoveryRate,
		Category:         domain.ExpenseCategory(req.Category),
		IsIntraEU:        req.IsIntraEU,
		IsRecurring:      req.IsRecurring,
		RecurrencePeriod: period,
		StartMonth:       startMonth,
		EndMonth:         endMonth,
		PaymentDay:       req.PaymentDay,
	}, nil
}

func expenseValidationResponse(c echo.Context, err error) (error, bool) {
	switch {
	case errors.Is(err, domain.ErrDescriptionRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "description", Message: "Description is required"},
		}), true
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "description", Message: "Description must be 500 characters or less"},
		}), true
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amountHt", Message: "Amounts must not be negative"},
		}), true
	case errors.Is(err, domain.ErrInvalidRecoveryRate):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "taxRecoveryRate", Message: "Recovery rate must be between 0 and 100"},
		}), true
	case errors.Is(err, domain.ErrInvalidCategory):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "category", Message: "Invalid expense category"},
		}), true
	case errors.Is(err, domain.ErrRecurrenceIncomplete):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "isRecurring", Message: "Recurring expenses require recurrencePeriod, startMonth, and paymentDay"},
		}), true
	case errors.Is(err, domain.ErrInvalidPeriod):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "recurrencePeriod", Message: "Must be 'monthly', 'quarterly', or 'yearly'"},
		}), true
	case errors.Is(err, domain.ErrInvalidPaymentDay):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "paymentDay", Message: "Payment day must be between 1 and 31"},
		}), true
	}
	return nil, false
}

// CreateExpense handles POST /api/v1/expenses
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, errResp := h.parseInput(c, req)
	if errResp != nil {
		return errResp
	}

	expense, err := h.expenseService.CreateExpense(userID, input)
	if err != nil {
		if resp, ok := expenseValidationResponse(c, err); ok {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create expense")
		return NewInternalError(c, "Failed to create expense")
	}

	log.Info().Str("user_id", userID.String()).Int32("expense_id", expense.ID).Msg("Expense created")

	return c.JSON(http.StatusCreated, toExpenseResponse(expense))
}

// GetExpenses handles GET /api/v1/expenses
func (h *ExpenseHandler) GetExpenses(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var filters domain.ExpenseFilters
	if yearParam := c.QueryParam("year"); yearParam != "" {
		year, err := strconv.Atoi(yearParam)
		if err != nil {
			return NewValidationError(c, "Invalid year parameter", []ValidationError{
				{Field: "year", Message: "Must be a number"},
			})
		}
		filters.Year = &year
	}
	if categoryParam := c.QueryParam("category"); categoryParam != "" {
		category := domain.ExpenseCategory(categoryParam)
		if !domain.ValidCategory(category) {
			return NewValidationError(c, "Invalid category parameter", []ValidationError{
				{Field: "category", Message: "Invalid expense category"},
			})
		}
		filters.Category = &category
	}
	if recurringParam := c.QueryParam("recurring"); recurringParam != "" {
		recurring, err := strconv.ParseBool(recurringParam)
		if err != nil {
			return NewValidationError(c, "Invalid recurring parameter", []ValidationError{
				{Field: "recurring", Message: "Must be true or false"},
			})
		}
		filters.Recurring = &recurring
	}

	expenses, err := h.expenseService.ListExpenses(userID, &filters)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list expenses")
		return NewInternalError(c, "Failed to list expenses")
	}

	response := make([]ExpenseResponse, len(expenses))
	for i, e := range expenses {
		response[i] = toExpenseResponse(e)
	}
	return c.JSON(http.StatusOK, response)
}

// GetExpense handles GET /api/v1/expenses/:id
func (h *ExpenseHandler) GetExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	expense, err := h.expenseService.GetExpense(userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrExpenseNotFound) {
			return NewNotFoundError(c, "Expense not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("expense_id", id).Msg("Failed to get expense")
		return NewInternalError(c, "Failed to get expense")
	}

	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

// UpdateExpense handles PUT /api/v1/expenses/:id
func (h *ExpenseHandler) UpdateExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, errResp := h.parseInput(c, req)
	if errResp != nil {
		return errResp
	}

	expense, err := h.expenseService.UpdateExpense(userID, id, input)
	if err != nil {
		if errors.Is(err, domain.ErrExpenseNotFound) {
			return NewNotFoundError(c, "Expense not found")
		}
		if resp, ok := expenseValidationResponse(c, err); ok {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("expense_id", id).Msg("Failed to update expense")
		return NewInternalError(c, "Failed to update expense")
	}

	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

// DeleteExpense handles DELETE /api/v1/expenses/:id
func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid expense ID", nil)
	}

	if err := h.expenseService.DeleteExpense(userID, id); err != nil {
		if errors.Is(err, domain.ErrExpenseNotFound) {
			return NewNotFoundError(c, "Expense not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int32("expense_id", id).Msg("Failed to delete expense")
		return NewInternalError(c, "Failed to delete expense")
	}

	return c.NoContent(http.StatusNoContent)
}
