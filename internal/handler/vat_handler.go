package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/centimeapp/centime-backend/internal/middleware"
	"github.com/centimeapp/centime-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// VatHandler handles VAT calculation HTTP requests
type VatHandler struct {
	vatService *service.VatService
}

// NewVatHandler creates a new VatHandler
func NewVatHandler(vatService *service.VatService) *VatHandler {
	return &VatHandler{vatService: vatService}
}

// VatDeclarationResponse represents the monthly VAT return. Case values are
// whole currency units, matching the boxes on the declaration form.
type VatDeclarationResponse struct {
	Year          int   `json:"year"`
	Month         int   `json:"month"`
	CaseA1        int64 `json:"caseA1"`
	CaseB2        int64 `json:"caseB2"`
	Case08        int64 `json:"case08"`
	Case17        int64 `json:"case17"`
	Case19        int64 `json:"case19"`
	Case20        int64 `json:"case20"`
	TvaCollected  int64 `json:"tvaCollected"`
	TvaDeductible int64 `json:"tvaDeductible"`
	TvaNet        int64 `json:"tvaNet"`
}

// VatPeriodSummaryResponse represents the unrounded net VAT position for a date range
type VatPeriodSummaryResponse struct {
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Collected   string `json:"collected"`
	Recoverable string `json:"recoverable"`
	Net         string `json:"net"`
}

func toVatDeclarationResponse(d *domain.VatDeclaration) VatDeclarationResponse {
	return VatDeclarationResponse{
		Year:          d.Year,
		Month:         d.Month,
		CaseA1:        d.CaseA1,
		CaseB2:        d.CaseB2,
		Case08:        d.Case08,
		Case17:        d.Case17,
		Case19:        d.Case19,
		Case20:        d.Case20,
		TvaCollected:  d.TvaCollected,
		TvaDeductible: d.TvaDeductible,
		TvaNet:        d.TvaNet,
	}
}

// GetDeclaration handles GET /api/v1/vat/declaration/:year/:month
func (h *VatHandler) GetDeclaration(c echo.Context) error {
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

	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		return NewValidationError(c, "Invalid month", []ValidationError{
			{Field: "month", Message: "Must be between 1 and 12"},
		})
	}

	declaration, err := h.vatService.MonthlyDeclaration(userID, year, time.Month(month))
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Int("year", year).Int("month", month).Msg("Failed to compute VAT declaration")
		return NewInternalError(c, "Failed to compute VAT declaration")
	}

	return c.JSON(http.StatusOK, toVatDeclarationResponse(declaration))
}

// GetPeriodSummary handles GET /api/v1/vat/summary?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *VatHandler) GetPeriodSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	start, err := time.Parse("2006-01-02", c.QueryParam("start"))
	if err != nil {
		return NewValidationError(c, "Invalid start date", []ValidationError{
			{Field: "start", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	end, err := time.Parse("2006-01-02", c.QueryParam("end"))
	if err != nil {
		return NewValidationError(c, "Invalid end date", []ValidationError{
			{Field: "end", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	if end.Before(start) {
		return NewValidationError(c, "Invalid date range", []ValidationError{
			{Field: "end", Message: "End date must not be before start date"},
		})
	}

	summary, err := h.vatService.PeriodSummary(userID, start, end)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to compute VAT summary")
		return NewInternalError(c, "Failed to compute VAT summary")
	}

	return c.JSON(http.StatusOK, VatPeriodSummaryResponse{
		StartDate:   summary.StartDate.Format("2006-01-02"),
		EndDate:     summary.EndDate.Format("2006-01-02"),
		Collected:   summary.Collected.StringFixed(2),
		Recoverable: summary.Recoverable.StringFixed(2),
		Net:         summary.Net.StringFixed(2),
	})
}
