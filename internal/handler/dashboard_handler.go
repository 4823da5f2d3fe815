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

// DashboardHandler handles dashboard aggregation HTTP requests
type DashboardHandler struct {
	dashboardService    *service.DashboardService
	availabilityService *service.AvailabilityService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *service.DashboardService, availabilityService *service.AvailabilityService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService:    dashboardService,
		availabilityService: availabilityService,
	}
}

// MonthSummaryResponse represents one calendar month on the dashboard
type MonthSummaryResponse struct {
	Year           int    `json:"year"`
	Month          int    `json:"month"`
	Revenue        string `json:"revenue"`
	Expenses       string `json:"expenses"`
	VatCollected   string `json:"vatCollected"`
	VatRecoverable string `json:"vatRecoverable"`
	VatNet         string `json:"vatNet"`
}

// YearSummaryResponse composes the per-month figures with the year's tax views
type YearSummaryResponse struct {
	Year      int                        `json:"year"`
	Revenue   string                     `json:"revenue"`
	Expenses  string                     `json:"expenses"`
	VatNet    string                     `json:"vatNet"`
	Months    []MonthSummaryResponse     `json:"months"`
	Urssaf    *UrssafYearSummaryResponse `json:"urssaf"`
	IncomeTax *IncomeTaxEstimateResponse `json:"incomeTax"`
}

// ObligationsResponse breaks down pending and estimated amounts owed
type ObligationsResponse struct {
	PendingVat         string `json:"pendingVat"`
	EstimatedVat       string `json:"estimatedVat"`
	PendingUrssaf      string `json:"pendingUrssaf"`
	EstimatedUrssaf    string `json:"estimatedUrssaf"`
	PendingIncomeTax   string `json:"pendingIncomeTax"`
	EstimatedIncomeTax string `json:"estimatedIncomeTax"`
	Total              string `json:"total"`
}

// AvailabilityResponse represents the cash-availability projection
type AvailabilityResponse struct {
	CurrentBalance   string              `json:"currentBalance"`
	BalanceUpdatedAt *string             `json:"balanceUpdatedAt,omitempty"`
	Obligations      ObligationsResponse `json:"obligations"`
	MonthlySalary    string              `json:"monthlySalary"`
	AvailableFunds   string              `json:"availableFunds"`
}

func toMonthSummaryResponse(m *domain.MonthSummary) MonthSummaryResponse {
	return MonthSummaryResponse{
		Year:           m.Year,
		Month:          m.Month,
		Revenue:        m.Revenue.StringFixed(2),
		Expenses:       m.Expenses.StringFixed(2),
		VatCollected:   m.VatCollected.StringFixed(2),
		VatRecoverable: m.VatRecoverable.StringFixed(2),
		VatNet:         m.VatNet.StringFixed(2),
	}
}

// GetMonthSummary handles GET /api/v1/dashboard/months/:year/:month
func (h *DashboardHandler) GetMonthSummary(c echo.Context) error {
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

	summary, err := h.dashboardService.MonthSummary(userID, year, time.Month(month))
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Int("year", year).Int("month", month).Msg("Failed to compute month summary")
		return NewInternalError(c, "Failed to compute month summary")
	}

	return c.JSON(http.StatusOK, toMonthSummaryResponse(summary))
}

// GetYearSummary handles GET /api/v1/dashboard/years/:year
func (h *DashboardHandler) GetYearSummary(c echo.Context) error {
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

	summary, err := h.dashboardService.YearSummary(userID, year)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Int("year", year).Msg("Failed to compute year summary")
		return NewInternalError(c, "Failed to compute year summary")
	}

	months := make([]MonthSummaryResponse, len(summary.Months))
	for i := range summary.Months {
		months[i] = toMonthSummaryResponse(&summary.Months[i])
	}

	response := YearSummaryResponse{
		Year:     summary.Year,
		Revenue:  summary.Revenue.StringFixed(2),
		Expenses: summary.Expenses.StringFixed(2),
		VatNet:   summary.VatNet.StringFixed(2),
		Months:   months,
	}
	if summary.Urssaf != nil {
		quarters := make([]UrssafQuarterResponse, len(summary.Urssaf.Quarters))
		for i := range summary.Urssaf.Quarters {
			quarters[i] = toUrssafQuarterResponse(&summary.Urssaf.Quarters[i])
		}
		response.Urssaf = &UrssafYearSummaryResponse{
			Year:         summary.Urssaf.Year,
			Quarters:     quarters,
			TotalRevenue: summary.Urssaf.TotalRevenue.StringFixed(2),
			TotalAmount:  summary.Urssaf.TotalAmount.StringFixed(2),
			TotalPaid:    summary.Urssaf.TotalPaid.StringFixed(2),
			TotalPending: summary.Urssaf.TotalPending.StringFixed(2),
		}
	}
	if summary.IncomeTax != nil {
		estimate := toIncomeTaxEstimateResponse(summary.IncomeTax)
		response.IncomeTax = &estimate
	}

	return c.JSON(http.StatusOK, response)
}

// GetAvailability handles GET /api/v1/dashboard/availability
func (h *DashboardHandler) GetAvailability(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	availability, err := h.availabilityService.Project(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to project availability")
		return NewInternalError(c, "Failed to project availability")
	}

	response := AvailabilityResponse{
		CurrentBalance: availability.CurrentBalance.StringFixed(2),
		Obligations: ObligationsResponse{
			PendingVat:         availability.Obligations.PendingVat.StringFixed(2),
			EstimatedVat:       availability.Obligations.EstimatedVat.StringFixed(2),
			PendingUrssaf:      availability.Obligations.PendingUrssaf.StringFixed(2),
			EstimatedUrssaf:    availability.Obligations.EstimatedUrssaf.StringFixed(2),
			PendingIncomeTax:   availability.Obligations.PendingIncomeTax.StringFixed(2),
			EstimatedIncomeTax: availability.Obligations.EstimatedIncomeTax.StringFixed(2),
			Total:              availability.Obligations.Total().StringFixed(2),
		},
		MonthlySalary:  availability.MonthlySalary.StringFixed(2),
		AvailableFunds: availability.AvailableFunds.StringFixed(2),
	}
	if availability.BalanceUpdatedAt != nil {
		t := availability.BalanceUpdatedAt.Format(time.RFC3339)
		response.BalanceUpdatedAt = &t
	}

	return c.JSON(http.StatusOK, response)
}
