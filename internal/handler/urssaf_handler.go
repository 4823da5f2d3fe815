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
)

// UrssafHandler handles Urssaf calculation HTTP requests
type UrssafHandler struct {
	urssafService *service.UrssafService
}

// NewUrssafHandler creates a new UrssafHandler
func NewUrssafHandler(urssafService *service.UrssafService) *UrssafHandler {
	return &UrssafHandler{urssafService: urssafService}
}

// UrssafQuarterResponse represents one trimester's contribution picture
type UrssafQuarterResponse struct {
	Year            int                    `json:"year"`
	Trimester       int                    `json:"trimester"`
	StartDate       string                 `json:"startDate"`
	EndDate         string                 `json:"endDate"`
	Revenue         string                 `json:"revenue"`
	EstimatedAmount string                 `json:"estimatedAmount"`
	Declared        *UrssafPaymentResponse `json:"declared,omitempty"`
}

// UrssafYearSummaryResponse aggregates the year's four trimesters
type UrssafYearSummaryResponse struct {
	Year         int                     `json:"year"`
	Quarters     []UrssafQuarterResponse `json:"quarters"`
	TotalRevenue string                  `json:"totalRevenue"`
	TotalAmount  string                  `json:"totalAmount"`
	TotalPaid    string                  `json:"totalPaid"`
	TotalPending string                  `json:"totalPending"`
}

func toUrssafQuarterResponse(q *domain.UrssafQuarter) UrssafQuarterResponse {
	resp := UrssafQuarterResponse{
		Year:            q.Year,
		Trimester:       q.Trimester,
		StartDate:       q.StartDate.Format("2006-01-02"),
		EndDate:         q.EndDate.Format("2006-01-02"),
		Revenue:         q.Revenue.StringFixed(2),
		EstimatedAmount: q.EstimatedAmount.StringFixed(2),
	}
	if q.Declared != nil {
		declared := toUrssafPaymentResponse(q.Declared)
		resp.Declared = &declared
	}
	return resp
}

// GetQuarter handles GET /api/v1/urssaf/quarters/:year/:trimester
func (h *UrssafHandler) GetQuarter(c echo.Context) error {
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

	trimester, err := strconv.Atoi(c.Param("trimester"))
	if err != nil {
		return NewValidationError(c, "Invalid trimester", []ValidationError{
			{Field: "trimester", Message: "Must be a number"},
		})
	}

	quarter, err := h.urssafService.QuarterReport(userID, year, trimester)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTrimester) {
			return NewValidationError(c, "Invalid trimester", []ValidationError{
				{Field: "trimester", Message: "Must be between 1 and 4"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("year", year).Int("trimester", trimester).Msg("Failed to compute Urssaf quarter")
		return NewInternalError(c, "Failed to compute Urssaf quarter")
	}

	return c.JSON(http.StatusOK, toUrssafQuarterResponse(quarter))
}

// GetYearSummary handles GET /api/v1/urssaf/years/:year
func (h *UrssafHandler) GetYearSummary(c echo.Context) error {
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

	summary, err := h.urssafService.YearSummary(userID, year)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Int("year", year).Msg("Failed to compute Urssaf year summary")
		return NewInternalError(c, "Failed to compute Urssaf year summary")
	}

	quarters := make([]UrssafQuarterResponse, len(summary.Quarters))
	for i := range summary.Quarters {
		quarters[i] = toUrssafQuarterResponse(&summary.Quarters[i])
	}

	return c.JSON(http.StatusOK, UrssafYearSummaryResponse{
		Year:         summary.Year,
		Quarters:     quarters,
		TotalRevenue: summary.TotalRevenue.StringFixed(2),
		TotalAmount:  summary.TotalAmount.StringFixed(2),
		TotalPaid:    summary.TotalPaid.StringFixed(2),
		TotalPending: summary.TotalPending.StringFixed(2),
	})
}
