package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UrssafQuarter is the contribution picture for one trimester: the revenue
// actually cashed in, the estimate derived from it, and the declared payment
// when one exists. The estimate is a projection; a declared payment is the
// authoritative amount.
type UrssafQuarter struct {
	Year            int             `json:"year"`
	Trimester       int             `json:"trimester"`
	StartDate       time.Time       `json:"startDate"`
	EndDate         time.Time       `json:"endDate"`
	Revenue         decimal.Decimal `json:"revenue"`
	EstimatedAmount decimal.Decimal `json:"estimatedAmount"`
	Declared        *UrssafPayment  `json:"declared,omitempty"`
}

// UrssafYearSummary aggregates a year's four trimesters. The totals cover
// declared payments only; estimates for undeclared quarters are a projection
// metric consumed by the availability projector, not part of these totals.
type UrssafYearSummary struct {
	Year         int             `json:"year"`
	Quarters     []UrssafQuarter `json:"quarters"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	TotalPaid    decimal.Decimal `json:"totalPaid"`
	TotalPending decimal.Decimal `json:"totalPending"`
}
