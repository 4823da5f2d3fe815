package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Settings holds the per-user rates driving the tax calculations.
type Settings struct {
	ID     int32     `json:"id"`
	UserID uuid.UUID `json:"userId"`
	// UrssafRate is the social-contribution rate (% of revenue)
	UrssafRate decimal.Decimal `json:"urssafRate"`
	// IncomeTaxRate is the flat-rate shortcut (% of revenue) used for
	// cash-flow projection, distinct from the progressive bracket calculation
	IncomeTaxRate decimal.Decimal `json:"incomeTaxRate"`
	// DeductionRate is the micro-entreprise flat expense abatement (%)
	DeductionRate decimal.Decimal `json:"deductionRate"`
	// MonthlySalary is the cash reserved for the owner's pay each month
	MonthlySalary decimal.Decimal `json:"monthlySalary"`
	// AdditionalIncome is taxable income earned outside the business
	AdditionalIncome decimal.Decimal `json:"additionalIncome"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// YearlyRates overrides individual rates for a specific year.
// Nil fields fall back to the base settings.
type YearlyRates struct {
	ID            int32            `json:"id"`
	UserID        uuid.UUID        `json:"userId"`
	Year          int              `json:"year"`
	UrssafRate    *decimal.Decimal `json:"urssafRate,omitempty"`
	IncomeTaxRate *decimal.Decimal `json:"incomeTaxRate,omitempty"`
	DeductionRate *decimal.Decimal `json:"deductionRate,omitempty"`
}

// EffectiveRates is the result of applying per-year overrides over base settings.
type EffectiveRates struct {
	Year             int             `json:"year"`
	UrssafRate       decimal.Decimal `json:"urssafRate"`
	IncomeTaxRate    decimal.Decimal `json:"incomeTaxRate"`
	DeductionRate    decimal.Decimal `json:"deductionRate"`
	MonthlySalary    decimal.Decimal `json:"monthlySalary"`
	AdditionalIncome decimal.Decimal `json:"additionalIncome"`
}

type SettingsRepository interface {
	GetByUser(userID uuid.UUID) (*Settings, error)
	Upsert(settings *Settings) (*Settings, error)
	GetYearOverride(userID uuid.UUID, year int) (*YearlyRates, error)
	UpsertYearOverride(rates *YearlyRates) (*YearlyRates, error)
	DeleteYearOverride(userID uuid.UUID, year int) error
}
