package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// VatPeriodSummary is the continuous net-VAT figure for an arbitrary date
// range. Values stay unrounded until formatted at the API boundary.
type VatPeriodSummary struct {
	StartDate   time.Time       `json:"startDate"`
	EndDate     time.Time       `json:"endDate"`
	Collected   decimal.Decimal `json:"collected"`
	Recoverable decimal.Decimal `json:"recoverable"`
	Net         decimal.Decimal `json:"net"`
}

// VatDeclaration is the official monthly VAT return broken into its numbered
// cases. Case values are rounded to the nearest whole currency unit, computed
// from unrounded running sums; they are emitted as integers on the wire.
type VatDeclaration struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	// CaseA1: amountHt of invoices paid in the month (cash basis)
	CaseA1 int64 `json:"caseA1"`
	// CaseB2: amountHt of intra-EU expenses in the month
	CaseB2 int64 `json:"caseB2"`
	// Case08: taxable base at the standard 20% rate (A1 + B2)
	Case08 int64 `json:"case08"`
	// Case17: self-assessed VAT on intra-EU acquisitions (B2 x 20%)
	Case17 int64 `json:"case17"`
	// Case19: recoverable VAT on immobilisations (amountHt > 500)
	Case19 int64 `json:"case19"`
	// Case20: other deductible VAT plus case 17
	Case20 int64 `json:"case20"`

	TvaCollected  int64 `json:"tvaCollected"`
	TvaDeductible int64 `json:"tvaDeductible"`
	TvaNet        int64 `json:"tvaNet"`
}
