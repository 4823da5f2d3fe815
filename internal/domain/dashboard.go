package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthSummary is one calendar month of the dashboard: cashed-in revenue,
// total expenses (recurring occurrences included), and the month's VAT figures.
type MonthSummary struct {
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	Revenue        decimal.Decimal `json:"revenue"`
	Expenses       decimal.Decimal `json:"expenses"`
	VatCollected   decimal.Decimal `json:"vatCollected"`
	VatRecoverable decimal.Decimal `json:"vatRecoverable"`
	VatNet         decimal.Decimal `json:"vatNet"`
}

// YearSummary composes the per-month figures with the year's Urssaf and
// income-tax views.
type YearSummary struct {
	Year          int                `json:"year"`
	Revenue       decimal.Decimal    `json:"revenue"`
	Expenses      decimal.Decimal    `json:"expenses"`
	VatNet        decimal.Decimal    `json:"vatNet"`
	Months        []MonthSummary     `json:"months"`
	Urssaf        *UrssafYearSummary `json:"urssaf"`
	IncomeTax     *IncomeTaxEstimate `json:"incomeTax"`
}

// Obligations is every amount still owed or projected to be owed to the
// administration. Pending figures come from declared-but-unpaid payment rows;
// estimated figures fill the gaps where no declaration exists yet (except
// income tax, which is always layered under any declared payment).
type Obligations struct {
	PendingVat         decimal.Decimal `json:"pendingVat"`
	EstimatedVat       decimal.Decimal `json:"estimatedVat"`
	PendingUrssaf      decimal.Decimal `json:"pendingUrssaf"`
	EstimatedUrssaf    decimal.Decimal `json:"estimatedUrssaf"`
	PendingIncomeTax   decimal.Decimal `json:"pendingIncomeTax"`
	EstimatedIncomeTax decimal.Decimal `json:"estimatedIncomeTax"`
}

// Total sums all six obligation components.
func (o Obligations) Total() decimal.Decimal {
	return o.PendingVat.
		Add(o.EstimatedVat).
		Add(o.PendingUrssaf).
		Add(o.EstimatedUrssaf).
		Add(o.PendingIncomeTax).
		Add(o.EstimatedIncomeTax)
}

// Availability is the cash-availability projection:
// available = balance - obligations - reserved salary.
type Availability struct {
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	BalanceUpdatedAt *time.Time      `json:"balanceUpdatedAt,omitempty"`
	Obligations      Obligations     `json:"obligations"`
	MonthlySalary    decimal.Decimal `json:"monthlySalary"`
	AvailableFunds   decimal.Decimal `json:"availableFunds"`
}
