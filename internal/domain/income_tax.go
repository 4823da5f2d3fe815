package domain

import "github.com/shopspring/decimal"

// BracketTax is the share of tax owed inside one bracket.
type BracketTax struct {
	MinIncome     decimal.Decimal  `json:"minIncome"`
	MaxIncome     *decimal.Decimal `json:"maxIncome,omitempty"`
	Rate          decimal.Decimal  `json:"rate"`
	TaxableAmount decimal.Decimal  `json:"taxableAmount"`
	TaxAmount     decimal.Decimal  `json:"taxAmount"`
}

// IncomeTaxEstimate is the progressive income-tax calculation for a year.
type IncomeTaxEstimate struct {
	Year             int             `json:"year"`
	Revenue          decimal.Decimal `json:"revenue"`
	DeductionRate    decimal.Decimal `json:"deductionRate"`
	AdditionalIncome decimal.Decimal `json:"additionalIncome"`
	TaxableIncome    decimal.Decimal `json:"taxableIncome"`
	TotalTax         decimal.Decimal `json:"totalTax"`
	Brackets         []BracketTax    `json:"brackets"`
}
