package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxBracket is one slice of a progressive income-tax table. UserID is nil
// for the global default set. A nil MaxIncome marks the unbounded top bracket.
// Brackets for a year are stored contiguous and ordered by MinIncome
// ascending; the calculator assumes this ordering.
type TaxBracket struct {
	ID        int32            `json:"id"`
	UserID    *uuid.UUID       `json:"userId,omitempty"`
	Year      int              `json:"year"`
	MinIncome decimal.Decimal  `json:"minIncome"`
	MaxIncome *decimal.Decimal `json:"maxIncome,omitempty"`
	Rate      decimal.Decimal  `json:"rate"`
}

type TaxBracketRepository interface {
	// ListForUserYear returns the user's custom brackets for a year, empty if none.
	ListForUserYear(userID uuid.UUID, year int) ([]*TaxBracket, error)
	// ListDefaultsForYear returns the global default brackets for a year, empty if none.
	ListDefaultsForYear(year int) ([]*TaxBracket, error)
	// ReplaceForUserYear atomically swaps the user's custom brackets for a year.
	ReplaceForUserYear(userID uuid.UUID, year int, brackets []*TaxBracket) ([]*TaxBracket, error)
	DeleteForUserYear(userID uuid.UUID, year int) error
}

// FallbackBrackets returns the built-in bracket snapshot (2025 French scale)
// used when neither user-specific nor global brackets exist for a year.
// The calculator must never run against an empty bracket set.
func FallbackBrackets() []*TaxBracket {
	maxOf := func(v int64) *decimal.Decimal {
		d := decimal.NewFromInt(v)
		return &d
	}
	return []*TaxBracket{
		{MinIncome: decimal.Zero, MaxIncome: maxOf(11497), Rate: decimal.Zero},
		{MinIncome: decimal.NewFromInt(11497), MaxIncome: maxOf(29315), Rate: decimal.NewFromInt(11)},
		{MinIncome: decimal.NewFromInt(29315), MaxIncome: maxOf(83823), Rate: decimal.NewFromInt(30)},
		{MinIncome: decimal.NewFromInt(83823), MaxIncome: maxOf(180294), Rate: decimal.NewFromInt(41)},
		{MinIncome: decimal.NewFromInt(180294), MaxIncome: nil, Rate: decimal.NewFromInt(45)},
	}
}
