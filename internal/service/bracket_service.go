package service

import (
	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BracketService manages per-user custom income-tax bracket tables
type BracketService struct {
	bracketRepo domain.TaxBracketRepository
}

// NewBracketService creates a new BracketService
func NewBracketService(bracketRepo domain.TaxBracketRepository) *BracketService {
	return &BracketService{bracketRepo: bracketRepo}
}

// BracketInput is one bracket row of a replacement table
type BracketInput struct {
	MinIncome decimal.Decimal
	MaxIncome *decimal.Decimal
	Rate      decimal.Decimal
}

func validateBrackets(inputs []BracketInput) error {
	if len(inputs) == 0 {
		return domain.ErrNoBracketsConfigured
	}
	prev := decimal.NewFromInt(-1)
	for _, b := range inputs {
		if b.MinIncome.IsNegative() {
			return domain.ErrInvalidAmount
		}
		if b.Rate.IsNegative() || b.Rate.GreaterThan(decimal.NewFromInt(100)) {
			return domain.ErrInvalidTaxRate
		}
		if b.MaxIncome != nil && b.MaxIncome.LessThanOrEqual(b.MinIncome) {
			return domain.ErrBracketOrderInvalid
		}
		if b.MinIncome.LessThanOrEqual(prev) {
			return domain.ErrBracketOrderInvalid
		}
		prev = b.MinIncome
	}
	return nil
}

// ListBrackets returns the user's custom bracket table for a year, empty if none
func (s *BracketService) ListBrackets(userID uuid.UUID, year int) ([]*domain.TaxBracket, error) {
	return s.bracketRepo.ListForUserYear(userID, year)
}

// ReplaceBrackets swaps the user's whole bracket table for a year. The table
// must be ordered by ascending MinIncome; only the last row may be unbounded.
func (s *BracketService) ReplaceBrackets(userID uuid.UUID, year int, inputs []BracketInput) ([]*domain.TaxBracket, error) {
	if err := validateBrackets(inputs); err != nil {
		return nil, err
	}

	brackets := make([]*domain.TaxBracket, 0, len(inputs))
	for _, in := range inputs {
		brackets = append(brackets, &domain.TaxBracket{
			UserID:    &userID,
			Year:      year,
			MinIncome: in.MinIncome,
			MaxIncome: in.MaxIncome,
			Rate:      in.Rate,
		})
	}
	return s.bracketRepo.ReplaceForUserYear(userID, year, brackets)
}

// DeleteBrackets removes the user's custom table for a year, falling back to
// global defaults for future estimates
func (s *BracketService) DeleteBrackets(userID uuid.UUID, year int) error {
	return s.bracketRepo.DeleteForUserYear(userID, year)
}
