package postgres

import (
	"context"
	"fmt"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaxBracketRepository implements domain.TaxBracketRepository using PostgreSQL
type TaxBracketRepository struct {
	pool *pgxpool.Pool
}

// NewTaxBracketRepository creates a new TaxBracketRepository
func NewTaxBracketRepository(pool *pgxpool.Pool) *TaxBracketRepository {
	return &TaxBracketRepository{pool: pool}
}

const bracketColumns = `id, user_id, year, min_income, max_income, rate`

func scanBracket(row pgx.Row) (*domain.TaxBracket, error) {
	var b domain.TaxBracket
	err := row.Scan(&b.ID, &b.UserID, &b.Year, &b.MinIncome, &b.MaxIncome, &b.Rate)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBrackets(rows pgx.Rows) ([]*domain.TaxBracket, error) {
	defer rows.Close()
	var brackets []*domain.TaxBracket
	for rows.Next() {
		b, err := scanBracket(rows)
		if err != nil {
			return nil, err
		}
		brackets = append(brackets, b)
	}
	return brackets, rows.Err()
}

// ListForUserYear returns the user's custom brackets for a year, ordered by MinIncome
func (r *TaxBracketRepository) ListForUserYear(userID uuid.UUID, year int) ([]*domain.TaxBracket, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		`SELECT `+bracketColumns+` FROM tax_brackets WHERE user_id = $1 AND year = $2 ORDER BY min_income`,
		userID, year)
	if err != nil {
		return nil, err
	}
	return collectBrackets(rows)
}

// ListDefaultsForYear returns the global default brackets for a year, ordered by MinIncome
func (r *TaxBracketRepository) ListDefaultsForYear(year int) ([]*domain.TaxBracket, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		`SELECT `+bracketColumns+` FROM tax_brackets WHERE user_id IS NULL AND year = $1 ORDER BY min_income`,
		year)
	if err != nil {
		return nil, err
	}
	return collectBrackets(rows)
}

// ReplaceForUserYear swaps the user's custom brackets for a year inside a
// transaction so readers never observe a partial set.
func (r *TaxBracketRepository) ReplaceForUserYear(userID uuid.UUID, year int, brackets []*domain.TaxBracket) ([]*domain.TaxBracket, error) {
	ctx := context.Background()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM tax_brackets WHERE user_id = $1 AND year = $2`, userID, year); err != nil {
		return nil, err
	}

	inserted := make([]*domain.TaxBracket, 0, len(brackets))
	for _, b := range brackets {
		minIncome, err := decimalToPgNumeric(b.MinIncome)
		if err != nil {
			return nil, fmt.Errorf("invalid min income: %w", err)
		}
		maxIncome, err := numericOrNil(b.MaxIncome)
		if err != nil {
			return nil, fmt.Errorf("invalid max income: %w", err)
		}
		rate, err := decimalToPgNumeric(b.Rate)
		if err != nil {
			return nil, fmt.Errorf("invalid rate: %w", err)
		}

		row, err := scanBracket(tx.QueryRow(ctx, `
			INSERT INTO tax_brackets (user_id, year, min_income, max_income, rate)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+bracketColumns,
			userID, year, minIncome, maxIncome, rate))
		if err != nil {
			return nil, err
		}
		inserted = append(inserted, row)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return inserted, nil
}

// DeleteForUserYear removes the user's custom brackets for a year
func (r *TaxBracketRepository) DeleteForUserYear(userID uuid.UUID, year int) error {
	ctx := context.Background()
	_, err := r.pool.Exec(ctx, `DELETE FROM tax_brackets WHERE user_id = $1 AND year = $2`, userID, year)
	return err
}
