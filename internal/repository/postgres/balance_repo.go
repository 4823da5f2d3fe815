package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountBalanceRepository implements domain.AccountBalanceRepository using PostgreSQL
type AccountBalanceRepository struct {
	pool *pgxpool.Pool
}

// NewAccountBalanceRepository creates a new AccountBalanceRepository
func NewAccountBalanceRepository(pool *pgxpool.Pool) *AccountBalanceRepository {
	return &AccountBalanceRepository{pool: pool}
}

func scanBalance(row pgx.Row) (*domain.AccountBalance, error) {
	var b domain.AccountBalance
	if err := row.Scan(&b.UserID, &b.Amount, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetByUser retrieves the user's account balance
func (r *AccountBalanceRepository) GetByUser(userID uuid.UUID) (*domain.AccountBalance, error) {
	ctx := context.Background()
	balance, err := scanBalance(r.pool.QueryRow(ctx,
		`SELECT user_id, amount, updated_at FROM account_balances WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBalanceNotFound
		}
		return nil, err
	}
	return balance, nil
}

// Upsert inserts or replaces the user's account balance
func (r *AccountBalanceRepository) Upsert(balance *domain.AccountBalance) (*domain.AccountBalance, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(balance.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	return scanBalance(r.pool.QueryRow(ctx, `
		INSERT INTO account_balances (user_id, amount)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET amount = EXCLUDED.amount, updated_at = now()
		RETURNING user_id, amount, updated_at`,
		balance.UserID, amount))
}
