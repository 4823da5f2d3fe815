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

// IncomeTaxPaymentRepository implements domain.IncomeTaxPaymentRepository using PostgreSQL
type IncomeTaxPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewIncomeTaxPaymentRepository creates a new IncomeTaxPaymentRepository
func NewIncomeTaxPaymentRepository(pool *pgxpool.Pool) *IncomeTaxPaymentRepository {
	return &IncomeTaxPaymentRepository{pool: pool}
}

const incomeTaxPaymentColumns = `id, user_id, year, amount, status, payment_date, reference, created_at, updated_at`

func scanIncomeTaxPayment(row pgx.Row) (*domain.IncomeTaxPayment, error) {
	var p domain.IncomeTaxPayment
	err := row.Scan(
		&p.ID, &p.UserID, &p.Year, &p.Amount, &p.Status,
		&p.PaymentDate, &p.Reference, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create creates a new income tax payment
func (r *IncomeTaxPaymentRepository) Create(payment *domain.IncomeTaxPayment) (*domain.IncomeTaxPayment, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(payment.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	return scanIncomeTaxPayment(r.pool.QueryRow(ctx, `
		INSERT INTO income_tax_payments (user_id, year, amount, status, payment_date, reference)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+incomeTaxPaymentColumns,
		payment.UserID, payment.Year, amount, string(payment.Status),
		dateOrNil(payment.PaymentDate), textOrNil(payment.Reference)))
}

// GetByID retrieves an income tax payment by ID, scoped to the user
func (r *IncomeTaxPaymentRepository) GetByID(userID uuid.UUID, id int32) (*domain.IncomeTaxPayment, error) {
	ctx := context.Background()
	payment, err := scanIncomeTaxPayment(r.pool.QueryRow(ctx,
		`SELECT `+incomeTaxPaymentColumns+` FROM income_tax_payments WHERE user_id = $1 AND id = $2`, userID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// ListByUser retrieves the user's income tax payments, optionally filtered by year
func (r *IncomeTaxPaymentRepository) ListByUser(userID uuid.UUID, year *int) ([]*domain.IncomeTaxPayment, error) {
	ctx := context.Background()

	query := `SELECT ` + incomeTaxPaymentColumns + ` FROM income_tax_payments WHERE user_id = $1`
	args := []interface{}{userID}

	if year != nil {
		args = append(args, *year)
		query += fmt.Sprintf(" AND year = $%d", len(args))
	}
	query += " ORDER BY year DESC, id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.IncomeTaxPayment
	for rows.Next() {
		p, err := scanIncomeTaxPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// Update updates an existing income tax payment
func (r *IncomeTaxPaymentRepository) Update(payment *domain.IncomeTaxPayment) (*domain.IncomeTaxPayment, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(payment.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	updated, err := scanIncomeTaxPayment(r.pool.QueryRow(ctx, `
		UPDATE income_tax_payments
		SET year = $3, amount = $4, status = $5, payment_date = $6, reference = $7, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING `+incomeTaxPaymentColumns,
		payment.UserID, payment.ID, payment.Year, amount, string(payment.Status),
		dateOrNil(payment.PaymentDate), textOrNil(payment.Reference)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes an income tax payment
func (r *IncomeTaxPaymentRepository) Delete(userID uuid.UUID, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `DELETE FROM income_tax_payments WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}
