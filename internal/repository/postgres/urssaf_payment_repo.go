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

// UrssafPaymentRepository implements domain.UrssafPaymentRepository using PostgreSQL
type UrssafPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewUrssafPaymentRepository creates a new UrssafPaymentRepository
func NewUrssafPaymentRepository(pool *pgxpool.Pool) *UrssafPaymentRepository {
	return &UrssafPaymentRepository{pool: pool}
}

const urssafPaymentColumns = `id, user_id, year, trimester, declared_revenue, amount, status, payment_date, reference, created_at, updated_at`

func scanUrssafPayment(row pgx.Row) (*domain.UrssafPayment, error) {
	var p domain.UrssafPayment
	err := row.Scan(
		&p.ID, &p.UserID, &p.Year, &p.Trimester, &p.DeclaredRevenue, &p.Amount,
		&p.Status, &p.PaymentDate, &p.Reference, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectUrssafPayments(rows pgx.Rows) ([]*domain.UrssafPayment, error) {
	defer rows.Close()
	var payments []*domain.UrssafPayment
	for rows.Next() {
		p, err := scanUrssafPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// Create creates a new Urssaf payment
func (r *UrssafPaymentRepository) Create(payment *domain.UrssafPayment) (*domain.UrssafPayment, error) {
	ctx := context.Background()

	revenue, err := decimalToPgNumeric(payment.DeclaredRevenue)
	if err != nil {
		return nil, fmt.Errorf("invalid declared revenue: %w", err)
	}
	amount, err := decimalToPgNumeric(payment.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	return scanUrssafPayment(r.pool.QueryRow(ctx, `
		INSERT INTO urssaf_payments (user_id, year, trimester, declared_revenue, amount, status, payment_date, reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+urssafPaymentColumns,
		payment.UserID, payment.Year, payment.Trimester, revenue, amount,
		string(payment.Status), dateOrNil(payment.PaymentDate), textOrNil(payment.Reference)))
}

// GetByID retrieves an Urssaf payment by ID, scoped to the user
func (r *UrssafPaymentRepository) GetByID(userID uuid.UUID, id int32) (*domain.UrssafPayment, error) {
	ctx := context.Background()
	payment, err := scanUrssafPayment(r.pool.QueryRow(ctx,
		`SELECT `+urssafPaymentColumns+` FROM urssaf_payments WHERE user_id = $1 AND id = $2`, userID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// GetByQuarter retrieves the user's declaration for a (year, trimester) pair
func (r *UrssafPaymentRepository) GetByQuarter(userID uuid.UUID, year, trimester int) (*domain.UrssafPayment, error) {
	ctx := context.Background()
	payment, err := scanUrssafPayment(r.pool.QueryRow(ctx,
		`SELECT `+urssafPaymentColumns+` FROM urssaf_payments WHERE user_id = $1 AND year = $2 AND trimester = $3`,
		userID, year, trimester))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// ListByUser retrieves the user's Urssaf payments, optionally filtered by year
func (r *UrssafPaymentRepository) ListByUser(userID uuid.UUID, year *int) ([]*domain.UrssafPayment, error) {
	ctx := context.Background()

	query := `SELECT ` + urssafPaymentColumns + ` FROM urssaf_payments WHERE user_id = $1`
	args := []interface{}{userID}

	if year != nil {
		args = append(args, *year)
		query += fmt.Sprintf(" AND year = $%d", len(args))
	}
	query += " ORDER BY year DESC, trimester DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectUrssafPayments(rows)
}

// Update updates an existing Urssaf payment
func (r *UrssafPaymentRepository) Update(payment *domain.UrssafPayment) (*domain.UrssafPayment, error) {
	ctx := context.Background()

	revenue, err := decimalToPgNumeric(payment.DeclaredRevenue)
	if err != nil {
		return nil, fmt.Errorf("invalid declared revenue: %w", err)
	}
	amount, err := decimalToPgNumeric(payment.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	updated, err := scanUrssafPayment(r.pool.QueryRow(ctx, `
		UPDATE urssaf_payments
		SET year = $3, trimester = $4, declared_revenue = $5, amount = $6, status = $7,
		    payment_date = $8, reference = $9, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING `+urssafPaymentColumns,
		payment.UserID, payment.ID, payment.Year, payment.Trimester, revenue, amount,
		string(payment.Status), dateOrNil(payment.PaymentDate), textOrNil(payment.Reference)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes an Urssaf payment
func (r *UrssafPaymentRepository) Delete(userID uuid.UUID, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `DELETE FROM urssaf_payments WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}
