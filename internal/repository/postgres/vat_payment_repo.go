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

// VatPaymentRepository implements domain.VatPaymentRepository using PostgreSQL
type VatPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewVatPaymentRepository creates a new VatPaymentRepository
func NewVatPaymentRepository(pool *pgxpool.Pool) *VatPaymentRepository {
	return &VatPaymentRepository{pool: pool}
}

const vatPaymentColumns = `id, user_id, amount, period, status, payment_date, reference, note, created_at, updated_at`

func scanVatPayment(row pgx.Row) (*domain.VatPayment, error) {
	var p domain.VatPayment
	err := row.Scan(
		&p.ID, &p.UserID, &p.Amount, &p.Period, &p.Status,
		&p.PaymentDate, &p.Reference, &p.Note, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectVatPayments(rows pgx.Rows) ([]*domain.VatPayment, error) {
	defer rows.Close()
	var payments []*domain.VatPayment
	for rows.Next() {
		p, err := scanVatPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// Create creates a new VAT payment
func (r *VatPaymentRepository) Create(payment *domain.VatPayment) (*domain.VatPayment, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(payment.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	return scanVatPayment(r.pool.QueryRow(ctx, `
		INSERT INTO vat_payments (user_id, amount, period, status, payment_date, reference, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+vatPaymentColumns,
		payment.UserID, amount, payment.Period, string(payment.Status),
		dateOrNil(payment.PaymentDate), textOrNil(payment.Reference), textOrNil(payment.Note)))
}

// GetByID retrieves a VAT payment by ID, scoped to the user
func (r *VatPaymentRepository) GetByID(userID uuid.UUID, id int32) (*domain.VatPayment, error) {
	ctx := context.Background()
	payment, err := scanVatPayment(r.pool.QueryRow(ctx,
		`SELECT `+vatPaymentColumns+` FROM vat_payments WHERE user_id = $1 AND id = $2`, userID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// GetByPeriod retrieves the user's declaration for a "YYYY-MM" period
func (r *VatPaymentRepository) GetByPeriod(userID uuid.UUID, period string) (*domain.VatPayment, error) {
	ctx := context.Background()
	payment, err := scanVatPayment(r.pool.QueryRow(ctx,
		`SELECT `+vatPaymentColumns+` FROM vat_payments WHERE user_id = $1 AND period = $2`, userID, period))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// ListByUser retrieves the user's VAT payments with optional filters
func (r *VatPaymentRepository) ListByUser(userID uuid.UUID, year *int, status *domain.PaymentStatus) ([]*domain.VatPayment, error) {
	ctx := context.Background()

	query := `SELECT ` + vatPaymentColumns + ` FROM vat_payments WHERE user_id = $1`
	args := []interface{}{userID}

	if year != nil {
		args = append(args, fmt.Sprintf("%04d-", *year))
		query += fmt.Sprintf(" AND period LIKE $%d || '%%'", len(args))
	}
	if status != nil {
		args = append(args, string(*status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY period DESC, id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectVatPayments(rows)
}

// Update updates an existing VAT payment
func (r *VatPaymentRepository) Update(payment *domain.VatPayment) (*domain.VatPayment, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(payment.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	updated, err := scanVatPayment(r.pool.QueryRow(ctx, `
		UPDATE vat_payments
		SET amount = $3, period = $4, status = $5, payment_date = $6, reference = $7, note = $8, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING `+vatPaymentColumns,
		payment.UserID, payment.ID, amount, payment.Period, string(payment.Status),
		dateOrNil(payment.PaymentDate), textOrNil(payment.Reference), textOrNil(payment.Note)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a VAT payment
func (r *VatPaymentRepository) Delete(userID uuid.UUID, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `DELETE FROM vat_payments WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}
