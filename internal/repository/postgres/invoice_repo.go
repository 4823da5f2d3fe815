package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InvoiceRepository implements domain.InvoiceRepository using PostgreSQL
type InvoiceRepository struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository creates a new InvoiceRepository
func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

const invoiceColumns = `id, user_id, client_name, invoice_date, payment_date, amount_ht, tax_rate, amount_ttc, is_canceled, receipt_key, created_at, updated_at`

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := row.Scan(
		&inv.ID, &inv.UserID, &inv.ClientName, &inv.InvoiceDate, &inv.PaymentDate,
		&inv.AmountHT, &inv.TaxRate, &inv.AmountTTC, &inv.IsCanceled, &inv.ReceiptKey,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func collectInvoices(rows pgx.Rows) ([]*domain.Invoice, error) {
	defer rows.Close()
	var invoices []*domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// Create creates a new invoice
func (r *InvoiceRepository) Create(invoice *domain.Invoice) (*domain.Invoice, error) {
	ctx := context.Background()

	amountHT, err := decimalToPgNumeric(invoice.AmountHT)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	taxRate, err := decimalToPgNumeric(invoice.TaxRate)
	if err != nil {
		return nil, fmt.Errorf("invalid tax rate: %w", err)
	}
	amountTTC, err := decimalToPgNumeric(invoice.AmountTTC)
	if err != nil {
		return nil, fmt.Errorf("invalid amount TTC: %w", err)
	}

	return scanInvoice(r.pool.QueryRow(ctx, `
		INSERT INTO invoices (user_id, client_name, invoice_date, payment_date, amount_ht, tax_rate, amount_ttc, is_canceled, receipt_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+invoiceColumns,
		invoice.UserID, invoice.ClientName, dateOf(invoice.InvoiceDate), dateOrNil(invoice.PaymentDate),
		amountHT, taxRate, amountTTC, invoice.IsCanceled, textOrNil(invoice.ReceiptKey)))
}

// GetByID retrieves an invoice by ID, scoped to the user
func (r *InvoiceRepository) GetByID(userID uuid.UUID, id int32) (*domain.Invoice, error) {
	ctx := context.Background()
	invoice, err := scanInvoice(r.pool.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE user_id = $1 AND id = $2`, userID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, err
	}
	return invoice, nil
}

// ListByUser retrieves the user's invoices with optional filters
func (r *InvoiceRepository) ListByUser(userID uuid.UUID, filters *domain.InvoiceFilters) ([]*domain.Invoice, error) {
	ctx := context.Background()

	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE user_id = $1`
	args := []interface{}{userID}

	if filters != nil {
		if filters.Year != nil {
			args = append(args, *filters.Year)
			query += fmt.Sprintf(" AND EXTRACT(YEAR FROM invoice_date) = $%d", len(args))
		}
		if filters.Canceled != nil {
			args = append(args, *filters.Canceled)
			query += fmt.Sprintf(" AND is_canceled = $%d", len(args))
		}
		if filters.Paid != nil {
			if *filters.Paid {
				query += " AND payment_date IS NOT NULL"
			} else {
				query += " AND payment_date IS NULL"
			}
		}
	}
	query += " ORDER BY invoice_date DESC, id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectInvoices(rows)
}

// ListPaidBetween retrieves non-canceled invoices with a payment date in [start, end]
func (r *InvoiceRepository) ListPaidBetween(userID uuid.UUID, start, end time.Time) ([]*domain.Invoice, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE user_id = $1
		  AND is_canceled = false
		  AND payment_date IS NOT NULL
		  AND payment_date BETWEEN $2 AND $3
		ORDER BY payment_date, id`,
		userID, dateOf(start), dateOf(end))
	if err != nil {
		return nil, err
	}
	return collectInvoices(rows)
}

// Update updates an existing invoice
func (r *InvoiceRepository) Update(invoice *domain.Invoice) (*domain.Invoice, error) {
	ctx := context.Background()

	amountHT, err := decimalToPgNumeric(invoice.AmountHT)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	taxRate, err := decimalToPgNumeric(invoice.TaxRate)
	if err != nil {
		return nil, fmt.Errorf("invalid tax rate: %w", err)
	}
	amountTTC, err := decimalToPgNumeric(invoice.AmountTTC)
	if err != nil {
		return nil, fmt.Errorf("invalid amount TTC: %w", err)
	}

	updated, err := scanInvoice(r.pool.QueryRow(ctx, `
		UPDATE invoices
		SET client_name = $3, invoice_date = $4, payment_date = $5, amount_ht = $6,
		    tax_rate = $7, amount_ttc = $8, is_canceled = $9, receipt_key = $10, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING `+invoiceColumns,
		invoice.UserID, invoice.ID, invoice.ClientName, dateOf(invoice.InvoiceDate), dateOrNil(invoice.PaymentDate),
		amountHT, taxRate, amountTTC, invoice.IsCanceled, textOrNil(invoice.ReceiptKey)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes an invoice
func (r *InvoiceRepository) Delete(userID uuid.UUID, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `DELETE FROM invoices WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}
