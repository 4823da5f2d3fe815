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

// ExpenseRepository implements domain.ExpenseRepository using PostgreSQL
type ExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository creates a new ExpenseRepository
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

const expenseColumns = `id, user_id, description, expense_date, amount_ht, tax_amount, tax_recovery_rate, category, is_intra_eu, is_recurring, recurrence_period, start_month, end_month, payment_day, receipt_key, created_at, updated_at`

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var e domain.Expense
	var period *string
	err := row.Scan(
		&e.ID, &e.UserID, &e.Description, &e.ExpenseDate, &e.AmountHT, &e.TaxAmount,
		&e.TaxRecoveryRate, &e.Category, &e.IsIntraEU, &e.IsRecurring,
		&period, &e.StartMonth, &e.EndMonth, &e.PaymentDay, &e.ReceiptKey,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if period != nil {
		p := domain.RecurrencePeriod(*period)
		e.RecurrencePeriod = &p
	}
	return &e, nil
}

func collectExpenses(rows pgx.Rows) ([]*domain.Expense, error) {
	defer rows.Close()
	var expenses []*domain.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func expenseArgs(expense *domain.Expense) ([]interface{}, error) {
	amountHT, err := decimalToPgNumeric(expense.AmountHT)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	taxAmount, err := decimalToPgNumeric(expense.TaxAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid tax amount: %w", err)
	}
	recoveryRate, err := decimalToPgNumeric(expense.TaxRecoveryRate)
	if err != nil {
		return nil, fmt.Errorf("invalid recovery rate: %w", err)
	}

	var period *string
	if expense.RecurrencePeriod != nil {
		p := string(*expense.RecurrencePeriod)
		period = &p
	}

	return []interface{}{
		expense.Description, dateOf(expense.ExpenseDate), amountHT, taxAmount, recoveryRate,
		string(expense.Category), expense.IsIntraEU, expense.IsRecurring,
		textOrNil(period), dateOrNil(expense.StartMonth), dateOrNil(expense.EndMonth),
		int4OrNil(expense.PaymentDay), textOrNil(expense.ReceiptKey),
	}, nil
}

// Create creates a new expense
func (r *ExpenseRepository) Create(expense *domain.Expense) (*domain.Expense, error) {
	ctx := context.Background()

	args, err := expenseArgs(expense)
	if err != nil {
		return nil, err
	}

	return scanExpense(r.pool.QueryRow(ctx, `
		INSERT INTO expenses (user_id, description, expense_date, amount_ht, tax_amount, tax_recovery_rate, category, is_intra_eu, is_recurring, recurrence_period, start_month, end_month, payment_day, receipt_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+expenseColumns,
		append([]interface{}{expense.UserID}, args...)...))
}

// GetByID retrieves an expense by ID, scoped to the user
func (r *ExpenseRepository) GetByID(userID uuid.UUID, id int32) (*domain.Expense, error) {
	ctx := context.Background()
	expense, err := scanExpense(r.pool.QueryRow(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = $1 AND id = $2`, userID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, err
	}
	return expense, nil
}

// ListByUser retrieves the user's expenses with optional filters
func (r *ExpenseRepository) ListByUser(userID uuid.UUID, filters *domain.ExpenseFilters) ([]*domain.Expense, error) {
	ctx := context.Background()

	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE user_id = $1`
	args := []interface{}{userID}

	if filters != nil {
		if filters.Year != nil {
			args = append(args, *filters.Year)
			query += fmt.Sprintf(" AND EXTRACT(YEAR FROM expense_date) = $%d", len(args))
		}
		if filters.Category != nil {
			args = append(args, string(*filters.Category))
			query += fmt.Sprintf(" AND category = $%d", len(args))
		}
		if filters.Recurring != nil {
			args = append(args, *filters.Recurring)
			query += fmt.Sprintf(" AND is_recurring = $%d", len(args))
		}
	}
	query += " ORDER BY expense_date DESC, id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectExpenses(rows)
}

// ListNonRecurringBetween retrieves non-recurring expenses dated in [start, end]
func (r *ExpenseRepository) ListNonRecurringBetween(userID uuid.UUID, start, end time.Time) ([]*domain.Expense, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE user_id = $1
		  AND is_recurring = false
		  AND expense_date BETWEEN $2 AND $3
		ORDER BY expense_date, id`,
		userID, dateOf(start), dateOf(end))
	if err != nil {
		return nil, err
	}
	return collectExpenses(rows)
}

// ListRecurring retrieves all recurring expense definitions for the user
func (r *ExpenseRepository) ListRecurring(userID uuid.UUID) ([]*domain.Expense, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = $1 AND is_recurring = true ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	return collectExpenses(rows)
}

// Update updates an existing expense
func (r *ExpenseRepository) Update(expense *domain.Expense) (*domain.Expense, error) {
	ctx := context.Background()

	args, err := expenseArgs(expense)
	if err != nil {
		return nil, err
	}

	updated, err := scanExpense(r.pool.QueryRow(ctx, `
		UPDATE expenses
		SET description = $3, expense_date = $4, amount_ht = $5, tax_amount = $6,
		    tax_recovery_rate = $7, category = $8, is_intra_eu = $9, is_recurring = $10,
		    recurrence_period = $11, start_month = $12, end_month = $13, payment_day = $14,
		    receipt_key = $15, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING `+expenseColumns,
		append([]interface{}{expense.UserID, expense.ID}, args...)...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes an expense
func (r *ExpenseRepository) Delete(userID uuid.UUID, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}
