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

// SettingsRepository implements domain.SettingsRepository using PostgreSQL
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

const settingsColumns = `id, user_id, urssaf_rate, income_tax_rate, deduction_rate, monthly_salary, additional_income, created_at, updated_at`

func scanSettings(row pgx.Row) (*domain.Settings, error) {
	var s domain.Settings
	err := row.Scan(
		&s.ID, &s.UserID, &s.UrssafRate, &s.IncomeTaxRate, &s.DeductionRate,
		&s.MonthlySalary, &s.AdditionalIncome, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByUser retrieves the user's settings row
func (r *SettingsRepository) GetByUser(userID uuid.UUID) (*domain.Settings, error) {
	ctx := context.Background()
	settings, err := scanSettings(r.pool.QueryRow(ctx,
		`SELECT `+settingsColumns+` FROM settings WHERE user_id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, err
	}
	return settings, nil
}

// Upsert inserts or replaces the user's settings row
func (r *SettingsRepository) Upsert(settings *domain.Settings) (*domain.Settings, error) {
	ctx := context.Background()

	urssafRate, err := decimalToPgNumeric(settings.UrssafRate)
	if err != nil {
		return nil, fmt.Errorf("invalid urssaf rate: %w", err)
	}
	incomeTaxRate, err := decimalToPgNumeric(settings.IncomeTaxRate)
	if err != nil {
		return nil, fmt.Errorf("invalid income tax rate: %w", err)
	}
	deductionRate, err := decimalToPgNumeric(settings.DeductionRate)
	if err != nil {
		return nil, fmt.Errorf("invalid deduction rate: %w", err)
	}
	monthlySalary, err := decimalToPgNumeric(settings.MonthlySalary)
	if err != nil {
		return nil, fmt.Errorf("invalid monthly salary: %w", err)
	}
	additionalIncome, err := decimalToPgNumeric(settings.AdditionalIncome)
	if err != nil {
		return nil, fmt.Errorf("invalid additional income: %w", err)
	}

	return scanSettings(r.pool.QueryRow(ctx, `
		INSERT INTO settings (user_id, urssaf_rate, income_tax_rate, deduction_rate, monthly_salary, additional_income)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET urssaf_rate = EXCLUDED.urssaf_rate,
		    income_tax_rate = EXCLUDED.income_tax_rate,
		    deduction_rate = EXCLUDED.deduction_rate,
		    monthly_salary = EXCLUDED.monthly_salary,
		    additional_income = EXCLUDED.additional_income,
		    updated_at = now()
		RETURNING `+settingsColumns,
		settings.UserID, urssafRate, incomeTaxRate, deductionRate, monthlySalary, additionalIncome))
}

const yearlyRatesColumns = `id, user_id, year, urssaf_rate, income_tax_rate, deduction_rate`

func scanYearlyRates(row pgx.Row) (*domain.YearlyRates, error) {
	var y domain.YearlyRates
	err := row.Scan(&y.ID, &y.UserID, &y.Year, &y.UrssafRate, &y.IncomeTaxRate, &y.DeductionRate)
	if err != nil {
		return nil, err
	}
	return &y, nil
}

// GetYearOverride retrieves the user's rate overrides for a year
func (r *SettingsRepository) GetYearOverride(userID uuid.UUID, year int) (*domain.YearlyRates, error) {
	ctx := context.Background()
	rates, err := scanYearlyRates(r.pool.QueryRow(ctx,
		`SELECT `+yearlyRatesColumns+` FROM yearly_rates WHERE user_id = $1 AND year = $2`, userID, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rates, nil
}

// UpsertYearOverride inserts or replaces the user's rate overrides for a year
func (r *SettingsRepository) UpsertYearOverride(rates *domain.YearlyRates) (*domain.YearlyRates, error) {
	ctx := context.Background()

	urssafRate, err := numericOrNil(rates.UrssafRate)
	if err != nil {
		return nil, fmt.Errorf("invalid urssaf rate: %w", err)
	}
	incomeTaxRate, err := numericOrNil(rates.IncomeTaxRate)
	if err != nil {
		return nil, fmt.Errorf("invalid income tax rate: %w", err)
	}
	deductionRate, err := numericOrNil(rates.DeductionRate)
	if err != nil {
		return nil, fmt.Errorf("invalid deduction rate: %w", err)
	}

	return scanYearlyRates(r.pool.QueryRow(ctx, `
		INSERT INTO yearly_rates (user_id, year, urssaf_rate, income_tax_rate, deduction_rate)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, year) DO UPDATE
		SET urssaf_rate = EXCLUDED.urssaf_rate,
		    income_tax_rate = EXCLUDED.income_tax_rate,
		    deduction_rate = EXCLUDED.deduction_rate
		RETURNING `+yearlyRatesColumns,
		rates.UserID, rates.Year, urssafRate, incomeTaxRate, deductionRate))
}

// DeleteYearOverride removes the user's rate overrides for a year
func (r *SettingsRepository) DeleteYearOverride(userID uuid.UUID, year int) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `DELETE FROM yearly_rates WHERE user_id = $1 AND year = $2`, userID, year)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
