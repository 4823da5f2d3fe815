package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ExpenseCategory string

const (
	CategoryFixed        ExpenseCategory = "fixed"
	CategoryOneTime      ExpenseCategory = "one_time"
	CategoryRecurring    ExpenseCategory = "recurring"
	CategoryProfessional ExpenseCategory = "professional"
	CategoryOther        ExpenseCategory = "other"
)

// ValidCategory reports whether c is one of the known expense categories
func ValidCategory(c ExpenseCategory) bool {
	switch c {
	case CategoryFixed, CategoryOneTime, CategoryRecurring, CategoryProfessional, CategoryOther:
		return true
	}
	return false
}

type RecurrencePeriod string

const (
	RecurrenceMonthly   RecurrencePeriod = "monthly"
	RecurrenceQuarterly RecurrencePeriod = "quarterly"
	RecurrenceYearly    RecurrencePeriod = "yearly"
)

type Expense struct {
	ID          int32           `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	Description string          `json:"description"`
	ExpenseDate time.Time       `json:"expenseDate"`
	AmountHT    decimal.Decimal `json:"amountHt"`
	// TaxAmount is an absolute currency amount, not a rate
	TaxAmount decimal.Decimal `json:"taxAmount"`
	// TaxRecoveryRate is the percentage of TaxAmount that is reclaimable
	TaxRecoveryRate decimal.Decimal `json:"taxRecoveryRate"`
	Category        ExpenseCategory `json:"category"`
	IsIntraEU       bool            `json:"isIntraEu"`
	IsRecurring     bool            `json:"isRecurring"`
	// Recurrence fields, required when IsRecurring is true
	RecurrencePeriod *RecurrencePeriod `json:"recurrencePeriod,omitempty"`
	StartMonth       *time.Time        `json:"startMonth,omitempty"`
	EndMonth         *time.Time        `json:"endMonth,omitempty"`
	PaymentDay       *int32            `json:"paymentDay,omitempty"`
	ReceiptKey       *string           `json:"receiptKey,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// RecoverableTax returns the reclaimable part of TaxAmount, unrounded.
func (e *Expense) RecoverableTax() decimal.Decimal {
	return e.TaxAmount.Mul(e.TaxRecoveryRate).Div(decimal.NewFromInt(100))
}

type ExpenseFilters struct {
	Year      *int
	Category  *ExpenseCategory
	Recurring *bool
}

type ExpenseRepository interface {
	Create(expense *Expense) (*Expense, error)
	GetByID(userID uuid.UUID, id int32) (*Expense, error)
	ListByUser(userID uuid.UUID, filters *ExpenseFilters) ([]*Expense, error)
	// ListNonRecurringBetween returns non-recurring expenses dated in [start, end].
	ListNonRecurringBetween(userID uuid.UUID, start, end time.Time) ([]*Expense, error)
	// ListRecurring returns all recurring expense definitions for the user.
	ListRecurring(userID uuid.UUID) ([]*Expense, error)
	Update(expense *Expense) (*Expense, error)
	Delete(userID uuid.UUID, id int32) error
}
