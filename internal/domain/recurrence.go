package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurrenceContribution is what one recurring expense adds to one calendar month.
type RecurrenceContribution struct {
	AmountHT       decimal.Decimal
	TaxAmount      decimal.Decimal
	RecoverableTax decimal.Decimal
}

// HasValidRecurrence reports whether a recurring expense carries every field
// the expander needs. Historical rows may be incomplete; those are treated as
// non-contributing rather than rejected.
func (e *Expense) HasValidRecurrence() bool {
	return e.IsRecurring && e.RecurrencePeriod != nil && e.StartMonth != nil && e.PaymentDay != nil
}

// AppliesInMonth reports whether this expense contributes to the given
// calendar month.
//
// Non-recurring expenses apply only in the month of their own date.
// Monthly recurrence applies to every month from StartMonth through EndMonth
// inclusive (indefinitely when EndMonth is nil). Quarterly and yearly
// recurrence match on calendar month-of-year counted from the start month's
// month, with no year-distance check; an expense started in June recurs in
// June of every later year when yearly, and in Jun/Sep/Dec/Mar when
// quarterly. Callers rely on this exact matching.
func (e *Expense) AppliesInMonth(year int, month time.Month) bool {
	if !e.IsRecurring {
		return e.ExpenseDate.Year() == year && e.ExpenseDate.Month() == month
	}
	if !e.HasValidRecurrence() {
		return false
	}

	target := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(e.StartMonth.Year(), e.StartMonth.Month(), 1, 0, 0, 0, 0, time.UTC)
	if target.Before(start) {
		return false
	}
	if e.EndMonth != nil {
		end := time.Date(e.EndMonth.Year(), e.EndMonth.Month(), 1, 0, 0, 0, 0, time.UTC)
		if target.After(end) {
			return false
		}
	}

	switch *e.RecurrencePeriod {
	case RecurrenceMonthly:
		return true
	case RecurrenceQuarterly:
		return (int(month)-int(e.StartMonth.Month())+12)%3 == 0
	case RecurrenceYearly:
		return month == e.StartMonth.Month()
	}
	return false
}

// MonthContribution returns the expense's contribution to the given month.
// The second return value is false when the expense does not apply.
func (e *Expense) MonthContribution(year int, month time.Month) (RecurrenceContribution, bool) {
	if !e.AppliesInMonth(year, month) {
		return RecurrenceContribution{}, false
	}
	return RecurrenceContribution{
		AmountHT:       e.AmountHT,
		TaxAmount:      e.TaxAmount,
		RecoverableTax: e.RecoverableTax(),
	}, true
}

// OccurrenceDate returns the concrete payment date of a recurring expense in
// the given month, clamping the payment day to the month's length.
func (e *Expense) OccurrenceDate(year int, month time.Month) time.Time {
	day := 1
	if e.PaymentDay != nil {
		day = int(*e.PaymentDay)
	}
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
