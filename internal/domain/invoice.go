package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Invoice struct {
	ID          int32           `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	ClientName  string          `json:"clientName"`
	InvoiceDate time.Time       `json:"invoiceDate"`
	PaymentDate *time.Time      `json:"paymentDate,omitempty"`
	AmountHT    decimal.Decimal `json:"amountHt"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	AmountTTC   decimal.Decimal `json:"amountTtc"`
	IsCanceled  bool            `json:"isCanceled"`
	ReceiptKey  *string         `json:"receiptKey,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ComputeAmountTTC derives the tax-inclusive amount from AmountHT and TaxRate.
// Called on every write so the persisted TTC stays consistent with its parts.
func (i *Invoice) ComputeAmountTTC() {
	rate := i.TaxRate.Div(decimal.NewFromInt(100))
	i.AmountTTC = i.AmountHT.Mul(decimal.NewFromInt(1).Add(rate)).Round(2)
}

// VatAmount returns the VAT carried by this invoice (TTC - HT), unrounded.
func (i *Invoice) VatAmount() decimal.Decimal {
	return i.AmountTTC.Sub(i.AmountHT)
}

// CountsAsRevenueBetween reports whether this invoice contributes to revenue
// in [start, end]. Revenue recognition is cash-basis: the payment date rules,
// not the invoice date, and canceled invoices never count.
func (i *Invoice) CountsAsRevenueBetween(start, end time.Time) bool {
	if i.IsCanceled || i.PaymentDate == nil {
		return false
	}
	d := *i.PaymentDate
	return !d.Before(start) && !d.After(end)
}

type InvoiceFilters struct {
	Year     *int
	Canceled *bool
	Paid     *bool
}

type InvoiceRepository interface {
	Create(invoice *Invoice) (*Invoice, error)
	GetByID(userID uuid.UUID, id int32) (*Invoice, error)
	ListByUser(userID uuid.UUID, filters *InvoiceFilters) ([]*Invoice, error)
	// ListPaidBetween returns non-canceled invoices with a payment date in [start, end].
	ListPaidBetween(userID uuid.UUID, start, end time.Time) ([]*Invoice, error)
	Update(invoice *Invoice) (*Invoice, error)
	Delete(userID uuid.UUID, id int32) error
}
