package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// ValidPaymentStatus reports whether s is a known payment status
func ValidPaymentStatus(s PaymentStatus) bool {
	return s == PaymentStatusPending || s == PaymentStatusPaid
}

// VatPayment is a VAT declaration for a single calendar month.
// Period uses the "YYYY-MM" key format.
type VatPayment struct {
	ID          int32           `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Period      string          `json:"period"`
	Status      PaymentStatus   `json:"status"`
	PaymentDate *time.Time      `json:"paymentDate,omitempty"`
	Reference   *string         `json:"reference,omitempty"`
	Note        *string         `json:"note,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type VatPaymentRepository interface {
	Create(payment *VatPayment) (*VatPayment, error)
	GetByID(userID uuid.UUID, id int32) (*VatPayment, error)
	GetByPeriod(userID uuid.UUID, period string) (*VatPayment, error)
	ListByUser(userID uuid.UUID, year *int, status *PaymentStatus) ([]*VatPayment, error)
	Update(payment *VatPayment) (*VatPayment, error)
	Delete(userID uuid.UUID, id int32) error
}
