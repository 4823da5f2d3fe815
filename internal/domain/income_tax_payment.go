package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IncomeTaxPayment is a declared income-tax payment for a year.
type IncomeTaxPayment struct {
	ID          int32           `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	Year        int             `json:"year"`
	Amount      decimal.Decimal `json:"amount"`
	Status      PaymentStatus   `json:"status"`
	PaymentDate *time.Time      `json:"paymentDate,omitempty"`
	Reference   *string         `json:"reference,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type IncomeTaxPaymentRepository interface {
	Create(payment *IncomeTaxPayment) (*IncomeTaxPayment, error)
	GetByID(userID uuid.UUID, id int32) (*IncomeTaxPayment, error)
	ListByUser(userID uuid.UUID, year *int) ([]*IncomeTaxPayment, error)
	Update(payment *IncomeTaxPayment) (*IncomeTaxPayment, error)
	Delete(userID uuid.UUID, id int32) error
}
