package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UrssafPayment is a declared quarterly social-contribution payment.
// At most one payment exists per (user, year, trimester).
type UrssafPayment struct {
	ID              int32           `json:"id"`
	UserID          uuid.UUID       `json:"userId"`
	Year            int             `json:"year"`
	Trimester       int             `json:"trimester"`
	DeclaredRevenue decimal.Decimal `json:"declaredRevenue"`
	Amount          decimal.Decimal `json:"amount"`
	Status          PaymentStatus   `json:"status"`
	PaymentDate     *time.Time      `json:"paymentDate,omitempty"`
	Reference       *string         `json:"reference,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type UrssafPaymentRepository interface {
	Create(payment *UrssafPayment) (*UrssafPayment, error)
	GetByID(userID uuid.UUID, id int32) (*UrssafPayment, error)
	GetByQuarter(userID uuid.UUID, year, trimester int) (*UrssafPayment, error)
	ListByUser(userID uuid.UUID, year *int) ([]*UrssafPayment, error)
	Update(payment *UrssafPayment) (*UrssafPayment, error)
	Delete(userID uuid.UUID, id int32) error
}
