package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountBalance is the user's single current business-account balance.
type AccountBalance struct {
	UserID    uuid.UUID       `json:"userId"`
	Amount    decimal.Decimal `json:"amount"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type AccountBalanceRepository interface {
	GetByUser(userID uuid.UUID) (*AccountBalance, error)
	Upsert(balance *AccountBalance) (*AccountBalance, error)
}
