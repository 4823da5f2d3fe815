package service

import (
	"errors"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/centimeapp/centime-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceService handles the user's business-account balance
type BalanceService struct {
	balanceRepo    domain.AccountBalanceRepository
	eventPublisher websocket.EventPublisher
}

// NewBalanceService creates a new BalanceService
func NewBalanceService(balanceRepo domain.AccountBalanceRepository) *BalanceService {
	return &BalanceService{balanceRepo: balanceRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *BalanceService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// GetBalance returns the user's balance, or a zero balance when never set
func (s *BalanceService) GetBalance(userID uuid.UUID) (*domain.AccountBalance, error) {
	balance, err := s.balanceRepo.GetByUser(userID)
	if errors.Is(err, domain.ErrBalanceNotFound) {
		return &domain.AccountBalance{UserID: userID, Amount: decimal.Zero}, nil
	}
	if err != nil {
		return nil, err
	}
	return balance, nil
}

// SetBalance records the user's current balance
func (s *BalanceService) SetBalance(userID uuid.UUID, amount decimal.Decimal) (*domain.AccountBalance, error) {
	balance := &domain.AccountBalance{UserID: userID, Amount: amount}

	updated, err := s.balanceRepo.Upsert(balance)
	if err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, websocket.BalanceUpdated(updated))
	}
	return updated, nil
}
