package service

import (
	"strings"
	"time"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/centimeapp/centime-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseService handles expense business logic
type ExpenseService struct {
	expenseRepo    domain.ExpenseRepository
	eventPublisher websocket.EventPublisher
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenseRepo domain.ExpenseRepository) *ExpenseService {
	return &ExpenseService{expenseRepo: expenseRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ExpenseService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ExpenseService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// ExpenseInput holds the input for creating or updating an expense
type ExpenseInput struct {
	Description      string
	ExpenseDate      time.Time
	AmountHT         decimal.Decimal
	TaxAmount        decimal.Decimal
	TaxRecoveryRate  decimal.Decimal
	Category         domain.ExpenseCategory
	IsIntraEU        bool
	IsRecurring      bool
	RecurrencePeriod *domain.RecurrencePeriod
	StartMonth       *time.Time
	EndMonth         *time.Time
	PaymentDay       *int32
}

func validateExpenseInput(input ExpenseInput) (string, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return "", domain.ErrDescriptionRequired
	}
	if len(description) > domain.MaxDescriptionLength {
		return "", domain.ErrNameTooLong
	}
	if input.AmountHT.IsNegative() {
		return "", domain.ErrInvalidAmount
	}
	if input.TaxAmount.IsNegative() {
		return "", domain.ErrInvalidAmount
	}
	if input.TaxRecoveryRate.IsNegative() || input.TaxRecoveryRate.GreaterThan(decimal.NewFromInt(100)) {
		return "", domain.ErrInvalidRecoveryRate
	}
	if !domain.ValidCategory(input.Category) {
		return "", domain.ErrInvalidCategory
	}
	if input.IsRecurring {
		if input.RecurrencePeriod == nil || input.StartMonth == nil || input.PaymentDay == nil {
			return "", domain.ErrRecurrenceIncomplete
		}
		switch *input.RecurrencePeriod {
		case domain.RecurrenceMonthly, domain.RecurrenceQuarterly, domain.RecurrenceYearly:
		default:
			return "", domain.ErrInvalidPeriod
		}
		if *input.PaymentDay < 1 || *input.PaymentDay > 31 {
			return "", domain.ErrInvalidPaymentDay
		}
	}
	return description, nil
}

// CreateExpense creates a new expense. Recurring expenses must carry a full
// recurrence definition or they are rejected.
func (s *ExpenseService) CreateExpense(userID uuid.UUID, input ExpenseInput) (*domain.Expense, error) {
	description, err := validateExpenseInput(input)
	if err != nil {
		return nil, err
	}

	expense := &domain.Expense{
		UserID:           userID,
		Description:      description,
		ExpenseDate:      input.ExpenseDate,
		AmountHT:         input.AmountHT,
		TaxAmount:        input.TaxAmount,
		TaxRecoveryRate:  input.TaxRecoveryRate,
		Category:         input.Category,
		IsIntraEU:        input.IsIntraEU,
		IsRecurring:      input.IsRecurring,
		RecurrencePeriod: input.RecurrencePeriod,
		StartMonth:       input.StartMonth,
		EndMonth:         input.EndMonth,
		PaymentDay:       input.PaymentDay,
	}
	if !expense.IsRecurring {
		expense.RecurrencePeriod = nil
		expense.StartMonth = nil
		expense.EndMonth = nil
		expense.PaymentDay = nil
	}

	created, err := s.expenseRepo.Create(expense)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.ExpenseCreated(created))
	return created, nil
}

// GetExpense retrieves an expense by ID
func (s *ExpenseService) GetExpense(userID uuid.UUID, id int32) (*domain.Expense, error) {
	return s.expenseRepo.GetByID(userID, id)
}

// ListExpenses retrieves the user's expenses with optional filters
func (s *ExpenseService) ListExpenses(userID uuid.UUID, filters *domain.ExpenseFilters) ([]*domain.Expense, error) {
	return s.expenseRepo.ListByUser(userID, filters)
}

// UpdateExpense updates an existing expense
func (s *ExpenseService) UpdateExpense(userID uuid.UUID, id int32, input ExpenseInput) (*domain.Expense, error) {
	description, err := validateExpenseInput(input)
	if err != nil {
		return nil, err
	}

	expense, err := s.expenseRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	expense.Description = description
	expense.ExpenseDate = input.ExpenseDate
	expense.AmountHT = input.AmountHT
	expense.TaxAmount = input.TaxAmount
	expense.TaxRecoveryRate = input.TaxRecoveryRate
	expense.Category = input.Category
	expense.IsIntraEU = input.IsIntraEU
	expense.IsRecurring = input.IsRecurring
	expense.RecurrencePeriod = input.RecurrencePeriod
	expense.StartMonth = input.StartMonth
	expense.EndMonth = input.EndMonth
	expense.PaymentDay = input.PaymentDay
	if !expense.IsRecurring {
		expense.RecurrencePeriod = nil
		expense.StartMonth = nil
		expense.EndMonth = nil
		expense.PaymentDay = nil
	}

	updated, err := s.expenseRepo.Update(expense)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.ExpenseUpdated(updated))
	return updated, nil
}

// DeleteExpense deletes an expense
func (s *ExpenseService) DeleteExpense(userID uuid.UUID, id int32) error {
	expense, err := s.expenseRepo.GetByID(userID, id)
	if err != nil {
		return err
	}

	if err := s.expenseRepo.Delete(userID, id); err != nil {
		return err
	}

	s.publishEvent(userID, websocket.ExpenseDeleted(expense))
	return nil
}
