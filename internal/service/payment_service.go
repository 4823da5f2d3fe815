package service

import (
	"errors"
	"time"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/centimeapp/centime-backend/internal/util"
	"github.com/centimeapp/centime-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VatPaymentService handles monthly VAT declarations
type VatPaymentService struct {
	vatPaymentRepo domain.VatPaymentRepository
	eventPublisher websocket.EventPublisher
}

// NewVatPaymentService creates a new VatPaymentService
func NewVatPaymentService(vatPaymentRepo domain.VatPaymentRepository) *VatPaymentService {
	return &VatPaymentService{vatPaymentRepo: vatPaymentRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *VatPaymentService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *VatPaymentService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// VatPaymentInput holds the input for creating or updating a VAT declaration
type VatPaymentInput struct {
	Amount      decimal.Decimal
	Period      string
	Status      domain.PaymentStatus
	PaymentDate *time.Time
	Reference   *string
	Note        *string
}

func (s *VatPaymentService) validate(input *VatPaymentInput) error {
	year, month, err := util.ParseMonthKey(input.Period)
	if err != nil {
		return domain.ErrInvalidPeriod
	}
	// Store the canonical zero-padded spelling so period lookups and the
	// availability gap-filling exclusion always match.
	input.Period = util.MonthKey(year, month)
	if !domain.ValidPaymentStatus(input.Status) {
		return domain.ErrInvalidStatus
	}
	return nil
}

// CreatePayment records a VAT declaration for a month. A user can declare a
// given period only once.
func (s *VatPaymentService) CreatePayment(userID uuid.UUID, input VatPaymentInput) (*domain.VatPayment, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	if _, err := s.vatPaymentRepo.GetByPeriod(userID, input.Period); err == nil {
		return nil, domain.ErrDuplicateDeclaration
	} else if !errors.Is(err, domain.ErrPaymentNotFound) {
		return nil, err
	}

	payment := &domain.VatPayment{
		UserID:      userID,
		Amount:      input.Amount,
		Period:      input.Period,
		Status:      input.Status,
		PaymentDate: input.PaymentDate,
		Reference:   input.Reference,
		Note:        input.Note,
	}

	created, err := s.vatPaymentRepo.Create(payment)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.NewEvent(websocket.EventTypeCreated, websocket.EntityTypeVatPayment, created))
	return created, nil
}

// GetPayment retrieves a VAT declaration by ID
func (s *VatPaymentService) GetPayment(userID uuid.UUID, id int32) (*domain.VatPayment, error) {
	return s.vatPaymentRepo.GetByID(userID, id)
}

// ListPayments retrieves the user's VAT declarations, optionally filtered
func (s *VatPaymentService) ListPayments(userID uuid.UUID, year *int, status *domain.PaymentStatus) ([]*domain.VatPayment, error) {
	return s.vatPaymentRepo.ListByUser(userID, year, status)
}

// UpdatePayment updates a VAT declaration
func (s *VatPaymentService) UpdatePayment(userID uuid.UUID, id int32, input VatPaymentInput) (*domain.VatPayment, error) {
	if err := s.validate(&input); err != nil {
		return nil, err
	}

	payment, err := s.vatPaymentRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	if payment.Period != input.Period {
		if _, err := s.vatPaymentRepo.GetByPeriod(userID, input.Period); err == nil {
			return nil, domain.ErrDuplicateDeclaration
		} else if !errors.Is(err, domain.ErrPaymentNotFound) {
			return nil, err
		}
	}

	payment.Amount = input.Amount
	payment.Period = input.Period
	payment.Status = input.Status
	payment.PaymentDate = input.PaymentDate
	payment.Reference = input.Reference
	payment.Note = input.Note

	updated, err := s.vatPaymentRepo.Update(payment)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.NewEvent(websocket.EventTypeUpdated, websocket.EntityTypeVatPayment, updated))
	return updated, nil
}

// MarkPaid sets a VAT declaration to paid with the given payment date
func (s *VatPaymentService) MarkPaid(userID uuid.UUID, id int32, paymentDate time.Time) (*domain.VatPayment, error) {
	payment, err := s.vatPaymentRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	payment.Status = domain.PaymentStatusPaid
	payment.PaymentDate = &paymentDate

	updated, err := s.vatPaymentRepo.Update(payment)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.NewEvent(websocket.EventTypeUpdated, websocket.EntityTypeVatPayment, updated))
	return updated, nil
}

// DeletePayment deletes a VAT declaration
func (s *VatPaymentService) DeletePayment(userID uuid.UUID, id int32) error {
	payment, err := s.vatPaymentRepo.GetByID(userID, id)
	if err != nil {
		return err
	}

	if err := s.vatPaymentRepo.Delete(userID, id); err != nil {
		return err
	}

	s.publishEvent(userID, websocket.NewEvent(websocket.EventTypeDeleted, websocket.EntityTypeVatPayment, payment))
	return nil
}

// UrssafPaymentService handles quarterly social-contribution declarations
type UrssafPaymentService struct {
	urssafPaymentRepo domain.UrssafPaymentRepository
	eventPublisher    websocket.EventPublisher
}

// NewUrssafPaymentService creates a new UrssafPaymentService
func NewUrssafPaymentService(urssafPaymentRepo domain.UrssafPaymentRepository) *UrssafPaymentService {
	return &UrssafPaymentService{urssafPaymentRepo: urssafPaymentRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *UrssafPaymentService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *UrssafPaymentService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// UrssafPaymentInput holds the input for creating or updating an Urssaf declaration
type UrssafPaymentInput struct {
	Year            int
	Trimester       int
	DeclaredRevenue decimal.Decimal
	Amount          decimal.Decimal
	Status          domain.PaymentStatus
	PaymentDate     *time.Time
	Reference       *string
}

func (s *UrssafPaymentService) validate(input UrssafPaymentInput) error {
	if input.Trimester < 1 || input.Trimester > 4 {
		return domain.ErrInvalidTrimester
	}
	if !domain.ValidPaymentStatus(input.Status) {
		return domain.ErrInvalidStatus
	}
	if input.DeclaredRevenue.IsNegative() {
		return domain.ErrInvalidAmount
	}
	return nil
}

// CreatePayment records an Urssaf declaration. At most one declaration can
// exist per (year, trimester).
func (s *UrssafPaymentService) CreatePayment(userID uuid.UUID, input UrssafPaymentInput) (*domain.UrssafPayment, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	if _, err := s.urssafPaymentRepo.GetByQuarter(userID, input.Year, input.Trimester); err == nil {
		return nil, domain.ErrDuplicateDeclaration
	} else if !errors.Is(err, domain.ErrPaymentNotFound) {
		return nil, err
	}

	payment := &domain.UrssafPayment{
		UserID:          userID,
		Year:            input.Year,
		Trimester:       input.Trimester,
		DeclaredRevenue: input.DeclaredRevenue,
		Amount:          input.Amount,
		Status:          input.Status,
		PaymentDate:     input.PaymentDate,
		Reference:       input.Reference,
	}

	created, err := s.urssafPaymentRepo.Create(payment)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.NewEvent(websocket.EventTypeCreated, websocket.EntityTypeUrssafPayment, created))
	return created, nil
}

// GetPayment retrieves an Urssaf declaration by ID
func (s *UrssafPaymentService) GetPayment(userID uuid.UUID, id int32) (*domain.UrssafPayment, error) {
	return s.urssafPaymentRepo.GetByID(userID, id)
}

// ListPayments retrieves the user's Urssaf declarations, optionally by year
func (s *UrssafPaymentService) ListPayments(userID uuid.UUID, year *int) ([]*domain.UrssafPayment, error) {
	return s.urssafPaymentRepo.ListByUser(userID, year)
}

// UpdatePayment updates an Urssaf declaration
func (s *UrssafPaymentService) UpdatePayment(userID uuid.UUID, id int32, input UrssafPaymentInput) (*domain.UrssafPayment, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	payment, err := s.urssafPaymentRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	if payment.Year != input.Year || payment.Trimester != input.Trimester {
		if _, err := s.urssafPaymentRepo.GetByQuarter(userID, input.Year, input.Trimester); err == nil {
			return nil, domain.ErrDuplicateDeclaration
		} else if !errors.Is(err, domain.ErrPaymentNotFound) {
			return nil, err
		}
	}

	payment.Year = input.Year
	payment.Trimester = input.Trimester
	payment.DeclaredRevenue = input.DeclaredRevenue
	payment.Amount = input.Amount
	payment.Status = input.Status
	payment.PaymentDate = input.PaymentDate
	payment.Reference = input.Reference

	updated, err := s.urssafPaymentRepo.Update(payment)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.NewEvent(websocket.EventTypeUpdated, websocket.EntityTypeUrssafPayment, updated))
	return updated, nil
}

// DeletePayment deletes an Urssaf declaration
func (s *UrssafPaymentService) DeletePayment(userID uuid.UUID, id int32) error {
	payment, err := s.urssafPaymentRepo.GetByID(userID, id)
	if err != nil {
		return err
	}

	if err := s.urssafPaymentRepo.Delete(userID, id); err != nil {
		return err
	}

	s.publishEvent(userID, websocket.NewEvent(websocket.EventTypeDeleted, websocket.EntityTypeUrssafPayment, payment))
	return nil
}

// IncomeTaxPaymentService handles income-tax payment records
type IncomeTaxPaymentService struct {
	incomeTaxRepo  domain.IncomeTaxPaymentRepository
	eventPublisher websocket.EventPublisher
}

// NewIncomeTaxPaymentService creates a new IncomeTaxPaymentService
func NewIncomeTaxPaymentService(incomeTaxRepo domain.IncomeTaxPaymentRepository) *IncomeTaxPaymentService {
	return &IncomeTaxPaymentService{incomeTaxRepo: incomeTaxRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *IncomeTaxPaymentService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *IncomeTaxPaymentService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// IncomeTaxPaymentInput holds the input for creating or updating an income-tax payment
type IncomeTaxPaymentInput struct {
	Year        int
	Amount      decimal.Decimal
	Status      domain.PaymentStatus
	PaymentDate *time.Time
	Reference   *string
}

// CreatePayment records an income-tax payment
func (s *IncomeTaxPaymentService) CreatePayment(userID uuid.UUID, input IncomeTaxPaymentInput) (*domain.IncomeTaxPayment, error) {
	if !domain.ValidPaymentStatus(input.Status) {
		return nil, domain.ErrInvalidStatus
	}

	payment := &domain.IncomeTaxPayment{
		UserID:      userID,
		Year:        input.Year,
		Amount:      input.Amount,
		Status:      input.Status,
		PaymentDate: input.PaymentDate,
		Reference:   input.Reference,
	}

	created, err := s.incomeTaxRepo.Create(payment)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.NewEvent(websocket.EventTypeCreated, websocket.EntityTypeIncomeTaxPayment, created))
	return created, nil
}

// GetPayment retrieves an income-tax payment by ID
func (s *IncomeTaxPaymentService) GetPayment(userID uuid.UUID, id int32) (*domain.IncomeTaxPayment, error) {
	return s.incomeTaxRepo.GetByID(userID, id)
}

// ListPayments retrieves the user's income-tax payments, optionally by year
func (s *IncomeTaxPaymentService) ListPayments(userID uuid.UUID, year *int) ([]*domain.IncomeTaxPayment, error) {
	return s.incomeTaxRepo.ListByUser(userID, year)
}

// UpdatePayment updates an income-tax payment
func (s *IncomeTaxPaymentService) UpdatePayment(userID uuid.UUID, id int32, input IncomeTaxPaymentInput) (*domain.IncomeTaxPayment, error) {
	if !domain.ValidPaymentStatus(input.Status) {
		return nil, domain.ErrInvalidStatus
	}

	payment, err := s.incomeTaxRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	payment.Year = input.Year
	payment.Amount = input.Amount
	payment.Status = input.Status
	payment.PaymentDate = input.PaymentDate
	payment.Reference = input.Reference

	updated, err := s.incomeTaxRepo.Update(payment)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.NewEvent(websocket.EventTypeUpdated, websocket.EntityTypeIncomeTaxPayment, updated))
	return updated, nil
}

// DeletePayment deletes an income-tax payment
func (s *IncomeTaxPaymentService) DeletePayment(userID uuid.UUID, id int32) error {
	payment, err := s.incomeTaxRepo.GetByID(userID, id)
	if err != nil {
		return err
	}

	if err := s.incomeTaxRepo.Delete(userID, id); err != nil {
		return err
	}

	s.publishEvent(userID, websocket.NewEvent(websocket.EventTypeDeleted, websocket.EntityTypeIncomeTaxPayment, payment))
	return nil
}
