package service

import (
	"strings"
	"time"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/centimeapp/centime-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceService handles invoice business logic
type InvoiceService struct {
	invoiceRepo    domain.InvoiceRepository
	eventPublisher websocket.EventPublisher
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoiceRepo domain.InvoiceRepository) *InvoiceService {
	return &InvoiceService{invoiceRepo: invoiceRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *InvoiceService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *InvoiceService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// InvoiceInput holds the input for creating or updating an invoice
type InvoiceInput struct {
	ClientName  string
	InvoiceDate time.Time
	PaymentDate *time.Time
	AmountHT    decimal.Decimal
	TaxRate     decimal.Decimal
	IsCanceled  bool
}

func validateInvoiceInput(input InvoiceInput) (string, error) {
	clientName := strings.TrimSpace(input.ClientName)
	if clientName == "" {
		return "", domain.ErrClientNameRequired
	}
	if len(clientName) > domain.MaxClientNameLength {
		return "", domain.ErrNameTooLong
	}
	if input.AmountHT.IsNegative() {
		return "", domain.ErrInvalidAmount
	}
	if input.TaxRate.IsNegative() || input.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
		return "", domain.ErrInvalidTaxRate
	}
	return clientName, nil
}

// CreateInvoice creates a new invoice. AmountTTC is always derived from
// AmountHT and TaxRate at write time, never trusted from callers.
func (s *InvoiceService) CreateInvoice(userID uuid.UUID, input InvoiceInput) (*domain.Invoice, error) {
	clientName, err := validateInvoiceInput(input)
	if err != nil {
		return nil, err
	}

	invoice := &domain.Invoice{
		UserID:      userID,
		ClientName:  clientName,
		InvoiceDate: input.InvoiceDate,
		PaymentDate: input.PaymentDate,
		AmountHT:    input.AmountHT,
		TaxRate:     input.TaxRate,
		IsCanceled:  input.IsCanceled,
	}
	invoice.ComputeAmountTTC()

	created, err := s.invoiceRepo.Create(invoice)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.InvoiceCreated(created))
	return created, nil
}

// GetInvoice retrieves an invoice by ID
func (s *InvoiceService) GetInvoice(userID uuid.UUID, id int32) (*domain.Invoice, error) {
	return s.invoiceRepo.GetByID(userID, id)
}

// ListInvoices retrieves the user's invoices with optional filters
func (s *InvoiceService) ListInvoices(userID uuid.UUID, filters *domain.InvoiceFilters) ([]*domain.Invoice, error) {
	return s.invoiceRepo.ListByUser(userID, filters)
}

// UpdateInvoice updates an existing invoice, recomputing AmountTTC
func (s *InvoiceService) UpdateInvoice(userID uuid.UUID, id int32, input InvoiceInput) (*domain.Invoice, error) {
	clientName, err := validateInvoiceInput(input)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	invoice.ClientName = clientName
	invoice.InvoiceDate = input.InvoiceDate
	invoice.PaymentDate = input.PaymentDate
	invoice.AmountHT = input.AmountHT
	invoice.TaxRate = input.TaxRate
	invoice.IsCanceled = input.IsCanceled
	invoice.ComputeAmountTTC()

	updated, err := s.invoiceRepo.Update(invoice)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.InvoiceUpdated(updated))
	return updated, nil
}

// ToggleCanceled flips the invoice's cancellation flag. Canceled invoices
// drop out of every revenue aggregate.
func (s *InvoiceService) ToggleCanceled(userID uuid.UUID, id int32) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	invoice.IsCanceled = !invoice.IsCanceled

	updated, err := s.invoiceRepo.Update(invoice)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.InvoiceUpdated(updated))
	return updated, nil
}

// MarkPaid records the payment date on an invoice, making it count as revenue
func (s *InvoiceService) MarkPaid(userID uuid.UUID, id int32, paymentDate time.Time) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	invoice.PaymentDate = &paymentDate

	updated, err := s.invoiceRepo.Update(invoice)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.InvoiceUpdated(updated))
	return updated, nil
}

// DeleteInvoice deletes an invoice
func (s *InvoiceService) DeleteInvoice(userID uuid.UUID, id int32) error {
	invoice, err := s.invoiceRepo.GetByID(userID, id)
	if err != nil {
		return err
	}

	if err := s.invoiceRepo.Delete(userID, id); err != nil {
		return err
	}

	s.publishEvent(userID, websocket.InvoiceDeleted(invoice))
	return nil
}
