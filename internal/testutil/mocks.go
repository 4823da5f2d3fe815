package testutil

import (
	"sort"
	"time"

	"github.com/centimeapp/centime-backend/internal/domain"
	"github.com/google/uuid"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users    map[string]*domain.User
	ByID     map[uuid.UUID]*domain.User
	CreateFn func(auth0ID, email string, name *string) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
		ByID:  make(map[uuid.UUID]*domain.User),
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (m *MockUserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// CreateOrGetByAuth0ID creates or retrieves a user by Auth0 ID
func (m *MockUserRepository) CreateOrGetByAuth0ID(auth0ID, email string, name *string) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(auth0ID, email, name)
	}
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	user := &domain.User{
		ID:      uuid.New(),
		Auth0ID: auth0ID,
		Email:   email,
		Name:    name,
	}
	m.Users[auth0ID] = user
	m.ByID[user.ID] = user
	return user, nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
}

// MockInvoiceRepository is a mock implementation of domain.InvoiceRepository
type MockInvoiceRepository struct {
	Invoices map[int32]*domain.Invoice
	NextID   int32
}

// NewMockInvoiceRepository creates a new MockInvoiceRepository
func NewMockInvoiceRepository() *MockInvoiceRepository {
	return &MockInvoiceRepository{
		Invoices: make(map[int32]*domain.Invoice),
		NextID:   1,
	}
}

// Create creates a new invoice
func (m *MockInvoiceRepository) Create(invoice *domain.Invoice) (*domain.Invoice, error) {
	invoice.ID = m.NextID
	m.NextID++
	invoice.CreatedAt = time.Now()
	invoice.UpdatedAt = invoice.CreatedAt
	m.Invoices[invoice.ID] = invoice
	return invoice, nil
}

// GetByID retrieves an invoice by ID
func (m *MockInvoiceRepository) GetByID(userID uuid.UUID, id int32) (*domain.Invoice, error) {
	invoice, ok := m.Invoices[id]
	if !ok || invoice.UserID != userID {
		return nil, domain.ErrInvoiceNotFound
	}
	return invoice, nil
}

// ListByUser retrieves invoices with optional filters
func (m *MockInvoiceRepository) ListByUser(userID uuid.UUID, filters *domain.InvoiceFilters) ([]*domain.Invoice, error) {
	var result []*domain.Invoice
	for _, inv := range m.Invoices {
		if inv.UserID != userID {
			continue
		}
		if filters != nil {
			if filters.Year != nil && inv.InvoiceDate.Year() != *filters.Year {
				continue
			}
			if filters.Canceled != nil && inv.IsCanceled != *filters.Canceled {
				continue
			}
			if filters.Paid != nil && (inv.PaymentDate != nil) != *filters.Paid {
				continue
			}
		}
		result = append(result, inv)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ListPaidBetween retrieves non-canceled invoices paid in [start, end]
func (m *MockInvoiceRepository) ListPaidBetween(userID uuid.UUID, start, end time.Time) ([]*domain.Invoice, error) {
	var result []*domain.Invoice
	for _, inv := range m.Invoices {
		if inv.UserID != userID {
			continue
		}
		if inv.CountsAsRevenueBetween(start, end) {
			result = append(result, inv)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update updates an existing invoice
func (m *MockInvoiceRepository) Update(invoice *domain.Invoice) (*domain.Invoice, error) {
	existing, ok := m.Invoices[invoice.ID]
	if !ok || existing.UserID != invoice.UserID {
		return nil, domain.ErrInvoiceNotFound
	}
	invoice.UpdatedAt = time.Now()
	m.Invoices[invoice.ID] = invoice
	return invoice, nil
}

// Delete removes an invoice
func (m *MockInvoiceRepository) Delete(userID uuid.UUID, id int32) error {
	invoice, ok := m.Invoices[id]
	if !ok || invoice.UserID != userID {
		return domain.ErrInvoiceNotFound
	}
	delete(m.Invoices, id)
	return nil
}

// AddInvoice adds an invoice to the mock repository (helper for tests)
func (m *MockInvoiceRepository) AddInvoice(invoice *domain.Invoice) {
	if invoice.ID == 0 {
		invoice.ID = m.NextID
		m.NextID++
	} else if invoice.ID >= m.NextID {
		m.NextID = invoice.ID + 1
	}
	m.Invoices[invoice.ID] = invoice
}

// MockExpenseRepository is a mock implementation of domain.ExpenseRepository
type MockExpenseRepository struct {
	Expenses map[int32]*domain.Expense
	NextID   int32
}

// NewMockExpenseRepository creates a new MockExpenseRepository
func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{
		Expenses: make(map[int32]*domain.Expense),
		NextID:   1,
	}
}

// Create creates a new expense
func (m *MockExpenseRepository) Create(expense *domain.Expense) (*domain.Expense, error) {
	expense.ID = m.NextID
	m.NextID++
	expense.CreatedAt = time.Now()
	expense.UpdatedAt = expense.CreatedAt
	m.Expenses[expense.ID] = expense
	return expense, nil
}

// GetByID retrieves an expense by ID
func (m *MockExpenseRepository) GetByID(userID uuid.UUID, id int32) (*domain.Expense, error) {
	expense, ok := m.Expenses[id]
	if !ok || expense.UserID != userID {
		return nil, domain.ErrExpenseNotFound
	}
	return expense, nil
}

// ListByUser retrieves expenses with optional filters
func (m *MockExpenseRepository) ListByUser(userID uuid.UUID, filters *domain.ExpenseFilters) ([]*domain.Expense, error) {
	var result []*domain.Expense
	for _, exp := range m.Expenses {
		if exp.UserID != userID {
			continue
		}
		if filters != nil {
			if filters.Year != nil && exp.ExpenseDate.Year() != *filters.Year {
				continue
			}
			if filters.Category != nil && exp.Category != *filters.Category {
				continue
			}
			if filters.Recurring != nil && exp.IsRecurring != *filters.Recurring {
				continue
			}
		}
		result = append(result, exp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ListNonRecurringBetween retrieves non-recurring expenses dated in [start, end]
func (m *MockExpenseRepository) ListNonRecurringBetween(userID uuid.UUID, start, end time.Time) ([]*domain.Expense, error) {
	var result []*domain.Expense
	for _, exp := range m.Expenses {
		if exp.UserID != userID || exp.IsRecurring {
			continue
		}
		if exp.ExpenseDate.Before(start) || exp.ExpenseDate.After(end) {
			continue
		}
		result = append(result, exp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ListRecurring retrieves all recurring expense definitions
func (m *MockExpenseRepository) ListRecurring(userID uuid.UUID) ([]*domain.Expense, error) {
	var result []*domain.Expense
	for _, exp := range m.Expenses {
		if exp.UserID != userID || !exp.IsRecurring {
			continue
		}
		result = append(result, exp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update updates an existing expense
func (m *MockExpenseRepository) Update(expense *domain.Expense) (*domain.Expense, error) {
	existing, ok := m.Expenses[expense.ID]
	if !ok || existing.UserID != expense.UserID {
		return nil, domain.ErrExpenseNotFound
	}
	expense.UpdatedAt = time.Now()
	m.Expenses[expense.ID] = expense
	return expense, nil
}

// Delete removes an expense
func (m *MockExpenseRepository) Delete(userID uuid.UUID, id int32) error {
	expense, ok := m.Expenses[id]
	if !ok || expense.UserID != userID {
		return domain.ErrExpenseNotFound
	}
	delete(m.Expenses, id)
	return nil
}

// AddExpense adds an expense to the mock repository (helper for tests)
func (m *MockExpenseRepository) AddExpense(expense *domain.Expense) {
	if expense.ID == 0 {
		expense.ID = m.NextID
		m.NextID++
	} else if expense.ID >= m.NextID {
		m.NextID = expense.ID + 1
	}
	m.Expenses[expense.ID] = expense
}

// MockVatPaymentRepository is a mock implementation of domain.VatPaymentRepository
type MockVatPaymentRepository struct {
	Payments map[int32]*domain.VatPayment
	NextID   int32
}

// NewMockVatPaymentRepository creates a new MockVatPaymentRepository
func NewMockVatPaymentRepository() *MockVatPaymentRepository {
	return &MockVatPaymentRepository{
		Payments: make(map[int32]*domain.VatPayment),
		NextID:   1,
	}
}

// Create creates a new VAT payment
func (m *MockVatPaymentRepository) Create(payment *domain.VatPayment) (*domain.VatPayment, error) {
	payment.ID = m.NextID
	m.NextID++
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = payment.CreatedAt
	m.Payments[payment.ID] = payment
	return payment, nil
}

// GetByID retrieves a VAT payment by ID
func (m *MockVatPaymentRepository) GetByID(userID uuid.UUID, id int32) (*domain.VatPayment, error) {
	payment, ok := m.Payments[id]
	if !ok || payment.UserID != userID {
		return nil, domain.ErrPaymentNotFound
	}
	return payment, nil
}

// GetByPeriod retrieves a VAT payment by its "YYYY-MM" period
func (m *MockVatPaymentRepository) GetByPeriod(userID uuid.UUID, period string) (*domain.VatPayment, error) {
	for _, p := range m.Payments {
		if p.UserID == userID && p.Period == period {
			return p, nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

// ListByUser retrieves VAT payments with optional filters
func (m *MockVatPaymentRepository) ListByUser(userID uuid.UUID, year *int, status *domain.PaymentStatus) ([]*domain.VatPayment, error) {
	var result []*domain.VatPayment
	for _, p := range m.Payments {
		if p.UserID != userID {
			continue
		}
		if year != nil && !periodInYear(p.Period, *year) {
			continue
		}
		if status != nil && p.Status != *status {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Period < result[j].Period })
	return result, nil
}

// Update updates an existing VAT payment
func (m *MockVatPaymentRepository) Update(payment *domain.VatPayment) (*domain.VatPayment, error) {
	existing, ok := m.Payments[payment.ID]
	if !ok || existing.UserID != payment.UserID {
		return nil, domain.ErrPaymentNotFound
	}
	payment.UpdatedAt = time.Now()
	m.Payments[payment.ID] = payment
	return payment, nil
}

// Delete removes a VAT payment
func (m *MockVatPaymentRepository) Delete(userID uuid.UUID, id int32) error {
	payment, ok := m.Payments[id]
	if !ok || payment.UserID != userID {
		return domain.ErrPaymentNotFound
	}
	delete(m.Payments, id)
	return nil
}

// AddPayment adds a VAT payment to the mock repository (helper for tests)
func (m *MockVatPaymentRepository) AddPayment(payment *domain.VatPayment) {
	if payment.ID == 0 {
		payment.ID = m.NextID
		m.NextID++
	} else if payment.ID >= m.NextID {
		m.NextID = payment.ID + 1
	}
	m.Payments[payment.ID] = payment
}

func periodInYear(period string, year int) bool {
	t, err := time.Parse("2006-01", period)
	if err != nil {
		return false
	}
	return t.Year() == year
}

// MockUrssafPaymentRepository is a mock implementation of domain.UrssafPaymentRepository
type MockUrssafPaymentRepository struct {
	Payments map[int32]*domain.UrssafPayment
	NextID   int32
}

// NewMockUrssafPaymentRepository creates a new MockUrssafPaymentRepository
func NewMockUrssafPaymentRepository() *MockUrssafPaymentRepository {
	return &MockUrssafPaymentRepository{
		Payments: make(map[int32]*domain.UrssafPayment),
		NextID:   1,
	}
}

// Create creates a new Urssaf payment
func (m *MockUrssafPaymentRepository) Create(payment *domain.UrssafPayment) (*domain.UrssafPayment, error) {
	payment.ID = m.NextID
	m.NextID++
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = payment.CreatedAt
	m.Payments[payment.ID] = payment
	return payment, nil
}

// GetByID retrieves an Urssaf payment by ID
func (m *MockUrssafPaymentRepository) GetByID(userID uuid.UUID, id int32) (*domain.UrssafPayment, error) {
	payment, ok := m.Payments[id]
	if !ok || payment.UserID != userID {
		return nil, domain.ErrPaymentNotFound
	}
	return payment, nil
}

// GetByQuarter retrieves an Urssaf payment by year and trimester
func (m *MockUrssafPaymentRepository) GetByQuarter(userID uuid.UUID, year, trimester int) (*domain.UrssafPayment, error) {
	for _, p := range m.Payments {
		if p.UserID == userID && p.Year == year && p.Trimester == trimester {
			return p, nil
		}
	}
	return nil, domain.ErrPaymentNotFound
}

// ListByUser retrieves Urssaf payments, optionally by year
func (m *MockUrssafPaymentRepository) ListByUser(userID uuid.UUID, year *int) ([]*domain.UrssafPayment, error) {
	var result []*domain.UrssafPayment
	for _, p := range m.Payments {
		if p.UserID != userID {
			continue
		}
		if year != nil && p.Year != *year {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year < result[j].Year
		}
		return result[i].Trimester < result[j].Trimester
	})
	return result, nil
}

// Update updates an existing Urssaf payment
func (m *MockUrssafPaymentRepository) Update(payment *domain.UrssafPayment) (*domain.UrssafPayment, error) {
	existing, ok := m.Payments[payment.ID]
	if !ok || existing.UserID != payment.UserID {
		return nil, domain.ErrPaymentNotFound
	}
	payment.UpdatedAt = time.Now()
	m.Payments[payment.ID] = payment
	return payment, nil
}

// Delete removes an Urssaf payment
func (m *MockUrssafPaymentRepository) Delete(userID uuid.UUID, id int32) error {
	payment, ok := m.Payments[id]
	if !ok || payment.UserID != userID {
		return domain.ErrPaymentNotFound
	}
	delete(m.Payments, id)
	return nil
}

// AddPayment adds an Urssaf payment to the mock repository (helper for tests)
func (m *MockUrssafPaymentRepository) AddPayment(payment *domain.UrssafPayment) {
	if payment.ID == 0 {
		payment.ID = m.NextID
		m.NextID++
	} else if payment.ID >= m.NextID {
		m.NextID = payment.ID + 1
	}
	m.Payments[payment.ID] = payment
}

// MockIncomeTaxPaymentRepository is a mock implementation of domain.IncomeTaxPaymentRepository
type MockIncomeTaxPaymentRepository struct {
	Payments map[int32]*domain.IncomeTaxPayment
	NextID   int32
}

// NewMockIncomeTaxPaymentRepository creates a new MockIncomeTaxPaymentRepository
func NewMockIncomeTaxPaymentRepository() *MockIncomeTaxPaymentRepository {
	return &MockIncomeTaxPaymentRepository{
		Payments: make(map[int32]*domain.IncomeTaxPayment),
		NextID:   1,
	}
}

// Create creates a new income-tax payment
func (m *MockIncomeTaxPaymentRepository) Create(payment *domain.IncomeTaxPayment) (*domain.IncomeTaxPayment, error) {
	payment.ID = m.NextID
	m.NextID++
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = payment.CreatedAt
	m.Payments[payment.ID] = payment
	return payment, nil
}

// GetByID retrieves an income-tax payment by ID
func (m *MockIncomeTaxPaymentRepository) GetByID(userID uuid.UUID, id int32) (*domain.IncomeTaxPayment, error) {
	payment, ok := m.Payments[id]
	if !ok || payment.UserID != userID {
		return nil, domain.ErrPaymentNotFound
	}
	return payment, nil
}

// ListByUser retrieves income-tax payments, optionally by year
func (m *MockIncomeTaxPaymentRepository) ListByUser(userID uuid.UUID, year *int) ([]*domain.IncomeTaxPayment, error) {
	var result []*domain.IncomeTaxPayment
	for _, p := range m.Payments {
		if p.UserID != userID {
			continue
		}
		if year != nil && p.Year != *year {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update updates an existing income-tax payment
func (m *MockIncomeTaxPaymentRepository) Update(payment *domain.IncomeTaxPayment) (*domain.IncomeTaxPayment, error) {
	existing, ok := m.Payments[payment.ID]
	if !ok || existing.UserID != payment.UserID {
		return nil, domain.ErrPaymentNotFound
	}
	payment.UpdatedAt = time.Now()
	m.Payments[payment.ID] = payment
	return payment, nil
}

// Delete removes an income-tax payment
func (m *MockIncomeTaxPaymentRepository) Delete(userID uuid.UUID, id int32) error {
	payment, ok := m.Payments[id]
	if !ok || payment.UserID != userID {
		return domain.ErrPaymentNotFound
	}
	delete(m.Payments, id)
	return nil
}

// AddPayment adds an income-tax payment to the mock repository (helper for tests)
func (m *MockIncomeTaxPaymentRepository) AddPayment(payment *domain.IncomeTaxPayment) {
	if payment.ID == 0 {
		payment.ID = m.NextID
		m.NextID++
	} else if payment.ID >= m.NextID {
		m.NextID = payment.ID + 1
	}
	m.Payments[payment.ID] = payment
}

// MockSettingsRepository is a mock implementation of domain.SettingsRepository
type MockSettingsRepository struct {
	Settings  map[uuid.UUID]*domain.Settings
	Overrides map[uuid.UUID]map[int]*domain.YearlyRates
	NextID    int32
}

// NewMockSettingsRepository creates a new MockSettingsRepository
func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{
		Settings:  make(map[uuid.UUID]*domain.Settings),
		Overrides: make(map[uuid.UUID]map[int]*domain.YearlyRates),
		NextID:    1,
	}
}

// GetByUser retrieves the user's settings
func (m *MockSettingsRepository) GetByUser(userID uuid.UUID) (*domain.Settings, error) {
	if s, ok := m.Settings[userID]; ok {
		return s, nil
	}
	return nil, domain.ErrSettingsNotFound
}

// Upsert creates or replaces the user's settings
func (m *MockSettingsRepository) Upsert(settings *domain.Settings) (*domain.Settings, error) {
	if existing, ok := m.Settings[settings.UserID]; ok {
		settings.ID = existing.ID
		settings.CreatedAt = existing.CreatedAt
	} else {
		settings.ID = m.NextID
		m.NextID++
		settings.CreatedAt = time.Now()
	}
	settings.UpdatedAt = time.Now()
	m.Settings[settings.UserID] = settings
	return settings, nil
}

// GetYearOverride retrieves the user's per-year rate override
func (m *MockSettingsRepository) GetYearOverride(userID uuid.UUID, year int) (*domain.YearlyRates, error) {
	if byYear, ok := m.Overrides[userID]; ok {
		if rates, ok := byYear[year]; ok {
			return rates, nil
		}
	}
	return nil, domain.ErrNotFound
}

// UpsertYearOverride creates or replaces a per-year rate override
func (m *MockSettingsRepository) UpsertYearOverride(rates *domain.YearlyRates) (*domain.YearlyRates, error) {
	if m.Overrides[rates.UserID] == nil {
		m.Overrides[rates.UserID] = make(map[int]*domain.YearlyRates)
	}
	if rates.ID == 0 {
		rates.ID = m.NextID
		m.NextID++
	}
	m.Overrides[rates.UserID][rates.Year] = rates
	return rates, nil
}

// DeleteYearOverride removes a per-year rate override
func (m *MockSettingsRepository) DeleteYearOverride(userID uuid.UUID, year int) error {
	if byYear, ok := m.Overrides[userID]; ok {
		if _, ok := byYear[year]; ok {
			delete(byYear, year)
			return nil
		}
	}
	return domain.ErrNotFound
}

// MockTaxBracketRepository is a mock implementation of domain.TaxBracketRepository
type MockTaxBracketRepository struct {
	UserBrackets    map[uuid.UUID]map[int][]*domain.TaxBracket
	DefaultBrackets map[int][]*domain.TaxBracket
	NextID          int32
}

// NewMockTaxBracketRepository creates a new MockTaxBracketRepository
func NewMockTaxBracketRepository() *MockTaxBracketRepository {
	return &MockTaxBracketRepository{
		UserBrackets:    make(map[uuid.UUID]map[int][]*domain.TaxBracket),
		DefaultBrackets: make(map[int][]*domain.TaxBracket),
		NextID:          1,
	}
}

// ListForUserYear returns the user's custom brackets for a year
func (m *MockTaxBracketRepository) ListForUserYear(userID uuid.UUID, year int) ([]*domain.TaxBracket, error) {
	if byYear, ok := m.UserBrackets[userID]; ok {
		return byYear[year], nil
	}
	return nil, nil
}

// ListDefaultsForYear returns global default brackets for a year
func (m *MockTaxBracketRepository) ListDefaultsForYear(year int) ([]*domain.TaxBracket, error) {
	return m.DefaultBrackets[year], nil
}

// ReplaceForUserYear swaps the user's custom brackets for a year
func (m *MockTaxBracketRepository) ReplaceForUserYear(userID uuid.UUID, year int, brackets []*domain.TaxBracket) ([]*domain.TaxBracket, error) {
	if m.UserBrackets[userID] == nil {
		m.UserBrackets[userID] = make(map[int][]*domain.TaxBracket)
	}
	for _, b := range brackets {
		b.ID = m.NextID
		m.NextID++
	}
	m.UserBrackets[userID][year] = brackets
	return brackets, nil
}

// DeleteForUserYear removes the user's custom brackets for a year
func (m *MockTaxBracketRepository) DeleteForUserYear(userID uuid.UUID, year int) error {
	if byYear, ok := m.UserBrackets[userID]; ok {
		delete(byYear, year)
	}
	return nil
}

// SetDefaults installs global default brackets for a year (helper for tests)
func (m *MockTaxBracketRepository) SetDefaults(year int, brackets []*domain.TaxBracket) {
	m.DefaultBrackets[year] = brackets
}

// MockAccountBalanceRepository is a mock implementation of domain.AccountBalanceRepository
type MockAccountBalanceRepository struct {
	Balances map[uuid.UUID]*domain.AccountBalance
}

// NewMockAccountBalanceRepository creates a new MockAccountBalanceRepository
func NewMockAccountBalanceRepository() *MockAccountBalanceRepository {
	return &MockAccountBalanceRepository{
		Balances: make(map[uuid.UUID]*domain.AccountBalance),
	}
}

// GetByUser retrieves the user's balance
func (m *MockAccountBalanceRepository) GetByUser(userID uuid.UUID) (*domain.AccountBalance, error) {
	if b, ok := m.Balances[userID]; ok {
		return b, nil
	}
	return nil, domain.ErrBalanceNotFound
}

// Upsert creates or replaces the user's balance
func (m *MockAccountBalanceRepository) Upsert(balance *domain.AccountBalance) (*domain.AccountBalance, error) {
	balance.UpdatedAt = time.Now()
	m.Balances[balance.UserID] = balance
	return balance, nil
}
