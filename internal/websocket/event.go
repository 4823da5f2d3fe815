package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event (created, updated, deleted)
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeInvoice          EntityType = "invoice"
	EntityTypeExpense          EntityType = "expense"
	EntityTypeVatPayment       EntityType = "vat_payment"
	EntityTypeUrssafPayment    EntityType = "urssaf_payment"
	EntityTypeIncomeTaxPayment EntityType = "income_tax_payment"
	EntityTypeSettings         EntityType = "settings"
	EntityTypeBalance          EntityType = "balance"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "invoice.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "invoice"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// InvoiceCreated creates an invoice.created event
func InvoiceCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeInvoice, payload)
}

// InvoiceUpdated creates an invoice.updated event
func InvoiceUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeInvoice, payload)
}

// InvoiceDeleted creates an invoice.deleted event
func InvoiceDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeInvoice, payload)
}

// ExpenseCreated creates an expense.created event
func ExpenseCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeExpense, payload)
}

// ExpenseUpdated creates an expense.updated event
func ExpenseUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeExpense, payload)
}

// ExpenseDeleted creates an expense.deleted event
func ExpenseDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeExpense, payload)
}

// BalanceUpdated creates a balance.updated event
func BalanceUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeBalance, payload)
}

// SettingsUpdated creates a settings.updated event
func SettingsUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeSettings, payload)
}
