package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventType_String(t *testing.T) {
	tests := []struct {
		name     string
		et       EventType
		expected string
	}{
		{"created", EventTypeCreated, "created"},
		{"updated", EventTypeUpdated, "updated"},
		{"deleted", EventTypeDeleted, "deleted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.et))
		})
	}
}

func TestEntityType_String(t *testing.T) {
	tests := []struct {
		name     string
		et       EntityType
		expected string
	}{
		{"invoice", EntityTypeInvoice, "invoice"},
		{"expense", EntityTypeExpense, "expense"},
		{"vat_payment", EntityTypeVatPayment, "vat_payment"},
		{"urssaf_payment", EntityTypeUrssafPayment, "urssaf_payment"},
		{"income_tax_payment", EntityTypeIncomeTaxPayment, "income_tax_payment"},
		{"settings", EntityTypeSettings, "settings"},
		{"balance", EntityTypeBalance, "balance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.et))
		})
	}
}

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"id":       1,
		"client":   "Acme SARL",
		"amountHt": "1500.00",
	}

	before := time.Now()
	evt := NewEvent(EventTypeCreated, EntityTypeInvoice, payload)
	after := time.Now()

	assert.Equal(t, "invoice.created", evt.Type)
	assert.Equal(t, EntityTypeInvoice, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before.UTC().Add(-time.Second)) && !evt.Timestamp.After(after.UTC().Add(time.Second)))
}

func TestEvent_JSON_Serialization(t *testing.T) {
	fixedTime := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	payload := map[string]interface{}{
		"id":       float64(1),
		"client":   "Acme SARL",
		"amountHt": "1500.00",
	}

	evt := Event{
		Type:      "invoice.created",
		Entity:    EntityTypeInvoice,
		Payload:   payload,
		Timestamp: fixedTime,
	}

	data, err := json.Marshal(evt)
	require.NoError(t, err)

	var decoded Event
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)

	assert.Equal(t, evt.Type, decoded.Type)
	assert.Equal(t, evt.Entity, decoded.Entity)
	assert.Equal(t, fixedTime.UTC(), decoded.Timestamp.UTC())

	// Payload should be preserved
	decodedPayload, ok := decoded.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), decodedPayload["id"])
	assert.Equal(t, "Acme SARL", decodedPayload["client"])
	assert.Equal(t, "1500.00", decodedPayload["amountHt"])
}

func TestEvent_ToJSON(t *testing.T) {
	payload := map[string]interface{}{
		"id": float64(42),
	}

	evt := NewEvent(EventTypeUpdated, EntityTypeExpense, payload)

	data, err := evt.ToJSON()
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	// Verify it's valid JSON
	var decoded map[string]interface{}
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)

	assert.Equal(t, "expense.updated", decoded["type"])
	assert.Equal(t, "expense", decoded["entity"])
	assert.NotNil(t, decoded["payload"])
	assert.NotNil(t, decoded["timestamp"])
}

func TestInvoiceEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{
		"id":       float64(1),
		"client":   "Acme SARL",
		"amountHt": "1500.00",
	}

	t.Run("InvoiceCreated", func(t *testing.T) {
		evt := InvoiceCreated(payload)
		assert.Equal(t, "invoice.created", evt.Type)
		assert.Equal(t, EntityTypeInvoice, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})

	t.Run("InvoiceUpdated", func(t *testing.T) {
		evt := InvoiceUpdated(payload)
		assert.Equal(t, "invoice.updated", evt.Type)
		assert.Equal(t, EntityTypeInvoice, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})

	t.Run("InvoiceDeleted", func(t *testing.T) {
		evt := InvoiceDeleted(payload)
		assert.Equal(t, "invoice.deleted", evt.Type)
		assert.Equal(t, EntityTypeInvoice, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})
}

func TestExpenseEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{
		"id":          float64(2),
		"description": "Office rent",
	}

	t.Run("ExpenseCreated", func(t *testing.T) {
		evt := ExpenseCreated(payload)
		assert.Equal(t, "expense.created", evt.Type)
		assert.Equal(t, EntityTypeExpense, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})

	t.Run("ExpenseUpdated", func(t *testing.T) {
		evt := ExpenseUpdated(payload)
		assert.Equal(t, "expense.updated", evt.Type)
		assert.Equal(t, EntityTypeExpense, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})

	t.Run("ExpenseDeleted", func(t *testing.T) {
		evt := ExpenseDeleted(payload)
		assert.Equal(t, "expense.deleted", evt.Type)
		assert.Equal(t, EntityTypeExpense, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})
}

func TestSettingsAndBalanceEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{"amount": "12000.00"}

	t.Run("SettingsUpdated", func(t *testing.T) {
		evt := SettingsUpdated(payload)
		assert.Equal(t, "settings.updated", evt.Type)
		assert.Equal(t, EntityTypeSettings, evt.Entity)
	})

	t.Run("BalanceUpdated", func(t *testing.T) {
		evt := BalanceUpdated(payload)
		assert.Equal(t, "balance.updated", evt.Type)
		assert.Equal(t, EntityTypeBalance, evt.Entity)
		assert.Equal(t, payload, evt.Payload)
	})
}
