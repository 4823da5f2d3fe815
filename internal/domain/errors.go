package domain

import "errors"

// Domain errors
var (
	ErrNotFound                = errors.New("resource not found")
	ErrAlreadyExists           = errors.New("resource already exists")
	ErrInvalidInput            = errors.New("invalid input")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrInternalError           = errors.New("internal error")
	ErrUserNotFound            = errors.New("user not found")
	ErrInvoiceNotFound         = errors.New("invoice not found")
	ErrExpenseNotFound         = errors.New("expense not found")
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrSettingsNotFound        = errors.New("settings not found")
	ErrBalanceNotFound         = errors.New("account balance not found")
	ErrClientNameRequired      = errors.New("client name is required")
	ErrNameTooLong             = errors.New("name exceeds maximum length")
	ErrDescriptionRequired     = errors.New("description is required")
	ErrInvalidAmount           = errors.New("amount must be positive")
	ErrInvalidTaxRate          = errors.New("tax rate must be between 0 and 100")
	ErrInvalidRecoveryRate     = errors.New("tax recovery rate must be between 0 and 100")
	ErrInvalidCategory         = errors.New("invalid expense category")
	ErrInvalidStatus           = errors.New("invalid payment status")
	ErrInvalidTrimester        = errors.New("trimester must be between 1 and 4")
	ErrInvalidPeriod           = errors.New("invalid period")
	ErrInvalidPaymentDay       = errors.New("payment day must be between 1 and 31")
	ErrRecurrenceIncomplete    = errors.New("recurring expense requires recurrence period, start month, and payment day")
	ErrNoBracketsConfigured    = errors.New("no tax brackets configured")
	ErrBracketOrderInvalid     = errors.New("tax brackets must be ordered by ascending minimum income")
	ErrDuplicateDeclaration    = errors.New("a declaration already exists for this period")
)

// Validation constants
const (
	MaxClientNameLength  = 255
	MaxDescriptionLength = 500
	MaxReferenceLength   = 100
)
