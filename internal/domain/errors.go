package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	// Lookup errors
	ErrDebtorNotFound      = errors.New("debtor not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidPage         = errors.New("invalid page")

	// ErrForbidden covers both a foreign owner and an inactive target.
	ErrForbidden = errors.New("You are not the owner of the object")

	// Ledger errors
	ErrZeroAmount          = errors.New("zero amount")
	ErrNoActiveCurrency    = errors.New("active currency not configured for user")
	ErrNoTransactions      = errors.New("The debtor has no transactions")
	ErrUnsupportedFormat   = errors.New("report format not supported")
	ErrUpstreamUnavailable = errors.New("Error connecting to recaptcha check server")

	// Registration errors
	ErrValidation        = errors.New("validation failed")
	ErrInvalidActivation = errors.New("Activation link is invalid!")
)

// NonFieldErrors is the key used for errors not bound to a single field.
const NonFieldErrors = "non_field_errors"

// ValidationError carries per-field messages. It matches ErrValidation.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates a ValidationError with a single message.
func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

// Add appends a message for field.
func (v *ValidationError) Add(field, message string) {
	if v.Fields == nil {
		v.Fields = make(map[string][]string)
	}
	v.Fields[field] = append(v.Fields[field], message)
}

// Empty reports whether no messages were collected.
func (v *ValidationError) Empty() bool {
	return len(v.Fields) == 0
}

// Err returns v as an error, or nil when it holds no messages.
func (v *ValidationError) Err() error {
	if v.Empty() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(v.Fields[k], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (v *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
