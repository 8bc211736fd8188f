package ledger

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingAmount is returned when a required amount is absent or null.
	ErrMissingAmount = errors.New("amount is required")
	// ErrInvalidAmount is returned when an amount is not a finite number.
	ErrInvalidAmount = errors.New("amount must be a finite number")
	// ErrAmountOutOfRange is returned for amounts with too many digits.
	ErrAmountOutOfRange = fmt.Errorf("%w with at most %d integer digits and %d decimal places",
		ErrInvalidAmount, MaxIntegerDigits, MaxScale)
	// ErrUnknownPaymentKind is returned for payment kinds other than ADVANCE, FINAL or REFUND.
	ErrUnknownPaymentKind = errors.New("payment kind must be ADVANCE, FINAL or REFUND")
)

// FieldError ties a validation failure to the input field that caused it.
type FieldError struct {
	Field string
	Err   error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if e == nil {
		return ""
	}
	return e.Field + ": " + e.Err.Error()
}

// Unwrap exposes the sentinel error.
func (e *FieldError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationErrors collects every field error found while resolving raw input.
type ValidationErrors []*FieldError

// Error implements the error interface.
func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Error())
	}
	return strings.Join(parts, "; ")
}

// Unwrap lets errors.Is and errors.As see each field error.
func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(v))
	for _, fe := range v {
		errs = append(errs, fe)
	}
	return errs
}

// Fields maps field paths to messages, suitable for an API error body.
func (v ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for _, fe := range v {
		out[fe.Field] = fe.Err.Error()
	}
	return out
}
