package booking

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-hall/internal/ledger"
)

var (
	errNotPositive  = errors.New("must be greater than zero")
	errNegative     = errors.New("must not be negative")
	errRateOutRange = errors.New("must be between 0 and 1")
	errMoneyScale   = errors.New("must have at most 2 decimal places")
	errMoneyRange   = errors.New("must be less than 10000000000")
	errRateScale    = errors.New("must have at most 4 decimal places")

	errNothingToUpdate = errors.New("must change at least one field")
)

// Money columns are NUMERIC(12,2) and the tax rate is NUMERIC(5,4).
const (
	moneyScale = 2
	rateScale  = 4
)

var moneyLimit = decimal.New(1, 10)

// ChargeTypes are the accepted additional service categories.
var ChargeTypes = []string{"AC", "DECORATION", "SOUND", "CATERING", "CLEANING", "GENERATOR", "OTHER"}

// PaymentMethods are the accepted ways of paying.
var PaymentMethods = []string{"CASH", "CARD", "BANK_TRANSFER", "UPI", "OTHER"}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// check runs struct tag validation and reports failures as ledger field
// errors so request and amount problems share one error shape.
func check(req any) ledger.ValidationErrors {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ledger.ValidationErrors{{Field: "body", Err: err}}
	}
	out := make(ledger.ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, &ledger.FieldError{Field: fieldPath(fe), Err: errors.New(message(fe))})
	}
	return out
}

// fieldPath drops the root struct name from the namespace, e.g.
// "chargeRequest.type" becomes "type".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "is invalid"
	}
}

// parseAmount parses a required amount, keeping the field error it carries.
func parseAmount(field string, a ledger.Amount) (decimal.Decimal, *ledger.FieldError) {
	d, err := a.Decimal(field)
	if err != nil {
		var fe *ledger.FieldError
		if errors.As(err, &fe) {
			return decimal.Zero, fe
		}
		return decimal.Zero, &ledger.FieldError{Field: field, Err: err}
	}
	return d, nil
}

// positive parses a required amount that must be greater than zero and fit a
// money column.
func positive(field string, a ledger.Amount) (decimal.Decimal, *ledger.FieldError) {
	d, fe := parseAmount(field, a)
	if fe == nil {
		fe = checkMoney(field, d, false)
	}
	if fe != nil {
		return decimal.Zero, fe
	}
	return d, nil
}

// checkMoney reports the first rule d breaks: the sign, then the precision and
// range of a money column.
func checkMoney(field string, d decimal.Decimal, allowZero bool) *ledger.FieldError {
	switch {
	case allowZero && d.IsNegative():
		return &ledger.FieldError{Field: field, Err: errNegative}
	case !allowZero && !d.IsPositive():
		return &ledger.FieldError{Field: field, Err: errNotPositive}
	case !d.Equal(d.Truncate(moneyScale)):
		return &ledger.FieldError{Field: field, Err: errMoneyScale}
	case d.Abs().GreaterThanOrEqual(moneyLimit):
		return &ledger.FieldError{Field: field, Err: errMoneyRange}
	}
	return nil
}

func checkRate(field string, d decimal.Decimal) *ledger.FieldError {
	switch {
	case d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)):
		return &ledger.FieldError{Field: field, Err: errRateOutRange}
	case !d.Equal(d.Truncate(rateScale)):
		return &ledger.FieldError{Field: field, Err: errRateScale}
	}
	return nil
}

// checkQuote applies the business ranges the calculator leaves to callers.
func checkQuote(b ledger.Booking, charges []ledger.Charge, payments []ledger.Payment) ledger.ValidationErrors {
	var errs ledger.ValidationErrors
	add := func(fe *ledger.FieldError) {
		if fe != nil {
			errs = append(errs, fe)
		}
	}
	add(checkMoney("baseRent", b.BaseRent, false))
	add(checkMoney("discountAmount", b.DiscountAmount, true))
	add(checkRate("taxRate", b.TaxRate))
	for i, c := range charges {
		add(checkMoney(fmt.Sprintf("charges[%d].amount", i), c.Amount, false))
	}
	for i, p := range payments {
		add(checkMoney(fmt.Sprintf("payments[%d].amount", i), p.Amount, false))
	}
	return errs
}
