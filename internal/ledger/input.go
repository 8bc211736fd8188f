package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MaxScale is the most decimal places an amount may carry.
	MaxScale = 10
	// MaxIntegerDigits is the most digits an amount may carry before the point.
	MaxIntegerDigits = 15

	maxAmountLen = 64
)

// ParseAmount converts a textual amount into a decimal. Empty input, NaN,
// infinities and anything that is not a number are rejected with a
// *FieldError naming field. Amounts beyond MaxScale decimal places or
// MaxIntegerDigits integer digits are rejected with ErrAmountOutOfRange, which
// wraps ErrInvalidAmount.
func ParseAmount(field, raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, &FieldError{Field: field, Err: ErrMissingAmount}
	}
	if len(s) > maxAmountLen {
		return decimal.Zero, &FieldError{Field: field, Err: ErrAmountOutOfRange}
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "nan") || strings.Contains(lower, "inf") {
		return decimal.Zero, &FieldError{Field: field, Err: ErrInvalidAmount}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &FieldError{Field: field, Err: ErrInvalidAmount}
	}
	// exponent and digit count are checked before any arithmetic, which
	// would otherwise materialise the full coefficient
	exp := int64(d.Exponent())
	if exp < -MaxScale || int64(d.NumDigits())+exp > MaxIntegerDigits {
		return decimal.Zero, &FieldError{Field: field, Err: ErrAmountOutOfRange}
	}
	return d, nil
}

// ParsePaymentKind normalises s into a PaymentKind.
func ParsePaymentKind(s string) (PaymentKind, error) {
	kind := PaymentKind(strings.ToUpper(strings.TrimSpace(s)))
	if !kind.Valid() {
		return "", ErrUnknownPaymentKind
	}
	return kind, nil
}

// Amount is a JSON amount that accepts a number or a numeric string. Parsing is
// deferred so every bad field of a request can be reported at once.
type Amount struct {
	raw string
	set bool
}

// NewAmount builds an Amount from its textual form.
func NewAmount(raw string) Amount {
	return Amount{raw: raw, set: true}
}

// AmountOf builds an Amount from a decimal.
func AmountOf(d decimal.Decimal) Amount {
	return Amount{raw: d.String(), set: true}
}

// IsSet reports whether the field was present and not null.
func (a Amount) IsSet() bool { return a.set }

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*a = Amount{}
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*a = Amount{raw: s, set: true}
		return nil
	}
	*a = Amount{raw: string(trimmed), set: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.set {
		return []byte("null"), nil
	}
	return json.Marshal(a.raw)
}

// Decimal parses the amount, reporting failures against field.
func (a Amount) Decimal(field string) (decimal.Decimal, error) {
	if !a.set {
		return decimal.Zero, &FieldError{Field: field, Err: ErrMissingAmount}
	}
	return ParseAmount(field, a.raw)
}

// RawCharge is an unvalidated charge line.
type RawCharge struct {
	Amount Amount `json:"amount"`
}

// RawPayment is an unvalidated payment line.
type RawPayment struct {
	Amount Amount `json:"amount"`
	Kind   string `json:"kind"`
}

// RawInput is the unvalidated form of the calculator inputs as received at a
// boundary such as an HTTP request.
type RawInput struct {
	BaseRent       Amount       `json:"baseRent"`
	DiscountAmount Amount       `json:"discountAmount"`
	TaxRate        Amount       `json:"taxRate"`
	Charges        []RawCharge  `json:"charges"`
	Payments       []RawPayment `json:"payments"`
}

// WithDefaults fills an absent discount or tax rate.
func (in RawInput) WithDefaults(discount, taxRate decimal.Decimal) RawInput {
	if !in.DiscountAmount.IsSet() {
		in.DiscountAmount = AmountOf(discount)
	}
	if !in.TaxRate.IsSet() {
		in.TaxRate = AmountOf(taxRate)
	}
	return in
}

// Resolve validates every field and returns calculator inputs. All problems
// are returned together as ValidationErrors.
func (in RawInput) Resolve() (Booking, []Charge, []Payment, error) {
	var errs ValidationErrors
	collect := func(err error) {
		if fe, ok := err.(*FieldError); ok {
			errs = append(errs, fe)
		}
	}

	var b Booking
	var err error
	if b.BaseRent, err = in.BaseRent.Decimal("baseRent"); err != nil {
		collect(err)
	}
	if b.DiscountAmount, err = in.DiscountAmount.Decimal("discountAmount"); err != nil {
		collect(err)
	}
	if b.TaxRate, err = in.TaxRate.Decimal("taxRate"); err != nil {
		collect(err)
	}

	charges := make([]Charge, 0, len(in.Charges))
	for i, rc := range in.Charges {
		amount, err := rc.Amount.Decimal(fmt.Sprintf("charges[%d].amount", i))
		if err != nil {
			collect(err)
			continue
		}
		charges = append(charges, Charge{Amount: amount})
	}

	payments := make([]Payment, 0, len(in.Payments))
	for i, rp := range in.Payments {
		amount, amountErr := rp.Amount.Decimal(fmt.Sprintf("payments[%d].amount", i))
		if amountErr != nil {
			collect(amountErr)
		}
		kind, kindErr := ParsePaymentKind(rp.Kind)
		if kindErr != nil {
			errs = append(errs, &FieldError{Field: fmt.Sprintf("payments[%d].kind", i), Err: kindErr})
		}
		if amountErr == nil && kindErr == nil {
			payments = append(payments, Payment{Amount: amount, Kind: kind})
		}
	}

	if len(errs) > 0 {
		return Booking{}, nil, nil, errs
	}
	return b, charges, payments, nil
}
