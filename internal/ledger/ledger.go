// Package ledger derives the financial breakdown of a single hall booking from
// its base rent, extra charges, discount, tax rate and recorded payments.
//
// Every surface that shows money for a booking (booking detail, dashboard,
// reports) goes through Compute so the numbers agree everywhere.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// PaymentKind classifies a money movement recorded against a booking.
type PaymentKind string

const (
	// PaymentAdvance is money received before the event.
	PaymentAdvance PaymentKind = "ADVANCE"
	// PaymentFinal is the settling payment.
	PaymentFinal PaymentKind = "FINAL"
	// PaymentRefund is money returned to the customer.
	PaymentRefund PaymentKind = "REFUND"
)

// Valid reports whether k is one of the known payment kinds.
func (k PaymentKind) Valid() bool {
	switch k {
	case PaymentAdvance, PaymentFinal, PaymentRefund:
		return true
	default:
		return false
	}
}

// Booking carries the monetary facts of a booking.
type Booking struct {
	BaseRent       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxRate        decimal.Decimal
}

// Charge is an additional service line item. Only the amount matters here.
type Charge struct {
	Amount decimal.Decimal
}

// Payment is a recorded payment or refund.
type Payment struct {
	Amount decimal.Decimal
	Kind   PaymentKind
}

// Totals is the complete financial breakdown of one booking.
type Totals struct {
	BaseRent              decimal.Decimal `json:"baseRent"`
	TotalCharges          decimal.Decimal `json:"totalCharges"`
	DiscountAmount        decimal.Decimal `json:"discountAmount"`
	Subtotal              decimal.Decimal `json:"subtotal"`
	SubtotalAfterDiscount decimal.Decimal `json:"subtotalAfterDiscount"`
	TaxRate               decimal.Decimal `json:"taxRate"`
	TaxAmount             decimal.Decimal `json:"taxAmount"`
	GrandTotal            decimal.Decimal `json:"grandTotal"`
	TotalPaid             decimal.Decimal `json:"totalPaid"`
	TotalRefunds          decimal.Decimal `json:"totalRefunds"`
	NetReceived           decimal.Decimal `json:"netReceived"`
	Balance               decimal.Decimal `json:"balance"`
}

// Compute calculates the totals for a booking.
//
// The discount is a flat amount taken off before tax and tax applies to the
// discounted subtotal only. Nothing is rounded and the balance is not clamped:
// a negative balance means the customer overpaid. Out-of-range inputs such as a
// negative rent or a tax rate above one are computed as given; range checks
// belong to the caller. The only failure is a payment with an unknown kind.
func Compute(b Booking, charges []Charge, payments []Payment) (Totals, error) {
	chargesTotal := decimal.Zero
	for _, c := range charges {
		chargesTotal = chargesTotal.Add(c.Amount)
	}

	totalCharges := b.BaseRent.Add(chargesTotal)
	subtotal := totalCharges
	afterDiscount := subtotal.Sub(b.DiscountAmount)
	tax := afterDiscount.Mul(b.TaxRate)
	grandTotal := afterDiscount.Add(tax)

	paid := decimal.Zero
	refunds := decimal.Zero
	for i, p := range payments {
		switch p.Kind {
		case PaymentAdvance, PaymentFinal:
			paid = paid.Add(p.Amount)
		case PaymentRefund:
			refunds = refunds.Add(p.Amount)
		default:
			return Totals{}, &FieldError{Field: fmt.Sprintf("payments[%d].kind", i), Err: ErrUnknownPaymentKind}
		}
	}
	net := paid.Sub(refunds)

	return Totals{
		BaseRent:              b.BaseRent,
		TotalCharges:          totalCharges,
		DiscountAmount:        b.DiscountAmount,
		Subtotal:              subtotal,
		SubtotalAfterDiscount: afterDiscount,
		TaxRate:               b.TaxRate,
		TaxAmount:             tax,
		GrandTotal:            grandTotal,
		TotalPaid:             paid,
		TotalRefunds:          refunds,
		NetReceived:           net,
		Balance:               grandTotal.Sub(net),
	}, nil
}
