package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-hall/internal/ledger"
)

// LineQuerier loads charge and payment lines for many bookings at once.
type LineQuerier interface {
	ListChargesByBookings(ctx context.Context, bookingIDs []string) ([]BookingCharge, error)
	ListPaymentsByBookings(ctx context.Context, bookingIDs []string) ([]Payment, error)
}

// Lines are the charge and payment rows of one booking.
type Lines struct {
	Charges  []BookingCharge
	Payments []Payment
}

// LoadLedgerLines fetches the lines of every booking in bookingIDs with two
// queries and groups them by booking id. Bookings without lines are present
// in the result with empty slices.
func LoadLedgerLines(ctx context.Context, q LineQuerier, bookingIDs []string) (map[string]Lines, error) {
	out := make(map[string]Lines, len(bookingIDs))
	if len(bookingIDs) == 0 {
		return out, nil
	}
	for _, id := range bookingIDs {
		out[id] = Lines{}
	}
	charges, err := q.ListChargesByBookings(ctx, bookingIDs)
	if err != nil {
		return nil, fmt.Errorf("list charges: %w", err)
	}
	payments, err := q.ListPaymentsByBookings(ctx, bookingIDs)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	for _, c := range charges {
		l := out[c.BookingID]
		l.Charges = append(l.Charges, c)
		out[c.BookingID] = l
	}
	for _, p := range payments {
		l := out[p.BookingID]
		l.Payments = append(l.Payments, p)
		out[p.BookingID] = l
	}
	return out, nil
}

// LedgerBooking extracts the calculator inputs of b.
func LedgerBooking(b Booking) (ledger.Booking, error) {
	rent, err := Decimal("bookings.base_rent", b.BaseRent)
	if err != nil {
		return ledger.Booking{}, err
	}
	discount, err := Decimal("bookings.discount_amount", b.DiscountAmount)
	if err != nil {
		return ledger.Booking{}, err
	}
	rate, err := Decimal("bookings.tax_rate", b.TaxRate)
	if err != nil {
		return ledger.Booking{}, err
	}
	return ledger.Booking{BaseRent: rent, DiscountAmount: discount, TaxRate: rate}, nil
}

// LedgerCharges converts charge rows into calculator lines.
func LedgerCharges(rows []BookingCharge) ([]ledger.Charge, error) {
	out := make([]ledger.Charge, 0, len(rows))
	for _, row := range rows {
		amount, err := Decimal(fmt.Sprintf("booking_charges[%s].amount", row.ID), row.Amount)
		if err != nil {
			return nil, err
		}
		out = append(out, ledger.Charge{Amount: amount})
	}
	return out, nil
}

// LedgerPayments converts payment rows into calculator lines.
func LedgerPayments(rows []Payment) ([]ledger.Payment, error) {
	out := make([]ledger.Payment, 0, len(rows))
	for _, row := range rows {
		amount, err := Decimal(fmt.Sprintf("payments[%s].amount", row.ID), row.Amount)
		if err != nil {
			return nil, err
		}
		out = append(out, ledger.Payment{Amount: amount, Kind: ledger.PaymentKind(row.Type)})
	}
	return out, nil
}

// Totals runs the ledger calculator over a stored booking and its lines.
func Totals(b Booking, lines Lines) (ledger.Totals, error) {
	lb, err := LedgerBooking(b)
	if err != nil {
		return ledger.Totals{}, fmt.Errorf("booking %s: %w", b.ID, err)
	}
	charges, err := LedgerCharges(lines.Charges)
	if err != nil {
		return ledger.Totals{}, fmt.Errorf("booking %s: %w", b.ID, err)
	}
	payments, err := LedgerPayments(lines.Payments)
	if err != nil {
		return ledger.Totals{}, fmt.Errorf("booking %s: %w", b.ID, err)
	}
	totals, err := ledger.Compute(lb, charges, payments)
	if err != nil {
		return ledger.Totals{}, fmt.Errorf("booking %s: %w", b.ID, err)
	}
	return totals, nil
}

// BookingIDs returns the ids of bookings in order.
func BookingIDs(bookings []Booking) []string {
	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.ID)
	}
	return ids
}

// ExpenseTotals sums expense rows overall and per category.
func ExpenseTotals(rows []Expense) (decimal.Decimal, map[string]decimal.Decimal, error) {
	total := decimal.Zero
	byCategory := make(map[string]decimal.Decimal)
	for _, row := range rows {
		amount, err := Decimal(fmt.Sprintf("expenses[%s].amount", row.ID), row.Amount)
		if err != nil {
			return decimal.Zero, nil, err
		}
		total = total.Add(amount)
		byCategory[row.Category] = byCategory[row.Category].Add(amount)
	}
	return total, byCategory, nil
}
