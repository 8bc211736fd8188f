package ledger

import "github.com/shopspring/decimal"

// Aggregate sums the totals of many bookings, for dashboards and reports.
type Aggregate struct {
	Bookings       int             `json:"bookings"`
	BaseRent       decimal.Decimal `json:"baseRent"`
	TotalCharges   decimal.Decimal `json:"totalCharges"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	GrandTotal     decimal.Decimal `json:"grandTotal"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	TotalRefunds   decimal.Decimal `json:"totalRefunds"`
	NetReceived    decimal.Decimal `json:"netReceived"`
	Balance        decimal.Decimal `json:"balance"`
}

// Add folds t into the aggregate.
func (a *Aggregate) Add(t Totals) {
	a.Bookings++
	a.BaseRent = a.BaseRent.Add(t.BaseRent)
	a.TotalCharges = a.TotalCharges.Add(t.TotalCharges)
	a.DiscountAmount = a.DiscountAmount.Add(t.DiscountAmount)
	a.TaxAmount = a.TaxAmount.Add(t.TaxAmount)
	a.GrandTotal = a.GrandTotal.Add(t.GrandTotal)
	a.TotalPaid = a.TotalPaid.Add(t.TotalPaid)
	a.TotalRefunds = a.TotalRefunds.Add(t.TotalRefunds)
	a.NetReceived = a.NetReceived.Add(t.NetReceived)
	a.Balance = a.Balance.Add(t.Balance)
}
