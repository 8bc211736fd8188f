package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DisplayPlaces is the number of decimals shown for currency amounts.
const DisplayPlaces int32 = 2

// FormatCurrency renders amount with two decimals and Indian digit grouping,
// for example ₹12,34,567.50. The symbol precedes the sign: ₹-500.00.
func FormatCurrency(amount decimal.Decimal, symbol string) string {
	fixed := amount.StringFixed(DisplayPlaces)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, frac, _ := strings.Cut(fixed, ".")
	grouped := groupIndian(intPart)
	if neg && (strings.Trim(intPart, "0") != "" || strings.Trim(frac, "0") != "") {
		grouped = "-" + grouped
	}
	return symbol + grouped + "." + frac
}

// groupIndian places a separator before the last three digits and then every
// two digits.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]
	var b strings.Builder
	first := len(head) % 2
	if first > 0 {
		b.WriteString(head[:first])
	}
	for i := first; i < len(head); i += 2 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(head[i : i+2])
	}
	b.WriteByte(',')
	b.WriteString(tail)
	return b.String()
}

// Display holds currency strings for the amounts a booking screen shows.
type Display struct {
	TotalCharges   string `json:"totalCharges"`
	DiscountAmount string `json:"discountAmount"`
	TaxAmount      string `json:"taxAmount"`
	GrandTotal     string `json:"grandTotal"`
	TotalPaid      string `json:"totalPaid"`
	TotalRefunds   string `json:"totalRefunds"`
	Balance        string `json:"balance"`
}

// NewDisplay formats t for presentation.
func NewDisplay(t Totals, symbol string) Display {
	return Display{
		TotalCharges:   FormatCurrency(t.TotalCharges, symbol),
		DiscountAmount: FormatCurrency(t.DiscountAmount, symbol),
		TaxAmount:      FormatCurrency(t.TaxAmount, symbol),
		GrandTotal:     FormatCurrency(t.GrandTotal, symbol),
		TotalPaid:      FormatCurrency(t.TotalPaid, symbol),
		TotalRefunds:   FormatCurrency(t.TotalRefunds, symbol),
		Balance:        FormatCurrency(t.Balance, symbol),
	}
}
