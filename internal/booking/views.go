package booking

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-hall/internal/ledger"
	"github.com/noah-isme/backend-hall/internal/store"
)

// Summary is a booking as shown in lists, with its computed totals.
type Summary struct {
	ID             string          `json:"id"`
	HallID         string          `json:"hallId"`
	HallName       string          `json:"hallName"`
	CustomerName   string          `json:"customerName"`
	CustomerPhone  string          `json:"customerPhone"`
	CustomerEmail  string          `json:"customerEmail,omitempty"`
	EventType      string          `json:"eventType"`
	EventDate      string          `json:"eventDate"`
	StartTime      string          `json:"startTime"`
	EndTime        string          `json:"endTime"`
	Status         string          `json:"status"`
	BaseRent       decimal.Decimal `json:"baseRent"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TaxRate        decimal.Decimal `json:"taxRate"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	Totals         ledger.Totals   `json:"totals"`
}

// Detail is a single booking with its lines and display strings.
type Detail struct {
	Summary
	Charges  []Charge       `json:"charges"`
	Payments []Payment      `json:"payments"`
	Display  ledger.Display `json:"display"`
}

// Charge is an additional service billed on a booking.
type Charge struct {
	ID          string          `json:"id"`
	BookingID   string          `json:"bookingId"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Payment is money received or refunded against a booking.
type Payment struct {
	ID            string          `json:"id"`
	BookingID     string          `json:"bookingId"`
	Amount        decimal.Decimal `json:"amount"`
	Kind          string          `json:"kind"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentDate   string          `json:"paymentDate"`
	Reference     string          `json:"reference,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Hall is a bookable venue.
type Hall struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Floor    string          `json:"floor"`
	Capacity int32           `json:"capacity"`
	BaseRent decimal.Decimal `json:"baseRent"`
	IsActive bool            `json:"isActive"`
}

// LineChange is returned after a charge or payment is added or removed so
// clients can refresh the booking balance without a second request.
type LineChange struct {
	Charge  *Charge       `json:"charge,omitempty"`
	Payment *Payment      `json:"payment,omitempty"`
	Totals  ledger.Totals `json:"totals"`
}

func toSummary(b store.Booking, lb ledger.Booking, totals ledger.Totals) Summary {
	return Summary{
		ID:             b.ID,
		HallID:         b.HallID,
		HallName:       b.HallName,
		CustomerName:   b.CustomerName,
		CustomerPhone:  b.CustomerPhone,
		CustomerEmail:  store.TextValue(b.CustomerEmail),
		EventType:      b.EventType,
		EventDate:      store.DateString(b.EventDate),
		StartTime:      store.TimeString(b.StartTime),
		EndTime:        store.TimeString(b.EndTime),
		Status:         b.Status,
		BaseRent:       lb.BaseRent,
		DiscountAmount: lb.DiscountAmount,
		TaxRate:        lb.TaxRate,
		Notes:          store.TextValue(b.Notes),
		CreatedAt:      b.CreatedAt.Time,
		Totals:         totals,
	}
}

func toCharge(row store.BookingCharge) (Charge, error) {
	amount, err := store.Decimal("booking_charges.amount", row.Amount)
	if err != nil {
		return Charge{}, err
	}
	return Charge{
		ID:          row.ID,
		BookingID:   row.BookingID,
		Type:        row.Type,
		Description: row.Description,
		Amount:      amount,
		CreatedAt:   row.CreatedAt.Time,
	}, nil
}

func toPayment(row store.Payment) (Payment, error) {
	amount, err := store.Decimal("payments.amount", row.Amount)
	if err != nil {
		return Payment{}, err
	}
	return Payment{
		ID:            row.ID,
		BookingID:     row.BookingID,
		Amount:        amount,
		Kind:          row.Type,
		PaymentMethod: row.PaymentMethod,
		PaymentDate:   store.DateString(row.PaymentDate),
		Reference:     store.TextValue(row.Reference),
		CreatedAt:     row.CreatedAt.Time,
	}, nil
}

func toCharges(rows []store.BookingCharge) ([]Charge, error) {
	out := make([]Charge, 0, len(rows))
	for _, row := range rows {
		c, err := toCharge(row)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func toPayments(rows []store.Payment) ([]Payment, error) {
	out := make([]Payment, 0, len(rows))
	for _, row := range rows {
		p, err := toPayment(row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
