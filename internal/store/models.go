package store

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// Booking statuses.
const (
	StatusInquiry   = "INQUIRY"
	StatusTentative = "TENTATIVE"
	StatusConfirmed = "CONFIRMED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// AllStatuses lists every booking status in lifecycle order.
var AllStatuses = []string{StatusInquiry, StatusTentative, StatusConfirmed, StatusCompleted, StatusCancelled}

// EarningStatuses are the statuses whose bookings count towards earnings.
var EarningStatuses = []string{StatusConfirmed, StatusCompleted}

// UpcomingStatuses are the statuses shown in the upcoming bookings list.
var UpcomingStatuses = []string{StatusTentative, StatusConfirmed}

type Hall struct {
	ID        string
	Name      string
	Floor     string
	Capacity  int32
	BaseRent  pgtype.Numeric
	IsActive  bool
	CreatedAt pgtype.Timestamptz
}

// Booking is a bookings row joined with the hall name.
type Booking struct {
	ID             string
	HallID         string
	HallName       string
	CustomerName   string
	CustomerPhone  string
	CustomerEmail  pgtype.Text
	EventType      string
	EventDate      pgtype.Date
	StartTime      pgtype.Time
	EndTime        pgtype.Time
	Status         string
	BaseRent       pgtype.Numeric
	DiscountAmount pgtype.Numeric
	TaxRate        pgtype.Numeric
	Notes          pgtype.Text
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

type BookingCharge struct {
	ID          string
	BookingID   string
	Type        string
	Description string
	Amount      pgtype.Numeric
	CreatedAt   pgtype.Timestamptz
}

type Payment struct {
	ID            string
	BookingID     string
	Amount        pgtype.Numeric
	Type          string
	PaymentMethod string
	PaymentDate   pgtype.Date
	Reference     pgtype.Text
	CreatedAt     pgtype.Timestamptz
}

type Expense struct {
	ID               string
	Category         string
	RelatedBookingID pgtype.Text
	Description      string
	Amount           pgtype.Numeric
	ExpenseDate      pgtype.Date
	CreatedAt        pgtype.Timestamptz
}
