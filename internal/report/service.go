// Package report produces the financial report for an arbitrary date range.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-hall/internal/cache"
	"github.com/noah-isme/backend-hall/internal/ledger"
	"github.com/noah-isme/backend-hall/internal/obs"
	"github.com/noah-isme/backend-hall/internal/store"
)

// CachePrefix is the key prefix of cached reports.
const CachePrefix = "report:"

var (
	errDateRequired = errors.New("is required")
	errDateFormat   = errors.New("must be a date in YYYY-MM-DD format")
	errRangeOrder   = errors.New("must not be before startDate")
)

// Querier is the store access used to build a report.
type Querier interface {
	store.LineQuerier
	ListBookingsInPeriod(ctx context.Context, arg store.ListBookingsInPeriodParams) ([]store.Booking, error)
	ListExpensesInPeriod(ctx context.Context, arg store.ListExpensesInPeriodParams) ([]store.Expense, error)
}

// Service builds and caches reports.
type Service struct {
	Q     Querier
	Cache *cache.Cache
	Now   func() time.Time
}

// Range is an inclusive date range.
type Range struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Earnings breaks down booking income. Cash figures come from recorded
// payments; EarningsByHall is the billed grand total per hall name.
type Earnings struct {
	TotalRent      decimal.Decimal            `json:"totalRent"`
	ChargesByType  map[string]decimal.Decimal `json:"chargesByType"`
	GrossEarnings  decimal.Decimal            `json:"grossEarnings"`
	Refunds        decimal.Decimal            `json:"refunds"`
	NetEarnings    decimal.Decimal            `json:"netEarnings"`
	EarningsByHall map[string]decimal.Decimal `json:"earningsByHall"`
	PaymentsByKind map[string]decimal.Decimal `json:"paymentsByKind"`
}

// Expenses totals spending in the range.
type Expenses struct {
	Total      decimal.Decimal            `json:"total"`
	ByCategory map[string]decimal.Decimal `json:"byCategory"`
}

// Line is one booking of the report.
type Line struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customerName"`
	EventDate    string          `json:"eventDate"`
	Hall         string          `json:"hall"`
	Status       string          `json:"status"`
	BaseRent     decimal.Decimal `json:"baseRent"`
	GrandTotal   decimal.Decimal `json:"grandTotal"`
	Balance      decimal.Decimal `json:"balance"`
}

// Report is the financial report payload.
type Report struct {
	Period        Range            `json:"period"`
	BookingsCount int              `json:"bookingsCount"`
	Earnings      Earnings         `json:"earnings"`
	Ledger        ledger.Aggregate `json:"ledger"`
	Expenses      Expenses         `json:"expenses"`
	NetProfit     decimal.Decimal  `json:"netProfit"`
	Bookings      []Line           `json:"bookings"`
	GeneratedAt   time.Time        `json:"generatedAt"`
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ParseRange validates both bounds and their order.
func ParseRange(startRaw, endRaw string) (start, end time.Time, err error) {
	var errs ledger.ValidationErrors
	parse := func(field, raw string) time.Time {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			errs = append(errs, &ledger.FieldError{Field: field, Err: errDateRequired})
			return time.Time{}
		}
		t, perr := time.Parse(time.DateOnly, raw)
		if perr != nil {
			errs = append(errs, &ledger.FieldError{Field: field, Err: errDateFormat})
		}
		return t
	}
	start = parse("startDate", startRaw)
	end = parse("endDate", endRaw)
	if len(errs) == 0 && end.Before(start) {
		errs = append(errs, &ledger.FieldError{Field: "endDate", Err: errRangeOrder})
	}
	if len(errs) > 0 {
		return time.Time{}, time.Time{}, errs
	}
	return start, end, nil
}

// Generate returns the report for the range, serving it from cache when present.
func (s *Service) Generate(ctx context.Context, startRaw, endRaw string) (Report, error) {
	start, end, err := ParseRange(startRaw, endRaw)
	if err != nil {
		return Report{}, err
	}
	key := cache.Key("report", start.Format(time.DateOnly), end.Format(time.DateOnly))
	rep, hit, err := cache.Fetch(ctx, s.Cache, key, func(ctx context.Context) (Report, error) {
		return s.build(ctx, start, end)
	})
	if s.Cache.Enabled() {
		obs.ObserveCacheLookup("report", hit)
	}
	return rep, err
}

func (s *Service) build(ctx context.Context, start, end time.Time) (Report, error) {
	from, to := store.Date(start), store.Date(end)
	bookings, err := s.Q.ListBookingsInPeriod(ctx, store.ListBookingsInPeriodParams{
		StartDate: from,
		EndDate:   to,
		Statuses:  store.EarningStatuses,
	})
	if err != nil {
		return Report{}, fmt.Errorf("list bookings: %w", err)
	}
	lines, err := store.LoadLedgerLines(ctx, s.Q, store.BookingIDs(bookings))
	if err != nil {
		return Report{}, err
	}

	earnings := Earnings{
		ChargesByType:  map[string]decimal.Decimal{},
		EarningsByHall: map[string]decimal.Decimal{},
		PaymentsByKind: map[string]decimal.Decimal{},
	}
	var agg ledger.Aggregate
	out := make([]Line, 0, len(bookings))
	for _, b := range bookings {
		bl := lines[b.ID]
		totals, err := store.Totals(b, bl)
		obs.ObserveLedgerCompute(obs.SurfaceReport, err)
		if err != nil {
			return Report{}, err
		}
		agg.Add(totals)
		earnings.EarningsByHall[b.HallName] = earnings.EarningsByHall[b.HallName].Add(totals.GrandTotal)

		for _, c := range bl.Charges {
			amount, err := store.Decimal("booking_charges.amount", c.Amount)
			if err != nil {
				return Report{}, fmt.Errorf("charge %s: %w", c.ID, err)
			}
			earnings.ChargesByType[c.Type] = earnings.ChargesByType[c.Type].Add(amount)
		}
		for _, p := range bl.Payments {
			amount, err := store.Decimal("payments.amount", p.Amount)
			if err != nil {
				return Report{}, fmt.Errorf("payment %s: %w", p.ID, err)
			}
			earnings.PaymentsByKind[p.Type] = earnings.PaymentsByKind[p.Type].Add(amount)
		}

		out = append(out, Line{
			ID:           b.ID,
			CustomerName: b.CustomerName,
			EventDate:    store.DateString(b.EventDate),
			Hall:         b.HallName,
			Status:       b.Status,
			BaseRent:     totals.BaseRent,
			GrandTotal:   totals.GrandTotal,
			Balance:      totals.Balance,
		})
	}
	earnings.TotalRent = agg.BaseRent
	earnings.GrossEarnings = agg.TotalPaid
	earnings.Refunds = agg.TotalRefunds
	earnings.NetEarnings = agg.NetReceived

	expenseRows, err := s.Q.ListExpensesInPeriod(ctx, store.ListExpensesInPeriodParams{StartDate: from, EndDate: to})
	if err != nil {
		return Report{}, fmt.Errorf("list expenses: %w", err)
	}
	total, byCategory, err := store.ExpenseTotals(expenseRows)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Period:        Range{StartDate: start.Format(time.DateOnly), EndDate: end.Format(time.DateOnly)},
		BookingsCount: len(bookings),
		Earnings:      earnings,
		Ledger:        agg,
		Expenses:      Expenses{Total: total, ByCategory: byCategory},
		NetProfit:     agg.NetReceived.Sub(total),
		Bookings:      out,
		GeneratedAt:   s.now().UTC(),
	}, nil
}
