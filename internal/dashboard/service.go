// Package dashboard builds the monthly business summary shown on the home
// screen: earnings, expenses, profit, booking counts and upcoming events.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-hall/internal/cache"
	"github.com/noah-isme/backend-hall/internal/ledger"
	"github.com/noah-isme/backend-hall/internal/obs"
	"github.com/noah-isme/backend-hall/internal/store"
)

// CachePrefix is the key prefix of cached summaries.
const CachePrefix = "dash:"

const monthLayout = "2006-01"

// Querier is the store access used to build a summary.
type Querier interface {
	store.LineQuerier
	ListBookingsInPeriod(ctx context.Context, arg store.ListBookingsInPeriodParams) ([]store.Booking, error)
	CountBookingsByStatus(ctx context.Context, arg store.CountBookingsByStatusParams) ([]store.CountBookingsByStatusRow, error)
	ListUpcomingBookings(ctx context.Context, arg store.ListUpcomingBookingsParams) ([]store.Booking, error)
	ListExpensesInPeriod(ctx context.Context, arg store.ListExpensesInPeriodParams) ([]store.Expense, error)
}

// Service computes and caches monthly summaries.
type Service struct {
	Q             Querier
	Cache         *cache.Cache
	UpcomingDays  int
	UpcomingLimit int
	Now           func() time.Time
}

// Period is an inclusive date range.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Upcoming is a booking in the upcoming events list.
type Upcoming struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customerName"`
	EventDate    string          `json:"eventDate"`
	StartTime    string          `json:"startTime"`
	EventType    string          `json:"eventType"`
	Hall         string          `json:"hall"`
	Status       string          `json:"status"`
	GrandTotal   decimal.Decimal `json:"grandTotal"`
	Balance      decimal.Decimal `json:"balance"`
}

// Summary is the dashboard payload for one month.
type Summary struct {
	Month            string           `json:"month"`
	Period           Period           `json:"period"`
	Earnings         decimal.Decimal  `json:"earnings"`
	Collected        decimal.Decimal  `json:"collected"`
	Outstanding      decimal.Decimal  `json:"outstanding"`
	Expenses         decimal.Decimal  `json:"expenses"`
	NetProfit        decimal.Decimal  `json:"netProfit"`
	Ledger           ledger.Aggregate `json:"ledger"`
	BookingsByStatus map[string]int64 `json:"bookingsByStatus"`
	UpcomingBookings []Upcoming       `json:"upcomingBookings"`
	GeneratedAt      time.Time        `json:"generatedAt"`
}

// ErrInvalidMonth is returned for a month that is not in YYYY-MM form.
var ErrInvalidMonth = errors.New("must be a month in YYYY-MM format")

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ParseMonth resolves raw (YYYY-MM, empty for the month of now) into its
// label and first and last day.
func ParseMonth(raw string, now time.Time) (label string, start, end time.Time, err error) {
	var first time.Time
	if raw == "" {
		first = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	} else {
		first, err = time.Parse(monthLayout, raw)
		if err != nil {
			return "", time.Time{}, time.Time{}, &ledger.FieldError{Field: "month", Err: ErrInvalidMonth}
		}
	}
	last := first.AddDate(0, 1, -1)
	return first.Format(monthLayout), first, last, nil
}

// CacheKey returns the cache key of a month label.
func CacheKey(month string) string {
	return cache.Key("dash", month)
}

// Summary returns the summary for month, serving it from cache when present.
func (s *Service) Summary(ctx context.Context, month string) (Summary, error) {
	label, start, end, err := ParseMonth(month, s.now())
	if err != nil {
		return Summary{}, err
	}
	summary, hit, err := cache.Fetch(ctx, s.Cache, CacheKey(label), func(ctx context.Context) (Summary, error) {
		return s.build(ctx, label, start, end)
	})
	if s.Cache.Enabled() {
		obs.ObserveCacheLookup("dashboard", hit)
	}
	return summary, err
}

// Refresh rebuilds the summary of month and overwrites the cached copy.
func (s *Service) Refresh(ctx context.Context, month string) (Summary, error) {
	label, start, end, err := ParseMonth(month, s.now())
	if err != nil {
		return Summary{}, err
	}
	summary, err := s.build(ctx, label, start, end)
	if err != nil {
		return Summary{}, err
	}
	if err := s.Cache.SetJSON(ctx, CacheKey(label), summary); err != nil {
		return summary, fmt.Errorf("cache summary: %w", err)
	}
	return summary, nil
}

func (s *Service) build(ctx context.Context, label string, start, end time.Time) (Summary, error) {
	period := store.ListBookingsInPeriodParams{
		StartDate: store.Date(start),
		EndDate:   store.Date(end),
		Statuses:  store.EarningStatuses,
	}
	bookings, err := s.Q.ListBookingsInPeriod(ctx, period)
	if err != nil {
		return Summary{}, fmt.Errorf("list bookings: %w", err)
	}
	lines, err := store.LoadLedgerLines(ctx, s.Q, store.BookingIDs(bookings))
	if err != nil {
		return Summary{}, err
	}
	var agg ledger.Aggregate
	for _, b := range bookings {
		totals, err := store.Totals(b, lines[b.ID])
		obs.ObserveLedgerCompute(obs.SurfaceDashboard, err)
		if err != nil {
			return Summary{}, err
		}
		agg.Add(totals)
	}

	expenseRows, err := s.Q.ListExpensesInPeriod(ctx, store.ListExpensesInPeriodParams{
		StartDate: period.StartDate,
		EndDate:   period.EndDate,
	})
	if err != nil {
		return Summary{}, fmt.Errorf("list expenses: %w", err)
	}
	expenses, _, err := store.ExpenseTotals(expenseRows)
	if err != nil {
		return Summary{}, err
	}

	counts, err := s.Q.CountBookingsByStatus(ctx, store.CountBookingsByStatusParams{
		StartDate: period.StartDate,
		EndDate:   period.EndDate,
	})
	if err != nil {
		return Summary{}, fmt.Errorf("count bookings: %w", err)
	}
	byStatus := make(map[string]int64, len(store.AllStatuses))
	for _, status := range store.AllStatuses {
		byStatus[status] = 0
	}
	for _, row := range counts {
		byStatus[row.Status] = row.Count
	}

	upcoming, err := s.upcoming(ctx)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		Month:            label,
		Period:           Period{Start: start.Format(time.DateOnly), End: end.Format(time.DateOnly)},
		Earnings:         agg.GrandTotal,
		Collected:        agg.NetReceived,
		Outstanding:      agg.Balance,
		Expenses:         expenses,
		NetProfit:        agg.GrandTotal.Sub(expenses),
		Ledger:           agg,
		BookingsByStatus: byStatus,
		UpcomingBookings: upcoming,
		GeneratedAt:      s.now().UTC(),
	}, nil
}

func (s *Service) upcoming(ctx context.Context) ([]Upcoming, error) {
	days := s.UpcomingDays
	if days <= 0 {
		days = 30
	}
	limit := s.UpcomingLimit
	if limit <= 0 {
		limit = 10
	}
	today := s.now()
	rows, err := s.Q.ListUpcomingBookings(ctx, store.ListUpcomingBookingsParams{
		FromDate: store.Date(today),
		ToDate:   store.Date(today.AddDate(0, 0, days)),
		Statuses: store.UpcomingStatuses,
		Limit:    int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list upcoming bookings: %w", err)
	}
	lines, err := store.LoadLedgerLines(ctx, s.Q, store.BookingIDs(rows))
	if err != nil {
		return nil, err
	}
	out := make([]Upcoming, 0, len(rows))
	for _, b := range rows {
		totals, err := store.Totals(b, lines[b.ID])
		obs.ObserveLedgerCompute(obs.SurfaceDashboard, err)
		if err != nil {
			return nil, err
		}
		out = append(out, Upcoming{
			ID:           b.ID,
			CustomerName: b.CustomerName,
			EventDate:    store.DateString(b.EventDate),
			StartTime:    store.TimeString(b.StartTime),
			EventType:    b.EventType,
			Hall:         b.HallName,
			Status:       b.Status,
			GrandTotal:   totals.GrandTotal,
			Balance:      totals.Balance,
		})
	}
	return out, nil
}

// Warm refreshes the cached summary of the current month.
func (s *Service) Warm(ctx context.Context) (Summary, error) {
	return s.Refresh(ctx, "")
}
