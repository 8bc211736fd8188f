package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-hall/internal/common"
	"github.com/noah-isme/backend-hall/internal/ledger"
	"github.com/noah-isme/backend-hall/internal/obs"
	"github.com/noah-isme/backend-hall/internal/store"
)

var (
	// ErrBookingNotFound is returned when the booking does not exist.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrChargeNotFound is returned when the charge does not belong to the booking.
	ErrChargeNotFound = errors.New("charge not found")
	// ErrPaymentNotFound is returned when the payment does not belong to the booking.
	ErrPaymentNotFound = errors.New("payment not found")
)

// Querier is the store access used by booking operations.
type Querier interface {
	store.LineQuerier
	GetBooking(ctx context.Context, id string) (store.Booking, error)
	ListBookings(ctx context.Context, arg store.ListBookingsParams) ([]store.Booking, error)
	CountBookings(ctx context.Context, arg store.CountBookingsParams) (int64, error)
	ListChargesByBooking(ctx context.Context, bookingID string) ([]store.BookingCharge, error)
	ListPaymentsByBooking(ctx context.Context, bookingID string) ([]store.Payment, error)
	CreateCharge(ctx context.Context, arg store.CreateChargeParams) (store.BookingCharge, error)
	DeleteCharge(ctx context.Context, arg store.DeleteChargeParams) (int64, error)
	CreatePayment(ctx context.Context, arg store.CreatePaymentParams) (store.Payment, error)
	DeletePayment(ctx context.Context, arg store.DeletePaymentParams) (int64, error)
	UpdateBooking(ctx context.Context, arg store.UpdateBookingParams) (int64, error)
	ListHalls(ctx context.Context) ([]store.Hall, error)
	ListExpenses(ctx context.Context, arg store.ListExpensesParams) ([]store.Expense, error)
	CountExpenses(ctx context.Context, arg store.CountExpensesParams) (int64, error)
	CreateExpense(ctx context.Context, arg store.CreateExpenseParams) (store.Expense, error)
}

// Invalidator drops cached aggregates by key prefix.
type Invalidator interface {
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}

// Service implements booking reads and updates, ledger line writes, expenses
// and quotes.
type Service struct {
	Q              Querier
	Cache          Invalidator
	CachePrefixes  []string
	DefaultTaxRate decimal.Decimal
	Log            zerolog.Logger
	NewID          func() string
}

// Filter narrows a booking list.
type Filter struct {
	HallID    string
	Status    string
	StartDate string
	EndDate   string
	Page      int
	PerPage   int
}

// ChargeInput is a new charge line.
type ChargeInput struct {
	Type        string        `json:"type" validate:"required,oneof=AC DECORATION SOUND CATERING CLEANING GENERATOR OTHER"`
	Description string        `json:"description" validate:"required,max=500"`
	Amount      ledger.Amount `json:"amount"`
}

// PaymentInput is a new payment line.
type PaymentInput struct {
	Kind          string        `json:"kind" validate:"required,oneof=ADVANCE FINAL REFUND"`
	PaymentMethod string        `json:"paymentMethod" validate:"required,oneof=CASH CARD BANK_TRANSFER UPI OTHER"`
	PaymentDate   string        `json:"paymentDate" validate:"required,datetime=2006-01-02"`
	Reference     string        `json:"reference" validate:"omitempty,max=200"`
	Amount        ledger.Amount `json:"amount"`
}

// UpdateInput changes the money fields, status or notes of a booking. Absent
// fields keep their stored value and an empty notes string clears them.
type UpdateInput struct {
	BaseRent       ledger.Amount `json:"baseRent"`
	DiscountAmount ledger.Amount `json:"discountAmount"`
	TaxRate        ledger.Amount `json:"taxRate"`
	Status         string        `json:"status" validate:"omitempty,oneof=INQUIRY TENTATIVE CONFIRMED COMPLETED CANCELLED"`
	Notes          *string       `json:"notes" validate:"omitempty,max=2000"`
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

// List returns one page of bookings, each with its totals.
func (s *Service) List(ctx context.Context, f Filter) ([]Summary, common.Pagination, error) {
	var errs ledger.ValidationErrors
	status := strings.ToUpper(strings.TrimSpace(f.Status))
	if status != "" && !slices.Contains(store.AllStatuses, status) {
		errs = append(errs, &ledger.FieldError{Field: "status", Err: fmt.Errorf("must be one of %s", strings.Join(store.AllStatuses, " "))})
	}
	start, err := store.ParseDate(f.StartDate)
	if err != nil {
		errs = append(errs, &ledger.FieldError{Field: "startDate", Err: errors.New("must be a date in YYYY-MM-DD format")})
	}
	end, err := store.ParseDate(f.EndDate)
	if err != nil {
		errs = append(errs, &ledger.FieldError{Field: "endDate", Err: errors.New("must be a date in YYYY-MM-DD format")})
	}
	if len(errs) > 0 {
		return nil, common.Pagination{}, errs
	}

	count, err := s.Q.CountBookings(ctx, store.CountBookingsParams{
		HallID:    store.Text(f.HallID),
		Status:    store.Text(status),
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return nil, common.Pagination{}, fmt.Errorf("count bookings: %w", err)
	}
	rows, err := s.Q.ListBookings(ctx, store.ListBookingsParams{
		HallID:    store.Text(f.HallID),
		Status:    store.Text(status),
		StartDate: start,
		EndDate:   end,
		Limit:     int32(f.PerPage),
		Offset:    int32((f.Page - 1) * f.PerPage),
	})
	if err != nil {
		return nil, common.Pagination{}, fmt.Errorf("list bookings: %w", err)
	}
	lines, err := store.LoadLedgerLines(ctx, s.Q, store.BookingIDs(rows))
	if err != nil {
		return nil, common.Pagination{}, err
	}

	items := make([]Summary, 0, len(rows))
	for _, b := range rows {
		item, err := summarize(b, lines[b.ID], obs.SurfaceBookingList)
		if err != nil {
			return nil, common.Pagination{}, err
		}
		items = append(items, item)
	}
	return items, common.NewPagination(f.Page, f.PerPage, int(count)), nil
}

// Get returns the booking with its charges, payments, totals and display strings.
func (s *Service) Get(ctx context.Context, id string, symbol string) (Detail, error) {
	b, err := s.booking(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	chargeRows, err := s.Q.ListChargesByBooking(ctx, id)
	if err != nil {
		return Detail{}, fmt.Errorf("list charges: %w", err)
	}
	paymentRows, err := s.Q.ListPaymentsByBooking(ctx, id)
	if err != nil {
		return Detail{}, fmt.Errorf("list payments: %w", err)
	}
	summary, err := summarize(b, store.Lines{Charges: chargeRows, Payments: paymentRows}, obs.SurfaceBookingDetail)
	if err != nil {
		return Detail{}, err
	}
	charges, err := toCharges(chargeRows)
	if err != nil {
		return Detail{}, err
	}
	payments, err := toPayments(paymentRows)
	if err != nil {
		return Detail{}, err
	}
	return Detail{
		Summary:  summary,
		Charges:  charges,
		Payments: payments,
		Display:  ledger.NewDisplay(summary.Totals, symbol),
	}, nil
}

// Totals computes the ledger totals of one booking.
func (s *Service) Totals(ctx context.Context, id string) (ledger.Totals, error) {
	b, err := s.booking(ctx, id)
	if err != nil {
		return ledger.Totals{}, err
	}
	return s.totals(ctx, b, obs.SurfaceBookingTotals)
}

// Update validates and applies a partial change to a booking and returns it
// with recomputed totals.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Summary, error) {
	in.Status = strings.ToUpper(strings.TrimSpace(in.Status))
	errs := check(in)
	params := store.UpdateBookingParams{ID: id, Status: store.Text(in.Status)}
	if in.BaseRent.IsSet() {
		d, fe := positive("baseRent", in.BaseRent)
		if fe != nil {
			errs = append(errs, fe)
		}
		params.BaseRent = store.Numeric(d)
	}
	if in.DiscountAmount.IsSet() {
		d, fe := parseAmount("discountAmount", in.DiscountAmount)
		if fe == nil {
			fe = checkMoney("discountAmount", d, true)
		}
		if fe != nil {
			errs = append(errs, fe)
		}
		params.DiscountAmount = store.Numeric(d)
	}
	if in.TaxRate.IsSet() {
		d, fe := parseAmount("taxRate", in.TaxRate)
		if fe == nil {
			fe = checkRate("taxRate", d)
		}
		if fe != nil {
			errs = append(errs, fe)
		}
		params.TaxRate = store.Numeric(d)
	}
	if in.Notes != nil {
		params.SetNotes = true
		params.Notes = store.Text(*in.Notes)
	}
	if len(errs) == 0 && !in.BaseRent.IsSet() && !in.DiscountAmount.IsSet() && !in.TaxRate.IsSet() &&
		in.Status == "" && in.Notes == nil {
		errs = append(errs, &ledger.FieldError{Field: "body", Err: errNothingToUpdate})
	}
	if len(errs) > 0 {
		return Summary{}, errs
	}

	n, err := s.Q.UpdateBooking(ctx, params)
	if err != nil {
		return Summary{}, fmt.Errorf("update booking: %w", err)
	}
	if n == 0 {
		return Summary{}, ErrBookingNotFound
	}
	s.invalidate(ctx)

	b, err := s.booking(ctx, id)
	if err != nil {
		return Summary{}, err
	}
	lines, err := store.LoadLedgerLines(ctx, s.Q, []string{b.ID})
	if err != nil {
		return Summary{}, err
	}
	return summarize(b, lines[b.ID], obs.SurfaceLedgerWrite)
}

// Charges lists the charges of a booking in creation order.
func (s *Service) Charges(ctx context.Context, id string) ([]Charge, error) {
	if _, err := s.booking(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.Q.ListChargesByBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list charges: %w", err)
	}
	return toCharges(rows)
}

// AddCharge validates and records a charge, returning the recomputed totals.
func (s *Service) AddCharge(ctx context.Context, id string, in ChargeInput) (LineChange, error) {
	in.Type = strings.ToUpper(strings.TrimSpace(in.Type))
	in.Description = strings.TrimSpace(in.Description)
	errs := check(in)
	amount, fe := positive("amount", in.Amount)
	if fe != nil {
		errs = append(errs, fe)
	}
	if len(errs) > 0 {
		return LineChange{}, errs
	}

	b, err := s.booking(ctx, id)
	if err != nil {
		return LineChange{}, err
	}
	row, err := s.Q.CreateCharge(ctx, store.CreateChargeParams{
		ID:          s.newID(),
		BookingID:   b.ID,
		Type:        in.Type,
		Description: in.Description,
		Amount:      store.Numeric(amount),
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return LineChange{}, ErrBookingNotFound
		}
		return LineChange{}, fmt.Errorf("create charge: %w", err)
	}
	charge, err := toCharge(row)
	if err != nil {
		return LineChange{}, err
	}
	s.invalidate(ctx)
	totals, err := s.totals(ctx, b, obs.SurfaceLedgerWrite)
	if err != nil {
		return LineChange{}, err
	}
	return LineChange{Charge: &charge, Totals: totals}, nil
}

// RemoveCharge deletes a charge of the booking and returns the recomputed totals.
func (s *Service) RemoveCharge(ctx context.Context, id, chargeID string) (LineChange, error) {
	b, err := s.booking(ctx, id)
	if err != nil {
		return LineChange{}, err
	}
	n, err := s.Q.DeleteCharge(ctx, store.DeleteChargeParams{ID: chargeID, BookingID: b.ID})
	if err != nil {
		return LineChange{}, fmt.Errorf("delete charge: %w", err)
	}
	if n == 0 {
		return LineChange{}, ErrChargeNotFound
	}
	s.invalidate(ctx)
	totals, err := s.totals(ctx, b, obs.SurfaceLedgerWrite)
	if err != nil {
		return LineChange{}, err
	}
	return LineChange{Totals: totals}, nil
}

// Payments lists the payments of a booking, newest payment date first.
func (s *Service) Payments(ctx context.Context, id string) ([]Payment, error) {
	if _, err := s.booking(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.Q.ListPaymentsByBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return toPayments(rows)
}

// AddPayment validates and records a payment or refund, returning the
// recomputed totals.
func (s *Service) AddPayment(ctx context.Context, id string, in PaymentInput) (LineChange, error) {
	in.Kind = strings.ToUpper(strings.TrimSpace(in.Kind))
	in.PaymentMethod = strings.ToUpper(strings.TrimSpace(in.PaymentMethod))
	in.PaymentDate = strings.TrimSpace(in.PaymentDate)
	errs := check(in)
	amount, fe := positive("amount", in.Amount)
	if fe != nil {
		errs = append(errs, fe)
	}
	if len(errs) > 0 {
		return LineChange{}, errs
	}
	paidOn, err := store.ParseDate(in.PaymentDate)
	if err != nil {
		return LineChange{}, ledger.ValidationErrors{{Field: "paymentDate", Err: errors.New("must be a date in YYYY-MM-DD format")}}
	}

	b, err := s.booking(ctx, id)
	if err != nil {
		return LineChange{}, err
	}
	row, err := s.Q.CreatePayment(ctx, store.CreatePaymentParams{
		ID:            s.newID(),
		BookingID:     b.ID,
		Amount:        store.Numeric(amount),
		Type:          in.Kind,
		PaymentMethod: in.PaymentMethod,
		PaymentDate:   paidOn,
		Reference:     store.Text(in.Reference),
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return LineChange{}, ErrBookingNotFound
		}
		return LineChange{}, fmt.Errorf("create payment: %w", err)
	}
	payment, err := toPayment(row)
	if err != nil {
		return LineChange{}, err
	}
	s.invalidate(ctx)
	totals, err := s.totals(ctx, b, obs.SurfaceLedgerWrite)
	if err != nil {
		return LineChange{}, err
	}
	return LineChange{Payment: &payment, Totals: totals}, nil
}

// RemovePayment deletes a payment of the booking and returns the recomputed totals.
func (s *Service) RemovePayment(ctx context.Context, id, paymentID string) (LineChange, error) {
	b, err := s.booking(ctx, id)
	if err != nil {
		return LineChange{}, err
	}
	n, err := s.Q.DeletePayment(ctx, store.DeletePaymentParams{ID: paymentID, BookingID: b.ID})
	if err != nil {
		return LineChange{}, fmt.Errorf("delete payment: %w", err)
	}
	if n == 0 {
		return LineChange{}, ErrPaymentNotFound
	}
	s.invalidate(ctx)
	totals, err := s.totals(ctx, b, obs.SurfaceLedgerWrite)
	if err != nil {
		return LineChange{}, err
	}
	return LineChange{Totals: totals}, nil
}

// Quote computes totals for amounts that are not stored anywhere. An absent
// discount is zero and an absent tax rate takes the configured default.
func (s *Service) Quote(in ledger.RawInput) (ledger.Totals, error) {
	b, charges, payments, err := in.WithDefaults(decimal.Zero, s.DefaultTaxRate).Resolve()
	if err != nil {
		obs.ObserveLedgerCompute(obs.SurfaceQuote, err)
		return ledger.Totals{}, err
	}
	if errs := checkQuote(b, charges, payments); len(errs) > 0 {
		obs.ObserveLedgerCompute(obs.SurfaceQuote, errs)
		return ledger.Totals{}, errs
	}
	totals, err := ledger.Compute(b, charges, payments)
	obs.ObserveLedgerCompute(obs.SurfaceQuote, err)
	return totals, err
}

// Halls lists every hall.
func (s *Service) Halls(ctx context.Context) ([]Hall, error) {
	rows, err := s.Q.ListHalls(ctx)
	if err != nil {
		return nil, fmt.Errorf("list halls: %w", err)
	}
	out := make([]Hall, 0, len(rows))
	for _, row := range rows {
		rent, err := store.Decimal("halls.base_rent", row.BaseRent)
		if err != nil {
			return nil, fmt.Errorf("hall %s: %w", row.ID, err)
		}
		out = append(out, Hall{
			ID:       row.ID,
			Name:     row.Name,
			Floor:    row.Floor,
			Capacity: row.Capacity,
			BaseRent: rent,
			IsActive: row.IsActive,
		})
	}
	return out, nil
}

func (s *Service) booking(ctx context.Context, id string) (store.Booking, error) {
	b, err := s.Q.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Booking{}, ErrBookingNotFound
		}
		return store.Booking{}, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func (s *Service) totals(ctx context.Context, b store.Booking, surface string) (ledger.Totals, error) {
	lines, err := store.LoadLedgerLines(ctx, s.Q, []string{b.ID})
	if err != nil {
		return ledger.Totals{}, err
	}
	totals, err := store.Totals(b, lines[b.ID])
	obs.ObserveLedgerCompute(surface, err)
	return totals, err
}

// invalidate drops cached dashboards and reports. Failures only cost
// freshness until the TTL expires, so they are logged and swallowed.
func (s *Service) invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	for _, prefix := range s.CachePrefixes {
		if _, err := s.Cache.DeletePrefix(context.WithoutCancel(ctx), prefix); err != nil {
			s.Log.Warn().Err(err).Str("prefix", prefix).Msg("cache invalidation failed")
		}
	}
}

func summarize(b store.Booking, lines store.Lines, surface string) (Summary, error) {
	lb, err := store.LedgerBooking(b)
	if err != nil {
		obs.ObserveLedgerCompute(surface, err)
		return Summary{}, fmt.Errorf("booking %s: %w", b.ID, err)
	}
	totals, err := store.Totals(b, lines)
	obs.ObserveLedgerCompute(surface, err)
	if err != nil {
		return Summary{}, err
	}
	return toSummary(b, lb, totals), nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
