package booking_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-hall/internal/booking"
	"github.com/noah-isme/backend-hall/internal/cache"
	"github.com/noah-isme/backend-hall/internal/obs"
	"github.com/noah-isme/backend-hall/internal/store"
)

func numeric(s string) pgtype.Numeric {
	return store.Numeric(decimal.RequireFromString(s))
}

func day(y int, m time.Month, d int) pgtype.Date {
	return store.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

type fakeStore struct {
	bookings         map[string]store.Booking
	charges          []store.BookingCharge
	payments         []store.Payment
	halls            []store.Hall
	expenses         []store.Expense
	createPaymentErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bookings: map[string]store.Booking{
			"b1": {
				ID:             "b1",
				HallID:         "h1",
				HallName:       "Crystal Hall",
				CustomerName:   "Asha Rao",
				CustomerPhone:  "9876543210",
				EventType:      "Wedding",
				EventDate:      day(2025, time.March, 14),
				StartTime:      pgtype.Time{Microseconds: int64(10 * time.Hour / time.Microsecond), Valid: true},
				EndTime:        pgtype.Time{Microseconds: int64(22 * time.Hour / time.Microsecond), Valid: true},
				Status:         store.StatusConfirmed,
				BaseRent:       numeric("1000"),
				DiscountAmount: numeric("100"),
				TaxRate:        numeric("0.1"),
			},
			"b2": {
				ID:             "b2",
				HallID:         "h2",
				HallName:       "Lotus Hall",
				Status:         store.StatusTentative,
				EventDate:      day(2025, time.March, 20),
				BaseRent:       numeric("5000"),
				DiscountAmount: numeric("0"),
				TaxRate:        numeric("0.18"),
			},
		},
		charges: []store.BookingCharge{
			{ID: "c1", BookingID: "b1", Type: "DECORATION", Description: "Flowers", Amount: numeric("200")},
		},
		payments: []store.Payment{
			{ID: "p1", BookingID: "b1", Amount: numeric("500"), Type: "ADVANCE", PaymentMethod: "UPI", PaymentDate: day(2025, time.March, 1)},
		},
		halls: []store.Hall{
			{ID: "h1", Name: "Crystal Hall", Floor: "1", Capacity: 300, BaseRent: numeric("1000"), IsActive: true},
		},
		expenses: []store.Expense{
			{ID: "e1", Category: "ELECTRICITY", Description: "March bill", Amount: numeric("4200"), ExpenseDate: day(2025, time.March, 5)},
			{ID: "e2", Category: "CLEANING", RelatedBookingID: store.Text("b1"), Description: "Post event", Amount: numeric("800"), ExpenseDate: day(2025, time.March, 15)},
		},
	}
}

func (f *fakeStore) GetBooking(_ context.Context, id string) (store.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return store.Booking{}, pgx.ErrNoRows
	}
	return b, nil
}

func (f *fakeStore) filtered(status pgtype.Text) []store.Booking {
	var out []store.Booking
	for _, id := range []string{"b1", "b2", "b3"} {
		b, ok := f.bookings[id]
		if !ok {
			continue
		}
		if status.Valid && b.Status != status.String {
			continue
		}
		out = append(out, b)
	}
	return out
}

func (f *fakeStore) ListBookings(_ context.Context, arg store.ListBookingsParams) ([]store.Booking, error) {
	all := f.filtered(arg.Status)
	start := min(int(arg.Offset), len(all))
	end := min(start+int(arg.Limit), len(all))
	return all[start:end], nil
}

func (f *fakeStore) CountBookings(_ context.Context, arg store.CountBookingsParams) (int64, error) {
	return int64(len(f.filtered(arg.Status))), nil
}

func (f *fakeStore) ListChargesByBooking(_ context.Context, id string) ([]store.BookingCharge, error) {
	return f.ListChargesByBookings(context.Background(), []string{id})
}

func (f *fakeStore) ListChargesByBookings(_ context.Context, ids []string) ([]store.BookingCharge, error) {
	var out []store.BookingCharge
	for _, c := range f.charges {
		if slices.Contains(ids, c.BookingID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPaymentsByBooking(_ context.Context, id string) ([]store.Payment, error) {
	return f.ListPaymentsByBookings(context.Background(), []string{id})
}

func (f *fakeStore) ListPaymentsByBookings(_ context.Context, ids []string) ([]store.Payment, error) {
	var out []store.Payment
	for _, p := range f.payments {
		if slices.Contains(ids, p.BookingID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateCharge(_ context.Context, arg store.CreateChargeParams) (store.BookingCharge, error) {
	c := store.BookingCharge{ID: arg.ID, BookingID: arg.BookingID, Type: arg.Type, Description: arg.Description, Amount: arg.Amount}
	f.charges = append(f.charges, c)
	return c, nil
}

func (f *fakeStore) DeleteCharge(_ context.Context, arg store.DeleteChargeParams) (int64, error) {
	before := len(f.charges)
	f.charges = slices.DeleteFunc(f.charges, func(c store.BookingCharge) bool {
		return c.ID == arg.ID && c.BookingID == arg.BookingID
	})
	return int64(before - len(f.charges)), nil
}

func (f *fakeStore) CreatePayment(_ context.Context, arg store.CreatePaymentParams) (store.Payment, error) {
	if f.createPaymentErr != nil {
		return store.Payment{}, f.createPaymentErr
	}
	p := store.Payment{
		ID:            arg.ID,
		BookingID:     arg.BookingID,
		Amount:        arg.Amount,
		Type:          arg.Type,
		PaymentMethod: arg.PaymentMethod,
		PaymentDate:   arg.PaymentDate,
		Reference:     arg.Reference,
	}
	f.payments = append(f.payments, p)
	return p, nil
}

func (f *fakeStore) DeletePayment(_ context.Context, arg store.DeletePaymentParams) (int64, error) {
	before := len(f.payments)
	f.payments = slices.DeleteFunc(f.payments, func(p store.Payment) bool {
		return p.ID == arg.ID && p.BookingID == arg.BookingID
	})
	return int64(before - len(f.payments)), nil
}

func (f *fakeStore) UpdateBooking(_ context.Context, arg store.UpdateBookingParams) (int64, error) {
	b, ok := f.bookings[arg.ID]
	if !ok {
		return 0, nil
	}
	if arg.BaseRent.Valid {
		b.BaseRent = arg.BaseRent
	}
	if arg.DiscountAmount.Valid {
		b.DiscountAmount = arg.DiscountAmount
	}
	if arg.TaxRate.Valid {
		b.TaxRate = arg.TaxRate
	}
	if arg.Status.Valid {
		b.Status = arg.Status.String
	}
	if arg.SetNotes {
		b.Notes = arg.Notes
	}
	f.bookings[arg.ID] = b
	return 1, nil
}

func (f *fakeStore) ListHalls(context.Context) ([]store.Hall, error) {
	return f.halls, nil
}

func (f *fakeStore) matchingExpenses(category, bookingID pgtype.Text) []store.Expense {
	var out []store.Expense
	for _, e := range f.expenses {
		if category.Valid && e.Category != category.String {
			continue
		}
		if bookingID.Valid && e.RelatedBookingID != bookingID {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (f *fakeStore) ListExpenses(_ context.Context, arg store.ListExpensesParams) ([]store.Expense, error) {
	all := f.matchingExpenses(arg.Category, arg.BookingID)
	start := min(int(arg.Offset), len(all))
	end := min(start+int(arg.Limit), len(all))
	return all[start:end], nil
}

func (f *fakeStore) CountExpenses(_ context.Context, arg store.CountExpensesParams) (int64, error) {
	return int64(len(f.matchingExpenses(arg.Category, arg.BookingID))), nil
}

func (f *fakeStore) CreateExpense(_ context.Context, arg store.CreateExpenseParams) (store.Expense, error) {
	if arg.RelatedBookingID.Valid {
		if _, ok := f.bookings[arg.RelatedBookingID.String]; !ok {
			return store.Expense{}, &pgconn.PgError{Code: "23503"}
		}
	}
	e := store.Expense{
		ID:               arg.ID,
		Category:         arg.Category,
		RelatedBookingID: arg.RelatedBookingID,
		Description:      arg.Description,
		Amount:           arg.Amount,
		ExpenseDate:      arg.ExpenseDate,
	}
	f.expenses = append(f.expenses, e)
	return e, nil
}

func newRouter(h *booking.Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/halls", h.Halls)
	r.Get("/settings", h.Settings)
	r.Get("/bookings", h.List)
	r.Get("/bookings/{id}", h.Get)
	r.Patch("/bookings/{id}", h.Update)
	r.Get("/bookings/{id}/totals", h.Totals)
	r.Get("/bookings/{id}/charges", h.Charges)
	r.Post("/bookings/{id}/charges", h.AddCharge)
	r.Delete("/bookings/{id}/charges/{chargeId}", h.RemoveCharge)
	r.Get("/bookings/{id}/payments", h.Payments)
	r.Post("/bookings/{id}/payments", h.AddPayment)
	r.Delete("/bookings/{id}/payments/{paymentId}", h.RemovePayment)
	r.Post("/ledger/quote", h.Quote)
	r.Get("/expenses", h.Expenses)
	r.Post("/expenses", h.RecordExpense)
	return r
}

func newHandler(q booking.Querier) *booking.Handler {
	return &booking.Handler{
		Svc: &booking.Service{
			Q:              q,
			DefaultTaxRate: decimal.RequireFromString("0.18"),
			Log:            zerolog.Nop(),
			NewID:          func() string { return "new-1" },
		},
		CurrencySymbol: "₹",
		DefaultPerPage: 20,
		MaxPerPage:     100,
		Log:            zerolog.Nop(),
	}
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

type totalsBody struct {
	GrandTotal  decimal.Decimal `json:"grandTotal"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
	TotalPaid   decimal.Decimal `json:"totalPaid"`
	NetReceived decimal.Decimal `json:"netReceived"`
	Balance     decimal.Decimal `json:"balance"`
}

type errorBody struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s got %s", want, got)
}

func TestGetBookingDetail(t *testing.T) {
	router := newRouter(newHandler(newFakeStore()))
	rr := do(t, router, http.MethodGet, "/bookings/b1", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var body struct {
		Data struct {
			ID        string     `json:"id"`
			HallName  string     `json:"hallName"`
			EventDate string     `json:"eventDate"`
			StartTime string     `json:"startTime"`
			Totals    totalsBody `json:"totals"`
			Charges   []struct {
				ID string `json:"id"`
			} `json:"charges"`
			Payments []struct {
				Kind string `json:"kind"`
			} `json:"payments"`
			Display map[string]string `json:"display"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "Crystal Hall", body.Data.HallName)
	require.Equal(t, "2025-03-14", body.Data.EventDate)
	require.Equal(t, "10:00", body.Data.StartTime)
	requireDecimal(t, "110", body.Data.Totals.TaxAmount)
	requireDecimal(t, "1210", body.Data.Totals.GrandTotal)
	requireDecimal(t, "710", body.Data.Totals.Balance)
	require.Len(t, body.Data.Charges, 1)
	require.Equal(t, "ADVANCE", body.Data.Payments[0].Kind)
	require.Equal(t, "₹1,210.00", body.Data.Display["grandTotal"])
	require.Equal(t, "₹710.00", body.Data.Display["balance"])
}

func TestGetBookingNotFound(t *testing.T) {
	router := newRouter(newHandler(newFakeStore()))
	for _, path := range []string{"/bookings/missing", "/bookings/missing/totals", "/bookings/missing/charges", "/bookings/missing/payments"} {
		rr := do(t, router, http.MethodGet, path, nil)
		require.Equal(t, http.StatusNotFound, rr.Code, path)
		require.Equal(t, "NOT_FOUND", decodeError(t, rr).Error.Code)
	}
}

func TestDamagedStoredAmountIsServerError(t *testing.T) {
	fs := newFakeStore()
	b := fs.bookings["b1"]
	b.TaxRate = pgtype.Numeric{NaN: true, Valid: true}
	fs.bookings["b1"] = b
	router := newRouter(newHandler(fs))

	rr := do(t, router, http.MethodGet, "/bookings/b1/totals", nil)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "INTERNAL", decodeError(t, rr).Error.Code)
}

func TestListBookingsWithTotals(t *testing.T) {
	router := newRouter(newHandler(newFakeStore()))
	rr := do(t, router, http.MethodGet, "/bookings?limit=1&page=2", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var body struct {
		Data []struct {
			ID     string     `json:"id"`
			Totals totalsBody `json:"totals"`
		} `json:"data"`
		Pagination struct {
			Page       int `json:"page"`
			TotalItems int `json:"total_items"`
			TotalPages int `json:"total_pages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	require.Equal(t, "b2", body.Data[0].ID)
	requireDecimal(t, "5900", body.Data[0].Totals.GrandTotal)
	require.Equal(t, 2, body.Pagination.Page)
	require.Equal(t, 2, body.Pagination.TotalItems)
	require.Equal(t, 2, body.Pagination.TotalPages)

	rr = do(t, router, http.MethodGet, "/bookings?status=confirmed", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	require.Equal(t, "b1", body.Data[0].ID)
}

func TestListBookingsRejectsBadFilters(t *testing.T) {
	router := newRouter(newHandler(newFakeStore()))
	rr := do(t, router, http.MethodGet, "/bookings?status=PAID&startDate=14-03-2025", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decodeError(t, rr)
	require.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	require.Contains(t, body.Error.Details, "status")
	require.Contains(t, body.Error.Details, "startDate")
}

func TestAddChargeRecomputesTotalsAndInvalidatesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := cache.New(client, time.Minute)
	ctx := context.Background()
	require.NoError(t, c.SetJSON(ctx, "dash:2025-03", map[string]int{"x": 1}))
	require.NoError(t, c.SetJSON(ctx, "report:2025-03-01:2025-03-31", map[string]int{"x": 1}))
	require.NoError(t, c.SetJSON(ctx, "other:key", map[string]int{"x": 1}))

	fs := newFakeStore()
	h := newHandler(fs)
	h.Svc.Cache = c
	h.Svc.CachePrefixes = []string{"dash:", "report:"}
	router := newRouter(h)

	rr := do(t, router, http.MethodPost, "/bookings/b1/charges", map[string]any{
		"type":        "sound",
		"description": "DJ",
		"amount":      "300",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var body struct {
		Data struct {
			Charge struct {
				ID   string `json:"id"`
				Type string `json:"type"`
			} `json:"charge"`
			Totals totalsBody `json:"totals"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "new-1", body.Data.Charge.ID)
	require.Equal(t, "SOUND", body.Data.Charge.Type)
	// (1000 + 200 + 300 - 100) * 1.1
	requireDecimal(t, "1540", body.Data.Totals.GrandTotal)

	require.False(t, mr.Exists("dash:2025-03"))
	require.False(t, mr.Exists("report:2025-03-01:2025-03-31"))
	require.True(t, mr.Exists("other:key"))
}

func TestAddChargeValidation(t *testing.T) {
	fs := newFakeStore()
	router := newRouter(newHandler(fs))

	rr := do(t, router, http.MethodPost, "/bookings/b1/charges", map[string]any{
		"type":   "FIREWORKS",
		"amount": -5,
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decodeError(t, rr)
	require.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	require.Contains(t, body.Error.Details["type"], "must be one of")
	require.Equal(t, "is required", body.Error.Details["description"])
	require.Equal(t, "must be greater than zero", body.Error.Details["amount"])
	require.Len(t, fs.charges, 1)

	rr = do(t, router, http.MethodPost, "/bookings/b1/charges", `{"type":"AC","description":"Cooling","amount":"NaN"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "amount must be a finite number", decodeError(t, rr).Error.Details["amount"])

	rr = do(t, router, http.MethodPost, "/bookings/b1/charges", `{"type":"AC","description":"Cooling","amount":"12.345"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "must have at most 2 decimal places", decodeError(t, rr).Error.Details["amount"])

	rr = do(t, router, http.MethodPost, "/bookings/b1/charges", `{"type":"AC","description":"Cooling","amount":1e11}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "must be less than 10000000000", decodeError(t, rr).Error.Details["amount"])

	rr = do(t, router, http.MethodPost, "/bookings/b1/charges", `{"type":"AC","description":"Cooling","amount":"1e-100000000"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, decodeError(t, rr).Error.Details["amount"], "at most 10 decimal places")
	require.Len(t, fs.charges, 1)

	rr = do(t, router, http.MethodPost, "/bookings/b1/charges", `{"type":`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "BAD_REQUEST", decodeError(t, rr).Error.Code)
}

func TestRemoveCharge(t *testing.T) {
	fs := newFakeStore()
	router := newRouter(newHandler(fs))

	rr := do(t, router, http.MethodDelete, "/bookings/b1/charges/c1", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Empty(t, fs.charges)

	rr = do(t, router, http.MethodDelete, "/bookings/b1/charges/c1", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "charge not found", decodeError(t, rr).Error.Message)
}

func TestAddPayment(t *testing.T) {
	fs := newFakeStore()
	router := newRouter(newHandler(fs))

	rr := do(t, router, http.MethodPost, "/bookings/b1/payments", map[string]any{
		"kind":          "refund",
		"paymentMethod": "CASH",
		"paymentDate":   "2025-03-15",
		"amount":        100,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var body struct {
		Data struct {
			Payment struct {
				Kind        string `json:"kind"`
				PaymentDate string `json:"paymentDate"`
			} `json:"payment"`
			Totals totalsBody `json:"totals"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "REFUND", body.Data.Payment.Kind)
	require.Equal(t, "2025-03-15", body.Data.Payment.PaymentDate)
	requireDecimal(t, "400", body.Data.Totals.NetReceived)
	requireDecimal(t, "810", body.Data.Totals.Balance)
}

func TestAddPaymentValidation(t *testing.T) {
	router := newRouter(newHandler(newFakeStore()))
	rr := do(t, router, http.MethodPost, "/bookings/b1/payments", map[string]any{
		"kind":          "DEPOSIT",
		"paymentMethod": "CHEQUE",
		"paymentDate":   "15/03/2025",
		"amount":        "0",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	details := decodeError(t, rr).Error.Details
	require.Contains(t, details, "kind")
	require.Contains(t, details, "paymentMethod")
	require.Equal(t, "must be a date in YYYY-MM-DD format", details["paymentDate"])
	require.Equal(t, "must be greater than zero", details["amount"])
}

func TestAddPaymentForeignKeyViolation(t *testing.T) {
	fs := newFakeStore()
	fs.createPaymentErr = &pgconn.PgError{Code: "23503"}
	router := newRouter(newHandler(fs))
	rr := do(t, router, http.MethodPost, "/bookings/b1/payments", map[string]any{
		"kind":          "ADVANCE",
		"paymentMethod": "UPI",
		"paymentDate":   "2025-03-15",
		"amount":        100,
	})
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "booking not found", decodeError(t, rr).Error.Message)
}

func TestRemovePaymentUnknown(t *testing.T) {
	router := newRouter(newHandler(newFakeStore()))
	rr := do(t, router, http.MethodDelete, "/bookings/b1/payments/nope", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestQuote(t *testing.T) {
	router := newRouter(newHandler(newFakeStore()))
	rr := do(t, router, http.MethodPost, "/ledger/quote", map[string]any{
		"baseRent": "10000",
		"charges":  []map[string]any{{"amount": 2000}},
		"payments": []map[string]any{{"amount": "5000", "kind": "advance"}},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var body struct {
		Data struct {
			Totals  totalsBody        `json:"totals"`
			Display map[string]string `json:"display"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	requireDecimal(t, "2160", body.Data.Totals.TaxAmount)
	requireDecimal(t, "14160", body.Data.Totals.GrandTotal)
	requireDecimal(t, "9160", body.Data.Totals.Balance)
	require.Equal(t, "₹14,160.00", body.Data.Display["grandTotal"])
}

func TestQuoteValidation(t *testing.T) {
	router := newRouter(newHandler(newFakeStore()))

	rr := do(t, router, http.MethodPost, "/ledger/quote", map[string]any{
		"baseRent": "abc",
		"payments": []map[string]any{{"amount": 10, "kind": "CHEQUE"}},
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	details := decodeError(t, rr).Error.Details
	require.Contains(t, details, "baseRent")
	require.Contains(t, details, "payments[0].kind")

	rr = do(t, router, http.MethodPost, "/ledger/quote", map[string]any{
		"baseRent":       0,
		"discountAmount": -1,
		"taxRate":        1.5,
		"charges":        []map[string]any{{"amount": 0}},
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	details = decodeError(t, rr).Error.Details
	require.Equal(t, "must be greater than zero", details["baseRent"])
	require.Equal(t, "must not be negative", details["discountAmount"])
	require.Equal(t, "must be between 0 and 1", details["taxRate"])
	require.Equal(t, "must be greater than zero", details["charges[0].amount"])

	rr = do(t, router, http.MethodPost, "/ledger/quote", map[string]any{
		"baseRent":       "100.001",
		"discountAmount": "1e10",
		"taxRate":        "0.18125",
		"charges":        []map[string]any{{"amount": "0.005"}},
		"payments":       []map[string]any{{"amount": "20000000000", "kind": "ADVANCE"}},
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	details = decodeError(t, rr).Error.Details
	require.Equal(t, "must have at most 2 decimal places", details["baseRent"])
	require.Equal(t, "must be less than 10000000000", details["discountAmount"])
	require.Equal(t, "must have at most 4 decimal places", details["taxRate"])
	require.Equal(t, "must have at most 2 decimal places", details["charges[0].amount"])
	require.Equal(t, "must be less than 10000000000", details["payments[0].amount"])

	rr = do(t, router, http.MethodPost, "/ledger/quote", `{"baseRent":"1e-100000000","taxRate":"1e100000000"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	details = decodeError(t, rr).Error.Details
	require.Contains(t, details["baseRent"], "at most 10 decimal places")
	require.Contains(t, details["taxRate"], "at most 15 integer digits")
}

func TestHalls(t *testing.T) {
	router := newRouter(newHandler(newFakeStore()))
	rr := do(t, router, http.MethodGet, "/halls", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Data []struct {
			Name     string          `json:"name"`
			BaseRent decimal.Decimal `json:"baseRent"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	require.Equal(t, "Crystal Hall", body.Data[0].Name)
	requireDecimal(t, "1000", body.Data[0].BaseRent)
}

func TestUpdateBooking(t *testing.T) {
	obs.MustRegisterDomainMetrics("hall", prometheus.NewRegistry())
	writes := testutil.ToFloat64(obs.LedgerComputeTotal.WithLabelValues(obs.SurfaceLedgerWrite, "ok"))
	details := testutil.ToFloat64(obs.LedgerComputeTotal.WithLabelValues(obs.SurfaceBookingDetail, "ok"))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, mr.Set("dash:2025-03", "{}"))

	fs := newFakeStore()
	fs.bookings["b1"] = func(b store.Booking) store.Booking {
		b.Notes = store.Text("Stage on the left")
		return b
	}(fs.bookings["b1"])
	h := newHandler(fs)
	h.Svc.Cache = cache.New(client, time.Minute)
	h.Svc.CachePrefixes = []string{"dash:"}
	router := newRouter(h)

	rr := do(t, router, http.MethodPatch, "/bookings/b1", map[string]any{
		"baseRent": "2000",
		"status":   "completed",
		"notes":    "",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var body struct {
		Data struct {
			Status         string          `json:"status"`
			BaseRent       decimal.Decimal `json:"baseRent"`
			DiscountAmount decimal.Decimal `json:"discountAmount"`
			Notes          string          `json:"notes"`
			Totals         totalsBody      `json:"totals"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, store.StatusCompleted, body.Data.Status)
	requireDecimal(t, "2000", body.Data.BaseRent)
	requireDecimal(t, "100", body.Data.DiscountAmount)
	require.Empty(t, body.Data.Notes)
	// (2000 + 200 - 100) * 1.1
	requireDecimal(t, "2310", body.Data.Totals.GrandTotal)
	requireDecimal(t, "1810", body.Data.Totals.Balance)

	require.False(t, mr.Exists("dash:2025-03"))
	require.Equal(t, writes+1, testutil.ToFloat64(obs.LedgerComputeTotal.WithLabelValues(obs.SurfaceLedgerWrite, "ok")))
	require.Equal(t, details, testutil.ToFloat64(obs.LedgerComputeTotal.WithLabelValues(obs.SurfaceBookingDetail, "ok")))

	totals := testutil.ToFloat64(obs.LedgerComputeTotal.WithLabelValues(obs.SurfaceBookingTotals, "ok"))
	require.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/bookings/b1/totals", nil).Code)
	require.Equal(t, totals+1, testutil.ToFloat64(obs.LedgerComputeTotal.WithLabelValues(obs.SurfaceBookingTotals, "ok")))

	rr = do(t, router, http.MethodPatch, "/bookings/b1", map[string]any{"taxRate": 0})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	requireDecimal(t, "2100", body.Data.Totals.GrandTotal)
	require.Equal(t, store.StatusCompleted, body.Data.Status)
}

func TestUpdateBookingValidation(t *testing.T) {
	fs := newFakeStore()
	router := newRouter(newHandler(fs))

	rr := do(t, router, http.MethodPatch, "/bookings/b1", map[string]any{
		"baseRent":       "12.345",
		"discountAmount": -1,
		"taxRate":        "0.18125",
		"status":         "PAID",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	details := decodeError(t, rr).Error.Details
	require.Equal(t, "must have at most 2 decimal places", details["baseRent"])
	require.Equal(t, "must not be negative", details["discountAmount"])
	require.Equal(t, "must have at most 4 decimal places", details["taxRate"])
	require.Contains(t, details["status"], "must be one of")
	requireDecimal(t, "1000", mustDecimal(t, fs.bookings["b1"].BaseRent))

	rr = do(t, router, http.MethodPatch, "/bookings/b1", map[string]any{"taxRate": 1.5, "baseRent": 0})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	details = decodeError(t, rr).Error.Details
	require.Equal(t, "must be between 0 and 1", details["taxRate"])
	require.Equal(t, "must be greater than zero", details["baseRent"])

	rr = do(t, router, http.MethodPatch, "/bookings/b1", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "must change at least one field", decodeError(t, rr).Error.Details["body"])

	rr = do(t, router, http.MethodPatch, "/bookings/missing", map[string]any{"status": "CANCELLED"})
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "booking not found", decodeError(t, rr).Error.Message)
}

func mustDecimal(t *testing.T, n pgtype.Numeric) decimal.Decimal {
	t.Helper()
	d, err := store.Decimal("test", n)
	require.NoError(t, err)
	return d
}

func TestRecordExpense(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, mr.Set("report:2025-03-01:2025-03-31", "{}"))

	fs := newFakeStore()
	h := newHandler(fs)
	h.Svc.Cache = cache.New(client, time.Minute)
	h.Svc.CachePrefixes = []string{"report:"}
	router := newRouter(h)

	rr := do(t, router, http.MethodPost, "/expenses", map[string]any{
		"category":         "generator_fuel",
		"relatedBookingId": "b1",
		"description":      " Diesel ",
		"amount":           "1500.50",
		"expenseDate":      "2025-03-14",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var body struct {
		Data struct {
			ID               string          `json:"id"`
			Category         string          `json:"category"`
			RelatedBookingID string          `json:"relatedBookingId"`
			Description      string          `json:"description"`
			Amount           decimal.Decimal `json:"amount"`
			ExpenseDate      string          `json:"expenseDate"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "new-1", body.Data.ID)
	require.Equal(t, "GENERATOR_FUEL", body.Data.Category)
	require.Equal(t, "b1", body.Data.RelatedBookingID)
	require.Equal(t, "Diesel", body.Data.Description)
	requireDecimal(t, "1500.5", body.Data.Amount)
	require.Equal(t, "2025-03-14", body.Data.ExpenseDate)
	require.Len(t, fs.expenses, 3)
	require.False(t, mr.Exists("report:2025-03-01:2025-03-31"))
}

func TestRecordExpenseValidation(t *testing.T) {
	fs := newFakeStore()
	router := newRouter(newHandler(fs))

	rr := do(t, router, http.MethodPost, "/expenses", map[string]any{
		"category":    "FOOD",
		"amount":      "10.999",
		"expenseDate": "14/03/2025",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	details := decodeError(t, rr).Error.Details
	require.Contains(t, details["category"], "must be one of")
	require.Equal(t, "is required", details["description"])
	require.Equal(t, "must have at most 2 decimal places", details["amount"])
	require.Equal(t, "must be a date in YYYY-MM-DD format", details["expenseDate"])

	rr = do(t, router, http.MethodPost, "/expenses", map[string]any{
		"category":         "MISC",
		"relatedBookingId": "missing",
		"description":      "Chairs",
		"amount":           100,
		"expenseDate":      "2025-03-14",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "booking not found", decodeError(t, rr).Error.Details["relatedBookingId"])
	require.Len(t, fs.expenses, 2)
}

func TestListExpenses(t *testing.T) {
	router := newRouter(newHandler(newFakeStore()))

	rr := do(t, router, http.MethodGet, "/expenses?category=cleaning", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var body struct {
		Data []struct {
			ID               string `json:"id"`
			RelatedBookingID string `json:"relatedBookingId"`
		} `json:"data"`
		Pagination struct {
			TotalItems int `json:"total_items"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	require.Equal(t, "e2", body.Data[0].ID)
	require.Equal(t, "b1", body.Data[0].RelatedBookingID)
	require.Equal(t, 1, body.Pagination.TotalItems)

	rr = do(t, router, http.MethodGet, "/expenses?bookingId=b1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)

	rr = do(t, router, http.MethodGet, "/expenses?category=FOOD&endDate=2025/03/31", nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	details := decodeError(t, rr).Error.Details
	require.Contains(t, details, "category")
	require.Contains(t, details, "endDate")
}

func TestSettings(t *testing.T) {
	router := newRouter(newHandler(newFakeStore()))
	rr := do(t, router, http.MethodGet, "/settings", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Data struct {
			CurrencySymbol string          `json:"currencySymbol"`
			DefaultTaxRate decimal.Decimal `json:"defaultTaxRate"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "₹", body.Data.CurrencySymbol)
	requireDecimal(t, "0.18", body.Data.DefaultTaxRate)
}
