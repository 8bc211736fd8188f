package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-hall/internal/common"
	"github.com/noah-isme/backend-hall/internal/ledger"
	"github.com/noah-isme/backend-hall/internal/obs"
)

const maxBodyBytes = 1 << 20

// Handler exposes booking, ledger line, expense, settings and quote endpoints.
type Handler struct {
	Svc            *Service
	CurrencySymbol string
	DefaultPerPage int
	MaxPerPage     int
	Log            zerolog.Logger
}

// List returns bookings matching the query filters with their totals.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, perPage := common.ParsePagination(r, h.DefaultPerPage, h.MaxPerPage)
	items, p, err := h.Svc.List(r.Context(), Filter{
		HallID:    q.Get("hallId"),
		Status:    q.Get("status"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		Page:      page,
		PerPage:   perPage,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.Page(w, items, p)
}

// Get returns one booking with lines, totals and display strings.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Svc.Get(r.Context(), bookingID(r), h.CurrencySymbol)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, detail)
}

// Update applies a partial change to a booking's money fields, status or notes.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in UpdateInput
	if !decode(w, r, &in) {
		return
	}
	summary, err := h.Svc.Update(r.Context(), bookingID(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, summary)
}

// Totals returns the ledger totals of one booking.
func (h *Handler) Totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.Svc.Totals(r.Context(), bookingID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, totals)
}

// Charges lists the charges of a booking.
func (h *Handler) Charges(w http.ResponseWriter, r *http.Request) {
	charges, err := h.Svc.Charges(r.Context(), bookingID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, charges)
}

// AddCharge records a new charge.
func (h *Handler) AddCharge(w http.ResponseWriter, r *http.Request) {
	var in ChargeInput
	if !decode(w, r, &in) {
		return
	}
	change, err := h.Svc.AddCharge(r.Context(), bookingID(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.Data(w, http.StatusCreated, change)
}

// RemoveCharge deletes a charge.
func (h *Handler) RemoveCharge(w http.ResponseWriter, r *http.Request) {
	change, err := h.Svc.RemoveCharge(r.Context(), bookingID(r), chi.URLParam(r, "chargeId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, change)
}

// Payments lists the payments of a booking.
func (h *Handler) Payments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.Svc.Payments(r.Context(), bookingID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, payments)
}

// AddPayment records a payment or refund.
func (h *Handler) AddPayment(w http.ResponseWriter, r *http.Request) {
	var in PaymentInput
	if !decode(w, r, &in) {
		return
	}
	change, err := h.Svc.AddPayment(r.Context(), bookingID(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.Data(w, http.StatusCreated, change)
}

// RemovePayment deletes a payment.
func (h *Handler) RemovePayment(w http.ResponseWriter, r *http.Request) {
	change, err := h.Svc.RemovePayment(r.Context(), bookingID(r), chi.URLParam(r, "paymentId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, change)
}

// Quote computes totals for ad hoc amounts.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var in ledger.RawInput
	if !decode(w, r, &in) {
		return
	}
	totals, err := h.Svc.Quote(in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, map[string]any{
		"totals":  totals,
		"display": ledger.NewDisplay(totals, h.CurrencySymbol),
	})
}

// Expenses lists expenses matching the query filters.
func (h *Handler) Expenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, perPage := common.ParsePagination(r, h.DefaultPerPage, h.MaxPerPage)
	items, p, err := h.Svc.Expenses(r.Context(), ExpenseFilter{
		Category:  q.Get("category"),
		BookingID: q.Get("bookingId"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		Page:      page,
		PerPage:   perPage,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.Page(w, items, p)
}

// RecordExpense stores a new expense.
func (h *Handler) RecordExpense(w http.ResponseWriter, r *http.Request) {
	var in ExpenseInput
	if !decode(w, r, &in) {
		return
	}
	expense, err := h.Svc.RecordExpense(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.Data(w, http.StatusCreated, expense)
}

// Settings reports the currency symbol and default tax rate in effect.
func (h *Handler) Settings(w http.ResponseWriter, _ *http.Request) {
	common.Data(w, http.StatusOK, map[string]any{
		"currencySymbol": h.CurrencySymbol,
		"defaultTaxRate": h.Svc.DefaultTaxRate,
	})
}

// Halls lists the bookable halls.
func (h *Handler) Halls(w http.ResponseWriter, r *http.Request) {
	halls, err := h.Svc.Halls(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	common.Data(w, http.StatusOK, halls)
}

// fail maps service errors to responses. Request validation arrives as
// ledger.ValidationErrors; a damaged stored amount is a bare *ledger.FieldError
// and falls through to a 500.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verrs ledger.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		obs.ObserveValidationErrors(verrs)
		common.WriteError(w, common.ValidationFailed("invalid request", verrs.Fields(), err))
		return
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, ErrChargeNotFound), errors.Is(err, ErrPaymentNotFound):
		common.WriteError(w, common.NotFound(err.Error(), err))
		return
	}
	if common.WriteError(w, err) {
		h.Log.Error().Err(err).
			Str("route", obs.RoutePatternFromContext(r.Context())).
			Str("booking_id", bookingID(r)).
			Msg("booking request failed")
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return false
	}
	return true
}

func bookingID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "id"))
}
