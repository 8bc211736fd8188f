package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const bookingColumns = `
    b.id, b.hall_id, h.name, b.customer_name, b.customer_phone, b.customer_email,
    b.event_type, b.event_date, b.start_time, b.end_time, b.status,
    b.base_rent, b.discount_amount, b.tax_rate, b.notes, b.created_at, b.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (Booking, error) {
	var i Booking
	err := row.Scan(
		&i.ID,
		&i.HallID,
		&i.HallName,
		&i.CustomerName,
		&i.CustomerPhone,
		&i.CustomerEmail,
		&i.EventType,
		&i.EventDate,
		&i.StartTime,
		&i.EndTime,
		&i.Status,
		&i.BaseRent,
		&i.DiscountAmount,
		&i.TaxRate,
		&i.Notes,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func (q *Queries) collectBookings(ctx context.Context, sql string, args ...interface{}) ([]Booking, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Booking
	for rows.Next() {
		i, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getBooking = `-- name: GetBooking :one
SELECT` + bookingColumns + `
FROM bookings b
JOIN halls h ON h.id = b.hall_id
WHERE b.id = $1`

func (q *Queries) GetBooking(ctx context.Context, id string) (Booking, error) {
	return scanBooking(q.db.QueryRow(ctx, getBooking, id))
}

const listBookings = `-- name: ListBookings :many
SELECT` + bookingColumns + `
FROM bookings b
JOIN halls h ON h.id = b.hall_id
WHERE ($1::text IS NULL OR b.hall_id = $1)
  AND ($2::text IS NULL OR b.status = $2)
  AND ($3::date IS NULL OR b.event_date >= $3)
  AND ($4::date IS NULL OR b.event_date <= $4)
ORDER BY b.event_date DESC, b.start_time DESC, b.id
LIMIT $5 OFFSET $6`

type ListBookingsParams struct {
	HallID    pgtype.Text
	Status    pgtype.Text
	StartDate pgtype.Date
	EndDate   pgtype.Date
	Limit     int32
	Offset    int32
}

func (q *Queries) ListBookings(ctx context.Context, arg ListBookingsParams) ([]Booking, error) {
	return q.collectBookings(ctx, listBookings,
		arg.HallID,
		arg.Status,
		arg.StartDate,
		arg.EndDate,
		arg.Limit,
		arg.Offset,
	)
}

const countBookings = `-- name: CountBookings :one
SELECT COUNT(*)
FROM bookings b
WHERE ($1::text IS NULL OR b.hall_id = $1)
  AND ($2::text IS NULL OR b.status = $2)
  AND ($3::date IS NULL OR b.event_date >= $3)
  AND ($4::date IS NULL OR b.event_date <= $4)`

type CountBookingsParams struct {
	HallID    pgtype.Text
	Status    pgtype.Text
	StartDate pgtype.Date
	EndDate   pgtype.Date
}

func (q *Queries) CountBookings(ctx context.Context, arg CountBookingsParams) (int64, error) {
	row := q.db.QueryRow(ctx, countBookings, arg.HallID, arg.Status, arg.StartDate, arg.EndDate)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listBookingsInPeriod = `-- name: ListBookingsInPeriod :many
SELECT` + bookingColumns + `
FROM bookings b
JOIN halls h ON h.id = b.hall_id
WHERE b.event_date BETWEEN $1 AND $2
  AND b.status = ANY($3::text[])
ORDER BY b.event_date, b.start_time, b.id`

type ListBookingsInPeriodParams struct {
	StartDate pgtype.Date
	EndDate   pgtype.Date
	Statuses  []string
}

// ListBookingsInPeriod returns bookings whose event date falls within the
// inclusive range and whose status is one of Statuses.
func (q *Queries) ListBookingsInPeriod(ctx context.Context, arg ListBookingsInPeriodParams) ([]Booking, error) {
	return q.collectBookings(ctx, listBookingsInPeriod, arg.StartDate, arg.EndDate, arg.Statuses)
}

const countBookingsByStatus = `-- name: CountBookingsByStatus :many
SELECT b.status, COUNT(*)
FROM bookings b
WHERE b.event_date BETWEEN $1 AND $2
GROUP BY b.status
ORDER BY b.status`

type CountBookingsByStatusParams struct {
	StartDate pgtype.Date
	EndDate   pgtype.Date
}

type CountBookingsByStatusRow struct {
	Status string
	Count  int64
}

func (q *Queries) CountBookingsByStatus(ctx context.Context, arg CountBookingsByStatusParams) ([]CountBookingsByStatusRow, error) {
	rows, err := q.db.Query(ctx, countBookingsByStatus, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountBookingsByStatusRow
	for rows.Next() {
		var i CountBookingsByStatusRow
		if err := rows.Scan(&i.Status, &i.Count); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listUpcomingBookings = `-- name: ListUpcomingBookings :many
SELECT` + bookingColumns + `
FROM bookings b
JOIN halls h ON h.id = b.hall_id
WHERE b.event_date BETWEEN $1 AND $2
  AND b.status = ANY($3::text[])
ORDER BY b.event_date, b.start_time, b.id
LIMIT $4`

type ListUpcomingBookingsParams struct {
	FromDate pgtype.Date
	ToDate   pgtype.Date
	Statuses []string
	Limit    int32
}

func (q *Queries) ListUpcomingBookings(ctx context.Context, arg ListUpcomingBookingsParams) ([]Booking, error) {
	return q.collectBookings(ctx, listUpcomingBookings, arg.FromDate, arg.ToDate, arg.Statuses, arg.Limit)
}

const updateBooking = `-- name: UpdateBooking :execrows
UPDATE bookings
SET base_rent       = COALESCE($2::numeric, base_rent),
    discount_amount = COALESCE($3::numeric, discount_amount),
    tax_rate        = COALESCE($4::numeric, tax_rate),
    status          = COALESCE($5::text, status),
    notes           = CASE WHEN $6::boolean THEN $7::text ELSE notes END,
    updated_at      = now()
WHERE id = $1`

// UpdateBookingParams leaves a column untouched when its value is NULL. Notes
// are replaced, possibly with NULL, only when SetNotes is true.
type UpdateBookingParams struct {
	ID             string
	BaseRent       pgtype.Numeric
	DiscountAmount pgtype.Numeric
	TaxRate        pgtype.Numeric
	Status         pgtype.Text
	SetNotes       bool
	Notes          pgtype.Text
}

func (q *Queries) UpdateBooking(ctx context.Context, arg UpdateBookingParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateBooking,
		arg.ID,
		arg.BaseRent,
		arg.DiscountAmount,
		arg.TaxRate,
		arg.Status,
		arg.SetNotes,
		arg.Notes,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
