package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const chargeColumns = `id, booking_id, type, description, amount, created_at`

func scanCharge(row rowScanner) (BookingCharge, error) {
	var i BookingCharge
	err := row.Scan(&i.ID, &i.BookingID, &i.Type, &i.Description, &i.Amount, &i.CreatedAt)
	return i, err
}

const paymentColumns = `id, booking_id, amount, type, payment_method, payment_date, reference, created_at`

func scanPayment(row rowScanner) (Payment, error) {
	var i Payment
	err := row.Scan(&i.ID, &i.BookingID, &i.Amount, &i.Type, &i.PaymentMethod, &i.PaymentDate, &i.Reference, &i.CreatedAt)
	return i, err
}

func (q *Queries) collectCharges(ctx context.Context, sql string, args ...interface{}) ([]BookingCharge, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BookingCharge
	for rows.Next() {
		i, err := scanCharge(rows)
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

func (q *Queries) collectPayments(ctx context.Context, sql string, args ...interface{}) ([]Payment, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Payment
	for rows.Next() {
		i, err := scanPayment(rows)
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

const listChargesByBooking = `-- name: ListChargesByBooking :many
SELECT ` + chargeColumns + `
FROM booking_charges
WHERE booking_id = $1
ORDER BY created_at, id`

func (q *Queries) ListChargesByBooking(ctx context.Context, bookingID string) ([]BookingCharge, error) {
	return q.collectCharges(ctx, listChargesByBooking, bookingID)
}

const listChargesByBookings = `-- name: ListChargesByBookings :many
SELECT ` + chargeColumns + `
FROM booking_charges
WHERE booking_id = ANY($1::text[])
ORDER BY booking_id, created_at, id`

func (q *Queries) ListChargesByBookings(ctx context.Context, bookingIDs []string) ([]BookingCharge, error) {
	return q.collectCharges(ctx, listChargesByBookings, bookingIDs)
}

const createCharge = `-- name: CreateCharge :one
INSERT INTO booking_charges (id, booking_id, type, description, amount)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + chargeColumns

type CreateChargeParams struct {
	ID          string
	BookingID   string
	Type        string
	Description string
	Amount      pgtype.Numeric
}

func (q *Queries) CreateCharge(ctx context.Context, arg CreateChargeParams) (BookingCharge, error) {
	row := q.db.QueryRow(ctx, createCharge, arg.ID, arg.BookingID, arg.Type, arg.Description, arg.Amount)
	return scanCharge(row)
}

const deleteCharge = `-- name: DeleteCharge :execrows
DELETE FROM booking_charges
WHERE id = $1 AND booking_id = $2`

type DeleteChargeParams struct {
	ID        string
	BookingID string
}

func (q *Queries) DeleteCharge(ctx context.Context, arg DeleteChargeParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCharge, arg.ID, arg.BookingID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listPaymentsByBooking = `-- name: ListPaymentsByBooking :many
SELECT ` + paymentColumns + `
FROM payments
WHERE booking_id = $1
ORDER BY payment_date DESC, created_at DESC, id`

func (q *Queries) ListPaymentsByBooking(ctx context.Context, bookingID string) ([]Payment, error) {
	return q.collectPayments(ctx, listPaymentsByBooking, bookingID)
}

const listPaymentsByBookings = `-- name: ListPaymentsByBookings :many
SELECT ` + paymentColumns + `
FROM payments
WHERE booking_id = ANY($1::text[])
ORDER BY booking_id, payment_date, created_at, id`

func (q *Queries) ListPaymentsByBookings(ctx context.Context, bookingIDs []string) ([]Payment, error) {
	return q.collectPayments(ctx, listPaymentsByBookings, bookingIDs)
}

const createPayment = `-- name: CreatePayment :one
INSERT INTO payments (id, booking_id, amount, type, payment_method, payment_date, reference)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + paymentColumns

type CreatePaymentParams struct {
	ID            string
	BookingID     string
	Amount        pgtype.Numeric
	Type          string
	PaymentMethod string
	PaymentDate   pgtype.Date
	Reference     pgtype.Text
}

func (q *Queries) CreatePayment(ctx context.Context, arg CreatePaymentParams) (Payment, error) {
	row := q.db.QueryRow(ctx, createPayment,
		arg.ID,
		arg.BookingID,
		arg.Amount,
		arg.Type,
		arg.PaymentMethod,
		arg.PaymentDate,
		arg.Reference,
	)
	return scanPayment(row)
}

const deletePayment = `-- name: DeletePayment :execrows
DELETE FROM payments
WHERE id = $1 AND booking_id = $2`

type DeletePaymentParams struct {
	ID        string
	BookingID string
}

func (q *Queries) DeletePayment(ctx context.Context, arg DeletePaymentParams) (int64, error) {
	result, err := q.db.Exec(ctx, deletePayment, arg.ID, arg.BookingID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
