package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const expenseColumns = `id, category, related_booking_id, description, amount, expense_date, created_at`

// ExpenseCategories lists the accepted expense categories.
var ExpenseCategories = []string{
	"ELECTRICITY", "WATER", "SALARY", "REPAIR_MAINTENANCE", "CLEANING",
	"DECORATION_MATERIAL", "CATERING_MATERIAL", "GENERATOR_FUEL", "RENT", "MISC",
}

func scanExpense(row rowScanner) (Expense, error) {
	var i Expense
	err := row.Scan(
		&i.ID,
		&i.Category,
		&i.RelatedBookingID,
		&i.Description,
		&i.Amount,
		&i.ExpenseDate,
		&i.CreatedAt,
	)
	return i, err
}

func (q *Queries) collectExpenses(ctx context.Context, sql string, args ...interface{}) ([]Expense, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		i, err := scanExpense(rows)
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

const listExpensesInPeriod = `-- name: ListExpensesInPeriod :many
SELECT ` + expenseColumns + `
FROM expenses
WHERE expense_date BETWEEN $1 AND $2
ORDER BY expense_date, id`

type ListExpensesInPeriodParams struct {
	StartDate pgtype.Date
	EndDate   pgtype.Date
}

func (q *Queries) ListExpensesInPeriod(ctx context.Context, arg ListExpensesInPeriodParams) ([]Expense, error) {
	return q.collectExpenses(ctx, listExpensesInPeriod, arg.StartDate, arg.EndDate)
}

const listExpenses = `-- name: ListExpenses :many
SELECT ` + expenseColumns + `
FROM expenses
WHERE ($1::text IS NULL OR category = $1)
  AND ($2::text IS NULL OR related_booking_id = $2)
  AND ($3::date IS NULL OR expense_date >= $3)
  AND ($4::date IS NULL OR expense_date <= $4)
ORDER BY expense_date DESC, id
LIMIT $5 OFFSET $6`

type ListExpensesParams struct {
	Category  pgtype.Text
	BookingID pgtype.Text
	StartDate pgtype.Date
	EndDate   pgtype.Date
	Limit     int32
	Offset    int32
}

func (q *Queries) ListExpenses(ctx context.Context, arg ListExpensesParams) ([]Expense, error) {
	return q.collectExpenses(ctx, listExpenses,
		arg.Category,
		arg.BookingID,
		arg.StartDate,
		arg.EndDate,
		arg.Limit,
		arg.Offset,
	)
}

const countExpenses = `-- name: CountExpenses :one
SELECT COUNT(*)
FROM expenses
WHERE ($1::text IS NULL OR category = $1)
  AND ($2::text IS NULL OR related_booking_id = $2)
  AND ($3::date IS NULL OR expense_date >= $3)
  AND ($4::date IS NULL OR expense_date <= $4)`

type CountExpensesParams struct {
	Category  pgtype.Text
	BookingID pgtype.Text
	StartDate pgtype.Date
	EndDate   pgtype.Date
}

func (q *Queries) CountExpenses(ctx context.Context, arg CountExpensesParams) (int64, error) {
	row := q.db.QueryRow(ctx, countExpenses, arg.Category, arg.BookingID, arg.StartDate, arg.EndDate)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createExpense = `-- name: CreateExpense :one
INSERT INTO expenses (id, category, related_booking_id, description, amount, expense_date)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + expenseColumns

type CreateExpenseParams struct {
	ID               string
	Category         string
	RelatedBookingID pgtype.Text
	Description      string
	Amount           pgtype.Numeric
	ExpenseDate      pgtype.Date
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	return scanExpense(q.db.QueryRow(ctx, createExpense,
		arg.ID,
		arg.Category,
		arg.RelatedBookingID,
		arg.Description,
		arg.Amount,
		arg.ExpenseDate,
	))
}
