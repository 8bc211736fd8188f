package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-hall/internal/common"
	"github.com/noah-isme/backend-hall/internal/ledger"
	"github.com/noah-isme/backend-hall/internal/store"
)

// Expense is money spent on running the halls, optionally tied to a booking.
type Expense struct {
	ID               string          `json:"id"`
	Category         string          `json:"category"`
	RelatedBookingID string          `json:"relatedBookingId,omitempty"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
	ExpenseDate      string          `json:"expenseDate"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// ExpenseInput is a new expense.
type ExpenseInput struct {
	Category         string        `json:"category" validate:"required,oneof=ELECTRICITY WATER SALARY REPAIR_MAINTENANCE CLEANING DECORATION_MATERIAL CATERING_MATERIAL GENERATOR_FUEL RENT MISC"`
	RelatedBookingID string        `json:"relatedBookingId" validate:"omitempty,max=64"`
	Description      string        `json:"description" validate:"required,max=500"`
	Amount           ledger.Amount `json:"amount"`
	ExpenseDate      string        `json:"expenseDate" validate:"required,datetime=2006-01-02"`
}

// ExpenseFilter narrows an expense list.
type ExpenseFilter struct {
	Category  string
	BookingID string
	StartDate string
	EndDate   string
	Page      int
	PerPage   int
}

// Expenses returns one page of expenses, latest expense date first.
func (s *Service) Expenses(ctx context.Context, f ExpenseFilter) ([]Expense, common.Pagination, error) {
	var errs ledger.ValidationErrors
	category := strings.ToUpper(strings.TrimSpace(f.Category))
	if category != "" && !slices.Contains(store.ExpenseCategories, category) {
		errs = append(errs, &ledger.FieldError{Field: "category", Err: fmt.Errorf("must be one of %s", strings.Join(store.ExpenseCategories, " "))})
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

	count, err := s.Q.CountExpenses(ctx, store.CountExpensesParams{
		Category:  store.Text(category),
		BookingID: store.Text(f.BookingID),
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return nil, common.Pagination{}, fmt.Errorf("count expenses: %w", err)
	}
	rows, err := s.Q.ListExpenses(ctx, store.ListExpensesParams{
		Category:  store.Text(category),
		BookingID: store.Text(f.BookingID),
		StartDate: start,
		EndDate:   end,
		Limit:     int32(f.PerPage),
		Offset:    int32((f.Page - 1) * f.PerPage),
	})
	if err != nil {
		return nil, common.Pagination{}, fmt.Errorf("list expenses: %w", err)
	}
	items := make([]Expense, 0, len(rows))
	for _, row := range rows {
		e, err := toExpense(row)
		if err != nil {
			return nil, common.Pagination{}, err
		}
		items = append(items, e)
	}
	return items, common.NewPagination(f.Page, f.PerPage, int(count)), nil
}

// RecordExpense validates and stores an expense. Reports and dashboards that
// include its date are invalidated.
func (s *Service) RecordExpense(ctx context.Context, in ExpenseInput) (Expense, error) {
	in.Category = strings.ToUpper(strings.TrimSpace(in.Category))
	in.RelatedBookingID = strings.TrimSpace(in.RelatedBookingID)
	in.Description = strings.TrimSpace(in.Description)
	in.ExpenseDate = strings.TrimSpace(in.ExpenseDate)
	errs := check(in)
	amount, fe := positive("amount", in.Amount)
	if fe != nil {
		errs = append(errs, fe)
	}
	if len(errs) > 0 {
		return Expense{}, errs
	}
	spentOn, err := store.ParseDate(in.ExpenseDate)
	if err != nil {
		return Expense{}, ledger.ValidationErrors{{Field: "expenseDate", Err: errors.New("must be a date in YYYY-MM-DD format")}}
	}

	row, err := s.Q.CreateExpense(ctx, store.CreateExpenseParams{
		ID:               s.newID(),
		Category:         in.Category,
		RelatedBookingID: store.Text(in.RelatedBookingID),
		Description:      in.Description,
		Amount:           store.Numeric(amount),
		ExpenseDate:      spentOn,
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return Expense{}, ledger.ValidationErrors{{Field: "relatedBookingId", Err: ErrBookingNotFound}}
		}
		return Expense{}, fmt.Errorf("create expense: %w", err)
	}
	s.invalidate(ctx)
	return toExpense(row)
}

func toExpense(row store.Expense) (Expense, error) {
	amount, err := store.Decimal("expenses.amount", row.Amount)
	if err != nil {
		return Expense{}, err
	}
	return Expense{
		ID:               row.ID,
		Category:         row.Category,
		RelatedBookingID: store.TextValue(row.RelatedBookingID),
		Description:      row.Description,
		Amount:           amount,
		ExpenseDate:      store.DateString(row.ExpenseDate),
		CreatedAt:        row.CreatedAt.Time,
	}, nil
}
