package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-hall/internal/ledger"
)

const dateLayout = "2006-01-02"

// Decimal converts a NUMERIC column into a decimal. NULL, NaN and infinite
// values are rejected with a *ledger.FieldError naming field so a damaged row
// fails loudly instead of skewing totals.
func Decimal(field string, n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Zero, &ledger.FieldError{Field: field, Err: ledger.ErrMissingAmount}
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.Zero, &ledger.FieldError{Field: field, Err: ledger.ErrInvalidAmount}
	}
	if n.Int == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}

// Numeric converts d into a NUMERIC parameter.
func Numeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

// Date converts the calendar day of t into a DATE parameter.
func Date(t time.Time) pgtype.Date {
	y, m, d := t.Date()
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

// ParseDate parses a YYYY-MM-DD string into a DATE parameter. Empty input
// yields a NULL date.
func ParseDate(raw string) (pgtype.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return pgtype.Date{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return pgtype.Date{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return Date(t), nil
}

// DateString formats a DATE as YYYY-MM-DD, or "" when NULL.
func DateString(d pgtype.Date) string {
	if !d.Valid || d.InfinityModifier != pgtype.Finite {
		return ""
	}
	return d.Time.Format(dateLayout)
}

// TimeString formats a TIME as HH:MM, or "" when NULL.
func TimeString(t pgtype.Time) string {
	if !t.Valid {
		return ""
	}
	minutes := t.Microseconds / int64(time.Minute/time.Microsecond)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Text wraps s as a nullable text parameter; blank strings become NULL.
func Text(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	return pgtype.Text{String: s, Valid: s != ""}
}

// TextValue returns the string of t, or "" when NULL.
func TextValue(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}
