package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ManualRevenueEntry supplements order-derived revenue for channels the
// order table cannot see (offline catering, alternate payment rails).
// It carries a calendar date only, no timestamp.
type ManualRevenueEntry struct {
	ID          int             `db:"id"`
	Date        time.Time       `db:"entry_date" valid:"required"`
	Type        string          `db:"entry_type" valid:"required"`
	Amount      decimal.Decimal `db:"amount"`
	Description string          `db:"description"`
}
