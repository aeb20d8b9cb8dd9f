package entity

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Client represents the clients table. HyperzodID is the stable external
// identifier, distinct from the internal primary key.
type Client struct {
	ID                int             `db:"id"`
	HyperzodID        int64           `db:"hyperzod_id"`
	Name              string          `db:"name"`
	Email             sql.NullString  `db:"email"`
	Mobile            sql.NullString  `db:"mobile"`
	EmailVerifiedAt   sql.NullTime    `db:"email_verified_at"`
	MobileVerifiedAt  sql.NullTime    `db:"mobile_verified_at"`
	Unsubscribed      bool            `db:"unsubscribed"`
	TotalOrders       int             `db:"total_orders"`
	TotalSpend        decimal.Decimal `db:"total_spend"`
	HyperzodCreatedAt sql.NullTime    `db:"hyperzod_created_at"`
}
