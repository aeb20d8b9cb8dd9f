package entity

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus mirrors the commerce platform's integer status codes.
type OrderStatus int

const (
	OrderStatusPending   OrderStatus = 0
	OrderStatusAccepted  OrderStatus = 1
	OrderStatusPreparing OrderStatus = 2
	OrderStatusReady     OrderStatus = 3
	OrderStatusOnTheWay  OrderStatus = 4
	OrderStatusDelivered OrderStatus = 5
	OrderStatusCancelled OrderStatus = 6
)

// Completed reports whether the order counts towards revenue and activity.
// Statuses 1-5 are successful or in progress, 0 is pending, 6 is cancelled.
func (s OrderStatus) Completed() bool {
	return s >= OrderStatusAccepted && s <= OrderStatusDelivered
}

// Order represents the orders table, mirrored from the commerce API.
// Rows are immutable once synced except for status progression.
type Order struct {
	ID                int             `db:"id"`
	OrderID           int64           `db:"order_id"`
	UserID            int64           `db:"user_id"`
	MerchantID        string          `db:"merchant_id"`
	Status            OrderStatus     `db:"order_status"`
	Amount            decimal.Decimal `db:"order_amount"`
	CreatedTimestamp  int64           `db:"created_timestamp"`
	DeliveryAddressID sql.NullInt64   `db:"delivery_address_id"`
}

// CreatedAt returns the authoritative event time of the order.
func (o *Order) CreatedAt() time.Time {
	return time.Unix(o.CreatedTimestamp, 0).UTC()
}

type OrderFactor string

const (
	Ascending  OrderFactor = "ASC"
	Descending OrderFactor = "DESC"
)
