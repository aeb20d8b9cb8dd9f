package hyperzod

import "encoding/json"

// The commerce API is loose about identifier fields: depending on the
// endpoint and record age the same entity may carry `_id`, `id` or a
// resource-specific key. The raw types below capture every variant;
// normalize.go maps them into one strict internal record immediately on
// receipt so the rest of the codebase never sees the variability.

type rawMerchant struct {
	MongoID    string          `json:"_id"`
	ID         string          `json:"id"`
	MerchantID string          `json:"merchant_id"`
	Name       string          `json:"name"`
	City       string          `json:"city"`
	Status     bool            `json:"status"`
	Accepting  bool            `json:"is_accepting_orders"`
	IsOpen     bool            `json:"is_open"`
	Rating     *float64        `json:"rating"`
	Tags       json.RawMessage `json:"tags"`
}

func (r *rawMerchant) externalID() string {
	switch {
	case r.MerchantID != "":
		return r.MerchantID
	case r.MongoID != "":
		return r.MongoID
	default:
		return r.ID
	}
}

type rawCustomer struct {
	MongoID    json.Number `json:"_id"`
	ID         json.Number `json:"id"`
	HyperzodID json.Number `json:"hyperzod_id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Mobile     string      `json:"mobile"`
	EmailVerifiedAt  string `json:"email_verified_at"`
	MobileVerifiedAt string `json:"mobile_verified_at"`
	Unsubscribed     bool   `json:"unsubscribed"`
	TotalOrders      int    `json:"total_orders"`
	TotalSpend       json.Number `json:"total_spend"`
	CreatedAt        string      `json:"created_at"`
}

func (r *rawCustomer) externalID() json.Number {
	switch {
	case r.HyperzodID != "":
		return r.HyperzodID
	case r.MongoID != "":
		return r.MongoID
	default:
		return r.ID
	}
}

type rawAddress struct {
	ID        json.Number `json:"id"`
	AddressID json.Number `json:"address_id"`
	City      string      `json:"city"`
	Address   string      `json:"address"`
	Latitude  *float64    `json:"latitude"`
	Longitude *float64    `json:"longitude"`
}

func (r *rawAddress) externalID() json.Number {
	if r.AddressID != "" {
		return r.AddressID
	}
	return r.ID
}

type rawOrder struct {
	ID               json.Number `json:"id"`
	OrderID          json.Number `json:"order_id"`
	UserID           json.Number `json:"user_id"`
	MerchantID       string      `json:"merchant_id"`
	OrderStatus      int         `json:"order_status"`
	OrderAmount      json.Number `json:"order_amount"`
	CreatedTimestamp int64       `json:"created_timestamp"`
	DeliveryAddress  *rawAddress `json:"delivery_address"`
}

func (r *rawOrder) externalID() json.Number {
	if r.OrderID != "" {
		return r.OrderID
	}
	return r.ID
}

// page is the API's pagination envelope. Page walking relies on this
// metadata, never on an assumed page size.
type page[T any] struct {
	Data        []T `json:"data"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
}
