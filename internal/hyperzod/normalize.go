package hyperzod

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mealmarkt/ops-manager/internal/entity"
)

// Normalization is the single translation boundary between the duck-typed
// upstream shapes and the strict internal record types. Anything that gets
// past here is fully typed.

func normalizeMerchant(r *rawMerchant) (entity.Merchant, error) {
	id := r.externalID()
	if id == "" {
		return entity.Merchant{}, fmt.Errorf("merchant record carries no identifier")
	}
	m := entity.Merchant{
		MerchantID:        id,
		Name:              r.Name,
		Status:            r.Status,
		IsAcceptingOrders: r.Accepting,
		IsOpen:            r.IsOpen,
	}
	if r.City != "" {
		m.City = sql.NullString{String: r.City, Valid: true}
	}
	if r.Rating != nil {
		m.Rating = sql.NullFloat64{Float64: *r.Rating, Valid: true}
	}
	if len(r.Tags) > 0 && string(r.Tags) != "null" {
		m.Tags = sql.NullString{String: string(r.Tags), Valid: true}
	}
	return m, nil
}

func normalizeCustomer(r *rawCustomer) (entity.Client, error) {
	id, err := r.externalID().Int64()
	if err != nil {
		return entity.Client{}, fmt.Errorf("customer record carries no numeric identifier: %w", err)
	}
	c := entity.Client{
		HyperzodID:   id,
		Name:         r.Name,
		Unsubscribed: r.Unsubscribed,
		TotalOrders:  r.TotalOrders,
		TotalSpend:   decimal.Zero,
	}
	if r.Email != "" {
		c.Email = sql.NullString{String: r.Email, Valid: true}
	}
	if r.Mobile != "" {
		c.Mobile = sql.NullString{String: r.Mobile, Valid: true}
	}
	if r.TotalSpend != "" {
		spend, err := decimal.NewFromString(r.TotalSpend.String())
		if err != nil {
			return entity.Client{}, fmt.Errorf("bad total_spend for customer %d: %w", id, err)
		}
		c.TotalSpend = spend
	}
	c.EmailVerifiedAt = parseUpstreamTime(r.EmailVerifiedAt)
	c.MobileVerifiedAt = parseUpstreamTime(r.MobileVerifiedAt)
	c.HyperzodCreatedAt = parseUpstreamTime(r.CreatedAt)
	return c, nil
}

func normalizeAddress(r *rawAddress) (*entity.DeliveryAddress, error) {
	id, err := r.externalID().Int64()
	if err != nil {
		return nil, fmt.Errorf("address record carries no numeric identifier: %w", err)
	}
	a := &entity.DeliveryAddress{HyperzodAddressID: id}
	if r.City != "" {
		a.City = sql.NullString{String: r.City, Valid: true}
	}
	if r.Address != "" {
		a.Address = sql.NullString{String: r.Address, Valid: true}
	}
	if r.Latitude != nil {
		a.Latitude = sql.NullFloat64{Float64: *r.Latitude, Valid: true}
	}
	if r.Longitude != nil {
		a.Longitude = sql.NullFloat64{Float64: *r.Longitude, Valid: true}
	}
	return a, nil
}

func normalizeOrder(r *rawOrder) (entity.Order, *entity.DeliveryAddress, error) {
	id, err := r.externalID().Int64()
	if err != nil {
		return entity.Order{}, nil, fmt.Errorf("order record carries no numeric identifier: %w", err)
	}
	userID, err := r.UserID.Int64()
	if err != nil {
		return entity.Order{}, nil, fmt.Errorf("order %d carries no numeric user id: %w", id, err)
	}

	amount := decimal.Zero
	if r.OrderAmount != "" {
		amount, err = decimal.NewFromString(r.OrderAmount.String())
		if err != nil {
			return entity.Order{}, nil, fmt.Errorf("bad order_amount for order %d: %w", id, err)
		}
	}

	o := entity.Order{
		OrderID:          id,
		UserID:           userID,
		MerchantID:       r.MerchantID,
		Status:           entity.OrderStatus(r.OrderStatus),
		Amount:           amount,
		CreatedTimestamp: r.CreatedTimestamp,
	}

	var addr *entity.DeliveryAddress
	if r.DeliveryAddress != nil {
		addr, err = normalizeAddress(r.DeliveryAddress)
		if err != nil {
			return entity.Order{}, nil, fmt.Errorf("bad delivery address for order %d: %w", id, err)
		}
		o.DeliveryAddressID = sql.NullInt64{Int64: addr.HyperzodAddressID, Valid: true}
	}
	return o, addr, nil
}

// parseUpstreamTime accepts the two formats the API emits; anything else
// is treated as absent rather than failing the record.
func parseUpstreamTime(s string) sql.NullTime {
	if s == "" {
		return sql.NullTime{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return sql.NullTime{Time: t, Valid: true}
		}
	}
	return sql.NullTime{}
}
