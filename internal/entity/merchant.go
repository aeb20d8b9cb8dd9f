package entity

import "database/sql"

// Merchant represents the merchants table. MerchantID is the external text
// identifier (hyperzod_merchant_id), distinct from the internal primary key.
type Merchant struct {
	ID                int             `db:"id"`
	MerchantID        string          `db:"hyperzod_merchant_id"`
	Name              string          `db:"name"`
	City              sql.NullString  `db:"city"`
	Status            bool            `db:"status"`
	IsAcceptingOrders bool            `db:"is_accepting_orders"`
	IsOpen            bool            `db:"is_open"`
	Rating            sql.NullFloat64 `db:"rating"`
	Tags              sql.NullString  `db:"tags"`
}

// Online reports whether the merchant is currently taking orders.
func (m *Merchant) Online() bool {
	return m.IsAcceptingOrders && m.IsOpen
}

// MerchantOverride is a manual correction layered over synced merchant data,
// keyed by the external merchant id.
type MerchantOverride struct {
	ID         int            `db:"id"`
	MerchantID string         `db:"merchant_id" valid:"required"`
	Field      string         `db:"field" valid:"required"`
	Value      string         `db:"value"`
	CreatedAt  sql.NullTime   `db:"created_at"`
	Note       sql.NullString `db:"note"`
}

// MerchantStats are the computed directory aggregates returned together with
// the merchant listing.
type MerchantStats struct {
	Total     int            `json:"total"`
	Published int            `json:"published"`
	Online    int            `json:"online"`
	ByCity    map[string]int `json:"by_city"`
}

// MerchantMapPoint is one city bucket on the merchant map.
type MerchantMapPoint struct {
	City      string  `json:"city"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Merchants int     `json:"merchants"`
	Online    int     `json:"online"`
}
