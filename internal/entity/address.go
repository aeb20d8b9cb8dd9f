package entity

import "database/sql"

// DeliveryAddress represents the delivery_addresses table. The city and
// address columns are free text as entered by the customer; the city name
// may appear in either column or in neither.
type DeliveryAddress struct {
	ID                int             `db:"id"`
	HyperzodAddressID int64           `db:"hyperzod_address_id"`
	City              sql.NullString  `db:"city"`
	Address           sql.NullString  `db:"address"`
	Latitude          sql.NullFloat64 `db:"latitude"`
	Longitude         sql.NullFloat64 `db:"longitude"`
}
