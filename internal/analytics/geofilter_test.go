package analytics

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mealmarkt/ops-manager/internal/entity"
)

func addr(id int64, city, address string) entity.DeliveryAddress {
	a := entity.DeliveryAddress{HyperzodAddressID: id}
	if city != "" {
		a.City = sql.NullString{String: city, Valid: true}
	}
	if address != "" {
		a.Address = sql.NullString{String: address, Valid: true}
	}
	return a
}

func orderAt(user int64, addressID int64) entity.Order {
	o := order(user, "m1", entity.OrderStatusDelivered, 10)
	if addressID > 0 {
		o.DeliveryAddressID = sql.NullInt64{Int64: addressID, Valid: true}
	}
	return o
}

func TestFilterOrdersByCity(t *testing.T) {
	addrs := []entity.DeliveryAddress{
		addr(1, "Amsterdam", ""),
		addr(2, "Rotterdam", ""),
		addr(3, "", "Keizersgracht 1, Amsterdam"), // city only in the address text
		addr(4, "", ""),
	}
	orders := []entity.Order{
		orderAt(1, 1),
		orderAt(2, 2),
		orderAt(3, 3),
		orderAt(4, 4),
		orderAt(5, 0), // no delivery address
	}

	filtered := FilterOrdersByCity(orders, addrs, "Amsterdam")
	assert.Len(t, filtered, 2)
	assert.Equal(t, int64(1), filtered[0].UserID)
	assert.Equal(t, int64(3), filtered[1].UserID)
}

func TestFilterOrdersByCity_NoMatches(t *testing.T) {
	orders := []entity.Order{orderAt(1, 1)}
	addrs := []entity.DeliveryAddress{addr(1, "Rotterdam", "")}
	assert.Empty(t, FilterOrdersByCity(orders, addrs, "Amsterdam"))
}

func TestAddressIDs(t *testing.T) {
	orders := []entity.Order{
		orderAt(1, 7),
		orderAt(2, 7), // duplicate
		orderAt(3, 9),
		orderAt(4, 0), // null
	}
	assert.Equal(t, []int64{7, 9}, addressIDs(orders))
}
