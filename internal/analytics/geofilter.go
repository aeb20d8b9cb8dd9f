package analytics

import (
	"github.com/mealmarkt/ops-manager/internal/entity"
	"github.com/mealmarkt/ops-manager/internal/geo"
)

// addressIDs collects the distinct, non-null delivery address ids
// referenced by the orders.
func addressIDs(orders []entity.Order) []int64 {
	seen := make(map[int64]struct{})
	ids := make([]int64, 0)
	for _, o := range orders {
		if !o.DeliveryAddressID.Valid {
			continue
		}
		id := o.DeliveryAddressID.Int64
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// matchingAddressSet returns the external ids of addresses whose city or
// address text contains the target city.
func matchingAddressSet(addrs []entity.DeliveryAddress, city string) map[int64]struct{} {
	matched := make(map[int64]struct{})
	for _, a := range addrs {
		if a.City.Valid && geo.CityMatches(a.City.String, city) {
			matched[a.HyperzodAddressID] = struct{}{}
			continue
		}
		if a.Address.Valid && geo.CityMatches(a.Address.String, city) {
			matched[a.HyperzodAddressID] = struct{}{}
		}
	}
	return matched
}

// FilterOrdersByCity narrows the order set to orders delivered to the given
// city. Orders with no delivery address are excluded whenever a city filter
// is active.
func FilterOrdersByCity(orders []entity.Order, addrs []entity.DeliveryAddress, city string) []entity.Order {
	matched := matchingAddressSet(addrs, city)
	filtered := make([]entity.Order, 0, len(orders))
	for _, o := range orders {
		if !o.DeliveryAddressID.Valid {
			continue
		}
		if _, ok := matched[o.DeliveryAddressID.Int64]; ok {
			filtered = append(filtered, o)
		}
	}
	return filtered
}
