package store

import (
	"context"
	"fmt"

	"github.com/mealmarkt/ops-manager/internal/dependency"
	"github.com/mealmarkt/ops-manager/internal/entity"
)

type addressStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Address() dependency.Address {
	return &addressStore{MYSQLStore: ms}
}

func (ms *MYSQLStore) UpsertAddresses(ctx context.Context, addrs []entity.DeliveryAddress) error {
	if len(addrs) == 0 {
		return nil
	}
	query := `
	INSERT INTO delivery_addresses
		(hyperzod_address_id, city, address, latitude, longitude)
	VALUES
		(:addressId, :city, :address, :lat, :lng)
	ON DUPLICATE KEY UPDATE
		city = VALUES(city),
		address = VALUES(address),
		latitude = VALUES(latitude),
		longitude = VALUES(longitude)`

	for _, a := range addrs {
		err := ExecNamed(ctx, ms.DB(), query, map[string]any{
			"addressId": a.HyperzodAddressID,
			"city":      a.City,
			"address":   a.Address,
			"lat":       a.Latitude,
			"lng":       a.Longitude,
		})
		if err != nil {
			return fmt.Errorf("can't upsert address %d: %w", a.HyperzodAddressID, err)
		}
	}
	return nil
}

// GetAddressesByIDs fetches addresses by external id in batches of
// idBatchSize so the IN-list never exceeds the query-parameter cap.
func (ms *MYSQLStore) GetAddressesByIDs(ctx context.Context, ids []int64) ([]entity.DeliveryAddress, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
	SELECT id, hyperzod_address_id, city, address, latitude, longitude
	FROM delivery_addresses
	WHERE hyperzod_address_id IN (:addressIds)`

	var all []entity.DeliveryAddress
	for start := 0; start < len(ids); start += idBatchSize {
		end := start + idBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch, err := QueryListNamed[entity.DeliveryAddress](ctx, ms.DB(), query, map[string]any{
			"addressIds": ids[start:end],
		})
		if err != nil {
			return nil, fmt.Errorf("can't fetch addresses batch: %w", err)
		}
		all = append(all, batch...)
	}
	return all, nil
}
