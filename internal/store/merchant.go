package store

import (
	"context"
	"fmt"

	"github.com/mealmarkt/ops-manager/internal/dependency"
	"github.com/mealmarkt/ops-manager/internal/entity"
)

type merchantStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Merchant() dependency.Merchant {
	return &merchantStore{MYSQLStore: ms}
}

func (ms *MYSQLStore) UpsertMerchants(ctx context.Context, merchants []entity.Merchant) error {
	if len(merchants) == 0 {
		return nil
	}
	query := `
	INSERT INTO merchants
		(hyperzod_merchant_id, name, city, status, is_accepting_orders, is_open, rating, tags)
	VALUES
		(:merchantId, :name, :city, :status, :isAcceptingOrders, :isOpen, :rating, :tags)
	ON DUPLICATE KEY UPDATE
		name = VALUES(name),
		city = VALUES(city),
		status = VALUES(status),
		is_accepting_orders = VALUES(is_accepting_orders),
		is_open = VALUES(is_open),
		rating = VALUES(rating),
		tags = VALUES(tags)`

	for _, m := range merchants {
		err := ExecNamed(ctx, ms.DB(), query, map[string]any{
			"merchantId":        m.MerchantID,
			"name":              m.Name,
			"city":              m.City,
			"status":            m.Status,
			"isAcceptingOrders": m.IsAcceptingOrders,
			"isOpen":            m.IsOpen,
			"rating":            m.Rating,
			"tags":              m.Tags,
		})
		if err != nil {
			return fmt.Errorf("can't upsert merchant %s: %w", m.MerchantID, err)
		}
	}
	return nil
}

func (ms *MYSQLStore) GetAllMerchants(ctx context.Context) ([]entity.Merchant, error) {
	query := `
	SELECT id, hyperzod_merchant_id, name, city, status, is_accepting_orders, is_open, rating, tags
	FROM merchants
	ORDER BY name ASC`

	merchants, err := QueryListNamed[entity.Merchant](ctx, ms.DB(), query, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("can't fetch merchants: %w", err)
	}
	return merchants, nil
}

func (ms *MYSQLStore) GetMerchantNames(ctx context.Context, merchantIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(merchantIDs))
	if len(merchantIDs) == 0 {
		return names, nil
	}
	type row struct {
		MerchantID string `db:"hyperzod_merchant_id"`
		Name       string `db:"name"`
	}
	query := `
	SELECT hyperzod_merchant_id, name
	FROM merchants
	WHERE hyperzod_merchant_id IN (:merchantIds)`

	for start := 0; start < len(merchantIDs); start += idBatchSize {
		end := start + idBatchSize
		if end > len(merchantIDs) {
			end = len(merchantIDs)
		}
		rows, err := QueryListNamed[row](ctx, ms.DB(), query, map[string]any{
			"merchantIds": merchantIDs[start:end],
		})
		if err != nil {
			return nil, fmt.Errorf("can't fetch merchant names: %w", err)
		}
		for _, r := range rows {
			names[r.MerchantID] = r.Name
		}
	}
	return names, nil
}

func (ms *MYSQLStore) AddMerchantOverride(ctx context.Context, o *entity.MerchantOverride) (int, error) {
	query := `
	INSERT INTO merchant_overrides (merchant_id, field, value, note, created_at)
	VALUES (:merchantId, :field, :value, :note, NOW())`

	id, err := ExecNamedLastId(ctx, ms.DB(), query, map[string]any{
		"merchantId": o.MerchantID,
		"field":      o.Field,
		"value":      o.Value,
		"note":       o.Note,
	})
	if err != nil {
		return 0, fmt.Errorf("can't add merchant override: %w", err)
	}
	return id, nil
}

func (ms *MYSQLStore) ListMerchantOverrides(ctx context.Context) ([]entity.MerchantOverride, error) {
	query := `
	SELECT id, merchant_id, field, value, note, created_at
	FROM merchant_overrides
	ORDER BY created_at DESC`

	overrides, err := QueryListNamed[entity.MerchantOverride](ctx, ms.DB(), query, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("can't fetch merchant overrides: %w", err)
	}
	return overrides, nil
}

func (ms *MYSQLStore) DeleteMerchantOverride(ctx context.Context, id int) error {
	err := ExecNamed(ctx, ms.DB(), `DELETE FROM merchant_overrides WHERE id = :id`, map[string]any{
		"id": id,
	})
	if err != nil {
		return fmt.Errorf("can't delete merchant override %d: %w", id, err)
	}
	return nil
}
