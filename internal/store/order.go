package store

import (
	"context"
	"fmt"

	"github.com/mealmarkt/ops-manager/internal/dependency"
	"github.com/mealmarkt/ops-manager/internal/entity"
)

type orderStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Order() dependency.Order {
	return &orderStore{MYSQLStore: ms}
}

// orderPageSize is the fixed fetch batch for range queries. The store caps
// result sets per query, so GetOrdersInRange keeps fetching pages until one
// comes back short; a single naive query would silently truncate.
const orderPageSize = 1000

// idBatchSize caps IN-list length to stay under the query-parameter limit.
const idBatchSize = 100

func (ms *MYSQLStore) UpsertOrders(ctx context.Context, orders []entity.Order) error {
	if len(orders) == 0 {
		return nil
	}
	query := `
	INSERT INTO orders
		(order_id, user_id, merchant_id, order_status, order_amount, created_timestamp, delivery_address_id)
	VALUES
		(:orderId, :userId, :merchantId, :orderStatus, :orderAmount, :createdTimestamp, :deliveryAddressId)
	ON DUPLICATE KEY UPDATE
		user_id = VALUES(user_id),
		merchant_id = VALUES(merchant_id),
		order_status = VALUES(order_status),
		order_amount = VALUES(order_amount),
		created_timestamp = VALUES(created_timestamp),
		delivery_address_id = VALUES(delivery_address_id)`

	for _, o := range orders {
		var addrID any
		if o.DeliveryAddressID.Valid {
			addrID = o.DeliveryAddressID.Int64
		}
		err := ExecNamed(ctx, ms.DB(), query, map[string]any{
			"orderId":           o.OrderID,
			"userId":            o.UserID,
			"merchantId":        o.MerchantID,
			"orderStatus":       int(o.Status),
			"orderAmount":       o.Amount,
			"createdTimestamp":  o.CreatedTimestamp,
			"deliveryAddressId": addrID,
		})
		if err != nil {
			return fmt.Errorf("can't upsert order %d: %w", o.OrderID, err)
		}
	}
	return nil
}

func (ms *MYSQLStore) GetOrdersInRange(ctx context.Context, from, to int64) ([]entity.Order, error) {
	query := `
	SELECT id, order_id, user_id, merchant_id, order_status, order_amount, created_timestamp, delivery_address_id
	FROM orders
	WHERE created_timestamp >= :from AND created_timestamp < :to
	ORDER BY created_timestamp ASC, order_id ASC
	LIMIT :limit OFFSET :offset`

	var all []entity.Order
	offset := 0
	for {
		page, err := QueryListNamed[entity.Order](ctx, ms.DB(), query, map[string]any{
			"from":   from,
			"to":     to,
			"limit":  orderPageSize,
			"offset": offset,
		})
		if err != nil {
			return nil, fmt.Errorf("can't fetch orders page at offset %d: %w", offset, err)
		}
		all = append(all, page...)
		if len(page) < orderPageSize {
			return all, nil
		}
		offset += orderPageSize
	}
}

func (ms *MYSQLStore) GetOrdersPaged(ctx context.Context, status *entity.OrderStatus, limit, offset int, of entity.OrderFactor) ([]entity.Order, int, error) {
	if of != entity.Ascending {
		of = entity.Descending
	}
	params := map[string]any{
		"limit":  limit,
		"offset": offset,
	}
	where := ""
	countParams := map[string]any{}
	if status != nil {
		where = "WHERE order_status = :status"
		params["status"] = int(*status)
		countParams["status"] = int(*status)
	}

	query := fmt.Sprintf(`
	SELECT id, order_id, user_id, merchant_id, order_status, order_amount, created_timestamp, delivery_address_id
	FROM orders
	%s
	ORDER BY created_timestamp %s
	LIMIT :limit OFFSET :offset`, where, of)

	orders, err := QueryListNamed[entity.Order](ctx, ms.DB(), query, params)
	if err != nil {
		return nil, 0, fmt.Errorf("can't fetch orders: %w", err)
	}

	count, err := QueryCountNamed(ctx, ms.DB(),
		fmt.Sprintf(`SELECT COUNT(*) FROM orders %s`, where), countParams)
	if err != nil {
		return nil, 0, fmt.Errorf("can't count orders: %w", err)
	}

	return orders, count, nil
}

func (ms *MYSQLStore) FirstOrderTimestamps(ctx context.Context, userIDs []int64) (map[int64]int64, error) {
	firsts := make(map[int64]int64, len(userIDs))
	if len(userIDs) == 0 {
		return firsts, nil
	}

	type row struct {
		UserID int64 `db:"user_id"`
		First  int64 `db:"first_ts"`
	}
	query := `
	SELECT user_id, MIN(created_timestamp) AS first_ts
	FROM orders
	WHERE user_id IN (:userIds)
	GROUP BY user_id`

	for start := 0; start < len(userIDs); start += idBatchSize {
		end := start + idBatchSize
		if end > len(userIDs) {
			end = len(userIDs)
		}
		rows, err := QueryListNamed[row](ctx, ms.DB(), query, map[string]any{
			"userIds": userIDs[start:end],
		})
		if err != nil {
			return nil, fmt.Errorf("can't fetch first order timestamps: %w", err)
		}
		for _, r := range rows {
			firsts[r.UserID] = r.First
		}
	}
	return firsts, nil
}
