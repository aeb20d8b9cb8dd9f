package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mealmarkt/ops-manager/internal/dependency"
	"github.com/mealmarkt/ops-manager/internal/entity"
	gerr "github.com/mealmarkt/ops-manager/internal/errors"
)

type clientStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Client() dependency.Client {
	return &clientStore{MYSQLStore: ms}
}

const clientColumns = `id, hyperzod_id, name, email, mobile, email_verified_at, mobile_verified_at,
	unsubscribed, total_orders, total_spend, hyperzod_created_at`

func (ms *MYSQLStore) UpsertClients(ctx context.Context, clients []entity.Client) error {
	if len(clients) == 0 {
		return nil
	}
	query := `
	INSERT INTO clients
		(hyperzod_id, name, email, mobile, email_verified_at, mobile_verified_at,
		unsubscribed, total_orders, total_spend, hyperzod_created_at)
	VALUES
		(:hyperzodId, :name, :email, :mobile, :emailVerifiedAt, :mobileVerifiedAt,
		:unsubscribed, :totalOrders, :totalSpend, :hyperzodCreatedAt)
	ON DUPLICATE KEY UPDATE
		name = VALUES(name),
		email = VALUES(email),
		mobile = VALUES(mobile),
		email_verified_at = VALUES(email_verified_at),
		mobile_verified_at = VALUES(mobile_verified_at),
		unsubscribed = VALUES(unsubscribed),
		total_orders = VALUES(total_orders),
		total_spend = VALUES(total_spend),
		hyperzod_created_at = VALUES(hyperzod_created_at)`

	for _, c := range clients {
		err := ExecNamed(ctx, ms.DB(), query, map[string]any{
			"hyperzodId":        c.HyperzodID,
			"name":              c.Name,
			"email":             c.Email,
			"mobile":            c.Mobile,
			"emailVerifiedAt":   c.EmailVerifiedAt,
			"mobileVerifiedAt":  c.MobileVerifiedAt,
			"unsubscribed":      c.Unsubscribed,
			"totalOrders":       c.TotalOrders,
			"totalSpend":        c.TotalSpend,
			"hyperzodCreatedAt": c.HyperzodCreatedAt,
		})
		if err != nil {
			return fmt.Errorf("can't upsert client %d: %w", c.HyperzodID, err)
		}
	}
	return nil
}

func (ms *MYSQLStore) GetClientsPaged(ctx context.Context, limit, offset int) ([]entity.Client, int, error) {
	query := fmt.Sprintf(`
	SELECT %s FROM clients
	ORDER BY hyperzod_created_at DESC
	LIMIT :limit OFFSET :offset`, clientColumns)

	clients, err := QueryListNamed[entity.Client](ctx, ms.DB(), query, map[string]any{
		"limit":  limit,
		"offset": offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("can't fetch clients: %w", err)
	}

	count, err := QueryCountNamed(ctx, ms.DB(), `SELECT COUNT(*) FROM clients`, map[string]any{})
	if err != nil {
		return nil, 0, fmt.Errorf("can't count clients: %w", err)
	}
	return clients, count, nil
}

func (ms *MYSQLStore) GetClientByHyperzodID(ctx context.Context, hyperzodID int64) (*entity.Client, error) {
	query := fmt.Sprintf(`SELECT %s FROM clients WHERE hyperzod_id = :hyperzodId`, clientColumns)
	c, err := QueryNamedOne[entity.Client](ctx, ms.DB(), query, map[string]any{
		"hyperzodId": hyperzodID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gerr.ErrClientNotFound
		}
		return nil, fmt.Errorf("can't fetch client: %w", err)
	}
	return &c, nil
}

func (ms *MYSQLStore) GetClientsByHyperzodIDs(ctx context.Context, ids []int64) ([]entity.Client, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM clients WHERE hyperzod_id IN (:hyperzodIds)`, clientColumns)

	var all []entity.Client
	for start := 0; start < len(ids); start += idBatchSize {
		end := start + idBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch, err := QueryListNamed[entity.Client](ctx, ms.DB(), query, map[string]any{
			"hyperzodIds": ids[start:end],
		})
		if err != nil {
			return nil, fmt.Errorf("can't fetch clients batch: %w", err)
		}
		all = append(all, batch...)
	}
	return all, nil
}

func (ms *MYSQLStore) GetClientsSignedUpBetween(ctx context.Context, from, to time.Time) ([]entity.Client, error) {
	query := fmt.Sprintf(`
	SELECT %s FROM clients
	WHERE hyperzod_created_at >= :from AND hyperzod_created_at < :to`, clientColumns)

	clients, err := QueryListNamed[entity.Client](ctx, ms.DB(), query, map[string]any{
		"from": from,
		"to":   to,
	})
	if err != nil {
		return nil, fmt.Errorf("can't fetch clients signed up between: %w", err)
	}
	return clients, nil
}
