package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mealmarkt/ops-manager/internal/dependency"
	"github.com/mealmarkt/ops-manager/internal/entity"
)

type revenueStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Revenue() dependency.Revenue {
	return &revenueStore{MYSQLStore: ms}
}

func (ms *MYSQLStore) AddManualRevenueEntry(ctx context.Context, e *entity.ManualRevenueEntry) (int, error) {
	id, err := ExecNamedLastId(ctx, ms.DB(), `
	INSERT INTO manual_revenue_entries (entry_date, entry_type, amount, description)
	VALUES (:entryDate, :entryType, :amount, :description)`, map[string]any{
		"entryDate":   e.Date.Format("2006-01-02"),
		"entryType":   e.Type,
		"amount":      e.Amount,
		"description": e.Description,
	})
	if err != nil {
		return 0, fmt.Errorf("can't add manual revenue entry: %w", err)
	}
	return id, nil
}

func (ms *MYSQLStore) ListManualRevenueEntries(ctx context.Context, from, to time.Time) ([]entity.ManualRevenueEntry, error) {
	entries, err := QueryListNamed[entity.ManualRevenueEntry](ctx, ms.DB(), `
	SELECT id, entry_date, entry_type, amount, description
	FROM manual_revenue_entries
	WHERE entry_date >= :from AND entry_date <= :to
	ORDER BY entry_date DESC`, map[string]any{
		"from": from.Format("2006-01-02"),
		"to":   to.Format("2006-01-02"),
	})
	if err != nil {
		return nil, fmt.Errorf("can't fetch manual revenue entries: %w", err)
	}
	return entries, nil
}

func (ms *MYSQLStore) DeleteManualRevenueEntry(ctx context.Context, id int) error {
	err := ExecNamed(ctx, ms.DB(), `DELETE FROM manual_revenue_entries WHERE id = :id`,
		map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("can't delete manual revenue entry %d: %w", id, err)
	}
	return nil
}

// SumManualRevenue totals entries matched by calendar date, inclusive on
// both ends; manual entries carry a date only, not a timestamp.
func (ms *MYSQLStore) SumManualRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	type row struct {
		Total decimal.Decimal `db:"total"`
	}
	r, err := QueryNamedOne[row](ctx, ms.DB(), `
	SELECT COALESCE(SUM(amount), 0) AS total
	FROM manual_revenue_entries
	WHERE entry_date >= :from AND entry_date <= :to`, map[string]any{
		"from": from.Format("2006-01-02"),
		"to":   to.Format("2006-01-02"),
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("can't sum manual revenue: %w", err)
	}
	return r.Total, nil
}
