// Package sync mirrors merchants, customers and orders from the commerce
// API into the local store. Every write is an idempotent upsert keyed by
// the record's stable external id, so re-running any sync with identical
// upstream data is a no-op and a failed run is safe to retry whole.
package sync

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/google/uuid"

	"github.com/mealmarkt/ops-manager/internal/dependency"
	"github.com/mealmarkt/ops-manager/internal/entity"
)

// upsertBatchSize bounds one store round trip. A failed batch is counted
// and skipped; batches already committed stay committed.
const upsertBatchSize = 100

// Options control a single sync run.
type Options struct {
	// DryRun logs intended writes without touching the store.
	DryRun bool
	// Limit stops after N records when positive.
	Limit int
}

// Summary is the final human-readable accounting of a run. RunID ties the
// summary to the log lines the run emitted.
type Summary struct {
	RunID     string
	Processed int
	Errors    int
}

// SuccessRate is the share of processed records that succeeded, in
// percent.
func (s Summary) SuccessRate() float64 {
	if s.Processed == 0 {
		return 0
	}
	return float64(s.Processed-s.Errors) / float64(s.Processed) * 100
}

func (s Summary) String() string {
	return fmt.Sprintf("processed %d, errors %d, success rate %.1f%%", s.Processed, s.Errors, s.SuccessRate())
}

type Service struct {
	rep      dependency.Repository
	commerce dependency.Commerce
}

func New(rep dependency.Repository, commerce dependency.Commerce) *Service {
	return &Service{rep: rep, commerce: commerce}
}

func applyLimit[T any](records []T, limit int) []T {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}

func (s *Service) SyncMerchants(ctx context.Context, opts Options) (Summary, error) {
	merchants, err := s.commerce.FetchMerchants(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to fetch merchants: %w", err)
	}
	merchants = applyLimit(merchants, opts.Limit)

	runID := uuid.NewString()
	if opts.DryRun {
		for _, m := range merchants {
			slog.Default().InfoContext(ctx, "dry run: would upsert merchant",
				slog.String("merchant_id", m.MerchantID),
				slog.String("name", m.Name),
			)
		}
		return Summary{RunID: runID, Processed: len(merchants)}, nil
	}

	sum := Summary{RunID: runID, Processed: len(merchants)}
	forEachBatch(merchants, func(batch []entity.Merchant) {
		if err := s.rep.Merchant().UpsertMerchants(ctx, batch); err != nil {
			slog.Default().ErrorContext(ctx, "merchant batch failed",
				slog.String("run_id", runID),
				slog.String("err", err.Error()),
			)
			sum.Errors += len(batch)
		}
	})
	return sum, nil
}

func (s *Service) SyncCustomers(ctx context.Context, opts Options) (Summary, error) {
	customers, err := s.commerce.FetchCustomers(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to fetch customers: %w", err)
	}
	customers = applyLimit(customers, opts.Limit)

	runID := uuid.NewString()
	if opts.DryRun {
		for _, c := range customers {
			slog.Default().InfoContext(ctx, "dry run: would upsert client",
				slog.Int64("hyperzod_id", c.HyperzodID),
				slog.String("name", c.Name),
			)
		}
		return Summary{RunID: runID, Processed: len(customers)}, nil
	}

	sum := Summary{RunID: runID, Processed: len(customers)}
	forEachBatch(customers, func(batch []entity.Client) {
		if err := s.rep.Client().UpsertClients(ctx, batch); err != nil {
			slog.Default().ErrorContext(ctx, "client batch failed",
				slog.String("run_id", runID),
				slog.String("err", err.Error()),
			)
			sum.Errors += len(batch)
		}
	})
	return sum, nil
}

// SyncOrders upserts delivery addresses before the orders referencing
// them. The two writes are not transactional; a failure in between leaves
// extra addresses behind, which the next retry absorbs via upsert
// idempotency.
func (s *Service) SyncOrders(ctx context.Context, opts Options) (Summary, error) {
	orders, addrs, err := s.commerce.FetchOrders(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to fetch orders: %w", err)
	}
	orders = applyLimit(orders, opts.Limit)

	runID := uuid.NewString()
	if opts.DryRun {
		slog.Default().InfoContext(ctx, "dry run: would upsert addresses", slog.Int("count", len(addrs)))
		for _, o := range orders {
			slog.Default().InfoContext(ctx, "dry run: would upsert order",
				slog.Int64("order_id", o.OrderID),
				slog.Int("status", int(o.Status)),
			)
		}
		return Summary{RunID: runID, Processed: len(orders)}, nil
	}

	// Address failures are fatal: upserting orders that reference
	// addresses we failed to write would leave the geo filter blind.
	if err := s.rep.Address().UpsertAddresses(ctx, addrs); err != nil {
		return Summary{}, fmt.Errorf("failed to upsert addresses: %w", err)
	}

	sum := Summary{RunID: runID, Processed: len(orders)}
	forEachBatch(orders, func(batch []entity.Order) {
		if err := s.rep.Order().UpsertOrders(ctx, batch); err != nil {
			slog.Default().ErrorContext(ctx, "order batch failed",
				slog.String("run_id", runID),
				slog.String("err", err.Error()),
			)
			sum.Errors += len(batch)
		}
	})
	return sum, nil
}

func forEachBatch[T any](records []T, f func(batch []T)) {
	for start := 0; start < len(records); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(records) {
			end = len(records)
		}
		f(records[start:end])
	}
}
