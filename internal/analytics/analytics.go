// Package analytics implements the KPI aggregation pipeline: period
// resolution, order fetching, geo filtering, cohort calculation and KPI
// assembly. Every invocation recomputes from scratch against the current
// store contents; nothing is cached between calls.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mealmarkt/ops-manager/internal/dependency"
	"github.com/mealmarkt/ops-manager/internal/entity"
)

type Config struct {
	// WeeklyMarketingSpend feeds the CAC metric; zero means unconfigured.
	WeeklyMarketingSpend float64 `mapstructure:"weekly_marketing_spend"`
	// CommissionPct is the flat platform-commission assumption used by the
	// contribution margin, as a fraction. Defaults to 0.12.
	CommissionPct float64 `mapstructure:"commission_pct"`
	// COGSPct is reported as cost context when configured; zero means
	// unconfigured.
	COGSPct float64 `mapstructure:"cogs_pct"`
	// PinnedCities get a per-city completed-order breakdown on every
	// report.
	PinnedCities  []string `mapstructure:"pinned_cities"`
	TopChefsLimit int      `mapstructure:"top_chefs_limit"`
}

const defaultCommissionPct = 0.12

type Service struct {
	rep dependency.Repository
	c   *Config
}

func New(c *Config, rep dependency.Repository) *Service {
	if c.CommissionPct == 0 {
		c.CommissionPct = defaultCommissionPct
	}
	if c.TopChefsLimit == 0 {
		c.TopChefsLimit = 10
	}
	return &Service{rep: rep, c: c}
}

// Request selects the reporting window and an optional city filter.
type Request struct {
	Preset Preset
	From   time.Time
	To     time.Time
	City   string
}

// GetKPIs runs the full pipeline: resolver, fetcher, geo filter, cohort
// calculators, assembler.
func (s *Service) GetKPIs(ctx context.Context, req Request) (*entity.KPIReport, error) {
	period, err := ResolvePeriod(req.Preset, req.From, req.To, time.Now())
	if err != nil {
		return nil, err
	}
	return s.getKPIs(ctx, period, req.City)
}

func (s *Service) getKPIs(ctx context.Context, period entity.TimeRange, city string) (*entity.KPIReport, error) {
	from, to := unixRange(period)
	allOrders, err := s.rep.Order().GetOrdersInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}

	// Addresses are fetched once and shared by the city filter and all
	// pinned-city breakdowns.
	var (
		addrs   []entity.DeliveryAddress
		signups []entity.Client
		manual  decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		addrs, err = s.rep.Address().GetAddressesByIDs(gctx, addressIDs(allOrders))
		if err != nil {
			return fmt.Errorf("failed to fetch delivery addresses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		signups, err = s.rep.Client().GetClientsSignedUpBetween(gctx, period.From, period.To)
		if err != nil {
			return fmt.Errorf("failed to fetch signups: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		manual, err = s.rep.Revenue().SumManualRevenue(gctx, period.From, period.To)
		if err != nil {
			return fmt.Errorf("failed to sum manual revenue: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	orders := allOrders
	if city != "" {
		orders = FilterOrdersByCity(allOrders, addrs, city)
	}

	// First-order timestamps are fetched for the union of everyone who
	// ordered in the period and everyone who signed up in it, in one
	// grouped query.
	firstOrders, err := s.rep.Order().FirstOrderTimestamps(ctx, cohortUserIDs(orders, signups))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch first order timestamps: %w", err)
	}

	names, err := s.rep.Merchant().GetMerchantNames(ctx, merchantIDs(orders))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch merchant names: %w", err)
	}

	completed, pending, cancelled := StatusCounts(orders)
	orderRevenue := CompletedRevenue(orders)
	activation := Activation(signups, firstOrders, period)
	repeatRate, _, _ := RepeatRate(orders)
	newCustomers := NewCustomers(periodFirstOrders(firstOrders, orders), period)

	r := &entity.KPIReport{
		Period:              period,
		City:                city,
		TotalOrders:         len(orders),
		CompletedOrders:     completed,
		PendingOrders:       pending,
		CancelledOrders:     cancelled,
		OrderRevenue:        orderRevenue,
		NewCustomers:        newCustomers,
		ActivationRate:      activation.Rate,
		AvgDaysToFirstOrder: activation.AvgDaysToFirstOrder,
		RepeatRate:          repeatRate,
		ActiveMerchants:     ActiveMerchants(orders),
		TopChefs:            TopChefs(orders, names, s.c.TopChefsLimit),
		CommissionPct:       decimal.NewFromFloat(s.c.CommissionPct),
	}

	// Manual entries carry no city, so they only join the total when the
	// report is not city-scoped.
	r.ManualRevenue = decimal.Zero
	if city == "" {
		r.ManualRevenue = manual
	}
	r.TotalRevenue = r.OrderRevenue.Add(r.ManualRevenue)

	for _, pinned := range s.c.PinnedCities {
		cityOrders := FilterOrdersByCity(allOrders, addrs, pinned)
		cc, _, _ := StatusCounts(cityOrders)
		r.PinnedCityOrders = append(r.PinnedCityOrders, entity.CityOrderCount{
			City:            pinned,
			CompletedOrders: cc,
		})
	}

	var spend *decimal.Decimal
	if s.c.WeeklyMarketingSpend > 0 {
		d := decimal.NewFromFloat(s.c.WeeklyMarketingSpend)
		spend = &d
	}
	r.MarketingSpend = spend
	r.CACPerCustomer = CACPerCustomer(spend, newCustomers)
	r.ContributionMarginPerOrder = ContributionMarginPerOrder(r.TotalRevenue, r.CommissionPct, completed)
	if s.c.COGSPct > 0 {
		d := decimal.NewFromFloat(s.c.COGSPct)
		r.COGSPct = &d
	}

	return r, nil
}

// GetTopChefs returns the revenue ranking on its own, for the directory
// page.
func (s *Service) GetTopChefs(ctx context.Context, req Request, limit int) ([]entity.ChefRevenue, error) {
	period, err := ResolvePeriod(req.Preset, req.From, req.To, time.Now())
	if err != nil {
		return nil, err
	}
	from, to := unixRange(period)
	orders, err := s.rep.Order().GetOrdersInRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	if req.City != "" {
		addrs, err := s.rep.Address().GetAddressesByIDs(ctx, addressIDs(orders))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch delivery addresses: %w", err)
		}
		orders = FilterOrdersByCity(orders, addrs, req.City)
	}
	names, err := s.rep.Merchant().GetMerchantNames(ctx, merchantIDs(orders))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch merchant names: %w", err)
	}
	if limit <= 0 {
		limit = s.c.TopChefsLimit
	}
	return TopChefs(orders, names, limit), nil
}

// cohortUserIDs unions the users who placed an order in the period with
// the clients who signed up in it.
func cohortUserIDs(orders []entity.Order, signups []entity.Client) []int64 {
	seen := make(map[int64]struct{})
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.UserID]; !ok {
			seen[o.UserID] = struct{}{}
			ids = append(ids, o.UserID)
		}
	}
	for _, c := range signups {
		if _, ok := seen[c.HyperzodID]; !ok {
			seen[c.HyperzodID] = struct{}{}
			ids = append(ids, c.HyperzodID)
		}
	}
	return ids
}

// periodFirstOrders narrows the first-order map to users who actually
// ordered in the (possibly city-filtered) period, so the new-customer
// count is not inflated by signup-only cohort members.
func periodFirstOrders(firstOrders map[int64]int64, orders []entity.Order) map[int64]int64 {
	out := make(map[int64]int64)
	for _, o := range orders {
		if ts, ok := firstOrders[o.UserID]; ok {
			out[o.UserID] = ts
		}
	}
	return out
}

func merchantIDs(orders []entity.Order) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, o := range orders {
		if _, ok := seen[o.MerchantID]; !ok {
			seen[o.MerchantID] = struct{}{}
			ids = append(ids, o.MerchantID)
		}
	}
	return ids
}
