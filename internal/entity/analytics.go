package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeRange is a half-open [From, To) reporting window.
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ChefRevenue is one row of the top-chefs-by-revenue ranking.
type ChefRevenue struct {
	MerchantID      string          `json:"merchant_id"`
	Name            string          `json:"name"`
	Revenue         decimal.Decimal `json:"revenue"`
	CompletedOrders int             `json:"completed_orders"`
}

// CityOrderCount is a completed-order breakdown for one pinned city.
type CityOrderCount struct {
	City            string `json:"city"`
	CompletedOrders int    `json:"completed_orders"`
}

// KPIReport is the assembled metrics record for one reporting period.
// Optional derived metrics are nil when their inputs are missing or a
// denominator is zero, never Inf or NaN.
type KPIReport struct {
	Period TimeRange `json:"period"`
	City   string    `json:"city,omitempty"`

	TotalOrders     int             `json:"total_orders"`
	CompletedOrders int             `json:"completed_orders"`
	PendingOrders   int             `json:"pending_orders"`
	CancelledOrders int             `json:"cancelled_orders"`
	OrderRevenue    decimal.Decimal `json:"order_revenue"`
	ManualRevenue   decimal.Decimal `json:"manual_revenue"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`

	NewCustomers        int     `json:"new_customers"`
	ActivationRate      float64 `json:"activation_rate"`
	AvgDaysToFirstOrder float64 `json:"avg_days_to_first_order"`
	RepeatRate          float64 `json:"repeat_rate"`
	ActiveMerchants     int     `json:"active_merchants"`

	PinnedCityOrders []CityOrderCount `json:"pinned_city_orders,omitempty"`
	TopChefs         []ChefRevenue    `json:"top_chefs,omitempty"`

	CACPerCustomer             *decimal.Decimal `json:"cac_per_customer,omitempty"`
	ContributionMarginPerOrder *decimal.Decimal `json:"contribution_margin_per_order,omitempty"`
	MarketingSpend             *decimal.Decimal `json:"marketing_spend,omitempty"`
	CommissionPct              decimal.Decimal  `json:"commission_pct"`
	COGSPct                    *decimal.Decimal `json:"cogs_pct,omitempty"`
}
