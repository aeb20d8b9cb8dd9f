package analytics

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mealmarkt/ops-manager/internal/entity"
)

// WriteCSV renders a KPI report as a two-column CSV followed by the
// top-chefs ranking. Monetary values are formatted to two decimals only
// here, at the display boundary.
func WriteCSV(w io.Writer, r *entity.KPIReport) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"metric", "value"},
		{"period_from", r.Period.From.Format("2006-01-02")},
		{"period_to", r.Period.To.Format("2006-01-02")},
		{"city", r.City},
		{"total_orders", strconv.Itoa(r.TotalOrders)},
		{"completed_orders", strconv.Itoa(r.CompletedOrders)},
		{"pending_orders", strconv.Itoa(r.PendingOrders)},
		{"cancelled_orders", strconv.Itoa(r.CancelledOrders)},
		{"order_revenue", r.OrderRevenue.StringFixed(2)},
		{"manual_revenue", r.ManualRevenue.StringFixed(2)},
		{"total_revenue", r.TotalRevenue.StringFixed(2)},
		{"new_customers", strconv.Itoa(r.NewCustomers)},
		{"activation_rate", formatRate(r.ActivationRate)},
		{"avg_days_to_first_order", formatRate(r.AvgDaysToFirstOrder)},
		{"repeat_rate", formatRate(r.RepeatRate)},
		{"active_merchants", strconv.Itoa(r.ActiveMerchants)},
		{"cac_per_customer", formatOptional(r.CACPerCustomer)},
		{"contribution_margin_per_order", formatOptional(r.ContributionMarginPerOrder)},
	}
	for _, p := range r.PinnedCityOrders {
		rows = append(rows, []string{"completed_orders_" + p.City, strconv.Itoa(p.CompletedOrders)})
	}

	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	if len(r.TopChefs) > 0 {
		if err := cw.Write([]string{"merchant_id", "name", "revenue", "completed_orders"}); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
		for _, chef := range r.TopChefs {
			err := cw.Write([]string{
				chef.MerchantID,
				chef.Name,
				chef.Revenue.StringFixed(2),
				strconv.Itoa(chef.CompletedOrders),
			})
			if err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatOptional(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}
