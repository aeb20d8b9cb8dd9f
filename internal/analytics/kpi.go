package analytics

import "github.com/shopspring/decimal"

// CACPerCustomer divides marketing spend by new customers. Nil when spend
// is unset or there are no new customers; never a division by zero.
func CACPerCustomer(spend *decimal.Decimal, newCustomers int) *decimal.Decimal {
	if spend == nil || newCustomers == 0 {
		return nil
	}
	cac := spend.Div(decimal.NewFromInt(int64(newCustomers)))
	return &cac
}

// ContributionMarginPerOrder estimates per-order profit as total revenue
// times the platform commission, spread over completed orders. Nil when
// there are no completed orders.
func ContributionMarginPerOrder(totalRevenue, commissionPct decimal.Decimal, completedOrders int) *decimal.Decimal {
	if completedOrders == 0 {
		return nil
	}
	margin := totalRevenue.Mul(commissionPct).Div(decimal.NewFromInt(int64(completedOrders)))
	return &margin
}
