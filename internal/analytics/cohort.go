package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mealmarkt/ops-manager/internal/entity"
)

// activationWindow is the signup-to-first-order span that counts as
// activated, inclusive at exactly 7 days.
const activationWindow = 7 * 24 * time.Hour

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// NewCustomers counts users whose globally first-ever order falls inside
// the window. firstOrders holds the earliest order timestamp per user over
// the whole orders table, not just this period.
func NewCustomers(firstOrders map[int64]int64, r entity.TimeRange) int {
	from, to := unixRange(r)
	count := 0
	for _, ts := range firstOrders {
		if ts >= from && ts < to {
			count++
		}
	}
	return count
}

// ActivationResult is the activation-rate cohort output. Rate is a
// percentage rounded to one decimal; zero candidates yield 0, not NaN.
type ActivationResult struct {
	Rate                float64
	AvgDaysToFirstOrder float64
	Activated           int
	Candidates          int
}

// Activation computes, among clients who signed up inside the window, the
// share whose first order came within seven days of signup (inclusive at
// exactly 7.0 days), and the mean days-to-first-order among those.
func Activation(signups []entity.Client, firstOrders map[int64]int64, r entity.TimeRange) ActivationResult {
	var res ActivationResult
	var totalDays float64

	for _, c := range signups {
		if !c.HyperzodCreatedAt.Valid {
			continue
		}
		signedUp := c.HyperzodCreatedAt.Time
		if signedUp.Before(r.From) || !signedUp.Before(r.To) {
			continue
		}
		res.Candidates++

		ts, ok := firstOrders[c.HyperzodID]
		if !ok {
			continue
		}
		firstOrder := time.Unix(ts, 0)
		if firstOrder.Before(signedUp) {
			continue
		}
		elapsed := firstOrder.Sub(signedUp)
		if elapsed <= activationWindow {
			res.Activated++
			totalDays += elapsed.Hours() / 24
		}
	}

	if res.Candidates == 0 {
		return res
	}
	res.Rate = round1(float64(res.Activated) / float64(res.Candidates) * 100)
	if res.Activated > 0 {
		res.AvgDaysToFirstOrder = round1(totalDays / float64(res.Activated))
	}
	return res
}

// RepeatRate returns, among customers with at least one completed order in
// the set, the percentage with more than one, rounded to one decimal.
// Zero completed orders yield rate 0.
func RepeatRate(orders []entity.Order) (rate float64, repeat, customers int) {
	perUser := make(map[int64]int)
	for _, o := range orders {
		if o.Status.Completed() {
			perUser[o.UserID]++
		}
	}
	customers = len(perUser)
	for _, n := range perUser {
		if n > 1 {
			repeat++
		}
	}
	if customers == 0 {
		return 0, 0, 0
	}
	return round1(float64(repeat) / float64(customers) * 100), repeat, customers
}

// ActiveMerchants counts distinct merchants with at least one completed
// order in the set.
func ActiveMerchants(orders []entity.Order) int {
	seen := make(map[string]struct{})
	for _, o := range orders {
		if o.Status.Completed() {
			seen[o.MerchantID] = struct{}{}
		}
	}
	return len(seen)
}

// StatusCounts partitions the order set; completed + pending + cancelled
// always equals the set size.
func StatusCounts(orders []entity.Order) (completed, pending, cancelled int) {
	for _, o := range orders {
		switch {
		case o.Status.Completed():
			completed++
		case o.Status == entity.OrderStatusCancelled:
			cancelled++
		default:
			pending++
		}
	}
	return completed, pending, cancelled
}

// CompletedRevenue sums amounts of completed orders; pending and cancelled
// are excluded.
func CompletedRevenue(orders []entity.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		if o.Status.Completed() {
			total = total.Add(o.Amount)
		}
	}
	return total
}

// TopChefs ranks merchants by completed revenue, descending, with a stable
// sort so equal-revenue merchants keep first-encounter order. names maps
// merchant id to display name and may be incomplete.
func TopChefs(orders []entity.Order, names map[string]string, limit int) []entity.ChefRevenue {
	index := make(map[string]int)
	ranking := make([]entity.ChefRevenue, 0)

	for _, o := range orders {
		if !o.Status.Completed() {
			continue
		}
		i, ok := index[o.MerchantID]
		if !ok {
			i = len(ranking)
			index[o.MerchantID] = i
			ranking = append(ranking, entity.ChefRevenue{
				MerchantID: o.MerchantID,
				Name:       names[o.MerchantID],
				Revenue:    decimal.Zero,
			})
		}
		ranking[i].Revenue = ranking[i].Revenue.Add(o.Amount)
		ranking[i].CompletedOrders++
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Revenue.GreaterThan(ranking[j].Revenue)
	})

	if limit > 0 && len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking
}
