package analytics

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mealmarkt/ops-manager/internal/entity"
)

func testRange(from, to time.Time) entity.TimeRange {
	return entity.TimeRange{From: from, To: to}
}

func order(user int64, merchant string, status entity.OrderStatus, amount int64) entity.Order {
	return entity.Order{
		UserID:     user,
		MerchantID: merchant,
		Status:     status,
		Amount:     decimal.NewFromInt(amount),
	}
}

func signup(hyperzodID int64, at time.Time) entity.Client {
	return entity.Client{
		HyperzodID:        hyperzodID,
		HyperzodCreatedAt: sql.NullTime{Time: at, Valid: true},
	}
}

func TestNewCustomers(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 7, 23, 59, 59, 0, time.UTC)
	r := testRange(from, to)

	firstOrders := map[int64]int64{
		1: from.Add(time.Hour).Unix(),       // inside
		2: from.Add(-time.Hour).Unix(),      // before
		3: to.Add(24 * time.Hour).Unix(),    // after
		4: to.Unix(),                        // last second of window, included
	}
	assert.Equal(t, 2, NewCustomers(firstOrders, r))
	assert.Equal(t, 0, NewCustomers(map[int64]int64{}, r))
}

func TestActivation(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC)
	r := testRange(from, to)

	signedUp := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	signups := []entity.Client{
		signup(1, signedUp), // orders in 2 days -> activated
		signup(2, signedUp), // orders at exactly 7 days -> activated (inclusive)
		signup(3, signedUp), // orders after 8 days -> not activated
		signup(4, signedUp), // never orders
		signup(5, from.Add(-48*time.Hour)), // outside window, not a candidate
	}
	firstOrders := map[int64]int64{
		1: signedUp.Add(2 * 24 * time.Hour).Unix(),
		2: signedUp.Add(7 * 24 * time.Hour).Unix(),
		3: signedUp.Add(8 * 24 * time.Hour).Unix(),
		5: signedUp.Unix(),
	}

	res := Activation(signups, firstOrders, r)
	assert.Equal(t, 4, res.Candidates)
	assert.Equal(t, 2, res.Activated)
	assert.Equal(t, 50.0, res.Rate)
	assert.Equal(t, 4.5, res.AvgDaysToFirstOrder) // (2 + 7) / 2
}

func TestActivation_ZeroCandidates(t *testing.T) {
	r := testRange(
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 7, 23, 59, 59, 0, time.UTC),
	)
	res := Activation(nil, nil, r)
	assert.Equal(t, 0.0, res.Rate)
	assert.Equal(t, 0, res.Candidates)
}

func TestActivation_FirstOrderBeforeSignup(t *testing.T) {
	// a pre-signup first order (guest checkout later claimed) never counts
	r := testRange(
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC),
	)
	signedUp := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	res := Activation(
		[]entity.Client{signup(1, signedUp)},
		map[int64]int64{1: signedUp.Add(-time.Hour).Unix()},
		r,
	)
	assert.Equal(t, 1, res.Candidates)
	assert.Equal(t, 0, res.Activated)
}

func TestRepeatRate(t *testing.T) {
	orders := []entity.Order{
		order(1, "m1", entity.OrderStatusDelivered, 10),
		order(1, "m1", entity.OrderStatusDelivered, 10),
		order(2, "m1", entity.OrderStatusDelivered, 10),
		order(3, "m1", entity.OrderStatusCancelled, 10), // not a customer
		order(4, "m1", entity.OrderStatusDelivered, 10),
		order(4, "m1", entity.OrderStatusCancelled, 10), // second order cancelled: not repeat
	}
	rate, repeat, customers := RepeatRate(orders)
	assert.Equal(t, 3, customers)
	assert.Equal(t, 1, repeat)
	assert.Equal(t, 33.3, rate)
}

func TestRepeatRate_Empty(t *testing.T) {
	rate, repeat, customers := RepeatRate(nil)
	assert.Equal(t, 0.0, rate)
	assert.Equal(t, 0, repeat)
	assert.Equal(t, 0, customers)
}

func TestStatusCountsAndRevenue(t *testing.T) {
	// 20 delivered, 15 cancelled, 30 preparing
	orders := []entity.Order{
		order(1, "m1", entity.OrderStatusDelivered, 20),
		order(2, "m1", entity.OrderStatusCancelled, 15),
		order(3, "m2", entity.OrderStatusPreparing, 30),
		order(4, "m2", entity.OrderStatusPending, 5),
	}
	completed, pending, cancelled := StatusCounts(orders)
	assert.Equal(t, 2, completed) // delivered + preparing both count
	assert.Equal(t, 1, pending)
	assert.Equal(t, 1, cancelled)
	assert.Equal(t, len(orders), completed+pending+cancelled)

	assert.True(t, CompletedRevenue(orders).Equal(decimal.NewFromInt(50)))
	assert.True(t, CompletedRevenue(nil).Equal(decimal.Zero))
}

func TestActiveMerchants(t *testing.T) {
	orders := []entity.Order{
		order(1, "m1", entity.OrderStatusDelivered, 10),
		order(2, "m1", entity.OrderStatusDelivered, 10),
		order(3, "m2", entity.OrderStatusAccepted, 10),
		order(4, "m3", entity.OrderStatusCancelled, 10),
	}
	assert.Equal(t, 2, ActiveMerchants(orders))
}

func TestTopChefs(t *testing.T) {
	orders := []entity.Order{
		order(1, "m1", entity.OrderStatusDelivered, 10),
		order(2, "m2", entity.OrderStatusDelivered, 30),
		order(3, "m1", entity.OrderStatusDelivered, 10),
		order(4, "m3", entity.OrderStatusDelivered, 20), // ties m1
		order(5, "m1", entity.OrderStatusCancelled, 99), // excluded
	}
	names := map[string]string{"m1": "Chef One", "m2": "Chef Two"}

	ranking := TopChefs(orders, names, 0)
	assert.Len(t, ranking, 3)
	assert.Equal(t, "m2", ranking[0].MerchantID)
	assert.Equal(t, "Chef Two", ranking[0].Name)

	// equal revenue keeps first-encounter order: m1 before m3
	assert.Equal(t, "m1", ranking[1].MerchantID)
	assert.Equal(t, 2, ranking[1].CompletedOrders)
	assert.Equal(t, "m3", ranking[2].MerchantID)
	assert.Empty(t, ranking[2].Name) // missing name stays empty

	limited := TopChefs(orders, names, 1)
	assert.Len(t, limited, 1)
}
