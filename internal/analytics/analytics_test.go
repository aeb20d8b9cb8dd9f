package analytics

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealmarkt/ops-manager/internal/dependency/dependencytest"
	"github.com/mealmarkt/ops-manager/internal/entity"
)

func tsOrder(user int64, merchant string, status entity.OrderStatus, amount int64, at time.Time, addressID int64) entity.Order {
	o := order(user, merchant, status, amount)
	o.CreatedTimestamp = at.Unix()
	if addressID > 0 {
		o.DeliveryAddressID = sql.NullInt64{Int64: addressID, Valid: true}
	}
	return o
}

func TestGetKPIs(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 7, 23, 59, 59, 0, time.UTC)
	inWindow := from.Add(48 * time.Hour)

	rep := &dependencytest.FakeRepository{
		Orders: []entity.Order{
			tsOrder(1, "m1", entity.OrderStatusDelivered, 20, inWindow, 1),
			tsOrder(2, "m1", entity.OrderStatusCancelled, 15, inWindow, 1),
			tsOrder(3, "m2", entity.OrderStatusPreparing, 30, inWindow, 2),
			// outside the window, must not surface anywhere
			tsOrder(4, "m2", entity.OrderStatusDelivered, 99, from.Add(-time.Hour), 2),
		},
		FirstOrders: map[int64]int64{
			1: inWindow.Unix(),              // first-ever order inside window
			2: from.Add(-240 * time.Hour).Unix(), // ordered long before
			3: inWindow.Unix(),
		},
		Addresses: []entity.DeliveryAddress{
			{HyperzodAddressID: 1, City: sql.NullString{String: "Amsterdam", Valid: true}},
			{HyperzodAddressID: 2, City: sql.NullString{String: "Rotterdam", Valid: true}},
		},
		MerchantNames: map[string]string{"m1": "Chef One", "m2": "Chef Two"},
		ManualTotal:   decimal.NewFromInt(25),
	}

	svc := New(&Config{
		WeeklyMarketingSpend: 100,
		PinnedCities:         []string{"amsterdam", "rotterdam"},
	}, rep)

	report, err := svc.getKPIs(context.Background(), entity.TimeRange{From: from, To: to}, "")
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalOrders)
	assert.Equal(t, 2, report.CompletedOrders) // delivered + preparing
	assert.Equal(t, 0, report.PendingOrders)
	assert.Equal(t, 1, report.CancelledOrders)
	assert.True(t, report.OrderRevenue.Equal(decimal.NewFromInt(50)))
	assert.True(t, report.ManualRevenue.Equal(decimal.NewFromInt(25)))
	assert.True(t, report.TotalRevenue.Equal(decimal.NewFromInt(75)))

	// users 1 and 3 first-ordered inside the window
	assert.Equal(t, 2, report.NewCustomers)
	assert.Equal(t, 2, report.ActiveMerchants)

	require.NotNil(t, report.CACPerCustomer)
	assert.True(t, report.CACPerCustomer.Equal(decimal.NewFromInt(50)))

	require.NotNil(t, report.ContributionMarginPerOrder)
	// 75 * 0.12 / 2
	assert.True(t, report.ContributionMarginPerOrder.Equal(decimal.NewFromFloat(4.5)))

	require.Len(t, report.PinnedCityOrders, 2)
	assert.Equal(t, 1, report.PinnedCityOrders[0].CompletedOrders) // amsterdam
	assert.Equal(t, 1, report.PinnedCityOrders[1].CompletedOrders) // rotterdam

	require.NotEmpty(t, report.TopChefs)
	assert.Equal(t, "m2", report.TopChefs[0].MerchantID)
	assert.Equal(t, "Chef Two", report.TopChefs[0].Name)
}

func TestGetKPIs_CityScoped(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 7, 23, 59, 59, 0, time.UTC)
	inWindow := from.Add(time.Hour)

	rep := &dependencytest.FakeRepository{
		Orders: []entity.Order{
			tsOrder(1, "m1", entity.OrderStatusDelivered, 20, inWindow, 1),
			tsOrder(2, "m2", entity.OrderStatusDelivered, 30, inWindow, 2),
		},
		Addresses: []entity.DeliveryAddress{
			{HyperzodAddressID: 1, City: sql.NullString{String: "Amsterdam", Valid: true}},
			{HyperzodAddressID: 2, City: sql.NullString{String: "Rotterdam", Valid: true}},
		},
		FirstOrders: map[int64]int64{1: inWindow.Unix(), 2: inWindow.Unix()},
		ManualTotal: decimal.NewFromInt(1000),
	}
	svc := New(&Config{}, rep)

	report, err := svc.getKPIs(context.Background(), entity.TimeRange{From: from, To: to}, "Amsterdam")
	require.NoError(t, err)

	assert.Equal(t, 1, report.TotalOrders)
	assert.True(t, report.OrderRevenue.Equal(decimal.NewFromInt(20)))
	// manual revenue has no city, so a scoped report excludes it
	assert.True(t, report.ManualRevenue.IsZero())
	assert.True(t, report.TotalRevenue.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, 1, report.NewCustomers)
}

func TestGetKPIs_EmptyPeriod(t *testing.T) {
	rep := &dependencytest.FakeRepository{}
	svc := New(&Config{}, rep)

	report, err := svc.getKPIs(context.Background(), entity.TimeRange{
		From: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 6, 7, 23, 59, 59, 0, time.UTC),
	}, "")
	require.NoError(t, err)

	assert.Equal(t, 0, report.TotalOrders)
	assert.True(t, report.OrderRevenue.IsZero())
	assert.Equal(t, 0.0, report.ActivationRate)
	assert.Equal(t, 0.0, report.RepeatRate)
	assert.Nil(t, report.CACPerCustomer)
	assert.Nil(t, report.ContributionMarginPerOrder)
}
