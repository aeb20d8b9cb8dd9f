package hyperzod

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cli, err := New(&Config{
		BaseURL:  server.URL,
		APIKey:   "test-key",
		TenantID: "tenant-1",
		Timeout:  time.Second,
	})
	require.NoError(t, err)
	return cli
}

func TestNew_IncompleteConfig(t *testing.T) {
	_, err := New(&Config{BaseURL: "http://localhost"})
	assert.Error(t, err)

	_, err = New(&Config{BaseURL: "http://localhost", APIKey: "k", TenantID: "t"})
	assert.NoError(t, err)
}

func TestFetchMerchants_WalksAllPages(t *testing.T) {
	var pagesServed []string
	cli := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "tenant-1", r.Header.Get("X-Tenant"))

		page := r.URL.Query().Get("page")
		pagesServed = append(pagesServed, page)
		w.Header().Set("Content-Type", "application/json")
		switch page {
		case "1":
			fmt.Fprint(w, `{"data":[{"_id":"m1","name":"Chef One","city":"Amsterdam","status":true,"is_accepting_orders":true,"is_open":true}],"current_page":1,"last_page":2}`)
		case "2":
			fmt.Fprint(w, `{"data":[{"merchant_id":"m2","name":"Chef Two","rating":4.5}],"current_page":2,"last_page":2}`)
		}
	})

	merchants, err := cli.FetchMerchants(context.Background())
	require.NoError(t, err)
	require.Len(t, merchants, 2)
	assert.Equal(t, []string{"1", "2"}, pagesServed)

	assert.Equal(t, "m1", merchants[0].MerchantID)
	assert.True(t, merchants[0].Online())
	assert.Equal(t, "Amsterdam", merchants[0].City.String)

	// merchant_id wins over _id / id
	assert.Equal(t, "m2", merchants[1].MerchantID)
	assert.Equal(t, 4.5, merchants[1].Rating.Float64)
}

func TestFetch_NonSuccessIsFatal(t *testing.T) {
	cli := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("invalid api key"))
	})

	_, err := cli.FetchMerchants(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestFetchCustomers(t *testing.T) {
	cli := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":[
			{"hyperzod_id":11,"name":"Anna","email":"anna@example.com","total_spend":"120.50","created_at":"2024-05-01 10:00:00"},
			{"id":12,"name":"Bob","unsubscribed":true}
		],"current_page":1,"last_page":1}`)
	})

	customers, err := cli.FetchCustomers(context.Background())
	require.NoError(t, err)
	require.Len(t, customers, 2)

	assert.Equal(t, int64(11), customers[0].HyperzodID)
	assert.Equal(t, "anna@example.com", customers[0].Email.String)
	assert.Equal(t, "120.5", customers[0].TotalSpend.String())
	assert.True(t, customers[0].HyperzodCreatedAt.Valid)

	assert.Equal(t, int64(12), customers[1].HyperzodID)
	assert.True(t, customers[1].Unsubscribed)
	assert.False(t, customers[1].Email.Valid)
}

func TestFetchOrders_DedupesEmbeddedAddresses(t *testing.T) {
	cli := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":[
			{"order_id":100,"user_id":11,"merchant_id":"m1","order_status":5,"order_amount":"20.00","created_timestamp":1717200000,
			 "delivery_address":{"id":7,"city":"Amsterdam"}},
			{"order_id":101,"user_id":11,"merchant_id":"m1","order_status":6,"order_amount":"15.00","created_timestamp":1717203600,
			 "delivery_address":{"id":7,"city":"Amsterdam"}},
			{"order_id":102,"user_id":12,"merchant_id":"m2","order_status":0,"created_timestamp":1717207200}
		],"current_page":1,"last_page":1}`)
	})

	orders, addrs, err := cli.FetchOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 3)
	require.Len(t, addrs, 1) // shared address appears once

	assert.Equal(t, int64(100), orders[0].OrderID)
	assert.Equal(t, int64(7), orders[0].DeliveryAddressID.Int64)
	assert.Equal(t, "20", orders[0].Amount.String())
	assert.False(t, orders[2].DeliveryAddressID.Valid)
	assert.True(t, orders[2].Amount.IsZero())

	assert.Equal(t, int64(7), addrs[0].HyperzodAddressID)
	assert.Equal(t, "Amsterdam", addrs[0].City.String)
}

func TestNormalize_MissingIdentifiers(t *testing.T) {
	_, err := normalizeMerchant(&rawMerchant{Name: "nameless"})
	assert.Error(t, err)

	_, err = normalizeCustomer(&rawCustomer{Name: "nameless"})
	assert.Error(t, err)

	_, _, err = normalizeOrder(&rawOrder{MerchantID: "m1"})
	assert.Error(t, err)
}

func TestParseUpstreamTime(t *testing.T) {
	assert.False(t, parseUpstreamTime("").Valid)
	assert.False(t, parseUpstreamTime("not a time").Valid)

	rfc := parseUpstreamTime("2024-05-01T10:00:00Z")
	require.True(t, rfc.Valid)
	assert.Equal(t, 2024, rfc.Time.Year())

	legacy := parseUpstreamTime("2024-05-01 10:00:00")
	require.True(t, legacy.Valid)
	assert.True(t, strings.HasPrefix(legacy.Time.Format(time.RFC3339), "2024-05-01T10"))
}
