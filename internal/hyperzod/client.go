// Package hyperzod is the client for the external commerce API the
// marketplace runs on. This system only reads from it; the mirrored data
// lands in the local store via the sync jobs.
package hyperzod

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mealmarkt/ops-manager/internal/entity"
)

type Config struct {
	BaseURL  string        `mapstructure:"base_url"`
	APIKey   string        `mapstructure:"api_key"`
	TenantID string        `mapstructure:"tenant_id"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type Client struct {
	cli *resty.Client
}

// New validates credentials and builds the HTTP client. Missing
// credentials fail here, at process start, never mid-sync.
func New(c *Config) (*Client, error) {
	if c.BaseURL == "" || c.APIKey == "" || c.TenantID == "" {
		return nil, fmt.Errorf("incomplete hyperzod config: base_url, api_key and tenant_id are required")
	}
	timeout := c.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	cli := resty.New()
	cli.SetBaseURL(c.BaseURL)
	cli.SetTimeout(timeout)
	cli.SetHeader("X-Api-Key", c.APIKey)
	cli.SetHeader("X-Tenant", c.TenantID)

	return &Client{cli: cli}, nil
}

// fetchAllPages walks a paginated endpoint until the reported current page
// reaches the reported last page. A non-2xx response is fatal to the walk,
// surfaced with status code and body, no automatic retry.
func fetchAllPages[T any](ctx context.Context, cli *resty.Client, path string) ([]T, error) {
	var all []T
	for p := 1; ; p++ {
		var env page[T]
		resp, err := cli.R().
			SetContext(ctx).
			SetQueryParam("page", strconv.Itoa(p)).
			SetResult(&env).
			Get(path)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s page %d: %w", path, p, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("failed to fetch %s page %d: status %d: %s", path, p, resp.StatusCode(), resp.String())
		}
		all = append(all, env.Data...)
		if env.CurrentPage >= env.LastPage {
			return all, nil
		}
	}
}

func (c *Client) FetchMerchants(ctx context.Context) ([]entity.Merchant, error) {
	raw, err := fetchAllPages[rawMerchant](ctx, c.cli, "/api/v1/merchants")
	if err != nil {
		return nil, err
	}
	merchants := make([]entity.Merchant, 0, len(raw))
	for i := range raw {
		m, err := normalizeMerchant(&raw[i])
		if err != nil {
			return nil, fmt.Errorf("failed to normalize merchant: %w", err)
		}
		merchants = append(merchants, m)
	}
	return merchants, nil
}

func (c *Client) FetchCustomers(ctx context.Context) ([]entity.Client, error) {
	raw, err := fetchAllPages[rawCustomer](ctx, c.cli, "/api/v1/customers")
	if err != nil {
		return nil, err
	}
	customers := make([]entity.Client, 0, len(raw))
	for i := range raw {
		cl, err := normalizeCustomer(&raw[i])
		if err != nil {
			return nil, fmt.Errorf("failed to normalize customer: %w", err)
		}
		customers = append(customers, cl)
	}
	return customers, nil
}

// FetchOrders returns orders together with the delivery addresses embedded
// in them, deduplicated by external address id, so callers can upsert
// addresses before orders.
func (c *Client) FetchOrders(ctx context.Context) ([]entity.Order, []entity.DeliveryAddress, error) {
	raw, err := fetchAllPages[rawOrder](ctx, c.cli, "/api/v1/orders")
	if err != nil {
		return nil, nil, err
	}

	orders := make([]entity.Order, 0, len(raw))
	addrSeen := make(map[int64]struct{})
	var addrs []entity.DeliveryAddress
	for i := range raw {
		o, addr, err := normalizeOrder(&raw[i])
		if err != nil {
			return nil, nil, fmt.Errorf("failed to normalize order: %w", err)
		}
		orders = append(orders, o)
		if addr != nil {
			if _, ok := addrSeen[addr.HyperzodAddressID]; !ok {
				addrSeen[addr.HyperzodAddressID] = struct{}{}
				addrs = append(addrs, *addr)
			}
		}
	}
	return orders, addrs, nil
}
