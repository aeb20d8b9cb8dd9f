package dependency

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/mealmarkt/ops-manager/internal/entity"
)

type (
	Order interface {
		// UpsertOrders inserts or updates orders keyed by their stable
		// external order_id. Safe to re-run with identical data.
		UpsertOrders(ctx context.Context, orders []entity.Order) error
		// GetOrdersInRange returns every order with created_timestamp in
		// [from, to), paging internally until exhaustion. Unfiltered by
		// status; status filtering is the caller's job per metric.
		GetOrdersInRange(ctx context.Context, from, to int64) ([]entity.Order, error)
		// GetOrdersPaged returns a dashboard page of orders, newest first
		// unless asked otherwise, plus the total count.
		GetOrdersPaged(ctx context.Context, status *entity.OrderStatus, limit, offset int, of entity.OrderFactor) ([]entity.Order, int, error)
		// FirstOrderTimestamps returns the globally earliest
		// created_timestamp per user id, for the given users.
		FirstOrderTimestamps(ctx context.Context, userIDs []int64) (map[int64]int64, error)
	}

	Address interface {
		UpsertAddresses(ctx context.Context, addrs []entity.DeliveryAddress) error
		// GetAddressesByIDs fetches addresses by external id, batching the
		// IN-list internally to respect query-parameter limits.
		GetAddressesByIDs(ctx context.Context, ids []int64) ([]entity.DeliveryAddress, error)
	}

	Client interface {
		UpsertClients(ctx context.Context, clients []entity.Client) error
		GetClientsPaged(ctx context.Context, limit, offset int) ([]entity.Client, int, error)
		GetClientByHyperzodID(ctx context.Context, hyperzodID int64) (*entity.Client, error)
		GetClientsByHyperzodIDs(ctx context.Context, ids []int64) ([]entity.Client, error)
		// GetClientsSignedUpBetween returns clients whose signup falls in
		// [from, to).
		GetClientsSignedUpBetween(ctx context.Context, from, to time.Time) ([]entity.Client, error)
	}

	Merchant interface {
		UpsertMerchants(ctx context.Context, merchants []entity.Merchant) error
		GetAllMerchants(ctx context.Context) ([]entity.Merchant, error)
		GetMerchantNames(ctx context.Context, merchantIDs []string) (map[string]string, error)
		AddMerchantOverride(ctx context.Context, o *entity.MerchantOverride) (int, error)
		ListMerchantOverrides(ctx context.Context) ([]entity.MerchantOverride, error)
		DeleteMerchantOverride(ctx context.Context, id int) error
	}

	Segment interface {
		AddSegment(ctx context.Context, s *entity.SegmentFull) (int, error)
		UpdateSegment(ctx context.Context, id int, s *entity.SegmentFull) error
		GetSegmentByID(ctx context.Context, id int) (*entity.SegmentFull, error)
		ListSegments(ctx context.Context) ([]entity.Segment, error)
		DeleteSegment(ctx context.Context, id int) error
		SetStaticMembers(ctx context.Context, segmentID int, clientIDs []int64) error
		// ResolveSegmentClients evaluates the segment against the clients
		// table: the stored membership list for static segments, the ANDed
		// rule set for dynamic ones.
		ResolveSegmentClients(ctx context.Context, s *entity.SegmentFull) ([]entity.Client, error)
		// RefreshSegmentCount recomputes and caches client_count.
		RefreshSegmentCount(ctx context.Context, id int) (int, error)
	}

	Campaign interface {
		AddCampaign(ctx context.Context, c *entity.Campaign) (int, error)
		GetCampaignByID(ctx context.Context, id int) (*entity.Campaign, error)
		ListCampaigns(ctx context.Context) ([]entity.Campaign, error)
		SetCampaignStatus(ctx context.Context, id int, status entity.CampaignStatus, emailsSent int) error
		AddTemplate(ctx context.Context, t *entity.EmailTemplate) (int, error)
		GetTemplateByID(ctx context.Context, id int) (*entity.EmailTemplate, error)
		ListTemplates(ctx context.Context) ([]entity.EmailTemplate, error)
		DeleteTemplate(ctx context.Context, id int) error
	}

	Revenue interface {
		AddManualRevenueEntry(ctx context.Context, e *entity.ManualRevenueEntry) (int, error)
		ListManualRevenueEntries(ctx context.Context, from, to time.Time) ([]entity.ManualRevenueEntry, error)
		DeleteManualRevenueEntry(ctx context.Context, id int) error
		// SumManualRevenue totals entries whose calendar date falls within
		// the range (dates, not timestamps).
		SumManualRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	}

	Mail interface {
		AddMail(ctx context.Context, ser *entity.SendEmailRequest) (int, error)
		GetAllUnsent(ctx context.Context, withError bool) ([]entity.SendEmailRequest, error)
		UpdateSent(ctx context.Context, id int) error
		AddError(ctx context.Context, id int, errMsg string) error
	}

	Repository interface {
		Order() Order
		Address() Address
		Client() Client
		Merchant() Merchant
		Segment() Segment
		Campaign() Campaign
		Revenue() Revenue
		Mail() Mail
		Tx(ctx context.Context, f func(context.Context, Repository) error) error
		TxBegin(ctx context.Context) (Repository, error)
		TxCommit(ctx context.Context) error
		TxRollback(ctx context.Context) error
		Now() time.Time
		InTx() bool
		Close()
		IsErrUniqueViolation(err error) bool
		IsErrorRepeat(err error) bool
		DB() DB
	}

	// DB represents database interface.
	DB interface {
		BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

		// sqlx methods
		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
		QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
		QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	}

	// Mailer delivers one message per provider call and runs the outbox
	// retry worker.
	Mailer interface {
		Send(ctx context.Context, msg *entity.Email) error
		SendWithOutbox(ctx context.Context, rep Repository, msg *entity.Email) error
		Start(ctx context.Context) error
		Stop() error
	}

	// Commerce is the paginated upstream commerce API.
	Commerce interface {
		FetchMerchants(ctx context.Context) ([]entity.Merchant, error)
		FetchCustomers(ctx context.Context) ([]entity.Client, error)
		FetchOrders(ctx context.Context) ([]entity.Order, []entity.DeliveryAddress, error)
	}
)
