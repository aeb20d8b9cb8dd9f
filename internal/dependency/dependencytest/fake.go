// Package dependencytest provides an in-memory Repository fake for service
// tests. Reads serve from the exported fields, writes are recorded, and Err
// fails every call for error-path tests.
package dependencytest

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mealmarkt/ops-manager/internal/dependency"
	"github.com/mealmarkt/ops-manager/internal/entity"
	gerr "github.com/mealmarkt/ops-manager/internal/errors"
)

// StatusUpdate records one campaign status transition.
type StatusUpdate struct {
	CampaignID int
	Status     entity.CampaignStatus
	EmailsSent int
}

type FakeRepository struct {
	Orders        []entity.Order
	FirstOrders   map[int64]int64
	Addresses     []entity.DeliveryAddress
	Clients       []entity.Client
	Signups       []entity.Client
	Merchants     []entity.Merchant
	MerchantNames map[string]string
	Overrides     []entity.MerchantOverride

	Segments       map[int]*entity.SegmentFull
	SegmentClients map[int][]entity.Client
	Campaigns      map[int]*entity.Campaign
	Templates      map[int]*entity.EmailTemplate

	ManualTotal    decimal.Decimal
	RevenueEntries []entity.ManualRevenueEntry
	Outbox         []entity.SendEmailRequest

	UpsertedOrders    [][]entity.Order
	UpsertedAddresses [][]entity.DeliveryAddress
	UpsertedClients   [][]entity.Client
	UpsertedMerchants [][]entity.Merchant
	StatusUpdates     []StatusUpdate

	Err error
}

var _ dependency.Repository = (*FakeRepository)(nil)

func (f *FakeRepository) Order() dependency.Order       { return f }
func (f *FakeRepository) Address() dependency.Address   { return f }
func (f *FakeRepository) Client() dependency.Client     { return f }
func (f *FakeRepository) Merchant() dependency.Merchant { return f }
func (f *FakeRepository) Segment() dependency.Segment   { return f }
func (f *FakeRepository) Campaign() dependency.Campaign { return f }
func (f *FakeRepository) Revenue() dependency.Revenue   { return f }
func (f *FakeRepository) Mail() dependency.Mail         { return f }

func (f *FakeRepository) Tx(ctx context.Context, fn func(context.Context, dependency.Repository) error) error {
	if f.Err != nil {
		return f.Err
	}
	return fn(ctx, f)
}
func (f *FakeRepository) TxBegin(ctx context.Context) (dependency.Repository, error) {
	return f, f.Err
}
func (f *FakeRepository) TxCommit(ctx context.Context) error   { return f.Err }
func (f *FakeRepository) TxRollback(ctx context.Context) error { return f.Err }
func (f *FakeRepository) Now() time.Time                       { return time.Now() }
func (f *FakeRepository) InTx() bool                           { return false }
func (f *FakeRepository) Close()                               {}
func (f *FakeRepository) IsErrUniqueViolation(err error) bool  { return false }
func (f *FakeRepository) IsErrorRepeat(err error) bool         { return false }
func (f *FakeRepository) DB() dependency.DB                    { return nil }

// orders

func (f *FakeRepository) UpsertOrders(ctx context.Context, orders []entity.Order) error {
	if f.Err != nil {
		return f.Err
	}
	f.UpsertedOrders = append(f.UpsertedOrders, orders)
	return nil
}

func (f *FakeRepository) GetOrdersInRange(ctx context.Context, from, to int64) ([]entity.Order, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	out := make([]entity.Order, 0)
	for _, o := range f.Orders {
		if o.CreatedTimestamp >= from && o.CreatedTimestamp < to {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *FakeRepository) GetOrdersPaged(ctx context.Context, status *entity.OrderStatus, limit, offset int, of entity.OrderFactor) ([]entity.Order, int, error) {
	if f.Err != nil {
		return nil, 0, f.Err
	}
	return f.Orders, len(f.Orders), nil
}

func (f *FakeRepository) FirstOrderTimestamps(ctx context.Context, userIDs []int64) (map[int64]int64, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	out := make(map[int64]int64)
	for _, id := range userIDs {
		if ts, ok := f.FirstOrders[id]; ok {
			out[id] = ts
		}
	}
	return out, nil
}

// addresses

func (f *FakeRepository) UpsertAddresses(ctx context.Context, addrs []entity.DeliveryAddress) error {
	if f.Err != nil {
		return f.Err
	}
	f.UpsertedAddresses = append(f.UpsertedAddresses, addrs)
	return nil
}

func (f *FakeRepository) GetAddressesByIDs(ctx context.Context, ids []int64) ([]entity.DeliveryAddress, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]entity.DeliveryAddress, 0)
	for _, a := range f.Addresses {
		if _, ok := want[a.HyperzodAddressID]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// clients

func (f *FakeRepository) UpsertClients(ctx context.Context, clients []entity.Client) error {
	if f.Err != nil {
		return f.Err
	}
	f.UpsertedClients = append(f.UpsertedClients, clients)
	return nil
}

func (f *FakeRepository) GetClientsPaged(ctx context.Context, limit, offset int) ([]entity.Client, int, error) {
	if f.Err != nil {
		return nil, 0, f.Err
	}
	return f.Clients, len(f.Clients), nil
}

func (f *FakeRepository) GetClientByHyperzodID(ctx context.Context, hyperzodID int64) (*entity.Client, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	for i := range f.Clients {
		if f.Clients[i].HyperzodID == hyperzodID {
			return &f.Clients[i], nil
		}
	}
	return nil, gerr.ErrClientNotFound
}

func (f *FakeRepository) GetClientsByHyperzodIDs(ctx context.Context, ids []int64) ([]entity.Client, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]entity.Client, 0)
	for _, c := range f.Clients {
		if _, ok := want[c.HyperzodID]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *FakeRepository) GetClientsSignedUpBetween(ctx context.Context, from, to time.Time) ([]entity.Client, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Signups, nil
}

// merchants

func (f *FakeRepository) UpsertMerchants(ctx context.Context, merchants []entity.Merchant) error {
	if f.Err != nil {
		return f.Err
	}
	f.UpsertedMerchants = append(f.UpsertedMerchants, merchants)
	return nil
}

func (f *FakeRepository) GetAllMerchants(ctx context.Context) ([]entity.Merchant, error) {
	return f.Merchants, f.Err
}

func (f *FakeRepository) GetMerchantNames(ctx context.Context, merchantIDs []string) (map[string]string, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	out := make(map[string]string)
	for _, id := range merchantIDs {
		if name, ok := f.MerchantNames[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func (f *FakeRepository) AddMerchantOverride(ctx context.Context, o *entity.MerchantOverride) (int, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	o.ID = len(f.Overrides) + 1
	f.Overrides = append(f.Overrides, *o)
	return o.ID, nil
}

func (f *FakeRepository) ListMerchantOverrides(ctx context.Context) ([]entity.MerchantOverride, error) {
	return f.Overrides, f.Err
}

func (f *FakeRepository) DeleteMerchantOverride(ctx context.Context, id int) error {
	return f.Err
}

// segments

func (f *FakeRepository) AddSegment(ctx context.Context, s *entity.SegmentFull) (int, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	if f.Segments == nil {
		f.Segments = make(map[int]*entity.SegmentFull)
	}
	id := len(f.Segments) + 1
	s.ID = id
	f.Segments[id] = s
	return id, nil
}

func (f *FakeRepository) UpdateSegment(ctx context.Context, id int, s *entity.SegmentFull) error {
	if f.Err != nil {
		return f.Err
	}
	if _, ok := f.Segments[id]; !ok {
		return gerr.ErrSegmentNotFound
	}
	s.ID = id
	f.Segments[id] = s
	return nil
}

func (f *FakeRepository) GetSegmentByID(ctx context.Context, id int) (*entity.SegmentFull, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	s, ok := f.Segments[id]
	if !ok {
		return nil, gerr.ErrSegmentNotFound
	}
	return s, nil
}

func (f *FakeRepository) ListSegments(ctx context.Context) ([]entity.Segment, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	out := make([]entity.Segment, 0, len(f.Segments))
	for _, s := range f.Segments {
		out = append(out, s.Segment)
	}
	return out, nil
}

func (f *FakeRepository) DeleteSegment(ctx context.Context, id int) error {
	if f.Err != nil {
		return f.Err
	}
	delete(f.Segments, id)
	return nil
}

func (f *FakeRepository) SetStaticMembers(ctx context.Context, segmentID int, clientIDs []int64) error {
	return f.Err
}

func (f *FakeRepository) ResolveSegmentClients(ctx context.Context, s *entity.SegmentFull) ([]entity.Client, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.SegmentClients[s.ID], nil
}

func (f *FakeRepository) RefreshSegmentCount(ctx context.Context, id int) (int, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	s, ok := f.Segments[id]
	if !ok {
		return 0, gerr.ErrSegmentNotFound
	}
	s.ClientCount = len(f.SegmentClients[id])
	return s.ClientCount, nil
}

// campaigns

func (f *FakeRepository) AddCampaign(ctx context.Context, c *entity.Campaign) (int, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	if f.Campaigns == nil {
		f.Campaigns = make(map[int]*entity.Campaign)
	}
	id := len(f.Campaigns) + 1
	c.ID = id
	c.Status = entity.CampaignStatusDraft
	f.Campaigns[id] = c
	return id, nil
}

func (f *FakeRepository) GetCampaignByID(ctx context.Context, id int) (*entity.Campaign, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	c, ok := f.Campaigns[id]
	if !ok {
		return nil, gerr.ErrCampaignNotFound
	}
	return c, nil
}

func (f *FakeRepository) ListCampaigns(ctx context.Context) ([]entity.Campaign, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	out := make([]entity.Campaign, 0, len(f.Campaigns))
	for _, c := range f.Campaigns {
		out = append(out, *c)
	}
	return out, nil
}

func (f *FakeRepository) SetCampaignStatus(ctx context.Context, id int, status entity.CampaignStatus, emailsSent int) error {
	if f.Err != nil {
		return f.Err
	}
	f.StatusUpdates = append(f.StatusUpdates, StatusUpdate{
		CampaignID: id,
		Status:     status,
		EmailsSent: emailsSent,
	})
	if c, ok := f.Campaigns[id]; ok {
		c.Status = status
		c.EmailsSent = emailsSent
	}
	return nil
}

func (f *FakeRepository) AddTemplate(ctx context.Context, t *entity.EmailTemplate) (int, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	if f.Templates == nil {
		f.Templates = make(map[int]*entity.EmailTemplate)
	}
	id := len(f.Templates) + 1
	t.ID = id
	f.Templates[id] = t
	return id, nil
}

func (f *FakeRepository) GetTemplateByID(ctx context.Context, id int) (*entity.EmailTemplate, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	t, ok := f.Templates[id]
	if !ok {
		return nil, gerr.ErrTemplateNotFound
	}
	return t, nil
}

func (f *FakeRepository) ListTemplates(ctx context.Context) ([]entity.EmailTemplate, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	out := make([]entity.EmailTemplate, 0, len(f.Templates))
	for _, t := range f.Templates {
		out = append(out, *t)
	}
	return out, nil
}

func (f *FakeRepository) DeleteTemplate(ctx context.Context, id int) error {
	if f.Err != nil {
		return f.Err
	}
	delete(f.Templates, id)
	return nil
}

// revenue

func (f *FakeRepository) AddManualRevenueEntry(ctx context.Context, e *entity.ManualRevenueEntry) (int, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	e.ID = len(f.RevenueEntries) + 1
	f.RevenueEntries = append(f.RevenueEntries, *e)
	return e.ID, nil
}

func (f *FakeRepository) ListManualRevenueEntries(ctx context.Context, from, to time.Time) ([]entity.ManualRevenueEntry, error) {
	return f.RevenueEntries, f.Err
}

func (f *FakeRepository) DeleteManualRevenueEntry(ctx context.Context, id int) error {
	return f.Err
}

func (f *FakeRepository) SumManualRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	if f.Err != nil {
		return decimal.Zero, f.Err
	}
	return f.ManualTotal, nil
}

// mail outbox

func (f *FakeRepository) AddMail(ctx context.Context, ser *entity.SendEmailRequest) (int, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	ser.ID = len(f.Outbox) + 1
	f.Outbox = append(f.Outbox, *ser)
	return ser.ID, nil
}

func (f *FakeRepository) GetAllUnsent(ctx context.Context, withError bool) ([]entity.SendEmailRequest, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	out := make([]entity.SendEmailRequest, 0)
	for _, m := range f.Outbox {
		if !m.Sent {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *FakeRepository) UpdateSent(ctx context.Context, id int) error {
	if f.Err != nil {
		return f.Err
	}
	for i := range f.Outbox {
		if f.Outbox[i].ID == id {
			f.Outbox[i].Sent = true
		}
	}
	return nil
}

func (f *FakeRepository) AddError(ctx context.Context, id int, errMsg string) error {
	return f.Err
}
