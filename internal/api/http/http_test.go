package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealmarkt/ops-manager/internal/analytics"
	"github.com/mealmarkt/ops-manager/internal/campaign"
	"github.com/mealmarkt/ops-manager/internal/dependency"
	"github.com/mealmarkt/ops-manager/internal/dependency/dependencytest"
	"github.com/mealmarkt/ops-manager/internal/entity"
	syncsrv "github.com/mealmarkt/ops-manager/internal/sync"
)

type noopMailer struct{}

func (noopMailer) Send(ctx context.Context, msg *entity.Email) error { return nil }
func (noopMailer) SendWithOutbox(ctx context.Context, rep dependency.Repository, msg *entity.Email) error {
	return nil
}
func (noopMailer) Start(ctx context.Context) error { return nil }
func (noopMailer) Stop() error                     { return nil }

type noopCommerce struct{}

func (noopCommerce) FetchMerchants(ctx context.Context) ([]entity.Merchant, error) { return nil, nil }
func (noopCommerce) FetchCustomers(ctx context.Context) ([]entity.Client, error)   { return nil, nil }
func (noopCommerce) FetchOrders(ctx context.Context) ([]entity.Order, []entity.DeliveryAddress, error) {
	return nil, nil, nil
}

func testServer(t *testing.T, rep *dependencytest.FakeRepository) *Server {
	t.Helper()
	s, err := New(&Config{
		Port:           "8081",
		JWTSecret:      "test-secret",
		MasterPassword: "hunter2",
	}, rep,
		analytics.New(&analytics.Config{}, rep),
		campaign.New(nil, rep, noopMailer{}),
		syncsrv.New(rep, noopCommerce{}),
	)
	require.NoError(t, err)
	return s
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"password":"hunter2"}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.NotEmpty(t, body.Token)
	return body.Token
}

func TestLogin(t *testing.T) {
	h := testServer(t, &dependencytest.FakeRepository{}).router()
	login(t, h)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"password":"wrong"}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := testServer(t, &dependencytest.FakeRepository{}).router()

	req := httptest.NewRequest(http.MethodGet, "/api/merchants", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func authedRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	token := login(t, h)
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestListMerchants(t *testing.T) {
	rep := &dependencytest.FakeRepository{
		Merchants: []entity.Merchant{
			{
				MerchantID:        "m1",
				Name:              "Chef One",
				City:              sql.NullString{String: "Amsterdam", Valid: true},
				Status:            true,
				IsAcceptingOrders: true,
				IsOpen:            true,
			},
			{MerchantID: "m2", Name: "Chef Two", City: sql.NullString{String: "Rotterdam", Valid: true}},
		},
		Overrides: []entity.MerchantOverride{
			{MerchantID: "m2", Field: "name", Value: "Renamed Chef"},
		},
	}
	h := testServer(t, rep).router()

	w := authedRequest(t, h, http.MethodGet, "/api/merchants", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success   bool                 `json:"success"`
		Merchants []merchantView       `json:"merchants"`
		Stats     entity.MerchantStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Success)
	require.Len(t, body.Merchants, 2)

	assert.True(t, body.Merchants[0].Online)
	assert.Equal(t, "Renamed Chef", body.Merchants[1].Name) // override applied

	assert.Equal(t, 2, body.Stats.Total)
	assert.Equal(t, 1, body.Stats.Published)
	assert.Equal(t, 1, body.Stats.Online)
	assert.Equal(t, 1, body.Stats.ByCity["amsterdam"])
}

func TestMerchantMap(t *testing.T) {
	rep := &dependencytest.FakeRepository{
		Merchants: []entity.Merchant{
			{MerchantID: "m1", City: sql.NullString{String: "Amsterdam", Valid: true}, IsAcceptingOrders: true, IsOpen: true},
			{MerchantID: "m2", City: sql.NullString{String: "amsterdam ", Valid: true}},
			{MerchantID: "m3", City: sql.NullString{String: "Atlantis", Valid: true}}, // no coordinates
		},
	}
	h := testServer(t, rep).router()

	w := authedRequest(t, h, http.MethodGet, "/api/merchants/map", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Points []entity.MerchantMapPoint `json:"points"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Points, 1)
	assert.Equal(t, "amsterdam", body.Points[0].City)
	assert.Equal(t, 2, body.Points[0].Merchants)
	assert.Equal(t, 1, body.Points[0].Online)
}

func TestSegmentCRUD(t *testing.T) {
	rep := &dependencytest.FakeRepository{}
	h := testServer(t, rep).router()

	w := authedRequest(t, h, http.MethodPost, "/api/segments",
		`{"name":"regulars","kind":"dynamic","rules":[{"field":"total_orders","operator":"greater_than","value":"3"}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = authedRequest(t, h, http.MethodGet, "/api/segments/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "regulars")

	w = authedRequest(t, h, http.MethodGet, "/api/segments/99", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// static segments reject rules
	w = authedRequest(t, h, http.MethodPost, "/api/segments",
		`{"name":"vips","kind":"static","rules":[{"field":"name","operator":"equals","value":"x"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendCampaign_NotDraftConflict(t *testing.T) {
	rep := &dependencytest.FakeRepository{
		Segments: map[int]*entity.SegmentFull{
			1: {Segment: entity.Segment{ID: 1, Kind: entity.SegmentKindDynamic}},
		},
		Templates: map[int]*entity.EmailTemplate{1: {ID: 1, HTML: "<p>hi</p>"}},
		Campaigns: map[int]*entity.Campaign{
			1: {ID: 1, SegmentID: 1, TemplateID: 1, Status: entity.CampaignStatusSent},
		},
	}
	h := testServer(t, rep).router()

	w := authedRequest(t, h, http.MethodPost, "/api/campaigns/1/send", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetKPIs_BadPeriod(t *testing.T) {
	h := testServer(t, &dependencytest.FakeRepository{}).router()

	w := authedRequest(t, h, http.MethodGet,
		"/api/analytics/kpis?preset=custom&from=2024-06-10&to=2024-06-01", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportKPIs_CSVHeaders(t *testing.T) {
	h := testServer(t, &dependencytest.FakeRepository{}).router()

	w := authedRequest(t, h, http.MethodGet, "/api/analytics/kpis/export?preset=this_week", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "metric,value")
}
