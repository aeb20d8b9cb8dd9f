package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mealmarkt/ops-manager/internal/entity"
	gerr "github.com/mealmarkt/ops-manager/internal/errors"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

func pageParams(r *http.Request) (limit, offset int) {
	limit = defaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

func urlID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	var status *entity.OrderStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < int(entity.OrderStatusPending) || v > int(entity.OrderStatusCancelled) {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		st := entity.OrderStatus(v)
		status = &st
	}

	of := entity.Descending
	if r.URL.Query().Get("order") == "asc" {
		of = entity.Ascending
	}

	orders, total, err := s.rep.Order().GetOrdersPaged(r.Context(), status, limit, offset, of)
	if err != nil {
		slog.Default().ErrorContext(r.Context(), "can't list orders",
			slog.String("err", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "can't list orders")
		return
	}
	writeSuccess(w, map[string]any{
		"orders": orders,
		"total":  total,
	})
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	clients, total, err := s.rep.Client().GetClientsPaged(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "can't list clients")
		return
	}
	writeSuccess(w, map[string]any{
		"clients": clients,
		"total":   total,
	})
}

type segmentRequest struct {
	Name        string               `json:"name" valid:"required"`
	Kind        entity.SegmentKind   `json:"kind" valid:"required"`
	Description string               `json:"description"`
	Rules       []entity.SegmentRule `json:"rules"`
}

func (req *segmentRequest) toEntity() (*entity.SegmentFull, error) {
	if req.Kind != entity.SegmentKindDynamic && req.Kind != entity.SegmentKindStatic {
		return nil, errors.New("kind must be dynamic or static")
	}
	if req.Kind == entity.SegmentKindStatic && len(req.Rules) > 0 {
		return nil, errors.New("static segments don't take rules")
	}
	sf := &entity.SegmentFull{
		Segment: entity.Segment{
			Name: req.Name,
			Kind: req.Kind,
		},
		Rules: req.Rules,
	}
	if req.Description != "" {
		sf.Description.String = req.Description
		sf.Description.Valid = true
	}
	return sf, nil
}

func (s *Server) handleListSegments(w http.ResponseWriter, r *http.Request) {
	segments, err := s.rep.Segment().ListSegments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "can't list segments")
		return
	}
	writeSuccess(w, map[string]any{"segments": segments})
}

func (s *Server) handleAddSegment(w http.ResponseWriter, r *http.Request) {
	var req segmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, err := govalidator.ValidateStruct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sf, err := req.toEntity()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.rep.Segment().AddSegment(r.Context(), sf)
	if err != nil {
		if errors.Is(err, gerr.ErrUnknownRuleField) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "can't add segment")
		return
	}
	writeSuccess(w, map[string]any{"id": id})
}

func (s *Server) handleGetSegment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	sf, err := s.rep.Segment().GetSegmentByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, gerr.ErrSegmentNotFound) {
			writeError(w, http.StatusNotFound, "segment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "can't get segment")
		return
	}
	writeSuccess(w, map[string]any{
		"segment": sf.Segment,
		"rules":   sf.Rules,
	})
}

func (s *Server) handleUpdateSegment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var req segmentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, err := govalidator.ValidateStruct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sf, err := req.toEntity()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.rep.Segment().UpdateSegment(r.Context(), id, sf); err != nil {
		switch {
		case errors.Is(err, gerr.ErrSegmentNotFound):
			writeError(w, http.StatusNotFound, "segment not found")
		case errors.Is(err, gerr.ErrUnknownRuleField):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "can't update segment")
		}
		return
	}
	writeSuccess(w, nil)
}

func (s *Server) handleDeleteSegment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	if err := s.rep.Segment().DeleteSegment(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "can't delete segment")
		return
	}
	writeSuccess(w, nil)
}

func (s *Server) handleRefreshSegmentCount(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	count, err := s.rep.Segment().RefreshSegmentCount(r.Context(), id)
	if err != nil {
		if errors.Is(err, gerr.ErrSegmentNotFound) {
			writeError(w, http.StatusNotFound, "segment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "can't refresh segment count")
		return
	}
	writeSuccess(w, map[string]any{"client_count": count})
}

type segmentMembersRequest struct {
	ClientIDs []int64 `json:"client_ids"`
}

func (s *Server) handleSetSegmentMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	var req segmentMembersRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sf, err := s.rep.Segment().GetSegmentByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, gerr.ErrSegmentNotFound) {
			writeError(w, http.StatusNotFound, "segment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "can't get segment")
		return
	}
	if sf.Kind != entity.SegmentKindStatic {
		writeError(w, http.StatusBadRequest, "members can only be set on static segments")
		return
	}
	if err := s.rep.Segment().SetStaticMembers(r.Context(), id, req.ClientIDs); err != nil {
		writeError(w, http.StatusInternalServerError, "can't set segment members")
		return
	}
	writeSuccess(w, map[string]any{"client_count": len(req.ClientIDs)})
}

type revenueEntryRequest struct {
	Date        string          `json:"date" valid:"required"`
	Type        string          `json:"type" valid:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (s *Server) handleListRevenueEntries(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRangeParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	entries, err := s.rep.Revenue().ListManualRevenueEntries(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "can't list revenue entries")
		return
	}
	writeSuccess(w, map[string]any{"entries": entries})
}

// dateRangeParams parses optional from/to query params as calendar dates.
// Defaults to the trailing year when absent.
func dateRangeParams(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now()
	from, to := now.AddDate(-1, 0, 0), now
	if raw := r.URL.Query().Get("from"); raw != "" {
		v, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid from date, want YYYY-MM-DD")
		}
		from = v
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		v, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid to date, want YYYY-MM-DD")
		}
		to = v
	}
	return from, to, nil
}

func (s *Server) handleAddRevenueEntry(w http.ResponseWriter, r *http.Request) {
	var req revenueEntryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if _, err := govalidator.ValidateStruct(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}
	entry := &entity.ManualRevenueEntry{
		Date:        date,
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
	}
	id, err := s.rep.Revenue().AddManualRevenueEntry(r.Context(), entry)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "can't add revenue entry")
		return
	}
	writeSuccess(w, map[string]any{"id": id})
}

func (s *Server) handleDeleteRevenueEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	if err := s.rep.Revenue().DeleteManualRevenueEntry(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "can't delete revenue entry")
		return
	}
	writeSuccess(w, nil)
}
