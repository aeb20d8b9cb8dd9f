package httpapi

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"time"

	"log/slog"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"github.com/mealmarkt/ops-manager/internal/entity"
	"github.com/mealmarkt/ops-manager/internal/geo"
	syncsrv "github.com/mealmarkt/ops-manager/internal/sync"
)

func merchantStats(merchants []entity.Merchant) entity.MerchantStats {
	st := entity.MerchantStats{
		Total:  len(merchants),
		ByCity: map[string]int{},
	}
	for i := range merchants {
		m := &merchants[i]
		if m.Status {
			st.Published++
		}
		if m.Online() {
			st.Online++
		}
		if m.City.Valid {
			st.ByCity[geo.Canonical(m.City.String)]++
		}
	}
	return st
}

func (s *Server) handleListMerchants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	merchants, err := s.rep.Merchant().GetAllMerchants(ctx)
	if err != nil {
		slog.Default().ErrorContext(ctx, "can't list merchants",
			slog.String("err", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "can't list merchants")
		return
	}
	overrides, err := s.rep.Merchant().ListMerchantOverrides(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "can't list merchant overrides")
		return
	}
	writeSuccess(w, map[string]any{
		"merchants": merchantViews(merchants, overrides),
		"stats":     merchantStats(merchants),
	})
}

type merchantView struct {
	ID         int      `json:"id"`
	MerchantID string   `json:"merchant_id"`
	Name       string   `json:"name"`
	City       string   `json:"city,omitempty"`
	Published  bool     `json:"published"`
	Online     bool     `json:"online"`
	Rating     *float64 `json:"rating,omitempty"`
	Tags       string   `json:"tags,omitempty"`
}

// merchantViews flattens merchants for the directory response, applying
// manual overrides on top of the synced values.
func merchantViews(merchants []entity.Merchant, overrides []entity.MerchantOverride) []merchantView {
	byMerchant := map[string]map[string]string{}
	for _, o := range overrides {
		if byMerchant[o.MerchantID] == nil {
			byMerchant[o.MerchantID] = map[string]string{}
		}
		byMerchant[o.MerchantID][o.Field] = o.Value
	}

	views := make([]merchantView, 0, len(merchants))
	for i := range merchants {
		m := &merchants[i]
		v := merchantView{
			ID:         m.ID,
			MerchantID: m.MerchantID,
			Name:       m.Name,
			Published:  m.Status,
			Online:     m.Online(),
		}
		if m.City.Valid {
			v.City = m.City.String
		}
		if m.Rating.Valid {
			rating := m.Rating.Float64
			v.Rating = &rating
		}
		if m.Tags.Valid {
			v.Tags = m.Tags.String
		}
		if ov, ok := byMerchant[m.MerchantID]; ok {
			if name, ok := ov["name"]; ok {
				v.Name = name
			}
			if city, ok := ov["city"]; ok {
				v.City = city
			}
		}
		views = append(views, v)
	}
	return views
}

func (s *Server) handleMerchantMap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	merchants, err := s.rep.Merchant().GetAllMerchants(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "can't list merchants")
		return
	}

	type bucket struct {
		point  geo.Point
		total  int
		online int
	}
	buckets := map[string]*bucket{}
	for i := range merchants {
		m := &merchants[i]
		if !m.City.Valid {
			continue
		}
		city := geo.Canonical(m.City.String)
		pt, ok := geo.Locate(city)
		if !ok {
			continue
		}
		b := buckets[city]
		if b == nil {
			b = &bucket{point: pt}
			buckets[city] = b
		}
		b.total++
		if m.Online() {
			b.online++
		}
	}

	points := make([]entity.MerchantMapPoint, 0, len(buckets))
	for city, b := range buckets {
		points = append(points, entity.MerchantMapPoint{
			City:      city,
			Latitude:  b.point.Latitude,
			Longitude: b.point.Longitude,
			Merchants: b.total,
			Online:    b.online,
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].City < points[j].City })

	writeSuccess(w, map[string]any{"points": points})
}

func (s *Server) handleSyncOrders(w http.ResponseWriter, r *http.Request) {
	// The job keeps running server-side past the deadline; a timeout
	// means unknown outcome for the caller, not a rollback.
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	summary, err := s.sync.SyncOrders(ctx, syncsrv.Options{})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			writeError(w, http.StatusGatewayTimeout, "sync timed out, outcome unknown")
			return
		}
		slog.Default().ErrorContext(ctx, "order sync failed",
			slog.String("err", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "order sync failed")
		return
	}
	writeSuccess(w, map[string]any{
		"processed": summary.Processed,
		"errors":    summary.Errors,
	})
}

func (s *Server) handleListOverrides(w http.ResponseWriter, r *http.Request) {
	overrides, err := s.rep.Merchant().ListMerchantOverrides(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "can't list merchant overrides")
		return
	}
	writeSuccess(w, map[string]any{"overrides": overrides})
}

func (s *Server) handleAddOverride(w http.ResponseWriter, r *http.Request) {
	var o entity.MerchantOverride
	if !decodeBody(w, r, &o) {
		return
	}
	if _, err := govalidator.ValidateStruct(&o); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.rep.Merchant().AddMerchantOverride(r.Context(), &o)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "can't add merchant override")
		return
	}
	writeSuccess(w, map[string]any{"id": id})
}

func (s *Server) handleDeleteOverride(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.rep.Merchant().DeleteMerchantOverride(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "can't delete merchant override")
		return
	}
	writeSuccess(w, nil)
}
