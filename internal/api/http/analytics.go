package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/mealmarkt/ops-manager/internal/analytics"
	gerr "github.com/mealmarkt/ops-manager/internal/errors"
)

// analyticsRequest parses preset/from/to/city query params into a pipeline
// request. Custom ranges are taken as local calendar dates.
func analyticsRequest(r *http.Request) (analytics.Request, error) {
	q := r.URL.Query()
	req := analytics.Request{
		Preset: analytics.Preset(q.Get("preset")),
		City:   q.Get("city"),
	}
	if req.Preset == "" {
		req.Preset = analytics.PresetThisWeek
	}
	if req.Preset == analytics.PresetCustom {
		from, err := time.ParseInLocation("2006-01-02", q.Get("from"), time.Local)
		if err != nil {
			return analytics.Request{}, errors.New("invalid from date, want YYYY-MM-DD")
		}
		to, err := time.ParseInLocation("2006-01-02", q.Get("to"), time.Local)
		if err != nil {
			return analytics.Request{}, errors.New("invalid to date, want YYYY-MM-DD")
		}
		req.From, req.To = from, to
	}
	return req, nil
}

func (s *Server) handleGetKPIs(w http.ResponseWriter, r *http.Request) {
	req, err := analyticsRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := s.analytics.GetKPIs(r.Context(), req)
	if err != nil {
		if errors.Is(err, gerr.ErrInvalidPeriod) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Default().ErrorContext(r.Context(), "can't build kpi report",
			slog.String("err", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "can't build kpi report")
		return
	}
	writeSuccess(w, map[string]any{"report": report})
}

func (s *Server) handleExportKPIs(w http.ResponseWriter, r *http.Request) {
	req, err := analyticsRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := s.analytics.GetKPIs(r.Context(), req)
	if err != nil {
		if errors.Is(err, gerr.ErrInvalidPeriod) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "can't build kpi report")
		return
	}

	filename := fmt.Sprintf("kpis_%s_%s.csv",
		report.Period.From.Format("2006-01-02"),
		report.Period.To.Format("2006-01-02"),
	)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := analytics.WriteCSV(w, report); err != nil {
		slog.Default().ErrorContext(r.Context(), "can't write kpi csv",
			slog.String("err", err.Error()),
		)
	}
}

func (s *Server) handleTopChefs(w http.ResponseWriter, r *http.Request) {
	req, err := analyticsRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = v
	}
	chefs, err := s.analytics.GetTopChefs(r.Context(), req, limit)
	if err != nil {
		if errors.Is(err, gerr.ErrInvalidPeriod) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "can't build top chefs")
		return
	}
	writeSuccess(w, map[string]any{"top_chefs": chefs})
}
