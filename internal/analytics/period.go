package analytics

import (
	"fmt"
	"time"

	"github.com/mealmarkt/ops-manager/internal/entity"
	gerr "github.com/mealmarkt/ops-manager/internal/errors"
)

// Preset is a user-selected reporting window.
type Preset string

const (
	PresetThisWeek    Preset = "this_week"
	PresetLastWeek    Preset = "last_week"
	PresetLastMonth   Preset = "last_month"
	PresetLast3Months Preset = "last_3_months"
	PresetCustom      Preset = "custom"
)

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// startOfWeek returns midnight of the most recent Sunday. Weeks are
// Sunday-start.
func startOfWeek(t time.Time) time.Time {
	d := startOfDay(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// ResolvePeriod turns a preset or custom date pair into a concrete range.
// This-week and last-week resolve to calendar weeks inclusive of the full
// 7th day; last-month and last-3-months are rolling windows ending now.
// A custom range with from after to fails fast with ErrInvalidPeriod.
func ResolvePeriod(preset Preset, from, to time.Time, now time.Time) (entity.TimeRange, error) {
	switch preset {
	case PresetThisWeek:
		start := startOfWeek(now)
		return entity.TimeRange{From: start, To: endOfDay(start.AddDate(0, 0, 6))}, nil
	case PresetLastWeek:
		start := startOfWeek(now).AddDate(0, 0, -7)
		return entity.TimeRange{From: start, To: endOfDay(start.AddDate(0, 0, 6))}, nil
	case PresetLastMonth:
		return entity.TimeRange{From: startOfDay(now.AddDate(0, -1, 0)), To: endOfDay(now)}, nil
	case PresetLast3Months:
		return entity.TimeRange{From: startOfDay(now.AddDate(0, -3, 0)), To: endOfDay(now)}, nil
	case PresetCustom:
		if from.After(to) {
			return entity.TimeRange{}, gerr.ErrInvalidPeriod
		}
		return entity.TimeRange{From: startOfDay(from), To: endOfDay(to)}, nil
	default:
		return entity.TimeRange{}, fmt.Errorf("unknown period preset: %s", preset)
	}
}

// unixRange converts a resolved range into half-open Unix-second bounds
// usable as created_timestamp >= from AND < to. To sits at end-of-day with
// sub-second precision, so the exclusive bound is the following second.
func unixRange(r entity.TimeRange) (int64, int64) {
	return r.From.Unix(), r.To.Unix() + 1
}
