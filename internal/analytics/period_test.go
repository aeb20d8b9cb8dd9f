package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerr "github.com/mealmarkt/ops-manager/internal/errors"
)

func TestResolvePeriod_ThisWeek(t *testing.T) {
	// Wednesday 2024-06-12
	now := time.Date(2024, 6, 12, 15, 30, 0, 0, time.UTC)

	r, err := ResolvePeriod(PresetThisWeek, time.Time{}, time.Time{}, now)
	require.NoError(t, err)

	// week starts Sunday 2024-06-09
	assert.Equal(t, time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, time.June, r.To.Month())
	assert.Equal(t, 15, r.To.Day())
	assert.Equal(t, 23, r.To.Hour())
}

func TestResolvePeriod_ThisWeekOnSunday(t *testing.T) {
	// a Sunday picks itself as week start
	now := time.Date(2024, 6, 9, 1, 0, 0, 0, time.UTC)

	r, err := ResolvePeriod(PresetThisWeek, time.Time{}, time.Time{}, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC), r.From)
}

func TestResolvePeriod_LastWeek(t *testing.T) {
	now := time.Date(2024, 6, 12, 15, 30, 0, 0, time.UTC)

	r, err := ResolvePeriod(PresetLastWeek, time.Time{}, time.Time{}, now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, 8, r.To.Day())

	// the 7th day is included in full
	lastSecond := time.Date(2024, 6, 8, 23, 59, 59, 0, time.UTC)
	assert.False(t, lastSecond.After(r.To))
}

func TestResolvePeriod_RollingWindows(t *testing.T) {
	now := time.Date(2024, 6, 12, 15, 30, 0, 0, time.UTC)

	r, err := ResolvePeriod(PresetLastMonth, time.Time{}, time.Time{}, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, 12, r.To.Day())

	r, err = ResolvePeriod(PresetLast3Months, time.Time{}, time.Time{}, now)
	require.NoError(t, err)
	assert.Equal(t, time.March, r.From.Month())
}

func TestResolvePeriod_Custom(t *testing.T) {
	from := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)

	r, err := ResolvePeriod(PresetCustom, from, to, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, r.From.Hour())
	assert.Equal(t, 23, r.To.Hour())

	// inverted range fails fast
	_, err = ResolvePeriod(PresetCustom, to, from, time.Now())
	assert.ErrorIs(t, err, gerr.ErrInvalidPeriod)

	// from == to is a valid single-day range
	_, err = ResolvePeriod(PresetCustom, from, from, time.Now())
	assert.NoError(t, err)
}

func TestResolvePeriod_Unknown(t *testing.T) {
	_, err := ResolvePeriod(Preset("fortnight"), time.Time{}, time.Time{}, time.Now())
	assert.Error(t, err)
}

func TestUnixRange_IncludesEndOfDaySecond(t *testing.T) {
	r, err := ResolvePeriod(PresetCustom,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Now())
	require.NoError(t, err)

	from, to := unixRange(r)
	lastSecond := time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC).Unix()
	assert.GreaterOrEqual(t, lastSecond, from)
	assert.Less(t, lastSecond, to)
}
