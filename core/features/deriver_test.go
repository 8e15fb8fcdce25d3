package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evdemand/core/model"
)

func syntheticBuckets(start time.Time, n int, value func(i int) float64) []model.HourlyBucket {
	buckets := make([]model.HourlyBucket, n)
	for i := 0; i < n; i++ {
		buckets[i] = model.HourlyBucket{
			Hour:         start.Add(time.Duration(i) * time.Hour),
			TotalKWh:     value(i),
			SessionCount: i%5 + 1,
			AvgKWh:       value(i) / float64(i%5+1),
		}
	}
	return buckets
}

func sinusoid(i int) float64 {
	return 50 + 20*math.Sin(2*math.Pi*float64(i)/24)
}

func TestDeriveDropsWarmupAndKeepsRest(t *testing.T) {
	start := time.Date(2019, 1, 7, 0, 0, 0, 0, time.UTC)
	buckets := syntheticBuckets(start, 200, sinusoid)

	rows, err := Derive(buckets)
	require.NoError(t, err)
	require.Len(t, rows, 32)
	assert.True(t, rows[0].Hour.Equal(start.Add(168*time.Hour)))
	assert.True(t, rows[31].Hour.Equal(start.Add(199*time.Hour)))
}

func TestDeriveLagCorrectness(t *testing.T) {
	start := time.Date(2019, 1, 7, 0, 0, 0, 0, time.UTC)
	buckets := syntheticBuckets(start, 200, sinusoid)

	rows, err := Derive(buckets)
	require.NoError(t, err)
	for _, r := range rows {
		i := int(r.Hour.Sub(start) / time.Hour)
		assert.InDelta(t, sinusoid(i-1), r.Lag1, 1e-9)
		assert.InDelta(t, sinusoid(i-24), r.Lag24, 1e-9)
		assert.InDelta(t, sinusoid(i-168), r.Lag168, 1e-9)
		assert.InDelta(t, sinusoid(i-1)-sinusoid(i-2), r.DiffLag1, 1e-9)
		assert.InDelta(t, sinusoid(i), r.TotalKWh, 1e-9)
	}
}

func TestDeriveRollingWindowsEndAtPreviousHour(t *testing.T) {
	start := time.Date(2019, 1, 7, 0, 0, 0, 0, time.UTC)
	buckets := syntheticBuckets(start, 200, func(i int) float64 { return float64(i) })

	rows, err := Derive(buckets)
	require.NoError(t, err)
	r := rows[0] // grid hour 168
	// mean of 165,166,167
	assert.InDelta(t, 166, r.RollMean3h, 1e-9)
	assert.InDelta(t, 164.5, r.RollMean6h, 1e-9)
	assert.InDelta(t, 155.5, r.RollMean24h, 1e-9)
	assert.InDelta(t, 83.5, r.RollMean168h, 1e-9)
	// sample std of 24 consecutive integers
	assert.InDelta(t, math.Sqrt(50), r.RollStd24h, 1e-9)
}

func TestDeriveNoLeakage(t *testing.T) {
	start := time.Date(2019, 1, 7, 0, 0, 0, 0, time.UTC)
	buckets := syntheticBuckets(start, 200, sinusoid)

	base, err := Derive(buckets)
	require.NoError(t, err)

	// Perturb the bucket at grid hour 180 and everything after it.
	mutated := syntheticBuckets(start, 200, func(i int) float64 {
		if i >= 180 {
			return sinusoid(i) + 1000
		}
		return sinusoid(i)
	})
	changed, err := Derive(mutated)
	require.NoError(t, err)
	require.Len(t, changed, len(base))

	for k := range base {
		i := int(base[k].Hour.Sub(start) / time.Hour)
		if i <= 180 {
			// Predictors depend only on hours < i, all untouched.
			assert.Equal(t, base[k].Vector(), changed[k].Vector(), "hour %d", i)
		}
	}
	// The perturbed bucket's own row only changes its target.
	i180 := 180 - 168
	assert.InDelta(t, base[i180].TotalKWh+1000, changed[i180].TotalKWh, 1e-9)
}

func TestDeriveCyclicalRoundTrip(t *testing.T) {
	start := time.Date(2019, 1, 7, 0, 0, 0, 0, time.UTC)
	buckets := syntheticBuckets(start, 200, sinusoid)

	rows, err := Derive(buckets)
	require.NoError(t, err)
	for _, r := range rows {
		assert.InDelta(t, 1, r.HourSin*r.HourSin+r.HourCos*r.HourCos, 1e-9)
		assert.InDelta(t, 1, r.DowSin*r.DowSin+r.DowCos*r.DowCos, 1e-9)
		assert.InDelta(t, 1, r.MonthSin*r.MonthSin+r.MonthCos*r.MonthCos, 1e-9)
	}
}

func TestDeriveJanuaryMapsToPhaseZero(t *testing.T) {
	start := time.Date(2019, 1, 7, 0, 0, 0, 0, time.UTC)
	buckets := syntheticBuckets(start, 200, sinusoid)

	rows, err := Derive(buckets)
	require.NoError(t, err)
	r := rows[0]
	require.Equal(t, 1, r.Month)
	assert.InDelta(t, 0, r.MonthSin, 1e-9)
	assert.InDelta(t, 1, r.MonthCos, 1e-9)
}

func TestDeriveCalendarFeatures(t *testing.T) {
	start := time.Date(2019, 1, 7, 0, 0, 0, 0, time.UTC) // a Monday
	buckets := syntheticBuckets(start, 200, sinusoid)

	rows, err := Derive(buckets)
	require.NoError(t, err)
	for _, r := range rows {
		assert.Equal(t, r.Hour.Hour(), r.HourOfDay)
		wantDow := (int(r.Hour.Weekday()) + 6) % 7
		assert.Equal(t, wantDow, r.DayOfWeek)
		if wantDow >= 5 {
			assert.Equal(t, 1, r.IsWeekend)
		} else {
			assert.Equal(t, 0, r.IsWeekend)
		}
	}
}

func TestDeriveFillsGapsWithZeroActivity(t *testing.T) {
	start := time.Date(2019, 1, 7, 0, 0, 0, 0, time.UTC)
	buckets := syntheticBuckets(start, 200, func(i int) float64 { return 10 })
	// Remove grid hour 169 entirely: no sessions started then.
	sparse := append(append([]model.HourlyBucket{}, buckets[:169]...), buckets[170:]...)

	rows, err := Derive(sparse)
	require.NoError(t, err)
	require.Len(t, rows, 32)

	// The row for grid hour 170 sees the gap as a zero-activity hour.
	var r170 Row
	for _, r := range rows {
		if r.Hour.Equal(start.Add(170 * time.Hour)) {
			r170 = r
		}
	}
	assert.InDelta(t, 0, r170.Lag1, 1e-9)
	assert.InDelta(t, 0, r170.NSessionsLag1, 1e-9)
	assert.InDelta(t, 10, r170.Lag24, 1e-9)
}

func TestDeriveExpandingMeanUsesStrictPast(t *testing.T) {
	start := time.Date(2019, 1, 7, 0, 0, 0, 0, time.UTC)
	// Value depends only on the week index, so each (hour, dow) slot sees
	// 100 in week one, 200 in week two, ...
	buckets := syntheticBuckets(start, 24*7*3, func(i int) float64 {
		return float64(100 * (i/168 + 1))
	})

	rows, err := Derive(buckets)
	require.NoError(t, err)
	for _, r := range rows {
		i := int(r.Hour.Sub(start) / time.Hour)
		switch i / 168 {
		case 1: // second week: only the first week's occurrence is history
			assert.InDelta(t, 100, r.HourDowMean, 1e-9)
		case 2: // third week: mean of 100 and 200
			assert.InDelta(t, 150, r.HourDowMean, 1e-9)
		}
	}
}

func TestDeriveDuplicateHourRejected(t *testing.T) {
	start := time.Date(2019, 1, 7, 0, 0, 0, 0, time.UTC)
	buckets := []model.HourlyBucket{
		{Hour: start, TotalKWh: 1},
		{Hour: start, TotalKWh: 2},
	}
	_, err := Derive(buckets)
	assert.ErrorIs(t, err, ErrDuplicateHour)
}

func TestDeriveEmptySeries(t *testing.T) {
	_, err := Derive(nil)
	assert.ErrorIs(t, err, ErrEmptySeries)
}

func TestVectorMatchesColumns(t *testing.T) {
	r := Row{}
	assert.Len(t, r.Vector(), len(Columns))
	vals := r.Values()
	assert.Len(t, vals, len(Columns))
	for _, c := range Columns {
		_, ok := vals[c]
		assert.True(t, ok, "missing column %s", c)
	}
}

func TestDeriveShortSeriesYieldsNoRows(t *testing.T) {
	start := time.Date(2019, 1, 7, 0, 0, 0, 0, time.UTC)

	for _, n := range []int{1, 10, 167, 168} {
		rows, err := Derive(syntheticBuckets(start, n, sinusoid))
		require.NoError(t, err, "series of %d hours", n)
		assert.Empty(t, rows, "every row of a %d hour series is inside the warmup window", n)
	}

	// 169 hours is the first span that can emit a row.
	rows, err := Derive(syntheticBuckets(start, 169, sinusoid))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Hour.Equal(start.Add(168*time.Hour)))
}
