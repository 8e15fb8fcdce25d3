package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evdemand/core/model"
)

func fptr(v float64) *float64 { return &v }

func TestAggregateBucketsByStartHour(t *testing.T) {
	h0 := time.Date(2019, 3, 1, 10, 0, 0, 0, time.UTC)
	sessions := []model.Session{
		{ID: "a", StartPlugin: h0.Add(5 * time.Minute), EnergyKWh: fptr(10)},
		{ID: "b", StartPlugin: h0.Add(50 * time.Minute), EnergyKWh: fptr(20)},
		{ID: "c", StartPlugin: h0.Add(2 * time.Hour), EnergyKWh: fptr(6)},
	}
	buckets := Aggregate(sessions)
	require.Len(t, buckets, 2)

	assert.True(t, buckets[0].Hour.Equal(h0))
	assert.InDelta(t, 30, buckets[0].TotalKWh, 1e-9)
	assert.Equal(t, 2, buckets[0].SessionCount)
	assert.InDelta(t, 15, buckets[0].AvgKWh, 1e-9)

	assert.True(t, buckets[1].Hour.Equal(h0.Add(2*time.Hour)))
	assert.InDelta(t, 6, buckets[1].TotalKWh, 1e-9)
}

func TestAggregateKeysOnStartNotEnd(t *testing.T) {
	start := time.Date(2019, 3, 1, 10, 30, 0, 0, time.UTC)
	end := start.Add(6 * time.Hour)
	sessions := []model.Session{
		{ID: "a", StartPlugin: start, EndPlugout: &end, EnergyKWh: fptr(12)},
	}
	buckets := Aggregate(sessions)
	require.Len(t, buckets, 1)
	assert.True(t, buckets[0].Hour.Equal(time.Date(2019, 3, 1, 10, 0, 0, 0, time.UTC)))
}

func TestAggregateSkipsMissingEnergyInMean(t *testing.T) {
	h0 := time.Date(2019, 3, 1, 10, 0, 0, 0, time.UTC)
	sessions := []model.Session{
		{ID: "a", StartPlugin: h0, EnergyKWh: fptr(10)},
		{ID: "b", StartPlugin: h0.Add(time.Minute)}, // unreadable meter
	}
	buckets := Aggregate(sessions)
	require.Len(t, buckets, 1)
	assert.Equal(t, 2, buckets[0].SessionCount)
	assert.InDelta(t, 10, buckets[0].TotalKWh, 1e-9)
	assert.InDelta(t, 10, buckets[0].AvgKWh, 1e-9)
}

func TestAggregateAscendingUnique(t *testing.T) {
	base := time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)
	var sessions []model.Session
	for i := 9; i >= 0; i-- {
		sessions = append(sessions, model.Session{
			ID:          string(rune('a' + i)),
			StartPlugin: base.Add(time.Duration(i) * time.Hour),
			EnergyKWh:   fptr(float64(i)),
		})
	}
	buckets := Aggregate(sessions)
	require.Len(t, buckets, 10)
	for i := 1; i < len(buckets); i++ {
		assert.True(t, buckets[i-1].Hour.Before(buckets[i].Hour))
	}
}
