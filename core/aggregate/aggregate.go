// Package aggregate buckets cleaned charging sessions into hourly windows.
package aggregate

import (
	"sort"
	"time"

	"github.com/kilianp07/evdemand/core/model"
)

// Aggregate groups sessions by the hour their charging started and computes
// per-hour totals. The bucket key is StartPlugin truncated to the hour, never
// the plugout time. Hours without any session start do not appear in the
// output; the feature deriver decides how to treat them. The returned series
// is ascending by hour with unique keys.
func Aggregate(sessions []model.Session) []model.HourlyBucket {
	type acc struct {
		total  float64
		count  int
		energy int
	}
	accs := make(map[int64]*acc)
	for _, s := range sessions {
		h := s.StartPlugin.Truncate(time.Hour).Unix()
		a := accs[h]
		if a == nil {
			a = &acc{}
			accs[h] = a
		}
		a.count++
		if s.EnergyKWh != nil {
			a.total += *s.EnergyKWh
			a.energy++
		}
	}

	buckets := make([]model.HourlyBucket, 0, len(accs))
	for h, a := range accs {
		b := model.HourlyBucket{
			Hour:         time.Unix(h, 0).UTC(),
			TotalKWh:     a.total,
			SessionCount: a.count,
		}
		if a.energy > 0 {
			b.AvgKWh = a.total / float64(a.energy)
		}
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Hour.Before(buckets[j].Hour) })
	return buckets
}
