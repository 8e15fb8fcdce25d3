// Package features derives the hourly predictor table from the aggregated
// charging series. Every predictor at hour h is a function of buckets
// strictly before h; rows without enough history are dropped rather than
// filled with sentinels.
package features

import (
	"errors"
	"math"
	"time"

	"github.com/kilianp07/evdemand/core/model"
)

// warmup is the number of leading grid hours without enough history for the
// weekly lag and rolling features. Rows inside the warmup are dropped.
const warmup = 168

// ErrDuplicateHour indicates the input series violates the aggregator's
// uniqueness guarantee.
var ErrDuplicateHour = errors.New("features: duplicate hour key in bucket series")

// ErrEmptySeries indicates there are no buckets to derive from.
var ErrEmptySeries = errors.New("features: empty bucket series")

// Columns is the fixed predictor order shared verbatim by training and
// serving. The target column total_kwh is not part of it.
var Columns = []string{
	"n_sessions_lag1",
	"avg_kwh_lag1",
	"hour_of_day",
	"day_of_week",
	"month",
	"is_weekend",
	"hour_sin",
	"hour_cos",
	"dow_sin",
	"dow_cos",
	"month_sin",
	"month_cos",
	"lag_1",
	"lag_24",
	"lag_168",
	"diff_lag1",
	"roll_mean_3h",
	"roll_mean_6h",
	"roll_mean_24h",
	"roll_std_24h",
	"roll_mean_168h",
	"hour_dow_mean",
}

// Row is one observation of the feature table: the realized target for its
// hour plus the predictors derived from strictly earlier hours.
type Row struct {
	Hour     time.Time
	TotalKWh float64

	NSessionsLag1 float64
	AvgKWhLag1    float64
	HourOfDay     int
	DayOfWeek     int
	Month         int
	IsWeekend     int
	HourSin       float64
	HourCos       float64
	DowSin        float64
	DowCos        float64
	MonthSin      float64
	MonthCos      float64
	Lag1          float64
	Lag24         float64
	Lag168        float64
	DiffLag1      float64
	RollMean3h    float64
	RollMean6h    float64
	RollMean24h   float64
	RollStd24h    float64
	RollMean168h  float64
	HourDowMean   float64
}

// Vector returns the predictors in Columns order.
func (r Row) Vector() []float64 {
	return []float64{
		r.NSessionsLag1,
		r.AvgKWhLag1,
		float64(r.HourOfDay),
		float64(r.DayOfWeek),
		float64(r.Month),
		float64(r.IsWeekend),
		r.HourSin,
		r.HourCos,
		r.DowSin,
		r.DowCos,
		r.MonthSin,
		r.MonthCos,
		r.Lag1,
		r.Lag24,
		r.Lag168,
		r.DiffLag1,
		r.RollMean3h,
		r.RollMean6h,
		r.RollMean24h,
		r.RollStd24h,
		r.RollMean168h,
		r.HourDowMean,
	}
}

// Values returns the predictors as a named map, matching Columns.
func (r Row) Values() map[string]float64 {
	v := r.Vector()
	m := make(map[string]float64, len(Columns))
	for i, c := range Columns {
		m[c] = v[i]
	}
	return m
}

// Derive computes the feature table from the aggregated series, which must
// be ascending by hour with unique keys.
//
// Hours between the first and last bucket with no session start are treated
// as zero activity (total 0 kWh, 0 sessions) so that lag_k always means "k
// wall-clock hours earlier". Computing lags over the sparse index instead
// would silently stretch windows across gaps.
func Derive(buckets []model.HourlyBucket) ([]Row, error) {
	if len(buckets) == 0 {
		return nil, ErrEmptySeries
	}

	first := buckets[0].Hour.Truncate(time.Hour)
	last := buckets[len(buckets)-1].Hour.Truncate(time.Hour)
	n := int(last.Sub(first)/time.Hour) + 1

	total := make([]float64, n)
	nsess := make([]float64, n)
	avg := make([]float64, n)
	seen := make([]bool, n)
	for _, b := range buckets {
		i := int(b.Hour.Truncate(time.Hour).Sub(first) / time.Hour)
		if i < 0 || i >= n || seen[i] {
			return nil, ErrDuplicateHour
		}
		seen[i] = true
		total[i] = b.TotalKWh
		nsess[i] = float64(b.SessionCount)
		avg[i] = b.AvgKWh
	}

	// Expanding per-(hour_of_day, day_of_week) sums over strictly prior
	// occurrences of the same slot.
	type slotAcc struct {
		sum   float64
		count int
	}
	slots := make(map[[2]int]*slotAcc)

	rows := make([]Row, 0, max(0, n-warmup))
	for i := 0; i < n; i++ {
		hour := first.Add(time.Duration(i) * time.Hour)
		hod := hour.Hour()
		dow := pyWeekday(hour.Weekday())
		key := [2]int{hod, dow}

		acc := slots[key]
		if acc == nil {
			acc = &slotAcc{}
			slots[key] = acc
		}

		if i >= warmup && acc.count > 0 {
			r := Row{
				Hour:          hour,
				TotalKWh:      total[i],
				NSessionsLag1: nsess[i-1],
				AvgKWhLag1:    avg[i-1],
				HourOfDay:     hod,
				DayOfWeek:     dow,
				Month:         int(hour.Month()),
				IsWeekend:     boolToInt(dow == 5 || dow == 6),
				Lag1:          total[i-1],
				Lag24:         total[i-24],
				Lag168:        total[i-warmup],
				DiffLag1:      total[i-1] - total[i-2],
				RollMean3h:    mean(total[i-3 : i]),
				RollMean6h:    mean(total[i-6 : i]),
				RollMean24h:   mean(total[i-24 : i]),
				RollStd24h:    stddev(total[i-24 : i]),
				RollMean168h:  mean(total[i-warmup : i]),
				HourDowMean:   acc.sum / float64(acc.count),
			}
			r.HourSin, r.HourCos = cyclical(float64(hod), 24)
			r.DowSin, r.DowCos = cyclical(float64(dow), 7)
			r.MonthSin, r.MonthCos = cyclical(float64(r.Month-1), 12)
			rows = append(rows, r)
		}

		acc.sum += total[i]
		acc.count++
	}
	return rows, nil
}

// pyWeekday maps Go's Sunday-first weekday to the Monday=0 convention used
// by the feature schema.
func pyWeekday(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func cyclical(v, period float64) (sin, cos float64) {
	angle := 2 * math.Pi * v / period
	return math.Sin(angle), math.Cos(angle)
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// stddev is the sample standard deviation (n-1 denominator).
func stddev(vals []float64) float64 {
	m := mean(vals)
	var ss float64
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
