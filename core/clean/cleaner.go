// Package clean repairs raw charging session records before aggregation.
// Sessions missing their end time or duration are imputed from the fleet's
// median charging rate; sessions missing the energy reading as well cannot
// be repaired and are excluded.
package clean

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/kilianp07/evdemand/core/logger"
	"github.com/kilianp07/evdemand/core/model"
)

// durationTolerance is the maximum accepted gap, in hours, between the
// stated duration and the plugin/plugout interval.
const durationTolerance = 0.1

// ErrNoCompleteSessions indicates the charging rate could not be derived
// because no session carries both an energy reading and a duration.
var ErrNoCompleteSessions = errors.New("clean: no complete sessions to derive charging rate")

// Report summarises one cleaning pass.
type Report struct {
	Total      int
	Imputed    int
	Reconciled int
	Excluded   int
}

// Cleaner normalizes and repairs session records.
type Cleaner struct {
	log logger.Logger
}

// New returns a Cleaner logging through the given logger.
func New(log logger.Logger) *Cleaner {
	return &Cleaner{log: log}
}

// ChargingRate returns the median energy-per-hour over sessions where both
// the energy reading and the duration are present and positive. It is a pure
// function of its input so the repair constant stays testable in isolation.
func ChargingRate(sessions []model.Session) (float64, error) {
	var rates []float64
	for _, s := range sessions {
		if s.EnergyKWh == nil || s.DurationHours == nil {
			continue
		}
		if *s.DurationHours <= 0 {
			continue
		}
		rates = append(rates, *s.EnergyKWh / *s.DurationHours)
	}
	if len(rates) == 0 {
		return 0, ErrNoCompleteSessions
	}
	sort.Float64s(rates)
	n := len(rates)
	if n%2 == 1 {
		return rates[n/2], nil
	}
	return (rates[n/2-1] + rates[n/2]) / 2, nil
}

// Clean repairs the given sessions and returns the cleaned set together with
// a Report. Unrepairable rows are dropped, never failed on: the count is
// surfaced through the report and a warning.
func (c *Cleaner) Clean(sessions []model.Session) ([]model.Session, Report, error) {
	rep := Report{Total: len(sessions)}

	rate, rateErr := ChargingRate(sessions)

	out := make([]model.Session, 0, len(sessions))
	for _, s := range sessions {
		if s.EndPlugout == nil && s.DurationHours == nil {
			if s.EnergyKWh == nil || rateErr != nil || rate <= 0 {
				rep.Excluded++
				continue
			}
			d := *s.EnergyKWh / rate
			end := s.StartPlugin.Add(hoursToDuration(d))
			s.DurationHours = &d
			s.EndPlugout = &end
			s.DurationCategory = model.CategorizeDuration(d)
			rep.Imputed++
		}

		if s.EndPlugout == nil {
			// Duration is known, end time is not.
			end := s.StartPlugin.Add(hoursToDuration(*s.DurationHours))
			s.EndPlugout = &end
		}

		actual := s.EndPlugout.Sub(s.StartPlugin).Hours()
		if s.DurationHours == nil {
			s.DurationHours = &actual
		} else if math.Abs(*s.DurationHours-actual) > durationTolerance {
			s.DurationHours = &actual
			rep.Reconciled++
		}

		out = append(out, s)
	}

	if rep.Excluded > 0 && c.log != nil {
		c.log.Warnf("excluded %d of %d sessions with no recoverable duration", rep.Excluded, rep.Total)
	}
	return out, rep, nil
}

func hoursToDuration(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
