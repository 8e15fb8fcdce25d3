package model

import "time"

// HourlyBucket aggregates the sessions that started within one hour.
// Hour is truncated to the hour and unique within a series.
type HourlyBucket struct {
	Hour         time.Time
	TotalKWh     float64
	SessionCount int
	AvgKWh       float64
}
