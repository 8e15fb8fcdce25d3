package model

import (
	"strings"
	"time"
)

// Session is one charging event as recorded by a charge point. EndPlugout,
// EnergyKWh and DurationHours are pointers because raw exports leave them
// blank or unparsable; the cleaner repairs what it can.
type Session struct {
	ID               string
	StartPlugin      time.Time
	EndPlugout       *time.Time
	EnergyKWh        *float64
	DurationHours    *float64
	UserType         UserType
	PlugCategory     PlugCategory
	DurationCategory DurationCategory
}

// UserType classifies the account a session was charged on.
type UserType int

const (
	UserUnknown UserType = iota
	UserPrivate
	UserShared
	UserCompany
)

// ParseUserType maps a raw categorical value to a UserType. Unrecognised
// values become UserUnknown.
func ParseUserType(s string) UserType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "private":
		return UserPrivate
	case "shared":
		return UserShared
	case "company":
		return UserCompany
	default:
		return UserUnknown
	}
}

func (u UserType) String() string {
	switch u {
	case UserPrivate:
		return "Private"
	case UserShared:
		return "Shared"
	case UserCompany:
		return "Company"
	default:
		return "Unknown"
	}
}

// PlugCategory classifies the time of day a session was plugged in.
type PlugCategory int

const (
	PlugUnknown PlugCategory = iota
	PlugNight
	PlugMorning
	PlugAfternoon
	PlugEvening
)

// ParsePlugCategory maps a raw categorical value to a PlugCategory.
func ParsePlugCategory(s string) PlugCategory {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "night":
		return PlugNight
	case "morning":
		return PlugMorning
	case "afternoon":
		return PlugAfternoon
	case "evening":
		return PlugEvening
	default:
		return PlugUnknown
	}
}

func (p PlugCategory) String() string {
	switch p {
	case PlugNight:
		return "Night"
	case PlugMorning:
		return "Morning"
	case PlugAfternoon:
		return "Afternoon"
	case PlugEvening:
		return "Evening"
	default:
		return "Unknown"
	}
}

// DurationCategory buckets a session duration into fixed bands.
type DurationCategory int

const (
	DurationUnknown DurationCategory = iota
	DurationLessThan3
	Duration3To6
	Duration6To9
	Duration9To12
	Duration12To15
	Duration15To18
	DurationMoreThan18
)

// CategorizeDuration assigns the band for a duration in hours. Bands are
// evaluated top-down, first match wins.
func CategorizeDuration(hours float64) DurationCategory {
	switch {
	case hours > 18:
		return DurationMoreThan18
	case hours > 15:
		return Duration15To18
	case hours > 12:
		return Duration12To15
	case hours > 9:
		return Duration9To12
	case hours > 6:
		return Duration6To9
	case hours > 3:
		return Duration3To6
	default:
		return DurationLessThan3
	}
}

// ParseDurationCategory maps a raw categorical value to a DurationCategory.
func ParseDurationCategory(s string) DurationCategory {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "more than 18 hours":
		return DurationMoreThan18
	case "between 15 and 18 hours":
		return Duration15To18
	case "between 12 and 15 hours":
		return Duration12To15
	case "between 9 and 12 hours":
		return Duration9To12
	case "between 6 and 9 hours":
		return Duration6To9
	case "between 3 and 6 hours":
		return Duration3To6
	case "less than 3 hours":
		return DurationLessThan3
	default:
		return DurationUnknown
	}
}

func (d DurationCategory) String() string {
	switch d {
	case DurationMoreThan18:
		return "More than 18 hours"
	case Duration15To18:
		return "Between 15 and 18 hours"
	case Duration12To15:
		return "Between 12 and 15 hours"
	case Duration9To12:
		return "Between 9 and 12 hours"
	case Duration6To9:
		return "Between 6 and 9 hours"
	case Duration3To6:
		return "Between 3 and 6 hours"
	case DurationLessThan3:
		return "Less than 3 hours"
	default:
		return "Unknown"
	}
}
