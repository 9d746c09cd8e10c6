package suncalc

import (
	"fmt"
	"time"
)

// Daylight bands used to translate day length into planting guidance.
// Boundaries are half-open: a 14 hour day is a long day.
const (
	longDayHours     = 14.0
	moderateDayHours = 10.0
	shortDayHours    = 6.0
)

// DaylightAdvice summarizes what the day length on a given date means for
// the garden's sun-exposure categories.
type DaylightAdvice struct {
	Date           string  `json:"date"`
	DayLengthHours float64 `json:"day_length_hours"`
	Band           string  `json:"band"`
	Advice         string  `json:"advice"`
}

// DaylightAdvice computes the day length for the date and maps it onto a
// guidance band for the dashboard.
func (sc *SunCalc) DaylightAdvice(date time.Time) (DaylightAdvice, error) {
	dayLength, err := sc.DayLength(date)
	if err != nil {
		return DaylightAdvice{}, fmt.Errorf("failed to compute day length: %w", err)
	}

	hours := dayLength.Hours()
	band, advice := classifyDaylight(hours)

	return DaylightAdvice{
		Date:           date.Format(time.DateOnly),
		DayLengthHours: hours,
		Band:           band,
		Advice:         advice,
	}, nil
}

func classifyDaylight(hours float64) (band, advice string) {
	switch {
	case hours >= longDayHours:
		return "long",
			"Long day: full sun beds receive their peak light, keep new transplants watered."
	case hours >= moderateDayHours:
		return "moderate",
			"Moderate day: both full sun and partial shade plantings get adequate light."
	case hours >= shortDayHours:
		return "short",
			"Short day: favor partial and full shade plants, full sun species slow down."
	default:
		return "minimal",
			"Minimal daylight: growth has largely paused, plan rather than plant."
	}
}
