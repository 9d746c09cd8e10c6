package suncalc

import (
	"fmt"
	"sync"
	"time"

	"github.com/sj14/astral/pkg/astral"

	"github.com/verdantlabs/bloomcal/internal/conf"
	"github.com/verdantlabs/bloomcal/internal/observability/metrics"
)

// SunEventTimes holds the calculated sun event times in local time
type SunEventTimes struct {
	CivilDawn time.Time // Civil dawn in local time
	Sunrise   time.Time // Sunrise in local time
	Sunset    time.Time // Sunset in local time
	CivilDusk time.Time // Civil dusk in local time
}

// cacheEntry holds the cached sun event times for a given date
type cacheEntry struct {
	times SunEventTimes // Sun event times in local time
	date  time.Time     // Date for which the sun event times are cached
}

// SunCalc handles caching and calculation of sun event times for the
// garden location.
type SunCalc struct {
	cache    map[string]cacheEntry // Cache of sun event times for dates
	lock     sync.RWMutex          // Lock for cache access
	observer astral.Observer       // Observer for sun event calculations
	metrics  *metrics.SunCalcMetrics
}

// NewSunCalc creates a new SunCalc instance
func NewSunCalc(latitude, longitude float64) *SunCalc {
	return &SunCalc{
		cache:    make(map[string]cacheEntry),
		observer: astral.Observer{Latitude: latitude, Longitude: longitude},
	}
}

// SetMetrics attaches observability metrics. Safe to leave unset in tests.
func (sc *SunCalc) SetMetrics(m *metrics.SunCalcMetrics) {
	sc.metrics = m
}

// GetSunEventTimes returns the sun event times for a given date, using cache if available
func (sc *SunCalc) GetSunEventTimes(date time.Time) (SunEventTimes, error) {
	dateKey := date.Format(time.DateOnly)

	sc.lock.RLock()
	entry, exists := sc.cache[dateKey]
	sc.lock.RUnlock()

	if exists && entry.date.Equal(date) {
		if sc.metrics != nil {
			sc.metrics.RecordCacheHit()
		}
		return entry.times, nil
	}
	if sc.metrics != nil {
		sc.metrics.RecordCacheMiss()
	}

	start := time.Now()
	times, err := sc.calculateSunEventTimes(date)
	if err != nil {
		if sc.metrics != nil {
			sc.metrics.RecordSunCalcError("sun_events", "calculation_failed")
		}
		return SunEventTimes{}, err
	}
	if sc.metrics != nil {
		sc.metrics.RecordSunCalc("sun_events", metrics.StatusSuccess)
		sc.metrics.RecordSunCalcDuration("sun_events", time.Since(start).Seconds())
	}

	sc.lock.Lock()
	sc.cache[dateKey] = cacheEntry{times: times, date: date}
	if sc.metrics != nil {
		sc.metrics.UpdateCacheSize(len(sc.cache))
	}
	sc.lock.Unlock()

	return times, nil
}

// calculateSunEventTimes calculates the sun event times for a given date
func (sc *SunCalc) calculateSunEventTimes(date time.Time) (SunEventTimes, error) {
	civilDawn, err := astral.Dawn(sc.observer, date, astral.DepressionCivil)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate civil dawn: %w", err)
	}

	sunrise, err := astral.Sunrise(sc.observer, date)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate sunrise: %w", err)
	}

	sunset, err := astral.Sunset(sc.observer, date)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate sunset: %w", err)
	}

	civilDusk, err := astral.Dusk(sc.observer, date, astral.DepressionCivil)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to calculate civil dusk: %w", err)
	}

	localCivilDawn, err := conf.ConvertUTCToLocal(civilDawn)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to convert civil dawn to local time: %w", err)
	}

	localSunrise, err := conf.ConvertUTCToLocal(sunrise)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to convert sunrise to local time: %w", err)
	}

	localSunset, err := conf.ConvertUTCToLocal(sunset)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to convert sunset to local time: %w", err)
	}

	localCivilDusk, err := conf.ConvertUTCToLocal(civilDusk)
	if err != nil {
		return SunEventTimes{}, fmt.Errorf("failed to convert civil dusk to local time: %w", err)
	}

	return SunEventTimes{
		CivilDawn: localCivilDawn,
		Sunrise:   localSunrise,
		Sunset:    localSunset,
		CivilDusk: localCivilDusk,
	}, nil
}

// GetSunriseTime returns the sunrise time for a given date
func (sc *SunCalc) GetSunriseTime(date time.Time) (time.Time, error) {
	sunEventTimes, err := sc.GetSunEventTimes(date)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get sun event times: %w", err)
	}
	return sunEventTimes.Sunrise, nil
}

// GetSunsetTime returns the sunset time for a given date
func (sc *SunCalc) GetSunsetTime(date time.Time) (time.Time, error) {
	sunEventTimes, err := sc.GetSunEventTimes(date)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get sun event times: %w", err)
	}
	return sunEventTimes.Sunset, nil
}

// DayLength returns the duration between sunrise and sunset for a given
// date. At extreme latitudes the calculation fails when the sun never
// crosses the horizon, and the error is passed through.
func (sc *SunCalc) DayLength(date time.Time) (time.Duration, error) {
	sunEventTimes, err := sc.GetSunEventTimes(date)
	if err != nil {
		return 0, fmt.Errorf("failed to get sun event times: %w", err)
	}
	return sunEventTimes.Sunset.Sub(sunEventTimes.Sunrise), nil
}
