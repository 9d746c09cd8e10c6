// Package metrics provides sun calculation metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SunCalcMetrics contains Prometheus metrics for sun time calculations
type SunCalcMetrics struct {
	registry *prometheus.Registry

	calculationsTotal   *prometheus.CounterVec
	calculationDuration *prometheus.HistogramVec
	calculationErrors   *prometheus.CounterVec

	cacheHitsTotal   prometheus.Counter
	cacheMissesTotal prometheus.Counter
	cacheSizeGauge   prometheus.Gauge

	collectors []prometheus.Collector
}

// NewSunCalcMetrics creates and registers new sun calculation metrics
func NewSunCalcMetrics(registry *prometheus.Registry) (*SunCalcMetrics, error) {
	m := &SunCalcMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *SunCalcMetrics) initMetrics() error {
	m.calculationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suncalc_calculations_total",
			Help: "Total number of sun time calculations",
		},
		[]string{"calculation_type", "status"},
	)

	m.calculationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "suncalc_calculation_duration_seconds",
			Help:    "Time taken for sun time calculations",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount10),
		},
		[]string{"calculation_type"},
	)

	m.calculationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suncalc_calculation_errors_total",
			Help: "Total number of sun time calculation errors",
		},
		[]string{"calculation_type", "error_type"},
	)

	m.cacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "suncalc_cache_hits_total",
		Help: "Total number of sun time cache hits",
	})

	m.cacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "suncalc_cache_misses_total",
		Help: "Total number of sun time cache misses",
	})

	m.cacheSizeGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "suncalc_cache_entries",
		Help: "Current number of cached sun time entries",
	})

	m.collectors = []prometheus.Collector{
		m.calculationsTotal,
		m.calculationDuration,
		m.calculationErrors,
		m.cacheHitsTotal,
		m.cacheMissesTotal,
		m.cacheSizeGauge,
	}

	return nil
}

// Describe implements the Collector interface
func (m *SunCalcMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *SunCalcMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordSunCalc records a sun time calculation
func (m *SunCalcMetrics) RecordSunCalc(calculationType, status string) {
	m.calculationsTotal.WithLabelValues(calculationType, status).Inc()
}

// RecordSunCalcDuration records the duration of a sun time calculation
func (m *SunCalcMetrics) RecordSunCalcDuration(calculationType string, duration float64) {
	m.calculationDuration.WithLabelValues(calculationType).Observe(duration)
}

// RecordSunCalcError records a sun time calculation error
func (m *SunCalcMetrics) RecordSunCalcError(calculationType, errorType string) {
	m.calculationErrors.WithLabelValues(calculationType, errorType).Inc()
	m.calculationsTotal.WithLabelValues(calculationType, StatusError).Inc()
}

// RecordCacheHit records a sun time cache hit
func (m *SunCalcMetrics) RecordCacheHit() {
	m.cacheHitsTotal.Inc()
}

// RecordCacheMiss records a sun time cache miss
func (m *SunCalcMetrics) RecordCacheMiss() {
	m.cacheMissesTotal.Inc()
}

// UpdateCacheSize updates the sun time cache size gauge
func (m *SunCalcMetrics) UpdateCacheSize(size int) {
	m.cacheSizeGauge.Set(float64(size))
}
