// Package metrics provides chart rendering metrics for observability
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ChartMetrics contains Prometheus metrics for chart rendering operations
type ChartMetrics struct {
	registry *prometheus.Registry

	rendersTotal     *prometheus.CounterVec
	renderDuration   *prometheus.HistogramVec
	renderErrors     *prometheus.CounterVec
	chartSeriesSize  *prometheus.HistogramVec
	emptyChartsTotal *prometheus.CounterVec

	collectors []prometheus.Collector
}

// NewChartMetrics creates and registers new chart rendering metrics
func NewChartMetrics(registry *prometheus.Registry) (*ChartMetrics, error) {
	m := &ChartMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, err
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *ChartMetrics) initMetrics() error {
	m.rendersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chart_renders_total",
			Help: "Total number of chart render operations",
		},
		[]string{"kind", "format", "status"},
	)

	m.renderDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chart_render_duration_seconds",
			Help:    "Time taken to render charts",
			Buckets: prometheus.ExponentialBuckets(BucketStart10ms, BucketFactor2, BucketCount10),
		},
		[]string{"kind", "format"},
	)

	m.renderErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chart_render_errors_total",
			Help: "Total number of chart render errors",
		},
		[]string{"kind", "error_type"},
	)

	m.chartSeriesSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chart_series_size_points",
			Help:    "Number of data points rendered per chart",
			Buckets: prometheus.ExponentialBuckets(1, BucketFactor10, BucketCount8),
		},
		[]string{"kind"},
	)

	m.emptyChartsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chart_empty_results_total",
			Help: "Total number of chart requests that matched no data",
		},
		[]string{"kind"},
	)

	m.collectors = []prometheus.Collector{
		m.rendersTotal,
		m.renderDuration,
		m.renderErrors,
		m.chartSeriesSize,
		m.emptyChartsTotal,
	}

	return nil
}

// Describe implements the Collector interface
func (m *ChartMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *ChartMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordRender records a chart render operation
func (m *ChartMetrics) RecordRender(kind, format, status string) {
	m.rendersTotal.WithLabelValues(kind, format, status).Inc()
}

// RecordRenderDuration records the duration of a chart render
func (m *ChartMetrics) RecordRenderDuration(kind, format string, duration float64) {
	m.renderDuration.WithLabelValues(kind, format).Observe(duration)
}

// RecordRenderError records a chart render error
func (m *ChartMetrics) RecordRenderError(kind, errorType string) {
	m.renderErrors.WithLabelValues(kind, errorType).Inc()
}

// RecordSeriesSize records the number of data points in a rendered chart
func (m *ChartMetrics) RecordSeriesSize(kind string, points int) {
	m.chartSeriesSize.WithLabelValues(kind).Observe(float64(points))
}

// RecordEmptyChart records a chart request that matched no data
func (m *ChartMetrics) RecordEmptyChart(kind string) {
	m.emptyChartsTotal.WithLabelValues(kind).Inc()
}
