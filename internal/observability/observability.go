// Package observability provides metrics and monitoring capabilities for the bloomcal application.
package observability

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/verdantlabs/bloomcal/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry      *prometheus.Registry
	Datastore     *metrics.DatastoreMetrics
	ImageProvider *metrics.ImageProviderMetrics
	SunCalc       *metrics.SunCalcMetrics
	HTTP          *metrics.HTTPMetrics
	Chart         *metrics.ChartMetrics
}

// NewMetrics creates a new instance of Metrics, initializing all metric collectors.
// It returns an error if any metric collector fails to initialize.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	datastoreMetrics, err := metrics.NewDatastoreMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create Datastore metrics: %w", err)
	}

	imageProviderMetrics, err := metrics.NewImageProviderMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create ImageProvider metrics: %w", err)
	}

	sunCalcMetrics, err := metrics.NewSunCalcMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create SunCalc metrics: %w", err)
	}

	httpMetrics, err := metrics.NewHTTPMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
	}

	chartMetrics, err := metrics.NewChartMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create Chart metrics: %w", err)
	}

	m := &Metrics{
		registry:      registry,
		Datastore:     datastoreMetrics,
		ImageProvider: imageProviderMetrics,
		SunCalc:       sunCalcMetrics,
		HTTP:          httpMetrics,
		Chart:         chartMetrics,
	}

	return m, nil
}

// RegisterHandlers registers the metrics endpoint with the provided http.ServeMux.
func (m *Metrics) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/metrics", m.metricsHandler)
}

// Handler returns the exposition handler so non-mux servers (the echo web
// server) can mount it on a route of their choosing.
func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(m.metricsHandler)
}

// metricsHandler is the HTTP handler for the /metrics endpoint.
func (m *Metrics) metricsHandler(w http.ResponseWriter, r *http.Request) {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      log.New(os.Stderr, "metrics handler: ", log.LstdFlags),
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
	h.ServeHTTP(w, r)
}
