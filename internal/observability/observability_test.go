// observability_test.go: Package observability tests for the metrics registry
// and the dedicated telemetry endpoint.

package observability

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlabs/bloomcal/internal/conf"
	"github.com/verdantlabs/bloomcal/internal/testutil"
)

func TestMetricsExposition(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	// Vectors only appear in the exposition once a label child exists.
	m.HTTP.RecordTemplateRender("index", 0.01)

	mux := http.NewServeMux()
	m.RegisterHandlers(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_template_render_duration_seconds")
}

func TestNewEndpointRequiresConfiguration(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	disabled := &conf.Settings{}
	_, err = NewEndpoint(disabled, m)
	require.Error(t, err)

	// Without a dedicated address the web server exposes /metrics itself.
	shared := &conf.Settings{}
	shared.Telemetry.Enabled = true
	_, err = NewEndpoint(shared, m)
	require.Error(t, err)

	dedicated := &conf.Settings{}
	dedicated.Telemetry.Enabled = true
	dedicated.Telemetry.Listen = "127.0.0.1:8090"
	endpoint, err := NewEndpoint(dedicated, m)
	require.NoError(t, err)
	assert.Same(t, m, endpoint.GetMetrics())
}

func TestEndpointStartAndShutdown(t *testing.T) {
	settings := &conf.Settings{}
	settings.Telemetry.Enabled = true
	settings.Telemetry.Listen = "127.0.0.1:0"

	m, err := NewMetrics()
	require.NoError(t, err)

	endpoint, err := NewEndpoint(settings, m)
	require.NoError(t, err)

	var wg sync.WaitGroup
	quit := make(chan struct{})
	endpoint.Start(&wg, quit)
	close(quit)

	testutil.WaitForGroup(t, &wg, testutil.DefaultTestTimeout, "telemetry endpoint did not shut down")
}
