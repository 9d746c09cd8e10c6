// server_test.go: Package httpcontroller provides tests for the dashboard server.

package httpcontroller

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlabs/bloomcal/internal/conf"
	"github.com/verdantlabs/bloomcal/internal/datastore"
	"github.com/verdantlabs/bloomcal/internal/observability"
)

// testPlants is a small dataset covering single seasons, ranged
// descriptors and every filterable column.
func testPlants() []datastore.Plant {
	return []datastore.Plant{
		{
			ScientificName:  "Achillea millefolium",
			CommonName:      "Yarrow",
			Sun:             "Full Sun",
			SoilType:        "Loamy",
			DroughtTolerant: "Yes",
			MatureSize:      "2-3 ft",
			FlowerColor:     "White",
			BloomingSeason:  "Summer",
		},
		{
			ScientificName:  "Echinacea purpurea",
			CommonName:      "Purple Coneflower",
			Sun:             "Full Sun",
			SoilType:        "Loamy",
			DroughtTolerant: "Yes",
			MatureSize:      "3-4 ft",
			FlowerColor:     "Pale Purple",
			BloomingSeason:  "Summer-Autumn",
		},
		{
			ScientificName:  "Helleborus niger",
			CommonName:      "Christmas Rose",
			Sun:             "Full Shade",
			SoilType:        "Clay",
			DroughtTolerant: "No",
			MatureSize:      "1 ft",
			FlowerColor:     "White",
			BloomingSeason:  "Winter-Spring",
		},
		{
			ScientificName:  "Lavandula angustifolia",
			CommonName:      "English Lavender",
			Sun:             "Full Sun",
			SoilType:        "Sandy",
			DroughtTolerant: "Yes",
			MatureSize:      "2 ft",
			FlowerColor:     "Purple",
			BloomingSeason:  "Summer",
		},
	}
}

func testSettings() *conf.Settings {
	settings := &conf.Settings{}
	settings.Version = "test"
	settings.BuildDate = "2026-01-01"
	settings.Main.Name = "BloomCal"
	settings.Garden.Name = "Test Garden"
	settings.Garden.Latitude = 40.0
	settings.Garden.Longitude = -3.7
	settings.Dataset.Path = "plants.csv"
	settings.Dataset.PreviewRows = 5
	settings.WebServer.Port = "8080"
	return settings
}

// newTestServer builds a full server against an in-memory store. The working
// directory is redirected to a scratch dir so file loggers never touch the
// repository tree.
func newTestServer(t *testing.T, settings *conf.Settings, metrics *observability.Metrics) *Server {
	t.Helper()
	t.Chdir(t.TempDir())

	s := New(settings, datastore.NewMemoryStore(testPlants()), nil, metrics)
	t.Cleanup(func() {
		if err := s.Shutdown(); err != nil {
			t.Logf("shutdown: %v", err)
		}
	})
	return s
}

func getPage(s *Server, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func TestDashboardPageRenders(t *testing.T) {
	s := newTestServer(t, testSettings(), nil)

	rec := getPage(s, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<title>Bloom Calendar - BloomCal</title>")
	assert.Contains(t, body, "Showing 4 of 4 matching plants.")
	assert.Contains(t, body, "Achillea millefolium")
	assert.Contains(t, body, "Export CSV")
	assert.Contains(t, body, "Plants in bloom by season")
	assert.Contains(t, body, "Bloom calendar")
	assert.Contains(t, body, `value="Full Sun"`)
	assert.Contains(t, body, "Daylight today:")
}

func TestDashboardAppliesFilters(t *testing.T) {
	s := newTestServer(t, testSettings(), nil)

	rec := getPage(s, "/dashboard?season=winter")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Showing 1 of 1 matching plants.")
	assert.Contains(t, body, "Helleborus niger")
	assert.NotContains(t, body, "Lavandula angustifolia")

	// The season control stays sticky, the others stay unselected.
	assert.Contains(t, body, `value="Winter" selected`)
	assert.Contains(t, body, `value="Spring">`)
}

func TestDashboardEmptyResultShowsNotice(t *testing.T) {
	s := newTestServer(t, testSettings(), nil)

	// A present but empty parameter means "selected nothing" and matches
	// zero rows, unlike an absent parameter which leaves the category
	// unconstrained.
	rec := getPage(s, "/dashboard?sun=")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "No plants match the selected filters.")
	assert.NotContains(t, body, "Showing")
	assert.NotContains(t, body, "Plants in bloom by season")
}

func TestDashboardChartLinksCarryFilters(t *testing.T) {
	s := newTestServer(t, testSettings(), nil)

	rec := getPage(s, "/dashboard?season=winter&color=White")
	require.Equal(t, http.StatusOK, rec.Code)

	// Query keys come out of url.Values.Encode sorted, and the ampersands
	// are attribute-escaped by html/template.
	body := rec.Body.String()
	assert.Contains(t, body, `/api/v1/charts/seasons?color=White&amp;season=winter"`)
	assert.Contains(t, body, `/api/v1/charts/seasons?color=White&amp;format=svg&amp;season=winter"`)
	assert.Contains(t, body, `/api/v1/charts/bloom-matrix?color=White&amp;season=winter"`)
	assert.Contains(t, body, `/api/v1/export/csv?color=White&amp;season=winter"`)
}

func TestAboutPage(t *testing.T) {
	s := newTestServer(t, testSettings(), nil)

	rec := getPage(s, "/about")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<title>About - BloomCal</title>")
	assert.Contains(t, body, "GET /api/v1/plants")
	assert.Contains(t, body, "(40.0000, -3.7000)")
	assert.Contains(t, body, "Version test (2026-01-01)")
}

func TestUnknownPageRenders404(t *testing.T) {
	s := newTestServer(t, testSettings(), nil)

	rec := getPage(s, "/no-such-page")
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "<h1>404</h1>")
	assert.Contains(t, body, "Not Found")
	assert.Contains(t, body, "Back to the dashboard")
}

func TestErrorPageHidesStackTraceOutsideDebug(t *testing.T) {
	s := newTestServer(t, testSettings(), nil)

	rec := getPage(s, "/no-such-page")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), `<pre class="stack">`)
}

func TestMetricsSharedWithWebListener(t *testing.T) {
	settings := testSettings()
	settings.Telemetry.Enabled = true

	metrics, err := observability.NewMetrics()
	require.NoError(t, err)

	s := newTestServer(t, settings, metrics)

	// Render a page first so the template histogram has observations.
	rec := getPage(s, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = getPage(s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_template_render_duration_seconds")
}

func TestMetricsAbsentWhenTelemetryDisabled(t *testing.T) {
	s := newTestServer(t, testSettings(), nil)

	rec := getPage(s, "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCacheControlHeaders(t *testing.T) {
	s := newTestServer(t, testSettings(), nil)

	rec := getPage(s, "/assets/custom.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=3600, must-revalidate", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get("ETag"))

	rec = getPage(s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}
