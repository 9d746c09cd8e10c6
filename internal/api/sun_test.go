// sun_test.go: Package api provides tests for the daylight endpoints.

package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlabs/bloomcal/internal/suncalc"
)

// withSunCalc attaches a calculator at the test garden coordinates
// (40.0N, 3.7W) where the daylight bands are unambiguous.
func withSunCalc(controller *Controller) {
	controller.SunCalc = suncalc.NewSunCalc(
		controller.Settings.Garden.Latitude,
		controller.Settings.Garden.Longitude,
	)
}

func TestGetSunTimes(t *testing.T) {
	e, controller := newTestController(t, nil)
	withSunCalc(controller)

	rec := doGet(e, "/api/v1/sun/2026-06-21")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeJSON[SunTimesResponse](t, rec)
	assert.Equal(t, "2026-06-21", resp.Date)
	assert.InDelta(t, 40.0, resp.Latitude, 0.001)

	sunrise, err := time.Parse(time.RFC3339, resp.Sunrise)
	require.NoError(t, err)
	sunset, err := time.Parse(time.RFC3339, resp.Sunset)
	require.NoError(t, err)
	assert.True(t, sunset.After(sunrise))
	assert.Greater(t, resp.DayLengthHours, 12.0, "midsummer day is long at 40N")

	dawn, err := time.Parse(time.RFC3339, resp.CivilDawn)
	require.NoError(t, err)
	assert.True(t, dawn.Before(sunrise), "civil dawn precedes sunrise")
}

func TestGetSunTimesSeasonalContrast(t *testing.T) {
	e, controller := newTestController(t, nil)
	withSunCalc(controller)

	june := decodeJSON[SunTimesResponse](t, doGet(e, "/api/v1/sun/2026-06-21"))
	december := decodeJSON[SunTimesResponse](t, doGet(e, "/api/v1/sun/2026-12-21"))

	assert.Greater(t, june.DayLengthHours, december.DayLengthHours)
}

func TestGetSunTimesRejectsBadDate(t *testing.T) {
	e, controller := newTestController(t, nil)
	withSunCalc(controller)

	rec := doGet(e, "/api/v1/sun/june-21")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeJSON[ErrorResponse](t, rec)
	assert.Contains(t, resp.Message, "YYYY-MM-DD")
}

func TestGetSunTimesWithoutCalculator(t *testing.T) {
	e, _ := newTestController(t, nil)

	rec := doGet(e, "/api/v1/sun/2026-06-21")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetSunAdvice(t *testing.T) {
	e, controller := newTestController(t, nil)
	withSunCalc(controller)

	rec := doGet(e, "/api/v1/sun/advice?date=2026-06-21")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeJSON[SunAdviceResponse](t, rec)
	assert.Equal(t, "2026-06-21", resp.Date)
	assert.Equal(t, "long", resp.Band, "15 hour day at 40N")
	assert.Contains(t, resp.SuitableSunRequirements, "Full Sun")
	assert.NotEmpty(t, resp.Advice)

	rec = doGet(e, "/api/v1/sun/advice?date=2026-12-21")
	resp = decodeJSON[SunAdviceResponse](t, rec)
	assert.Equal(t, "short", resp.Band, "9 hour day at 40N")
	assert.NotContains(t, resp.SuitableSunRequirements, "Full Sun")
	assert.Contains(t, resp.SuitableSunRequirements, "Full Shade")
}

func TestGetSunAdviceDefaultsToToday(t *testing.T) {
	e, controller := newTestController(t, nil)
	withSunCalc(controller)

	rec := doGet(e, "/api/v1/sun/advice")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeJSON[SunAdviceResponse](t, rec)
	assert.NotEmpty(t, resp.Date)
	assert.Greater(t, resp.DayLengthHours, 0.0)
	assert.NotEmpty(t, resp.SuitableSunRequirements)
}

func TestSuitableRequirements(t *testing.T) {
	assert.Equal(t, []string{"Full Sun", "Partial Shade", "Full Shade"}, suitableRequirements("long"))
	assert.Equal(t, []string{"Full Sun", "Partial Shade", "Full Shade"}, suitableRequirements("moderate"))
	assert.Equal(t, []string{"Partial Shade", "Full Shade"}, suitableRequirements("short"))
	assert.Equal(t, []string{"Full Shade"}, suitableRequirements("minimal"))
}
