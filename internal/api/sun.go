// internal/api/sun.go
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/verdantlabs/bloomcal/internal/suncalc"
)

// SunTimesResponse carries the daylight events for one date at the
// configured garden coordinates. Times are local, RFC3339.
type SunTimesResponse struct {
	Date           string  `json:"date"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	CivilDawn      string  `json:"civil_dawn"`
	Sunrise        string  `json:"sunrise"`
	Sunset         string  `json:"sunset"`
	CivilDusk      string  `json:"civil_dusk"`
	DayLengthHours float64 `json:"day_length_hours"`
}

// SunAdviceResponse pairs the daylight band with the sun requirement
// categories that day length can satisfy.
type SunAdviceResponse struct {
	suncalc.DaylightAdvice
	SuitableSunRequirements []string `json:"suitable_sun_requirements"`
}

// initSunRoutes registers the daylight endpoints
func (c *Controller) initSunRoutes() {
	sunGroup := c.Group.Group("/sun")
	sunGroup.GET("/advice", c.GetSunAdvice)
	sunGroup.GET("/:date", c.GetSunTimes)
}

// GetSunTimes handles GET /api/v1/sun/:date
func (c *Controller) GetSunTimes(ctx echo.Context) error {
	if c.SunCalc == nil {
		return c.HandleError(ctx, nil, "Sun calculator not available", http.StatusServiceUnavailable)
	}

	date, err := time.ParseInLocation(time.DateOnly, ctx.Param("date"), time.Local)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid date format, use YYYY-MM-DD", http.StatusBadRequest)
	}

	events, err := c.SunCalc.GetSunEventTimes(date)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to calculate sun times", http.StatusInternalServerError)
	}

	dayLength, err := c.SunCalc.DayLength(date)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to calculate day length", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, SunTimesResponse{
		Date:           date.Format(time.DateOnly),
		Latitude:       c.Settings.Garden.Latitude,
		Longitude:      c.Settings.Garden.Longitude,
		CivilDawn:      events.CivilDawn.Format(time.RFC3339),
		Sunrise:        events.Sunrise.Format(time.RFC3339),
		Sunset:         events.Sunset.Format(time.RFC3339),
		CivilDusk:      events.CivilDusk.Format(time.RFC3339),
		DayLengthHours: dayLength.Hours(),
	})
}

// GetSunAdvice handles GET /api/v1/sun/advice. The date defaults to today.
func (c *Controller) GetSunAdvice(ctx echo.Context) error {
	if c.SunCalc == nil {
		return c.HandleError(ctx, nil, "Sun calculator not available", http.StatusServiceUnavailable)
	}

	date := time.Now()
	if raw := ctx.QueryParam("date"); raw != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
		if err != nil {
			return c.HandleError(ctx, err, "Invalid date format, use YYYY-MM-DD", http.StatusBadRequest)
		}
		date = parsed
	}

	advice, err := c.SunCalc.DaylightAdvice(date)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to compute daylight advice", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, SunAdviceResponse{
		DaylightAdvice:          advice,
		SuitableSunRequirements: suitableRequirements(advice.Band),
	})
}

// suitableRequirements maps a daylight band onto the sun requirement
// categories that still receive enough light. Shade plants are satisfied
// year round; full sun plants need at least a moderate day.
func suitableRequirements(band string) []string {
	switch band {
	case "long", "moderate":
		return []string{"Full Sun", "Partial Shade", "Full Shade"}
	case "short":
		return []string{"Partial Shade", "Full Shade"}
	default:
		return []string{"Full Shade"}
	}
}
