// internal/api/analytics.go
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	gocache "github.com/patrickmn/go-cache"

	"github.com/verdantlabs/bloomcal/internal/datastore"
	"github.com/verdantlabs/bloomcal/internal/season"
)

// SeasonAnalyticsResponse is the blooming season histogram. In expanded
// mode every canonical season appears in cycle order, including seasons no
// plant blooms in; in raw mode the original descriptor strings are counted
// as-is.
type SeasonAnalyticsResponse struct {
	Mode        string                      `json:"mode"`
	Seasons     []datastore.SeasonCount     `json:"seasons,omitempty"`
	Descriptors []datastore.DescriptorCount `json:"descriptors,omitempty"`
	TotalPlants int64                       `json:"total_plants"`
}

// ColorCount pairs a raw flower color with its display color and count.
type ColorCount struct {
	FlowerColor  string `json:"flower_color"`
	DisplayColor string `json:"display_color"`
	Count        int    `json:"count"`
}

// ColorAnalyticsResponse is the flower color distribution.
type ColorAnalyticsResponse struct {
	Colors      []ColorCount `json:"colors"`
	TotalPlants int64        `json:"total_plants"`
}

// initAnalyticsRoutes registers the analytics endpoints
func (c *Controller) initAnalyticsRoutes() {
	analyticsGroup := c.Group.Group("/analytics")
	analyticsGroup.GET("/seasons", c.GetSeasonAnalytics)
	analyticsGroup.GET("/colors", c.GetColorAnalytics)
}

// GetSeasonAnalytics handles GET /api/v1/analytics/seasons
func (c *Controller) GetSeasonAnalytics(ctx echo.Context) error {
	cacheKey := "analytics:seasons?" + ctx.QueryString()
	if cached, found := c.analyticsCache.Get(cacheKey); found {
		return ctx.JSON(http.StatusOK, cached)
	}

	filters := FiltersFromQuery(ctx)
	expand := ctx.QueryParam("expand") != "false"

	total, err := c.DS.CountPlants(filters)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to count plants", http.StatusInternalServerError)
	}

	response := SeasonAnalyticsResponse{TotalPlants: total}
	if expand {
		response.Mode = "expanded"
		counts, err := c.DS.SeasonCounts(filters)
		if err != nil {
			return c.HandleError(ctx, err, "Failed to compute season counts", http.StatusInternalServerError)
		}
		response.Seasons = counts
	} else {
		response.Mode = "raw"
		counts, err := c.DS.SeasonDescriptorCounts(filters)
		if err != nil {
			return c.HandleError(ctx, err, "Failed to compute descriptor counts", http.StatusInternalServerError)
		}
		response.Descriptors = counts
	}

	c.analyticsCache.Set(cacheKey, response, gocache.DefaultExpiration)

	return ctx.JSON(http.StatusOK, response)
}

// GetColorAnalytics handles GET /api/v1/analytics/colors
func (c *Controller) GetColorAnalytics(ctx echo.Context) error {
	cacheKey := "analytics:colors?" + ctx.QueryString()
	if cached, found := c.analyticsCache.Get(cacheKey); found {
		return ctx.JSON(http.StatusOK, cached)
	}

	filters := FiltersFromQuery(ctx)

	total, err := c.DS.CountPlants(filters)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to count plants", http.StatusInternalServerError)
	}

	counts, err := c.DS.FlowerColorCounts(filters)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to compute color counts", http.StatusInternalServerError)
	}

	response := ColorAnalyticsResponse{
		Colors:      make([]ColorCount, 0, len(counts)),
		TotalPlants: total,
	}
	for _, count := range counts {
		response.Colors = append(response.Colors, ColorCount{
			FlowerColor:  count.Descriptor,
			DisplayColor: season.DisplayColor(count.Descriptor),
			Count:        count.Count,
		})
	}

	c.analyticsCache.Set(cacheKey, response, gocache.DefaultExpiration)

	return ctx.JSON(http.StatusOK, response)
}
