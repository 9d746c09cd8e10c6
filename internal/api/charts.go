// internal/api/charts.go
package api

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/verdantlabs/bloomcal/internal/chart"
	"github.com/verdantlabs/bloomcal/internal/errors"
)

// Chart titles shared with the dashboard.
const (
	seasonChartTitle = "Plants in bloom by season"
	bloomMatrixTitle = "Bloom calendar"
)

// initChartRoutes registers the chart image endpoints
func (c *Controller) initChartRoutes() {
	chartGroup := c.Group.Group("/charts")
	chartGroup.GET("/seasons", c.GetSeasonChart)
	chartGroup.GET("/bloom-matrix", c.GetBloomMatrixChart)
}

// emptyChartResponse is served with status 200 when no plants match: an
// empty selection is informational, not an error.
func emptyChartResponse(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{
		"message": "No plants match the selected filters, nothing to chart.",
	})
}

// GetSeasonChart handles GET /api/v1/charts/seasons
func (c *Controller) GetSeasonChart(ctx echo.Context) error {
	format, err := chart.ParseFormat(ctx.QueryParam("format"))
	if err != nil {
		return c.HandleError(ctx, err, "Invalid chart format", http.StatusBadRequest)
	}

	filters := FiltersFromQuery(ctx)
	expand := ctx.QueryParam("expand") != "false"

	var buf bytes.Buffer
	if expand {
		counts, err := c.DS.SeasonCounts(filters)
		if err != nil {
			return c.HandleError(ctx, err, "Failed to compute season counts", http.StatusInternalServerError)
		}
		err = c.charts.SeasonBar(&buf, counts, seasonChartTitle, format)
		if err != nil {
			if errors.Is(err, chart.ErrNoData) {
				return emptyChartResponse(ctx)
			}
			return c.HandleError(ctx, err, "Failed to render season chart", http.StatusInternalServerError)
		}
	} else {
		counts, err := c.DS.SeasonDescriptorCounts(filters)
		if err != nil {
			return c.HandleError(ctx, err, "Failed to compute descriptor counts", http.StatusInternalServerError)
		}
		err = c.charts.DescriptorBar(&buf, counts, seasonChartTitle, format)
		if err != nil {
			if errors.Is(err, chart.ErrNoData) {
				return emptyChartResponse(ctx)
			}
			return c.HandleError(ctx, err, "Failed to render season chart", http.StatusInternalServerError)
		}
	}

	return ctx.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}

// GetBloomMatrixChart handles GET /api/v1/charts/bloom-matrix
func (c *Controller) GetBloomMatrixChart(ctx echo.Context) error {
	format, err := chart.ParseFormat(ctx.QueryParam("format"))
	if err != nil {
		return c.HandleError(ctx, err, "Invalid chart format", http.StatusBadRequest)
	}

	filters := FiltersFromQuery(ctx)

	plants, err := c.DS.SearchPlants(filters, 0, 0)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to search plants", http.StatusInternalServerError)
	}

	var buf bytes.Buffer
	if err := c.charts.BloomMatrix(&buf, plants, format, bloomMatrixTitle); err != nil {
		if errors.Is(err, chart.ErrNoData) {
			return emptyChartResponse(ctx)
		}
		return c.HandleError(ctx, err, "Failed to render bloom matrix", http.StatusInternalServerError)
	}

	return ctx.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}
