// internal/api/export.go
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/verdantlabs/bloomcal/internal/csvimport"
)

// initExportRoutes registers the export endpoints
func (c *Controller) initExportRoutes() {
	c.Group.GET("/export/csv", c.ExportCSV)
}

// ExportCSV handles GET /api/v1/export/csv. It streams every plant matching
// the current filters as a CSV attachment, ignoring pagination. The column
// set comes from csvimport so a download can be imported back unchanged.
func (c *Controller) ExportCSV(ctx echo.Context) error {
	filters := FiltersFromQuery(ctx)

	plants, err := c.DS.SearchPlants(filters, 0, 0)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to search plants", http.StatusInternalServerError)
	}

	filename := fmt.Sprintf("bloomcal_plants_%s.csv", time.Now().Format("20060102_150405"))
	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	res.WriteHeader(http.StatusOK)

	return csvimport.Write(res, plants)
}
