// internal/api/plants.go
package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/verdantlabs/bloomcal/internal/datastore"
	"github.com/verdantlabs/bloomcal/internal/errors"
	"github.com/verdantlabs/bloomcal/internal/plantimages"
	"github.com/verdantlabs/bloomcal/internal/season"
)

// Pagination bounds for the plant listing.
const (
	defaultLimit = 100
	maxLimit     = 1000
)

// PlantResponse is a single plant record as served by the API, with the
// blooming descriptor expanded into canonical seasons and the flower color
// mapped to a renderable display color.
type PlantResponse struct {
	ID              uint     `json:"id"`
	ScientificName  string   `json:"scientific_name"`
	CommonName      string   `json:"common_name"`
	Sun             string   `json:"sun"`
	SoilType        string   `json:"soil_type"`
	DroughtTolerant string   `json:"drought_tolerant"`
	MatureSize      string   `json:"mature_size"`
	FlowerColor     string   `json:"flower_color"`
	DisplayColor    string   `json:"display_color"`
	BloomingSeason  string   `json:"blooming_season"`
	Seasons         []string `json:"seasons"`
	ThumbnailURL    string   `json:"thumbnail_url,omitempty"`
}

// ImageInfo carries the attribution block for a plant image.
type ImageInfo struct {
	URL         string `json:"url"`
	AuthorName  string `json:"author_name,omitempty"`
	AuthorURL   string `json:"author_url,omitempty"`
	LicenseName string `json:"license_name,omitempty"`
	LicenseURL  string `json:"license_url,omitempty"`
	Provider    string `json:"provider,omitempty"`
}

// PlantDetailResponse extends the list entry with full image attribution.
type PlantDetailResponse struct {
	PlantResponse
	Image *ImageInfo `json:"image,omitempty"`
}

// PlantsResponse is the paginated plant listing envelope.
type PlantsResponse struct {
	Plants []PlantResponse `json:"plants"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// FilterOptionsResponse lists the selectable values per categorical column,
// used to populate the dashboard multi-select controls.
type FilterOptionsResponse struct {
	Sun             []string `json:"sun"`
	SoilTypes       []string `json:"soil_types"`
	DroughtTolerant []string `json:"drought_tolerant"`
	FlowerColors    []string `json:"flower_colors"`
	Seasons         []string `json:"seasons"`
}

// initPlantRoutes registers the plant listing and filter routes
func (c *Controller) initPlantRoutes() {
	c.Group.GET("/plants", c.ListPlants)
	c.Group.GET("/plants/:scientific_name", c.GetPlant)
	c.Group.GET("/filters", c.GetFilterOptions)
}

// splitMultiSelect flattens repeated or comma-separated parameter values
// into a non-nil selection. Empty tokens are dropped, so "?sun=" yields an
// empty selection which matches nothing.
func splitMultiSelect(values []string) []string {
	selected := []string{}
	for _, raw := range values {
		for tok := range strings.SplitSeq(raw, ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				selected = append(selected, tok)
			}
		}
	}
	return selected
}

// FiltersFromQuery builds the datastore filter set from the request query. A
// parameter left out of the request leaves its category unconstrained; a
// parameter that is present but selects nothing matches zero rows. The
// dashboard uses the same grammar so its form submissions and the JSON API
// stay interchangeable.
func FiltersFromQuery(ctx echo.Context) *datastore.Filters {
	params := ctx.QueryParams()
	filters := &datastore.Filters{
		Query: strings.TrimSpace(params.Get("query")),
	}

	if params.Has("sun") {
		filters.Sun = splitMultiSelect(params["sun"])
	}
	if params.Has("soil") {
		filters.SoilTypes = splitMultiSelect(params["soil"])
	}
	if params.Has("drought") {
		filters.DroughtTolerant = splitMultiSelect(params["drought"])
	}
	if params.Has("color") {
		filters.FlowerColors = splitMultiSelect(params["color"])
	}
	if params.Has("season") {
		// Unrecognized season tokens are dropped, matching the expansion
		// semantics of the blooming descriptors themselves.
		filters.Seasons = []season.Season{}
		for _, tok := range splitMultiSelect(params["season"]) {
			if s, ok := season.Parse(tok); ok {
				filters.Seasons = append(filters.Seasons, s)
			}
		}
	}

	return filters
}

// parsePagination reads and validates the limit/offset query parameters.
func parsePagination(ctx echo.Context) (limit, offset int, err error) {
	limit = defaultLimit
	if raw := ctx.QueryParam("limit"); raw != "" {
		v, convErr := strconv.Atoi(raw)
		if convErr != nil || v < 1 {
			return 0, 0, fmt.Errorf("invalid limit value: %q", raw)
		}
		limit = min(v, maxLimit)
	}
	if raw := ctx.QueryParam("offset"); raw != "" {
		v, convErr := strconv.Atoi(raw)
		if convErr != nil || v < 0 {
			return 0, 0, fmt.Errorf("invalid offset value: %q", raw)
		}
		offset = v
	}
	return limit, offset, nil
}

// toPlantResponse converts a datastore record into the API representation.
// The thumbnail comes from the image cache only; list rendering must never
// block on a provider fetch.
func (c *Controller) toPlantResponse(plant *datastore.Plant) PlantResponse {
	resp := PlantResponse{
		ID:              plant.ID,
		ScientificName:  plant.ScientificName,
		CommonName:      plant.CommonName,
		Sun:             plant.Sun,
		SoilType:        plant.SoilType,
		DroughtTolerant: plant.DroughtTolerant,
		MatureSize:      plant.MatureSize,
		FlowerColor:     plant.FlowerColor,
		DisplayColor:    season.DisplayColor(plant.FlowerColor),
		BloomingSeason:  plant.BloomingSeason,
		Seasons:         season.Names(season.Expand(plant.BloomingSeason)),
	}

	if c.Images != nil {
		if img, ok := c.Images.Cached(plant.ScientificName); ok {
			resp.ThumbnailURL = img.URL
		}
	}

	return resp
}

// ListPlants handles GET /api/v1/plants
func (c *Controller) ListPlants(ctx echo.Context) error {
	filters := FiltersFromQuery(ctx)

	limit, offset, err := parsePagination(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid pagination parameters", http.StatusBadRequest)
	}

	total, err := c.DS.CountPlants(filters)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to count plants", http.StatusInternalServerError)
	}

	plants, err := c.DS.SearchPlants(filters, limit, offset)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to search plants", http.StatusInternalServerError)
	}

	response := PlantsResponse{
		Plants: make([]PlantResponse, 0, len(plants)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for i := range plants {
		response.Plants = append(response.Plants, c.toPlantResponse(&plants[i]))
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetPlant handles GET /api/v1/plants/:scientific_name
func (c *Controller) GetPlant(ctx echo.Context) error {
	name, err := url.PathUnescape(ctx.Param("scientific_name"))
	if err != nil {
		return c.HandleError(ctx, err, "Invalid scientific name", http.StatusBadRequest)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return c.HandleError(ctx, nil, "Scientific name is required", http.StatusBadRequest)
	}

	plant, err := c.DS.GetPlant(name)
	if err != nil {
		if errors.IsNotFound(err) {
			return c.HandleError(ctx, err, "Plant not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to get plant", http.StatusInternalServerError)
	}

	response := PlantDetailResponse{PlantResponse: c.toPlantResponse(&plant)}

	// The detail view may fetch from the provider; a failure degrades to a
	// record without an image rather than an error.
	if c.Images != nil {
		img, imgErr := c.Images.Get(ctx.Request().Context(), plant.ScientificName)
		switch {
		case imgErr == nil:
			response.ThumbnailURL = img.URL
			response.Image = &ImageInfo{
				URL:         img.URL,
				AuthorName:  img.AuthorName,
				AuthorURL:   img.AuthorURL,
				LicenseName: img.LicenseName,
				LicenseURL:  img.LicenseURL,
				Provider:    img.SourceProvider,
			}
		case errors.Is(imgErr, plantimages.ErrImageNotFound):
			// no image available for this plant
		default:
			c.logAPIRequest(ctx, slog.LevelWarn, "Image lookup failed",
				"scientific_name", plant.ScientificName,
				"error", imgErr.Error())
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetFilterOptions handles GET /api/v1/filters
func (c *Controller) GetFilterOptions(ctx echo.Context) error {
	response := FilterOptionsResponse{
		Seasons: season.Names(season.Cycle()),
	}

	fields := []struct {
		column string
		dest   *[]string
	}{
		{"sun", &response.Sun},
		{"soil_type", &response.SoilTypes},
		{"drought_tolerant", &response.DroughtTolerant},
		{"flower_color", &response.FlowerColors},
	}
	for _, field := range fields {
		values, err := c.DS.DistinctValues(field.column)
		if err != nil {
			return c.HandleError(ctx, err, "Failed to load filter options", http.StatusInternalServerError)
		}
		*field.dest = values
	}

	return ctx.JSON(http.StatusOK, response)
}
