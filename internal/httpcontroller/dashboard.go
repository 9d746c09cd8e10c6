// internal/httpcontroller/dashboard.go
package httpcontroller

import (
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/verdantlabs/bloomcal/internal/api"
	"github.com/verdantlabs/bloomcal/internal/datastore"
	"github.com/verdantlabs/bloomcal/internal/season"
	"github.com/verdantlabs/bloomcal/internal/suncalc"
)

// filterParams lists the query parameters the dashboard forwards to the
// chart and export endpoints. They use the same grammar as the JSON API.
var filterParams = []string{"sun", "soil", "drought", "color", "season", "query"}

// PlantRow is a single row of the dashboard preview table. The swatch color
// is derived in the template via the displayColor function.
type PlantRow struct {
	ScientificName  string
	CommonName      string
	Sun             string
	SoilType        string
	DroughtTolerant string
	MatureSize      string
	FlowerColor     string
	BloomingSeason  string
	Seasons         []string
	ThumbnailURL    string
}

// FilterOptions holds the selectable values for the filter controls.
type FilterOptions struct {
	Sun             []string
	SoilTypes       []string
	DroughtTolerant []string
	FlowerColors    []string
	Seasons         []string
}

// SelectedFilters marks the current selections so the controls stay sticky
// across form submissions.
type SelectedFilters struct {
	Sun             map[string]bool
	SoilTypes       map[string]bool
	DroughtTolerant map[string]bool
	FlowerColors    map[string]bool
	Seasons         map[string]bool
	Query           string
}

// DashboardData is everything the dashboard template needs for one render.
type DashboardData struct {
	Plants        []PlantRow
	Total         int64
	PreviewRows   int
	FilterOptions FilterOptions
	Selected      SelectedFilters
	ChartURL      string
	ChartSVGURL   string
	MatrixURL     string
	MatrixSVGURL  string
	ExportURL     string
	Daylight      *suncalc.DaylightAdvice
}

// buildDashboardData assembles the preview table, filter controls and chart
// links for the current request.
func (s *Server) buildDashboardData(c echo.Context) (*DashboardData, error) {
	filters := api.FiltersFromQuery(c)

	total, err := s.DS.CountPlants(filters)
	if err != nil {
		return nil, err
	}

	previewRows := s.Settings.Dataset.PreviewRows
	if previewRows <= 0 {
		previewRows = 5
	}

	plants, err := s.DS.SearchPlants(filters, previewRows, 0)
	if err != nil {
		return nil, err
	}

	options, err := s.loadFilterOptions()
	if err != nil {
		return nil, err
	}

	vals := filterValues(c)

	data := &DashboardData{
		Plants:        make([]PlantRow, 0, len(plants)),
		Total:         total,
		PreviewRows:   previewRows,
		FilterOptions: options,
		Selected:      selectedFilters(filters),
		ChartURL:      apiURL("/api/v1/charts/seasons", vals),
		ChartSVGURL:   apiURL("/api/v1/charts/seasons", vals, "format", "svg"),
		MatrixURL:     apiURL("/api/v1/charts/bloom-matrix", vals),
		MatrixSVGURL:  apiURL("/api/v1/charts/bloom-matrix", vals, "format", "svg"),
		ExportURL:     apiURL("/api/v1/export/csv", vals),
	}
	for i := range plants {
		data.Plants = append(data.Plants, s.toPlantRow(&plants[i]))
	}

	// Today's daylight advice decorates the footer; a calculation failure
	// just leaves it off.
	if s.SunCalc != nil {
		if advice, adviceErr := s.SunCalc.DaylightAdvice(time.Now()); adviceErr == nil {
			data.Daylight = &advice
		}
	}

	return data, nil
}

// toPlantRow converts a datastore record into a table row. The thumbnail
// comes from the image cache only so page rendering never blocks on a
// provider fetch.
func (s *Server) toPlantRow(plant *datastore.Plant) PlantRow {
	row := PlantRow{
		ScientificName:  plant.ScientificName,
		CommonName:      plant.CommonName,
		Sun:             plant.Sun,
		SoilType:        plant.SoilType,
		DroughtTolerant: plant.DroughtTolerant,
		MatureSize:      plant.MatureSize,
		FlowerColor:     plant.FlowerColor,
		BloomingSeason:  plant.BloomingSeason,
		Seasons:         season.Names(season.Expand(plant.BloomingSeason)),
	}

	if s.Images != nil {
		if img, ok := s.Images.Cached(plant.ScientificName); ok {
			row.ThumbnailURL = img.URL
		}
	}

	return row
}

// loadFilterOptions collects the distinct values for each filter control.
func (s *Server) loadFilterOptions() (FilterOptions, error) {
	options := FilterOptions{
		Seasons: season.Names(season.Cycle()),
	}

	fields := []struct {
		column string
		dest   *[]string
	}{
		{"sun", &options.Sun},
		{"soil_type", &options.SoilTypes},
		{"drought_tolerant", &options.DroughtTolerant},
		{"flower_color", &options.FlowerColors},
	}
	for _, field := range fields {
		values, err := s.DS.DistinctValues(field.column)
		if err != nil {
			return options, err
		}
		*field.dest = values
	}

	return options, nil
}

// selectedFilters converts the parsed filter set into lookup maps for the
// templates.
func selectedFilters(filters *datastore.Filters) SelectedFilters {
	return SelectedFilters{
		Sun:             toSet(filters.Sun),
		SoilTypes:       toSet(filters.SoilTypes),
		DroughtTolerant: toSet(filters.DroughtTolerant),
		FlowerColors:    toSet(filters.FlowerColors),
		Seasons:         toSet(season.Names(filters.Seasons)),
		Query:           filters.Query,
	}
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// filterValues extracts the recognized filter parameters so chart and export
// links reproduce the current view.
func filterValues(c echo.Context) url.Values {
	params := c.QueryParams()
	vals := url.Values{}
	for _, key := range filterParams {
		if params.Has(key) {
			vals[key] = params[key]
		}
	}
	return vals
}

// apiURL builds an API link carrying the filter parameters plus optional
// extra key/value pairs.
func apiURL(path string, filters url.Values, extra ...string) string {
	vals := url.Values{}
	for key, values := range filters {
		vals[key] = values
	}
	for i := 0; i+1 < len(extra); i += 2 {
		vals.Set(extra[i], extra[i+1])
	}
	if len(vals) == 0 {
		return path
	}
	return path + "?" + vals.Encode()
}
