// Package chart renders the bloom analytics as PNG or SVG images. Season
// bars show how many plants bloom per canonical season or per raw
// descriptor, the bloom matrix plots every plant against the seasons it
// flowers in.
package chart

import (
	"fmt"
	"io"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/verdantlabs/bloomcal/internal/datastore"
	"github.com/verdantlabs/bloomcal/internal/errors"
	"github.com/verdantlabs/bloomcal/internal/observability/metrics"
)

// ErrNoData is returned when a chart request matches no plants. Callers
// surface it as an informational message instead of an image.
var ErrNoData = errors.NewStd("chart contains no data")

// Format selects the image encoding for a rendered chart.
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

// ContentType returns the MIME type for serving a chart in this format.
func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// ParseFormat validates a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPNG, "":
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	default:
		return "", errors.Newf("unsupported chart format: %s", s).
			Component("chart").
			Category(errors.CategoryValidation).
			Context("format", s).
			Build()
	}
}

// Chart kinds used for metrics labels.
const (
	kindSeasonBar     = "season_bar"
	kindDescriptorBar = "descriptor_bar"
	kindBloomMatrix   = "bloom_matrix"
)

// Bar chart dimensions.
const (
	barChartWidth  = vg.Length(600)
	barChartHeight = vg.Length(400)
)

// Renderer draws charts and records render metrics when configured.
type Renderer struct {
	metrics *metrics.ChartMetrics
}

// NewRenderer creates a chart renderer. The metrics argument may be nil.
func NewRenderer(m *metrics.ChartMetrics) *Renderer {
	return &Renderer{metrics: m}
}

// BarData is a generic labeled bar series.
type BarData struct {
	Title  string
	YLabel string
	Labels []string
	Values []float64
}

// SeasonBarData converts expanded season totals into a bar series in
// cycle order.
func SeasonBarData(counts []datastore.SeasonCount, title string) BarData {
	data := BarData{Title: title, YLabel: "Plants in bloom"}
	for _, c := range counts {
		data.Labels = append(data.Labels, c.Season)
		data.Values = append(data.Values, float64(c.Count))
	}
	return data
}

// DescriptorBarData converts raw descriptor counts into a bar series,
// keeping the incoming order (count descending).
func DescriptorBarData(counts []datastore.DescriptorCount, title string) BarData {
	data := BarData{Title: title, YLabel: "Plants"}
	for _, c := range counts {
		data.Labels = append(data.Labels, c.Descriptor)
		data.Values = append(data.Values, float64(c.Count))
	}
	return data
}

// SeasonBar renders plants-per-season totals as a bar chart.
func (r *Renderer) SeasonBar(w io.Writer, counts []datastore.SeasonCount, title string, format Format) error {
	return r.renderBar(w, SeasonBarData(counts, title), format, kindSeasonBar)
}

// DescriptorBar renders raw blooming descriptor counts as a bar chart.
func (r *Renderer) DescriptorBar(w io.Writer, counts []datastore.DescriptorCount, title string, format Format) error {
	return r.renderBar(w, DescriptorBarData(counts, title), format, kindDescriptorBar)
}

func (r *Renderer) renderBar(w io.Writer, data BarData, format Format, kind string) error {
	start := time.Now()

	total := 0.0
	for _, v := range data.Values {
		total += v
	}
	if len(data.Values) == 0 || total == 0 {
		if r.metrics != nil {
			r.metrics.RecordEmptyChart(kind)
		}
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = data.Title
	p.Y.Label.Text = data.YLabel
	p.Y.Min = 0

	bars, err := plotter.NewBarChart(plotter.Values(data.Values), vg.Points(28))
	if err != nil {
		return r.renderFailed(kind, err)
	}
	bars.Color = plotutil.Color(2)
	bars.LineStyle.Width = 0

	p.Add(bars)
	p.NominalX(data.Labels...)

	if err := writePlot(w, p, barChartWidth, barChartHeight, format); err != nil {
		return r.renderFailed(kind, err)
	}

	if r.metrics != nil {
		r.metrics.RecordRender(kind, string(format), metrics.StatusSuccess)
		r.metrics.RecordRenderDuration(kind, string(format), time.Since(start).Seconds())
		r.metrics.RecordSeriesSize(kind, len(data.Values))
	}
	return nil
}

func (r *Renderer) renderFailed(kind string, err error) error {
	if r.metrics != nil {
		r.metrics.RecordRenderError(kind, "render_failed")
	}
	return errors.New(err).
		Component("chart").
		Category(errors.CategoryChartRender).
		Context("kind", kind).
		Build()
}

// writePlot encodes the plot into the requested format.
func writePlot(w io.Writer, p *plot.Plot, width, height vg.Length, format Format) error {
	writer, err := p.WriterTo(width, height, string(format))
	if err != nil {
		return fmt.Errorf("failed to prepare %s writer: %w", format, err)
	}
	if _, err := writer.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write %s chart: %w", format, err)
	}
	return nil
}
