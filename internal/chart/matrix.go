package chart

import (
	"image/color"
	"io"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/verdantlabs/bloomcal/internal/datastore"
	"github.com/verdantlabs/bloomcal/internal/observability/metrics"
	"github.com/verdantlabs/bloomcal/internal/season"
)

// Bloom matrix dimensions. Height grows with the number of plants so
// row labels stay readable.
const (
	matrixWidth     = vg.Length(650)
	matrixRowHeight = 22.0
	matrixMinHeight = vg.Length(220)
	matrixMaxHeight = vg.Length(1400)
	matrixGlyphSize = vg.Length(6)
)

// palette maps display color names from season.DisplayColor to chart
// point colors. Names outside the table fall back to slate gray.
var palette = map[string]color.RGBA{
	"white":    {R: 0xf5, G: 0xf5, B: 0xf0, A: 0xff},
	"beige":    {R: 0xe8, G: 0xdc, B: 0xb8, A: 0xff},
	"gold":     {R: 0xe6, G: 0xb8, B: 0x0c, A: 0xff},
	"orange":   {R: 0xf0, G: 0x8c, B: 0x1e, A: 0xff},
	"red":      {R: 0xd0, G: 0x32, B: 0x28, A: 0xff},
	"crimson":  {R: 0xa8, G: 0x14, B: 0x3c, A: 0xff},
	"pink":     {R: 0xf0, G: 0x96, B: 0xb4, A: 0xff},
	"magenta":  {R: 0xc8, G: 0x28, B: 0xa0, A: 0xff},
	"violet":   {R: 0x8c, G: 0x50, B: 0xc8, A: 0xff},
	"lavender": {R: 0xb4, G: 0xa0, B: 0xe6, A: 0xff},
	"plum":     {R: 0x96, G: 0x64, B: 0x96, A: 0xff},
	"blue":     {R: 0x3c, G: 0x6e, B: 0xc8, A: 0xff},
	"indigo":   {R: 0x46, G: 0x32, B: 0x96, A: 0xff},
	"green":    {R: 0x3c, G: 0x96, B: 0x50, A: 0xff},
	"brown":    {R: 0x8c, G: 0x64, B: 0x3c, A: 0xff},
	"gray":     {R: 0x8c, G: 0x8c, B: 0x8c, A: 0xff},
}

var fallbackColor = color.RGBA{R: 0x70, G: 0x78, B: 0x80, A: 0xff}

func pointColor(flowerColor string) color.RGBA {
	if c, ok := palette[season.DisplayColor(flowerColor)]; ok {
		return c
	}
	return fallbackColor
}

// BloomMatrix renders one row per plant with a point in every season the
// plant blooms in, colored by flower color. Plants are drawn in the
// incoming order with the first plant on the top row.
func (r *Renderer) BloomMatrix(w io.Writer, plants []datastore.Plant, format Format, title string) error {
	start := time.Now()

	var xys plotter.XYs
	var colors []color.RGBA
	rows := len(plants)
	for i := range plants {
		c := pointColor(plants[i].FlowerColor)
		for _, s := range season.Expand(plants[i].BloomingSeason) {
			xys = append(xys, plotter.XY{
				X: float64(season.Index(s)),
				Y: float64(rows - 1 - i),
			})
			colors = append(colors, c)
		}
	}
	if len(xys) == 0 {
		if r.metrics != nil {
			r.metrics.RecordEmptyChart(kindBloomMatrix)
		}
		return ErrNoData
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Season"

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return r.renderFailed(kindBloomMatrix, err)
	}
	scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  colors[i],
			Radius: matrixGlyphSize,
			Shape:  draw.CircleGlyph{},
		}
	}

	p.Add(plotter.NewGrid(), scatter)
	p.X.Tick.Marker = seasonTicks()
	p.Y.Tick.Marker = plantTicks(plants)
	p.X.Min, p.X.Max = -0.5, float64(len(season.Cycle()))-0.5
	p.Y.Min, p.Y.Max = -0.5, float64(rows)-0.5

	if err := writePlot(w, p, matrixWidth, matrixHeight(rows), format); err != nil {
		return r.renderFailed(kindBloomMatrix, err)
	}

	if r.metrics != nil {
		r.metrics.RecordRender(kindBloomMatrix, string(format), metrics.StatusSuccess)
		r.metrics.RecordRenderDuration(kindBloomMatrix, string(format), time.Since(start).Seconds())
		r.metrics.RecordSeriesSize(kindBloomMatrix, len(xys))
	}
	return nil
}

func matrixHeight(rows int) vg.Length {
	h := vg.Length(80 + matrixRowHeight*float64(rows))
	if h < matrixMinHeight {
		return matrixMinHeight
	}
	if h > matrixMaxHeight {
		return matrixMaxHeight
	}
	return h
}

func seasonTicks() plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, 0, len(season.Cycle()))
	for i, s := range season.Cycle() {
		ticks = append(ticks, plot.Tick{Value: float64(i), Label: string(s)})
	}
	return ticks
}

func plantTicks(plants []datastore.Plant) plot.ConstantTicks {
	rows := len(plants)
	ticks := make(plot.ConstantTicks, 0, rows)
	for i := range plants {
		ticks = append(ticks, plot.Tick{
			Value: float64(rows - 1 - i),
			Label: plants[i].ScientificName,
		})
	}
	return ticks
}
