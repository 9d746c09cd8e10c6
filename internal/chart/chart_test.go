package chart

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlabs/bloomcal/internal/datastore"
	"github.com/verdantlabs/bloomcal/internal/errors"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func seasonCounts() []datastore.SeasonCount {
	return []datastore.SeasonCount{
		{Season: "Spring", Count: 2},
		{Season: "Summer", Count: 5},
		{Season: "Autumn", Count: 3},
		{Season: "Winter", Count: 1},
	}
}

func matrixPlants() []datastore.Plant {
	return []datastore.Plant{
		{ScientificName: "Echinacea purpurea", FlowerColor: "Pale Purple", BloomingSeason: "Summer-Autumn"},
		{ScientificName: "Helleborus niger", FlowerColor: "White", BloomingSeason: "Winter-Spring"},
		{ScientificName: "Rudbeckia hirta", FlowerColor: "Gold", BloomingSeason: "Summer"},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	format, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, format, "empty format should default to PNG")

	format, err = ParseFormat("png")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, format)

	format, err = ParseFormat("svg")
	require.NoError(t, err)
	assert.Equal(t, FormatSVG, format)

	_, err = ParseFormat("gif")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestFormatContentType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "image/png", FormatPNG.ContentType())
	assert.Equal(t, "image/svg+xml", FormatSVG.ContentType())
}

func TestSeasonBarRendersPNG(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := NewRenderer(nil).SeasonBar(&buf, seasonCounts(), "Plants in bloom per season", FormatPNG)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic), "output should start with the PNG signature")
}

func TestSeasonBarRendersSVG(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := NewRenderer(nil).SeasonBar(&buf, seasonCounts(), "Plants in bloom per season", FormatSVG)
	require.NoError(t, err)

	svg := buf.String()
	assert.Contains(t, svg, "<svg")
	for _, label := range []string{"Spring", "Summer", "Autumn", "Winter"} {
		assert.Contains(t, svg, label, "season label should appear in the SVG text")
	}
}

func TestSeasonBarNoData(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := NewRenderer(nil)

	err := r.SeasonBar(&buf, nil, "empty", FormatPNG)
	assert.ErrorIs(t, err, ErrNoData)

	zeroes := []datastore.SeasonCount{
		{Season: "Spring", Count: 0},
		{Season: "Summer", Count: 0},
	}
	err = r.SeasonBar(&buf, zeroes, "all zero", FormatPNG)
	assert.ErrorIs(t, err, ErrNoData, "all-zero series should count as no data")
	assert.Zero(t, buf.Len(), "nothing should be written when there is no data")
}

func TestDescriptorBarRendersRawDescriptors(t *testing.T) {
	t.Parallel()

	counts := []datastore.DescriptorCount{
		{Descriptor: "Summer", Count: 4},
		{Descriptor: "Summer-Autumn", Count: 2},
		{Descriptor: "Winter-Spring", Count: 1},
	}

	var buf bytes.Buffer
	err := NewRenderer(nil).DescriptorBar(&buf, counts, "Blooming descriptors", FormatSVG)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Summer-Autumn", "raw descriptors should be kept unexpanded")
}

func TestBloomMatrixRendersPNG(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := NewRenderer(nil).BloomMatrix(&buf, matrixPlants(), FormatPNG, "Bloom calendar")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestBloomMatrixLabelsPlants(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := NewRenderer(nil).BloomMatrix(&buf, matrixPlants(), FormatSVG, "Bloom calendar")
	require.NoError(t, err)

	svg := buf.String()
	for _, p := range matrixPlants() {
		assert.Contains(t, svg, p.ScientificName)
	}
}

func TestBloomMatrixNoData(t *testing.T) {
	t.Parallel()

	r := NewRenderer(nil)
	var buf bytes.Buffer

	err := r.BloomMatrix(&buf, nil, FormatPNG, "empty")
	assert.ErrorIs(t, err, ErrNoData)

	// Plants whose descriptors contain no recognizable season produce no
	// points at all.
	unknown := []datastore.Plant{
		{ScientificName: "Mystery sp.", BloomingSeason: "Monsoon"},
	}
	err = r.BloomMatrix(&buf, unknown, FormatPNG, "unknown seasons")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestPointColor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, palette["violet"], pointColor("Pale Purple"))
	assert.Equal(t, palette["gold"], pointColor("Yellow"))
	assert.Equal(t, palette["gray"], pointColor(""))
	assert.Equal(t, fallbackColor, pointColor("Chartreuse"), "unmapped display colors use the fallback")
}

func TestMatrixHeightClampsToBounds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, matrixMinHeight, matrixHeight(1))
	assert.Equal(t, matrixMaxHeight, matrixHeight(500))

	mid := matrixHeight(20)
	assert.Greater(t, mid, matrixMinHeight)
	assert.Less(t, mid, matrixMaxHeight)
}

func TestSeasonBarDataPreservesCycleOrder(t *testing.T) {
	t.Parallel()

	data := SeasonBarData(seasonCounts(), "title")
	assert.Equal(t, []string{"Spring", "Summer", "Autumn", "Winter"}, data.Labels)
	assert.Equal(t, []float64{2, 5, 3, 1}, data.Values)
	assert.True(t, strings.HasPrefix(data.YLabel, "Plants"))
}
