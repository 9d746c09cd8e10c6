package csvimport

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlabs/bloomcal/internal/datastore"
)

func exportPlants() []datastore.Plant {
	return []datastore.Plant{
		{
			ScientificName:  "Achillea millefolium",
			CommonName:      "Yarrow",
			Sun:             "Full Sun",
			SoilType:        "Loamy",
			DroughtTolerant: "Yes",
			MatureSize:      "2-3 ft",
			FlowerColor:     "White",
			BloomingSeason:  "Summer",
		},
		{
			ScientificName:  "Helleborus niger",
			CommonName:      "Christmas Rose",
			Sun:             "Full Shade",
			SoilType:        "Clay",
			DroughtTolerant: "No",
			MatureSize:      "1 ft",
			FlowerColor:     "White/Pink",
			BloomingSeason:  "Winter-Spring",
		},
	}
}

func TestWriteEmitsHeaderAndRows(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, exportPlants()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "Achillea millefolium", rows[1][0])
	assert.Equal(t, "Winter-Spring", rows[2][7], "raw descriptor survives unexpanded")
}

func TestWriteEmptySetStillHasHeader(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Header, rows[0])
}

func TestWriteFileRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "export.csv")
	plants := exportPlants()
	require.NoError(t, WriteFile(path, plants))

	result, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, plants, result.Plants)
	assert.Zero(t, result.RowsSkipped)
}

func TestWriteFileBadPath(t *testing.T) {
	t.Parallel()

	err := WriteFile(filepath.Join(t.TempDir(), "missing", "export.csv"), exportPlants())
	require.Error(t, err)
}
