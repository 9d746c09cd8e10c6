package csvimport

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/verdantlabs/bloomcal/internal/datastore"
	"github.com/verdantlabs/bloomcal/internal/errors"
)

// Header is the column set written by exports. It matches RequiredColumns
// under NormalizeHeader, so an exported file imports back without editing.
var Header = []string{
	"Scientific Name",
	"Common Name",
	"Sun",
	"Soil Type",
	"Drought Tolerant",
	"Mature Size",
	"Flower Color",
	"Blooming Season",
}

// Write streams the plants as CSV preceded by Header.
func Write(w io.Writer, plants []datastore.Plant) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for i := range plants {
		row := []string{
			plants[i].ScientificName,
			plants[i].CommonName,
			plants[i].Sun,
			plants[i].SoilType,
			plants[i].DroughtTolerant,
			plants[i].MatureSize,
			plants[i].FlowerColor,
			plants[i].BloomingSeason,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}

// WriteFile writes the plants to path as a CSV dataset.
func WriteFile(path string, plants []datastore.Plant) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.New(err).
			Component("csvimport").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Context("operation", "create_export").
			Build()
	}

	writeErr := Write(file, plants)
	if closeErr := file.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		return errors.New(writeErr).
			Component("csvimport").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Context("operation", "write_export").
			Build()
	}

	getLogger().Info("dataset exported", "path", path, "plants", len(plants))
	return nil
}
