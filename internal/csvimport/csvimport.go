// Package csvimport reads plant datasets from CSV files into datastore
// records. Headers are normalized before matching, so "Flower Color",
// "flower-color" and "flower_color" all map to the same column.
package csvimport

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/verdantlabs/bloomcal/internal/datastore"
	"github.com/verdantlabs/bloomcal/internal/errors"
)

// RequiredColumns are the normalized header names a dataset must provide.
var RequiredColumns = []string{
	"scientific_name",
	"common_name",
	"sun",
	"soil_type",
	"drought_tolerant",
	"mature_size",
	"flower_color",
	"blooming_season",
}

// sniffLimit bounds how much of the stream is inspected to guess the
// field delimiter.
const sniffLimit = 4096

// Result carries the parsed plants along with row accounting for
// user-facing import summaries.
type Result struct {
	Plants      []datastore.Plant
	RowsRead    int // data rows seen, excluding the header
	RowsSkipped int // rows dropped for having no scientific name or too few fields
	Duplicates  int // rows replaced by a later row with the same scientific name
}

// ReadFile opens and parses a plant dataset. A missing or unreadable file
// is reported as a file error carrying the path, so callers can surface
// it directly to the user.
func ReadFile(path string) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.New(err).
			Component("csvimport").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Context("operation", "open_dataset").
			Build()
	}
	defer func() {
		if err := file.Close(); err != nil {
			getLogger().Warn("failed to close dataset file", "path", path, "error", err)
		}
	}()

	return Read(file, path)
}

// Read parses a plant dataset from the reader. The source string is used
// only for error context.
func Read(r io.Reader, source string) (*Result, error) {
	buffered := bufio.NewReader(r)
	delimiter := sniffDelimiter(buffered)

	reader := csv.NewReader(buffered)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1 // validated per row below
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.Newf("dataset is empty: %s", source).
				Component("csvimport").
				Category(errors.CategoryCSVParsing).
				Context("source", source).
				Build()
		}
		return nil, errors.New(err).
			Component("csvimport").
			Category(errors.CategoryCSVParsing).
			Context("source", source).
			Context("operation", "read_header").
			Build()
	}

	columns, err := mapColumns(header, source)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	seen := make(map[string]int)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.New(err).
				Component("csvimport").
				Category(errors.CategoryCSVParsing).
				Context("source", source).
				Context("row", result.RowsRead+1).
				Build()
		}

		result.RowsRead++
		plant, ok := recordToPlant(record, columns)
		if !ok {
			result.RowsSkipped++
			continue
		}

		if idx, dup := seen[plant.ScientificName]; dup {
			// Later rows win, mirroring the upsert behavior of the store.
			result.Plants[idx] = plant
			result.Duplicates++
			continue
		}
		seen[plant.ScientificName] = len(result.Plants)
		result.Plants = append(result.Plants, plant)
	}

	getLogger().Info("dataset parsed",
		"source", source,
		"plants", len(result.Plants),
		"rows_read", result.RowsRead,
		"rows_skipped", result.RowsSkipped,
		"duplicates", result.Duplicates)

	return result, nil
}

// mapColumns resolves the normalized header names to field indexes and
// reports every missing required column in one error.
func mapColumns(header []string, source string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		normalized := NormalizeHeader(name)
		if normalized == "" {
			continue
		}
		if _, exists := columns[normalized]; !exists {
			columns[normalized] = i
		}
	}

	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := columns[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, errors.Newf("dataset is missing required columns: %s", strings.Join(missing, ", ")).
			Component("csvimport").
			Category(errors.CategoryCSVParsing).
			Context("source", source).
			Context("missing_columns", strings.Join(missing, ", ")).
			Build()
	}

	return columns, nil
}

// NormalizeHeader lowercases a header cell and collapses spaces and
// hyphens to underscores. A UTF-8 byte order mark on the first cell is
// stripped.
func NormalizeHeader(name string) string {
	name = strings.TrimPrefix(name, "\uFEFF")
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	return name
}

// recordToPlant builds a plant from a data row. Rows too short to cover
// every required column, or without a scientific name, are rejected.
func recordToPlant(record []string, columns map[string]int) (datastore.Plant, bool) {
	field := func(name string) (string, bool) {
		idx := columns[name]
		if idx >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[idx]), true
	}

	for _, required := range RequiredColumns {
		if _, ok := field(required); !ok {
			return datastore.Plant{}, false
		}
	}

	scientificName, _ := field("scientific_name")
	if scientificName == "" {
		return datastore.Plant{}, false
	}

	commonName, _ := field("common_name")
	sun, _ := field("sun")
	soilType, _ := field("soil_type")
	droughtTolerant, _ := field("drought_tolerant")
	matureSize, _ := field("mature_size")
	flowerColor, _ := field("flower_color")
	bloomingSeason, _ := field("blooming_season")

	return datastore.Plant{
		ScientificName:  scientificName,
		CommonName:      commonName,
		Sun:             sun,
		SoilType:        soilType,
		DroughtTolerant: droughtTolerant,
		MatureSize:      matureSize,
		FlowerColor:     flowerColor,
		BloomingSeason:  bloomingSeason,
	}, true
}

// sniffDelimiter peeks at the stream and picks semicolon when it clearly
// outnumbers commas, which covers datasets exported by European locale
// spreadsheets. Defaults to comma.
func sniffDelimiter(r *bufio.Reader) rune {
	peeked, _ := r.Peek(sniffLimit)
	sample := string(peeked)
	if idx := strings.IndexByte(sample, '\n'); idx >= 0 {
		sample = sample[:idx]
	}

	if strings.Count(sample, ";") > strings.Count(sample, ",") {
		return ';'
	}
	return ','
}
