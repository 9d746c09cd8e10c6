package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlabs/bloomcal/internal/conf"
	"github.com/verdantlabs/bloomcal/internal/errors"
	"github.com/verdantlabs/bloomcal/internal/season"
)

// createDatabase initializes a temporary SQLite database for testing.
// It ensures the database connection is opened and handles potential errors.
func createDatabase(t *testing.T, settings *conf.Settings) Interface {
	t.Helper()
	tempDir := t.TempDir()
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = tempDir + "/test.db"

	dataStore := New(settings, nil)

	require.NoError(t, dataStore.Open(), "Failed to open database")

	t.Cleanup(func() {
		assert.NoError(t, dataStore.Close(), "Failed to close datastore")
	})

	return dataStore
}

func seedPlants() []Plant {
	return []Plant{
		{
			ScientificName:  "Echinacea purpurea",
			CommonName:      "Purple Coneflower",
			Sun:             "Full Sun",
			SoilType:        "Loam",
			DroughtTolerant: "Yes",
			MatureSize:      "2-4 ft",
			FlowerColor:     "Pale Purple",
			BloomingSeason:  "Summer-Autumn",
		},
		{
			ScientificName:  "Helleborus niger",
			CommonName:      "Christmas Rose",
			Sun:             "Partial Shade",
			SoilType:        "Clay",
			DroughtTolerant: "No",
			MatureSize:      "1 ft",
			FlowerColor:     "White/Pink",
			BloomingSeason:  "Winter-Spring",
		},
		{
			ScientificName:  "Lavandula angustifolia",
			CommonName:      "English Lavender",
			Sun:             "Full Sun",
			SoilType:        "Sandy",
			DroughtTolerant: "Yes",
			MatureSize:      "2-3 ft",
			FlowerColor:     "Violet",
			BloomingSeason:  "Summer",
		},
		{
			ScientificName:  "Rudbeckia hirta",
			CommonName:      "Black-eyed Susan",
			Sun:             "Full Sun",
			SoilType:        "Loam",
			DroughtTolerant: "Yes",
			MatureSize:      "2-3 ft",
			FlowerColor:     "Gold",
			BloomingSeason:  "Summer",
		},
		{
			ScientificName:  "Viola hiemalis",
			CommonName:      "Winter Pansy",
			Sun:             "Partial Shade",
			SoilType:        "Loam",
			DroughtTolerant: "No",
			MatureSize:      "6 in",
			FlowerColor:     "Blue-violet",
			BloomingSeason:  "Autumn-Spring",
		},
		{
			ScientificName:  "Zinnia elegans",
			CommonName:      "Common Zinnia",
			Sun:             "Full Sun",
			SoilType:        "Loam",
			DroughtTolerant: "Yes",
			MatureSize:      "1-3 ft",
			FlowerColor:     "Red, Orange",
			BloomingSeason:  "Monsoon,Summer",
		},
	}
}

func seededDatabase(t *testing.T) Interface {
	t.Helper()
	store := createDatabase(t, &conf.Settings{})
	require.NoError(t, store.SavePlants(seedPlants()))
	return store
}

func scientificNames(plants []Plant) []string {
	names := make([]string, len(plants))
	for i := range plants {
		names[i] = plants[i].ScientificName
	}
	return names
}

func TestSavePlantsIsIdempotent(t *testing.T) {
	t.Parallel()
	store := createDatabase(t, &conf.Settings{})

	require.NoError(t, store.SavePlants(seedPlants()))
	require.NoError(t, store.SavePlants(seedPlants()))

	count, err := store.CountPlants(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(len(seedPlants())), count, "re-import must not duplicate rows")
}

func TestSavePlantUpdatesExistingRecord(t *testing.T) {
	t.Parallel()
	store := seededDatabase(t)

	updated := seedPlants()[2]
	updated.FlowerColor = "Lavender"
	require.NoError(t, store.SavePlant(&updated))

	plant, err := store.GetPlant("Lavandula angustifolia")
	require.NoError(t, err)
	assert.Equal(t, "Lavender", plant.FlowerColor)

	count, err := store.CountPlants(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(len(seedPlants())), count)
}

func TestGetPlantNotFound(t *testing.T) {
	t.Parallel()
	store := seededDatabase(t)

	_, err := store.GetPlant("Quercus imaginaria")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestSearchPlantsCategoricalFilters(t *testing.T) {
	t.Parallel()
	store := seededDatabase(t)

	plants, err := store.SearchPlants(&Filters{Sun: []string{"Full Sun"}}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Echinacea purpurea",
		"Lavandula angustifolia",
		"Rudbeckia hirta",
		"Zinnia elegans",
	}, scientificNames(plants))

	plants, err = store.SearchPlants(&Filters{
		SoilTypes:       []string{"Loam"},
		DroughtTolerant: []string{"No"},
	}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Viola hiemalis"}, scientificNames(plants))
}

func TestSearchPlantsEmptySelectionMatchesNothing(t *testing.T) {
	t.Parallel()
	store := seededDatabase(t)

	plants, err := store.SearchPlants(&Filters{FlowerColors: []string{}}, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, plants, "deselecting every value must yield zero rows")

	count, err := store.CountPlants(&Filters{Sun: []string{}})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSearchPlantsSeasonFilterUsesExpandedDescriptors(t *testing.T) {
	t.Parallel()
	store := seededDatabase(t)

	// Winter bloomers: Helleborus (Winter-Spring) and Viola, whose
	// Autumn-Spring range wraps through Winter.
	plants, err := store.SearchPlants(&Filters{Seasons: []season.Season{season.Winter}}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Helleborus niger", "Viola hiemalis"}, scientificNames(plants))

	// The Monsoon token on Zinnia is dropped, Summer still matches.
	plants, err = store.SearchPlants(&Filters{Seasons: []season.Season{season.Summer}}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Echinacea purpurea",
		"Lavandula angustifolia",
		"Rudbeckia hirta",
		"Zinnia elegans",
	}, scientificNames(plants))
}

func TestSearchPlantsQuerySubstring(t *testing.T) {
	t.Parallel()
	store := seededDatabase(t)

	plants, err := store.SearchPlants(&Filters{Query: "lavender"}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lavandula angustifolia"}, scientificNames(plants))
}

func TestSearchPlantsPaginationWithSeasonFilter(t *testing.T) {
	t.Parallel()
	store := seededDatabase(t)

	filters := &Filters{Seasons: []season.Season{season.Spring}}

	plants, err := store.SearchPlants(filters, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Viola hiemalis"}, scientificNames(plants))

	count, err := store.CountPlants(filters)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	plants, err = store.SearchPlants(filters, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, plants, "offset past the result set yields no rows")
}

func TestDistinctValues(t *testing.T) {
	t.Parallel()
	store := seededDatabase(t)

	values, err := store.DistinctValues("sun")
	require.NoError(t, err)
	assert.Equal(t, []string{"Full Sun", "Partial Shade"}, values)

	values, err = store.DistinctValues("soil_type")
	require.NoError(t, err)
	assert.Equal(t, []string{"Clay", "Loam", "Sandy"}, values)

	_, err = store.DistinctValues("mature_size")
	require.Error(t, err, "only filterable fields are allowed")
}

func TestSeasonCountsExpandRangesAndWrap(t *testing.T) {
	t.Parallel()
	store := seededDatabase(t)

	counts, err := store.SeasonCounts(nil)
	require.NoError(t, err)

	// Spring: Helleborus and Viola. Summer: Echinacea, Lavandula,
	// Rudbeckia, Zinnia. Autumn: Echinacea and Viola. Winter: Helleborus
	// and Viola via the wrapping Autumn-Spring range.
	assert.Equal(t, []SeasonCount{
		{Season: "Spring", Count: 2},
		{Season: "Summer", Count: 4},
		{Season: "Autumn", Count: 2},
		{Season: "Winter", Count: 2},
	}, counts)
}

func TestSeasonDescriptorCountsOrdering(t *testing.T) {
	t.Parallel()
	store := seededDatabase(t)

	counts, err := store.SeasonDescriptorCounts(nil)
	require.NoError(t, err)
	require.NotEmpty(t, counts)

	// "Summer" appears twice, every other descriptor once. Ties are
	// ordered by descriptor.
	assert.Equal(t, DescriptorCount{Descriptor: "Summer", Count: 2}, counts[0])
	for i := 1; i < len(counts); i++ {
		assert.Equal(t, 1, counts[i].Count)
		if i > 1 {
			assert.Less(t, counts[i-1].Descriptor, counts[i].Descriptor)
		}
	}
}

func TestFlowerColorCountsRespectsFilters(t *testing.T) {
	t.Parallel()
	store := seededDatabase(t)

	counts, err := store.FlowerColorCounts(&Filters{Sun: []string{"Partial Shade"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []DescriptorCount{
		{Descriptor: "Blue-violet", Count: 1},
		{Descriptor: "White/Pink", Count: 1},
	}, counts)
}

func TestImageCacheRoundTrip(t *testing.T) {
	t.Parallel()
	store := seededDatabase(t)

	cache, err := store.GetImageCache("Lavandula angustifolia")
	require.NoError(t, err)
	assert.Nil(t, cache, "cache miss returns nil without error")

	entry := &ImageCache{
		ProviderName:   "wikimedia",
		ScientificName: "Lavandula angustifolia",
		URL:            "https://upload.wikimedia.org/lavandula.jpg",
		LicenseName:    "CC BY-SA 4.0",
		AuthorName:     "A. Botanist",
	}
	require.NoError(t, store.SaveImageCache(entry))

	cache, err = store.GetImageCache("Lavandula angustifolia")
	require.NoError(t, err)
	require.NotNil(t, cache)
	assert.Equal(t, entry.URL, cache.URL)
	assert.False(t, cache.CachedAt.IsZero())

	// Saving again for the same provider and plant updates in place.
	entry.URL = "https://upload.wikimedia.org/lavandula_v2.jpg"
	require.NoError(t, store.SaveImageCache(entry))

	caches, err := store.GetAllImageCaches()
	require.NoError(t, err)
	require.Len(t, caches, 1)
	assert.Equal(t, "https://upload.wikimedia.org/lavandula_v2.jpg", caches[0].URL)
}
