package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlabs/bloomcal/internal/errors"
	"github.com/verdantlabs/bloomcal/internal/season"
)

func TestMemoryStoreUpsertKeepsOneRowPerPlant(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore(seedPlants())

	require.NoError(t, store.SavePlants(seedPlants()))

	count, err := store.CountPlants(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(len(seedPlants())), count)

	plant, err := store.GetPlant("Rudbeckia hirta")
	require.NoError(t, err)
	assert.Equal(t, "Black-eyed Susan", plant.CommonName)
	assert.NotZero(t, plant.ID)
}

func TestMemoryStoreSearchMatchesSQLSemantics(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore(seedPlants())

	plants, err := store.SearchPlants(&Filters{Sun: []string{"Full Sun"}}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Echinacea purpurea",
		"Lavandula angustifolia",
		"Rudbeckia hirta",
		"Zinnia elegans",
	}, scientificNames(plants))

	plants, err = store.SearchPlants(&Filters{Seasons: []season.Season{season.Winter}}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Helleborus niger", "Viola hiemalis"}, scientificNames(plants))

	plants, err = store.SearchPlants(&Filters{SoilTypes: []string{}}, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, plants)

	plants, err = store.SearchPlants(&Filters{Query: "rose"}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Helleborus niger"}, scientificNames(plants))
}

func TestMemoryStoreDistinctValues(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore(seedPlants())

	values, err := store.DistinctValues("drought_tolerant")
	require.NoError(t, err)
	assert.Equal(t, []string{"No", "Yes"}, values)

	_, err = store.DistinctValues("common_name")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestMemoryStoreAnalytics(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore(seedPlants())

	counts, err := store.SeasonDescriptorCounts(nil)
	require.NoError(t, err)
	require.NotEmpty(t, counts)
	assert.Equal(t, DescriptorCount{Descriptor: "Summer", Count: 2}, counts[0])

	colorCounts, err := store.FlowerColorCounts(&Filters{Sun: []string{"Partial Shade"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []DescriptorCount{
		{Descriptor: "Blue-violet", Count: 1},
		{Descriptor: "White/Pink", Count: 1},
	}, colorCounts)
}

func TestMemoryStoreImageCache(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore(nil)

	cache, err := store.GetImageCache("Lavandula angustifolia")
	require.NoError(t, err)
	assert.Nil(t, cache)

	entry := &ImageCache{
		ProviderName:   "wikimedia",
		ScientificName: "Lavandula angustifolia",
		URL:            "https://upload.wikimedia.org/lavandula.jpg",
	}
	require.NoError(t, store.SaveImageCache(entry))

	cache, err = store.GetImageCache("Lavandula angustifolia")
	require.NoError(t, err)
	require.NotNil(t, cache)
	assert.Equal(t, entry.URL, cache.URL)

	caches, err := store.GetAllImageCaches()
	require.NoError(t, err)
	assert.Len(t, caches, 1)
}
