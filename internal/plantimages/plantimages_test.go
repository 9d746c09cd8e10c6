package plantimages

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/verdantlabs/bloomcal/internal/conf"
	"github.com/verdantlabs/bloomcal/internal/datastore"
	"github.com/verdantlabs/bloomcal/internal/errors"
)

func TestMain(m *testing.M) {
	// go-cache stops its janitor through a finalizer, so it outlives the
	// caches created by these tests.
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"),
	)
}

// mockImageProvider serves canned images and counts fetches per plant.
type mockImageProvider struct {
	mu      sync.Mutex
	images  map[string]PlantImage
	fetches map[string]int
	delay   time.Duration
	err     error
}

func (m *mockImageProvider) Fetch(ctx context.Context, scientificName string) (PlantImage, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return PlantImage{}, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetches == nil {
		m.fetches = make(map[string]int)
	}
	m.fetches[scientificName]++

	if m.err != nil {
		return PlantImage{}, m.err
	}
	if img, ok := m.images[scientificName]; ok {
		return img, nil
	}
	return PlantImage{}, ErrImageNotFound
}

func (m *mockImageProvider) fetchCount(scientificName string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches[scientificName]
}

func testImage(scientificName string) PlantImage {
	return PlantImage{
		URL:            "https://upload.wikimedia.org/thumb/" + scientificName + ".jpg",
		ScientificName: scientificName,
		LicenseName:    "CC BY-SA 3.0",
		AuthorName:     "Test Author",
	}
}

func testSettings() *conf.Settings {
	settings := &conf.Settings{}
	settings.Images.Provider = wikiProviderName
	settings.Images.CacheTTLHours = 24
	settings.Images.RequestsPerSecond = 100
	settings.Images.Burst = 10
	settings.Images.WarmUpWorkers = 4
	return settings
}

func newTestCache(t *testing.T, provider Provider, store datastore.Interface) *PlantImageCache {
	t.Helper()
	cache := InitCache(wikiProviderName, provider, store, testSettings(), nil)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestCacheFetchesOnceAcrossCalls(t *testing.T) {
	provider := &mockImageProvider{
		images: map[string]PlantImage{"Echinacea purpurea": testImage("Echinacea purpurea")},
	}
	cache := newTestCache(t, provider, datastore.NewMemoryStore(nil))

	first, err := cache.Get(t.Context(), "Echinacea purpurea")
	require.NoError(t, err)
	assert.Equal(t, "Test Author", first.AuthorName)
	assert.Equal(t, wikiProviderName, first.SourceProvider)

	second, err := cache.Get(t.Context(), "Echinacea purpurea")
	require.NoError(t, err)
	assert.Equal(t, first.URL, second.URL)
	assert.Equal(t, 1, provider.fetchCount("Echinacea purpurea"))
}

func TestCacheSharesConcurrentFetches(t *testing.T) {
	provider := &mockImageProvider{
		images: map[string]PlantImage{"Rosa canina": testImage("Rosa canina")},
		delay:  50 * time.Millisecond,
	}
	cache := newTestCache(t, provider, datastore.NewMemoryStore(nil))

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			img, err := cache.Get(t.Context(), "Rosa canina")
			assert.NoError(t, err)
			assert.Equal(t, "Rosa canina", img.ScientificName)
		})
	}
	wg.Wait()

	assert.Equal(t, 1, provider.fetchCount("Rosa canina"))
}

func TestCacheNegativeCaching(t *testing.T) {
	provider := &mockImageProvider{}
	cache := newTestCache(t, provider, datastore.NewMemoryStore(nil))

	_, err := cache.Get(t.Context(), "Plantus imaginarius")
	assert.ErrorIs(t, err, ErrImageNotFound)

	_, err = cache.Get(t.Context(), "Plantus imaginarius")
	assert.ErrorIs(t, err, ErrImageNotFound)
	assert.Equal(t, 1, provider.fetchCount("Plantus imaginarius"))
}

func TestCacheHydratesFromDatastore(t *testing.T) {
	store := datastore.NewMemoryStore(nil)
	require.NoError(t, store.SaveImageCache(&datastore.ImageCache{
		ProviderName:   wikiProviderName,
		ScientificName: "Helleborus niger",
		URL:            "https://upload.wikimedia.org/thumb/Helleborus_niger.jpg",
		LicenseName:    "CC0",
		AuthorName:     "Museum Archive",
		CachedAt:       time.Now(),
	}))

	provider := &mockImageProvider{}
	cache := newTestCache(t, provider, store)

	img, err := cache.Get(t.Context(), "Helleborus niger")
	require.NoError(t, err)
	assert.Equal(t, "https://upload.wikimedia.org/thumb/Helleborus_niger.jpg", img.URL)
	assert.Equal(t, "Museum Archive", img.AuthorName)
	assert.Equal(t, 0, provider.fetchCount("Helleborus niger"))
}

func TestCacheCachedNeverContactsProvider(t *testing.T) {
	store := datastore.NewMemoryStore(nil)
	require.NoError(t, store.SaveImageCache(&datastore.ImageCache{
		ProviderName:   wikiProviderName,
		ScientificName: "Lavandula angustifolia",
		URL:            "https://upload.wikimedia.org/thumb/Lavandula_angustifolia.jpg",
		CachedAt:       time.Now(),
	}))

	provider := &mockImageProvider{
		images: map[string]PlantImage{"Salvia officinalis": testImage("Salvia officinalis")},
	}
	cache := newTestCache(t, provider, store)

	img, ok := cache.Cached("Lavandula angustifolia")
	require.True(t, ok)
	assert.Equal(t, "https://upload.wikimedia.org/thumb/Lavandula_angustifolia.jpg", img.URL)

	// The provider knows this plant, but Cached must not ask it.
	_, ok = cache.Cached("Salvia officinalis")
	assert.False(t, ok)
	assert.Equal(t, 0, provider.fetchCount("Salvia officinalis"))

	// Negative entries also report as absent.
	_, err := cache.Get(t.Context(), "Plantus imaginarius")
	require.ErrorIs(t, err, ErrImageNotFound)
	_, ok = cache.Cached("Plantus imaginarius")
	assert.False(t, ok)
}

func TestCachePersistsToDatastore(t *testing.T) {
	store := datastore.NewMemoryStore(nil)
	provider := &mockImageProvider{
		images: map[string]PlantImage{"Rudbeckia hirta": testImage("Rudbeckia hirta")},
	}
	cache := newTestCache(t, provider, store)

	_, err := cache.Get(t.Context(), "Rudbeckia hirta")
	require.NoError(t, err)

	entry, err := store.GetImageCache("Rudbeckia hirta")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, wikiProviderName, entry.ProviderName)
	assert.Equal(t, "https://upload.wikimedia.org/thumb/Rudbeckia hirta.jpg", entry.URL)
	assert.False(t, entry.CachedAt.IsZero())
}

func TestCacheSkipsEntriesFromOtherProviders(t *testing.T) {
	store := datastore.NewMemoryStore(nil)
	require.NoError(t, store.SaveImageCache(&datastore.ImageCache{
		ProviderName:   "inaturalist",
		ScientificName: "Echinacea purpurea",
		URL:            "https://static.inaturalist.org/echinacea.jpg",
		CachedAt:       time.Now(),
	}))

	provider := &mockImageProvider{
		images: map[string]PlantImage{"Echinacea purpurea": testImage("Echinacea purpurea")},
	}
	cache := newTestCache(t, provider, store)

	img, err := cache.Get(t.Context(), "Echinacea purpurea")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.fetchCount("Echinacea purpurea"))
	assert.NotEqual(t, "https://static.inaturalist.org/echinacea.jpg", img.URL)
}

func TestCacheWarmUpPrefetches(t *testing.T) {
	names := []string{"Echinacea purpurea", "Rosa canina", "Helleborus niger"}
	images := make(map[string]PlantImage, len(names))
	for _, name := range names {
		images[name] = testImage(name)
	}
	provider := &mockImageProvider{images: images}
	cache := newTestCache(t, provider, datastore.NewMemoryStore(nil))

	require.NoError(t, cache.WarmUp(t.Context(), names))
	for _, name := range names {
		assert.Equal(t, 1, provider.fetchCount(name), name)
	}

	// Warmed entries are served from memory.
	for _, name := range names {
		_, err := cache.Get(t.Context(), name)
		require.NoError(t, err)
		assert.Equal(t, 1, provider.fetchCount(name), name)
	}
}

func TestCacheWarmUpToleratesMissingImages(t *testing.T) {
	provider := &mockImageProvider{
		images: map[string]PlantImage{"Rosa canina": testImage("Rosa canina")},
	}
	cache := newTestCache(t, provider, datastore.NewMemoryStore(nil))

	err := cache.WarmUp(t.Context(), []string{"Rosa canina", "Plantus imaginarius"})
	require.NoError(t, err)
	assert.Equal(t, 1, provider.fetchCount("Rosa canina"))
	assert.Equal(t, 1, provider.fetchCount("Plantus imaginarius"))
}

func TestCacheRefreshReplacesStaleEntries(t *testing.T) {
	store := datastore.NewMemoryStore(nil)
	require.NoError(t, store.SaveImageCache(&datastore.ImageCache{
		ProviderName:   wikiProviderName,
		ScientificName: "Echinacea purpurea",
		URL:            "https://upload.wikimedia.org/thumb/old.jpg",
		CachedAt:       time.Now().Add(-48 * time.Hour),
	}))

	provider := &mockImageProvider{
		images: map[string]PlantImage{"Echinacea purpurea": testImage("Echinacea purpurea")},
	}
	cache := newTestCache(t, provider, store)

	cache.refreshStaleEntries(t.Context())

	assert.Equal(t, 1, provider.fetchCount("Echinacea purpurea"))
	entry, err := store.GetImageCache("Echinacea purpurea")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.NotEqual(t, "https://upload.wikimedia.org/thumb/old.jpg", entry.URL)
	assert.WithinDuration(t, time.Now(), entry.CachedAt, time.Minute)
}

func TestCacheCloseIsIdempotent(t *testing.T) {
	provider := &mockImageProvider{}
	cache := InitCache(wikiProviderName, provider, datastore.NewMemoryStore(nil), testSettings(), nil)

	require.NoError(t, cache.Close())
	require.NoError(t, cache.Close())
}

func TestCreateDefaultCache(t *testing.T) {
	t.Run("wikimedia", func(t *testing.T) {
		settings := testSettings()
		cache, err := CreateDefaultCache(settings, nil, datastore.NewMemoryStore(nil))
		require.NoError(t, err)
		require.NotNil(t, cache)
		require.NoError(t, cache.Close())
	})

	t.Run("none", func(t *testing.T) {
		settings := testSettings()
		settings.Images.Provider = "none"
		_, err := CreateDefaultCache(settings, nil, datastore.NewMemoryStore(nil))
		require.Error(t, err)
		assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
	})
}
