// Package plantimages fetches plant thumbnails and attribution metadata
// from external image providers and caches the results in memory and in
// the datastore.
package plantimages

import (
	"context"
	"log/slog"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/verdantlabs/bloomcal/internal/conf"
	"github.com/verdantlabs/bloomcal/internal/datastore"
	"github.com/verdantlabs/bloomcal/internal/errors"
	"github.com/verdantlabs/bloomcal/internal/observability/metrics"
)

// ErrImageNotFound is returned when the provider has no usable image for a
// plant. Lookups that end here are negative cached so repeated dashboard
// loads do not keep issuing queries that cannot succeed.
var ErrImageNotFound = errors.NewStd("image not found")

const (
	// negativeTTL bounds how long a failed lookup suppresses new provider
	// queries for the same plant.
	negativeTTL = 15 * time.Minute

	// refreshInterval is how often the background loop rescans the
	// datastore for entries older than the configured TTL.
	refreshInterval = time.Hour

	memoryCleanupInterval = 10 * time.Minute
)

// PlantImage holds the metadata needed to render a plant thumbnail with
// proper attribution.
type PlantImage struct {
	URL            string    `json:"url"`
	ScientificName string    `json:"scientific_name"`
	LicenseName    string    `json:"license_name"`
	LicenseURL     string    `json:"license_url"`
	AuthorName     string    `json:"author_name"`
	AuthorURL      string    `json:"author_url"`
	CachedAt       time.Time `json:"cached_at"`
	SourceProvider string    `json:"source_provider"`
}

// Provider fetches image metadata for a plant from an external service.
type Provider interface {
	Fetch(ctx context.Context, scientificName string) (PlantImage, error)
}

// negativeEntry marks a scientific name the provider could not resolve.
// Expiry is handled by the memory cache TTL, so no state is needed.
type negativeEntry struct{}

// PlantImageCache caches provider results in memory and in the datastore.
// Memory misses fall through to the database; database misses trigger a
// provider fetch shared across concurrent callers for the same plant.
type PlantImageCache struct {
	provider     Provider
	providerName string

	memory *gocache.Cache
	flight singleflight.Group
	store  datastore.Interface
	ttl    time.Duration

	warmUpWorkers int

	metrics *metrics.ImageProviderMetrics
	logger  *slog.Logger

	quit        chan struct{}
	refreshDone chan struct{}
	closeOnce   sync.Once
}

// InitCache builds a cache around the given provider. The background
// refresh loop starts immediately and runs until Close is called.
func InitCache(providerName string, provider Provider, store datastore.Interface, settings *conf.Settings, m *metrics.ImageProviderMetrics) *PlantImageCache {
	ttl := time.Duration(settings.Images.CacheTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	c := &PlantImageCache{
		provider:      provider,
		providerName:  providerName,
		memory:        gocache.New(ttl, memoryCleanupInterval),
		store:         store,
		ttl:           ttl,
		warmUpWorkers: settings.Images.WarmUpWorkers,
		metrics:       m,
		logger:        getLogger(),
		quit:          make(chan struct{}),
		refreshDone:   make(chan struct{}),
	}
	c.startRefreshLoop()
	return c
}

// CreateDefaultCache builds the cache for the provider named in the
// configuration. The caller is expected to skip image support entirely
// when the provider is set to "none".
func CreateDefaultCache(settings *conf.Settings, m *metrics.ImageProviderMetrics, store datastore.Interface) (*PlantImageCache, error) {
	switch settings.Images.Provider {
	case wikiProviderName:
		provider, err := NewWikiMediaProvider(settings, m)
		if err != nil {
			return nil, err
		}
		return InitCache(wikiProviderName, provider, store, settings, m), nil
	default:
		return nil, errors.Newf("no image provider configured: %q", settings.Images.Provider).
			Component("plantimages").
			Category(errors.CategoryConfiguration).
			Context("provider", settings.Images.Provider).
			Build()
	}
}

// Get returns image metadata for a plant. Memory hits are served directly;
// misses fall through to the datastore and finally to the provider.
func (c *PlantImageCache) Get(ctx context.Context, scientificName string) (PlantImage, error) {
	if v, found := c.memory.Get(scientificName); found {
		if c.metrics != nil {
			c.metrics.IncrementCacheHits()
		}
		if img, ok := v.(PlantImage); ok {
			return img, nil
		}
		return PlantImage{}, ErrImageNotFound
	}
	if c.metrics != nil {
		c.metrics.IncrementCacheMisses()
	}

	v, err, _ := c.flight.Do(scientificName, func() (any, error) {
		return c.load(ctx, scientificName)
	})
	if err != nil {
		return PlantImage{}, err
	}
	return v.(PlantImage), nil
}

// Cached returns image metadata only if it is already present in memory or
// in the datastore. It never contacts the provider, which makes it suitable
// for list views that render many plants per request.
func (c *PlantImageCache) Cached(scientificName string) (PlantImage, bool) {
	if v, found := c.memory.Get(scientificName); found {
		if c.metrics != nil {
			c.metrics.IncrementCacheHits()
		}
		img, ok := v.(PlantImage)
		return img, ok
	}

	if img, ok := c.loadFromStore(scientificName); ok {
		c.memory.Set(scientificName, img, gocache.DefaultExpiration)
		c.updateCacheSize()
		return img, true
	}
	return PlantImage{}, false
}

// load resolves a memory miss. It runs inside the flight group, so only
// one caller per scientific name executes it at a time.
func (c *PlantImageCache) load(ctx context.Context, scientificName string) (PlantImage, error) {
	// Another caller may have completed while this one waited on the
	// flight group.
	if v, found := c.memory.Get(scientificName); found {
		if img, ok := v.(PlantImage); ok {
			return img, nil
		}
		return PlantImage{}, ErrImageNotFound
	}

	if img, ok := c.loadFromStore(scientificName); ok {
		c.memory.Set(scientificName, img, gocache.DefaultExpiration)
		c.updateCacheSize()
		return img, nil
	}

	return c.fetchAndStore(ctx, scientificName)
}

// loadFromStore hydrates a plant image from the datastore. Stale entries
// are still returned; the background refresh loop replaces them.
func (c *PlantImageCache) loadFromStore(scientificName string) (PlantImage, bool) {
	if c.store == nil {
		return PlantImage{}, false
	}

	entry, err := c.store.GetImageCache(scientificName)
	if err != nil {
		c.logger.Warn("image cache read failed",
			"scientific_name", scientificName, "error", err)
		return PlantImage{}, false
	}
	if entry == nil || entry.ProviderName != c.providerName {
		return PlantImage{}, false
	}
	return fromCacheEntry(entry), true
}

// fetchAndStore queries the provider and records the result in both cache
// levels. Not-found results are negative cached in memory only.
func (c *PlantImageCache) fetchAndStore(ctx context.Context, scientificName string) (PlantImage, error) {
	start := time.Now()
	img, err := c.provider.Fetch(ctx, scientificName)
	if err != nil {
		if errors.Is(err, ErrImageNotFound) {
			c.memory.Set(scientificName, negativeEntry{}, negativeTTL)
			c.updateCacheSize()
			return PlantImage{}, ErrImageNotFound
		}
		if c.metrics != nil {
			c.metrics.IncrementDownloadErrors()
		}
		return PlantImage{}, err
	}

	if c.metrics != nil {
		c.metrics.IncrementImageDownloads()
		c.metrics.ObserveDownloadDuration(time.Since(start).Seconds())
	}

	img.ScientificName = scientificName
	img.SourceProvider = c.providerName
	if img.CachedAt.IsZero() {
		img.CachedAt = time.Now()
	}

	c.memory.Set(scientificName, img, gocache.DefaultExpiration)
	c.updateCacheSize()
	c.saveToStore(&img)
	return img, nil
}

// saveToStore persists image metadata. Failures are logged and the memory
// entry keeps serving; the plant is simply refetched after a restart.
func (c *PlantImageCache) saveToStore(img *PlantImage) {
	if c.store == nil {
		return
	}
	if err := c.store.SaveImageCache(toCacheEntry(img)); err != nil {
		c.logger.Warn("failed to persist image metadata",
			"scientific_name", img.ScientificName, "error", err)
	}
}

// WarmUp prefetches images for the given plants with bounded concurrency.
// Individual lookup failures are logged and skipped so one bad record does
// not abort the pass.
func (c *PlantImageCache) WarmUp(ctx context.Context, scientificNames []string) error {
	if len(scientificNames) == 0 {
		return nil
	}
	workers := c.warmUpWorkers
	if workers < 1 {
		workers = 1
	}
	c.logger.Info("warming image cache",
		"plants", len(scientificNames), "workers", workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, name := range scientificNames {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if _, err := c.Get(gctx, name); err != nil && !errors.Is(err, ErrImageNotFound) {
				c.logger.Warn("image warm-up fetch failed",
					"scientific_name", name, "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// startRefreshLoop refreshes stale datastore entries in the background so
// dashboard requests rarely pay for a provider round trip.
func (c *PlantImageCache) startRefreshLoop() {
	go func() {
		defer close(c.refreshDone)
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-c.quit:
				return
			case <-ticker.C:
				c.refreshStaleEntries(context.Background())
			}
		}
	}()
}

// refreshStaleEntries refetches datastore entries older than the TTL. The
// provider's rate limiter paces the requests.
func (c *PlantImageCache) refreshStaleEntries(ctx context.Context) {
	if c.store == nil {
		return
	}

	entries, err := c.store.GetAllImageCaches()
	if err != nil {
		c.logger.Warn("stale image entry scan failed", "error", err)
		return
	}

	cutoff := time.Now().Add(-c.ttl)
	var stale []string
	for i := range entries {
		if entries[i].ProviderName != c.providerName {
			continue
		}
		if entries[i].CachedAt.Before(cutoff) {
			stale = append(stale, entries[i].ScientificName)
		}
	}
	if len(stale) == 0 {
		return
	}

	c.logger.Info("refreshing stale image entries", "count", len(stale))
	for _, name := range stale {
		select {
		case <-c.quit:
			return
		default:
		}
		if _, err := c.fetchAndStore(ctx, name); err != nil && !errors.Is(err, ErrImageNotFound) {
			c.logger.Warn("stale image entry refresh failed",
				"scientific_name", name, "error", err)
		}
	}
}

// Close stops the background refresh loop. It is safe to call more than
// once.
func (c *PlantImageCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.quit)
		<-c.refreshDone
	})
	return nil
}

func (c *PlantImageCache) updateCacheSize() {
	if c.metrics != nil {
		c.metrics.SetCacheSize(float64(c.memory.ItemCount()))
	}
}

func toCacheEntry(img *PlantImage) *datastore.ImageCache {
	return &datastore.ImageCache{
		ProviderName:   img.SourceProvider,
		ScientificName: img.ScientificName,
		URL:            img.URL,
		LicenseName:    img.LicenseName,
		LicenseURL:     img.LicenseURL,
		AuthorName:     img.AuthorName,
		AuthorURL:      img.AuthorURL,
		CachedAt:       img.CachedAt,
	}
}

func fromCacheEntry(entry *datastore.ImageCache) PlantImage {
	return PlantImage{
		URL:            entry.URL,
		ScientificName: entry.ScientificName,
		LicenseName:    entry.LicenseName,
		LicenseURL:     entry.LicenseURL,
		AuthorName:     entry.AuthorName,
		AuthorURL:      entry.AuthorURL,
		CachedAt:       entry.CachedAt,
		SourceProvider: entry.ProviderName,
	}
}
