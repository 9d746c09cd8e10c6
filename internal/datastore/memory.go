package datastore

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/verdantlabs/bloomcal/internal/errors"
)

// MemoryStore implements Interface entirely in memory. It backs the chart
// and export commands, which load a CSV dataset without touching a
// database, and the API tests.
type MemoryStore struct {
	mu     sync.RWMutex
	plants map[string]Plant
	images map[string]ImageCache
	nextID uint
}

// NewMemoryStore creates an in-memory datastore pre-populated with the
// given plants.
func NewMemoryStore(plants []Plant) *MemoryStore {
	store := &MemoryStore{
		plants: make(map[string]Plant, len(plants)),
		images: make(map[string]ImageCache),
	}
	for i := range plants {
		store.savePlantLocked(&plants[i])
	}
	return store
}

// Open is a no-op for the in-memory store.
func (m *MemoryStore) Open() error { return nil }

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error { return nil }

// Optimize is a no-op for the in-memory store.
func (m *MemoryStore) Optimize(ctx context.Context) error { return nil }

// SavePlant inserts or updates a plant keyed by scientific name.
func (m *MemoryStore) SavePlant(plant *Plant) error {
	if plant == nil || plant.ScientificName == "" {
		return errors.Newf("plant scientific name cannot be empty").
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.savePlantLocked(plant)
	return nil
}

// SavePlants inserts or updates a batch of plants.
func (m *MemoryStore) SavePlants(plants []Plant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range plants {
		if plants[i].ScientificName == "" {
			return errors.Newf("plant scientific name cannot be empty").
				Component("datastore").
				Category(errors.CategoryValidation).
				Context("index", i).
				Build()
		}
		m.savePlantLocked(&plants[i])
	}
	return nil
}

func (m *MemoryStore) savePlantLocked(plant *Plant) {
	now := time.Now()
	if existing, ok := m.plants[plant.ScientificName]; ok {
		plant.ID = existing.ID
		plant.CreatedAt = existing.CreatedAt
	} else {
		m.nextID++
		plant.ID = m.nextID
		plant.CreatedAt = now
	}
	plant.UpdatedAt = now
	m.plants[plant.ScientificName] = *plant
}

// GetPlant retrieves a single plant by its scientific name.
func (m *MemoryStore) GetPlant(scientificName string) (Plant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plant, ok := m.plants[scientificName]
	if !ok {
		return Plant{}, errors.Newf("plant not found: %s", scientificName).
			Component("datastore").
			Category(errors.CategoryNotFound).
			Build()
	}
	return plant, nil
}

// GetAllPlants returns every plant ordered by scientific name.
func (m *MemoryStore) GetAllPlants() ([]Plant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedPlantsLocked(), nil
}

// SearchPlants returns the plants matching the filter set, ordered by
// scientific name.
func (m *MemoryStore) SearchPlants(filters *Filters, limit, offset int) ([]Plant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]Plant, 0, len(m.plants))
	for _, plant := range m.sortedPlantsLocked() {
		if filters.matches(&plant) {
			matched = append(matched, plant)
		}
	}
	return paginate(matched, limit, offset), nil
}

// CountPlants returns the number of plants matching the filter set.
func (m *MemoryStore) CountPlants(filters *Filters) (int64, error) {
	plants, err := m.SearchPlants(filters, 0, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(plants)), nil
}

// DistinctValues returns the sorted distinct non-empty values of a
// filterable field.
func (m *MemoryStore) DistinctValues(field string) ([]string, error) {
	if _, ok := filterableColumns[field]; !ok {
		return nil, errors.Newf("field is not filterable: %s", field).
			Component("datastore").
			Category(errors.CategoryValidation).
			Context("field", field).
			Build()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, plant := range m.plants {
		if v := fieldValue(&plant, field); v != "" {
			seen[v] = struct{}{}
		}
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	slices.Sort(values)
	return values, nil
}

func fieldValue(p *Plant, field string) string {
	switch field {
	case "sun":
		return p.Sun
	case "soil_type":
		return p.SoilType
	case "drought_tolerant":
		return p.DroughtTolerant
	case "flower_color":
		return p.FlowerColor
	case "blooming_season":
		return p.BloomingSeason
	default:
		return ""
	}
}

// SeasonCounts returns, for each canonical season in cycle order, how many
// matching plants bloom in it.
func (m *MemoryStore) SeasonCounts(filters *Filters) ([]SeasonCount, error) {
	plants, err := m.SearchPlants(filters, 0, 0)
	if err != nil {
		return nil, err
	}
	return expandedSeasonCounts(plants), nil
}

// SeasonDescriptorCounts returns how many matching plants carry each raw
// blooming descriptor.
func (m *MemoryStore) SeasonDescriptorCounts(filters *Filters) ([]DescriptorCount, error) {
	plants, err := m.SearchPlants(filters, 0, 0)
	if err != nil {
		return nil, err
	}
	return aggregateCounts(plants, func(p *Plant) string { return p.BloomingSeason }), nil
}

// FlowerColorCounts returns how many matching plants carry each flower color.
func (m *MemoryStore) FlowerColorCounts(filters *Filters) ([]DescriptorCount, error) {
	plants, err := m.SearchPlants(filters, 0, 0)
	if err != nil {
		return nil, err
	}
	return aggregateCounts(plants, func(p *Plant) string { return p.FlowerColor }), nil
}

// GetImageCache retrieves cached image metadata for a plant. A cache miss
// returns nil without an error.
func (m *MemoryStore) GetImageCache(scientificName string) (*ImageCache, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cache, ok := m.images[scientificName]
	if !ok {
		return nil, nil
	}
	return &cache, nil
}

// SaveImageCache stores image metadata keyed by scientific name.
func (m *MemoryStore) SaveImageCache(cache *ImageCache) error {
	if cache == nil || cache.ScientificName == "" {
		return errors.Newf("image cache entry requires a scientific name").
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
	}
	if cache.CachedAt.IsZero() {
		cache.CachedAt = time.Now()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[cache.ScientificName] = *cache
	return nil
}

// GetAllImageCaches retrieves every cached image record ordered by
// scientific name.
func (m *MemoryStore) GetAllImageCaches() ([]ImageCache, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	caches := make([]ImageCache, 0, len(m.images))
	for _, cache := range m.images {
		caches = append(caches, cache)
	}
	sort.Slice(caches, func(i, j int) bool {
		return caches[i].ScientificName < caches[j].ScientificName
	})
	return caches, nil
}

func (m *MemoryStore) sortedPlantsLocked() []Plant {
	plants := make([]Plant, 0, len(m.plants))
	for _, plant := range m.plants {
		plants = append(plants, plant)
	}
	sort.Slice(plants, func(i, j int) bool {
		return plants[i].ScientificName < plants[j].ScientificName
	})
	return plants
}
