package datastore

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/verdantlabs/bloomcal/internal/conf"
	"github.com/verdantlabs/bloomcal/internal/errors"
	"github.com/verdantlabs/bloomcal/internal/observability/metrics"
	"github.com/verdantlabs/bloomcal/internal/season"
)

// saveBatchSize is the number of plants written per INSERT during bulk saves.
const saveBatchSize = 200

// Interface defines the operations the plant datastore must provide.
type Interface interface {
	Open() error
	Close() error
	Optimize(ctx context.Context) error
	SavePlant(plant *Plant) error
	SavePlants(plants []Plant) error
	GetPlant(scientificName string) (Plant, error)
	GetAllPlants() ([]Plant, error)
	SearchPlants(filters *Filters, limit, offset int) ([]Plant, error)
	CountPlants(filters *Filters) (int64, error)
	DistinctValues(field string) ([]string, error)
	SeasonCounts(filters *Filters) ([]SeasonCount, error)
	SeasonDescriptorCounts(filters *Filters) ([]DescriptorCount, error)
	FlowerColorCounts(filters *Filters) ([]DescriptorCount, error)
	GetImageCache(scientificName string) (*ImageCache, error)
	SaveImageCache(cache *ImageCache) error
	GetAllImageCaches() ([]ImageCache, error)
}

// DataStore implements the shared portions of Interface using GORM. The
// SQLite and MySQL stores embed it and contribute their own Open and
// Optimize behavior.
type DataStore struct {
	DB      *gorm.DB
	metrics *metrics.DatastoreMetrics
}

// New creates a new datastore instance based on the provided configuration.
// It returns either a SQLiteStore or MySQLStore depending on the settings,
// or nil when no database output is enabled.
func New(settings *conf.Settings, dsMetrics *metrics.DatastoreMetrics) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			DataStore: DataStore{metrics: dsMetrics},
			Settings:  settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			DataStore: DataStore{metrics: dsMetrics},
			Settings:  settings,
		}
	default:
		return nil
	}
}

// fields that may be used with DistinctValues. Keys double as the API
// filter identifiers, values are the column names.
var filterableColumns = map[string]string{
	"sun":              "sun",
	"soil_type":        "soil_type",
	"drought_tolerant": "drought_tolerant",
	"flower_color":     "flower_color",
	"blooming_season":  "blooming_season",
}

// FilterableFields returns the field identifiers accepted by
// DistinctValues, sorted for stable presentation.
func FilterableFields() []string {
	fields := make([]string, 0, len(filterableColumns))
	for field := range filterableColumns {
		fields = append(fields, field)
	}
	slices.Sort(fields)
	return fields
}

// performAutoMigration runs GORM auto-migration for the plant schema.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&Plant{}, &ImageCache{}); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("db_type", dbType).
			Context("operation", "auto_migration").
			Build()
	}

	if debug {
		getLogger().Debug("database connection established",
			"db_type", dbType,
			"connection", connectionInfo)
	}

	return nil
}

// Close closes the underlying database connection.
func (ds *DataStore) Close() error {
	if ds.DB == nil {
		return nil
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "close").
			Build()
	}
	return sqlDB.Close()
}

// SavePlant inserts a plant or, when a record with the same scientific
// name already exists, updates it in place.
func (ds *DataStore) SavePlant(plant *Plant) error {
	if plant == nil {
		return errors.Newf("plant cannot be nil").
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
	}
	if plant.ScientificName == "" {
		return errors.Newf("plant scientific name cannot be empty").
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
	}

	var existing Plant
	err := ds.DB.Where("scientific_name = ?", plant.ScientificName).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = ds.DB.Create(plant).Error
	case err != nil:
		// fall through to the error wrap below
	default:
		plant.ID = existing.ID
		plant.CreatedAt = existing.CreatedAt
		err = ds.DB.Save(plant).Error
	}

	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "save_plant").
			Context("scientific_name", plant.ScientificName).
			Build()
	}
	return nil
}

// SavePlants bulk-upserts plant records keyed on scientific name. Importing
// the same dataset twice leaves one row per plant.
func (ds *DataStore) SavePlants(plants []Plant) error {
	if len(plants) == 0 {
		return nil
	}

	start := time.Now()
	err := ds.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "scientific_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"common_name", "sun", "soil_type", "drought_tolerant",
			"mature_size", "flower_color", "blooming_season", "updated_at",
		}),
	}).CreateInBatches(&plants, saveBatchSize).Error

	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "save_plants").
			Context("count", len(plants)).
			Build()
	}

	getLogger().Info("saved plants",
		"count", len(plants),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// GetPlant retrieves a single plant by its scientific name.
func (ds *DataStore) GetPlant(scientificName string) (Plant, error) {
	var plant Plant
	err := ds.DB.Where("scientific_name = ?", scientificName).First(&plant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Plant{}, errors.Newf("plant not found: %s", scientificName).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Build()
		}
		return Plant{}, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "get_plant").
			Context("scientific_name", scientificName).
			Build()
	}
	return plant, nil
}

// GetAllPlants retrieves every plant ordered by scientific name.
func (ds *DataStore) GetAllPlants() ([]Plant, error) {
	var plants []Plant
	if err := ds.DB.Order("scientific_name ASC").Find(&plants).Error; err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "get_all_plants").
			Build()
	}
	return plants, nil
}

// SearchPlants returns the plants matching the filter set, ordered by
// scientific name. Season constraints are evaluated in Go against the
// expanded blooming descriptors after the SQL-expressible filters ran. A
// non-positive limit disables pagination.
func (ds *DataStore) SearchPlants(filters *Filters, limit, offset int) ([]Plant, error) {
	start := time.Now()

	if filters.MatchesNothing() {
		ds.recordSearch(metrics.OpSearch, metrics.StatusSuccess, start, 0)
		return []Plant{}, nil
	}

	query := filters.apply(ds.DB.Model(&Plant{})).Order("scientific_name ASC")
	if !filters.HasSeasonFilter() {
		if limit > 0 {
			query = query.Limit(limit)
		}
		if offset > 0 {
			query = query.Offset(offset)
		}
	}

	var plants []Plant
	if err := query.Find(&plants).Error; err != nil {
		ds.recordSearch(metrics.OpSearch, metrics.StatusError, start, 0)
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "search_plants").
			Build()
	}

	if filters.HasSeasonFilter() {
		plants = paginate(filterBySeason(plants, filters), limit, offset)
	}

	ds.recordSearch(metrics.OpSearch, metrics.StatusSuccess, start, len(plants))
	return plants, nil
}

// CountPlants returns the number of plants matching the filter set.
func (ds *DataStore) CountPlants(filters *Filters) (int64, error) {
	if filters.MatchesNothing() {
		return 0, nil
	}

	if filters.HasSeasonFilter() {
		plants, err := ds.SearchPlants(filters, 0, 0)
		if err != nil {
			return 0, err
		}
		return int64(len(plants)), nil
	}

	var count int64
	if err := filters.apply(ds.DB.Model(&Plant{})).Count(&count).Error; err != nil {
		return 0, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "count_plants").
			Build()
	}
	return count, nil
}

// DistinctValues returns the sorted distinct non-empty values of a
// filterable field. The field name must be one of FilterableFields.
func (ds *DataStore) DistinctValues(field string) ([]string, error) {
	column, ok := filterableColumns[field]
	if !ok {
		return nil, errors.Newf("field is not filterable: %s", field).
			Component("datastore").
			Category(errors.CategoryValidation).
			Context("field", field).
			Build()
	}

	var values []string
	err := ds.DB.Model(&Plant{}).
		Distinct(column).
		Where(column + " <> ''").
		Order(column + " ASC").
		Pluck(column, &values).Error
	if err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "distinct_values").
			Context("field", field).
			Build()
	}
	return values, nil
}

// SeasonCounts returns, for each canonical season in cycle order, how many
// matching plants bloom in it. A plant with a range descriptor counts once
// for every season the range covers.
func (ds *DataStore) SeasonCounts(filters *Filters) ([]SeasonCount, error) {
	start := time.Now()

	plants, err := ds.SearchPlants(filters, 0, 0)
	if err != nil {
		ds.recordAnalytics("season_totals", metrics.StatusError, start)
		return nil, err
	}

	counts := expandedSeasonCounts(plants)
	ds.recordAnalytics("season_totals", metrics.StatusSuccess, start)
	return counts, nil
}

// expandedSeasonCounts tallies expanded blooming descriptors per canonical
// season, in cycle order.
func expandedSeasonCounts(plants []Plant) []SeasonCount {
	totals := make(map[season.Season]int, len(season.Cycle()))
	for i := range plants {
		for _, s := range season.Expand(plants[i].BloomingSeason) {
			totals[s]++
		}
	}

	counts := make([]SeasonCount, 0, len(season.Cycle()))
	for _, s := range season.Cycle() {
		counts = append(counts, SeasonCount{Season: string(s), Count: totals[s]})
	}
	return counts
}

// SeasonDescriptorCounts returns how many matching plants carry each raw
// blooming descriptor, ordered by count descending then descriptor.
func (ds *DataStore) SeasonDescriptorCounts(filters *Filters) ([]DescriptorCount, error) {
	return ds.fieldCounts("blooming_season", "season_descriptors", filters,
		func(p *Plant) string { return p.BloomingSeason })
}

// FlowerColorCounts returns how many matching plants carry each flower
// color, ordered by count descending then descriptor.
func (ds *DataStore) FlowerColorCounts(filters *Filters) ([]DescriptorCount, error) {
	return ds.fieldCounts("flower_color", "flower_colors", filters,
		func(p *Plant) string { return p.FlowerColor })
}

// fieldCounts aggregates a column over the filtered plants. When a season
// filter is present the aggregation happens in Go, otherwise it is pushed
// into a GROUP BY.
func (ds *DataStore) fieldCounts(column, analyticsType string, filters *Filters, value func(*Plant) string) ([]DescriptorCount, error) {
	start := time.Now()

	if filters.MatchesNothing() {
		ds.recordAnalytics(analyticsType, metrics.StatusSuccess, start)
		return []DescriptorCount{}, nil
	}

	if filters.HasSeasonFilter() {
		plants, err := ds.SearchPlants(filters, 0, 0)
		if err != nil {
			ds.recordAnalytics(analyticsType, metrics.StatusError, start)
			return nil, err
		}
		counts := aggregateCounts(plants, value)
		ds.recordAnalytics(analyticsType, metrics.StatusSuccess, start)
		return counts, nil
	}

	var counts []DescriptorCount
	err := filters.apply(ds.DB.Model(&Plant{})).
		Select(fmt.Sprintf("%s AS descriptor, COUNT(*) AS count", column)).
		Where(column + " <> ''").
		Group(column).
		Order("count DESC, descriptor ASC").
		Scan(&counts).Error
	if err != nil {
		ds.recordAnalytics(analyticsType, metrics.StatusError, start)
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", analyticsType).
			Build()
	}

	ds.recordAnalytics(analyticsType, metrics.StatusSuccess, start)
	return counts, nil
}

// aggregateCounts builds descriptor counts in Go with the same ordering
// as the SQL path: count descending, then descriptor ascending.
func aggregateCounts(plants []Plant, value func(*Plant) string) []DescriptorCount {
	tally := make(map[string]int)
	for i := range plants {
		if v := value(&plants[i]); v != "" {
			tally[v]++
		}
	}

	counts := make([]DescriptorCount, 0, len(tally))
	for descriptor, count := range tally {
		counts = append(counts, DescriptorCount{Descriptor: descriptor, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Descriptor < counts[j].Descriptor
	})
	return counts
}

// GetImageCache retrieves cached image metadata for a plant. A cache miss
// returns nil without an error.
func (ds *DataStore) GetImageCache(scientificName string) (*ImageCache, error) {
	var cache ImageCache
	err := ds.DB.Where("scientific_name = ?", scientificName).First(&cache).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ds.recordImageCache("get", "miss")
			return nil, nil
		}
		ds.recordImageCache("get", metrics.StatusError)
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryImageCache).
			Context("operation", "get_image_cache").
			Context("scientific_name", scientificName).
			Build()
	}
	ds.recordImageCache("get", "hit")
	return &cache, nil
}

// SaveImageCache upserts image metadata keyed on provider and scientific
// name.
func (ds *DataStore) SaveImageCache(cache *ImageCache) error {
	if cache == nil || cache.ScientificName == "" {
		return errors.Newf("image cache entry requires a scientific name").
			Component("datastore").
			Category(errors.CategoryValidation).
			Build()
	}
	if cache.CachedAt.IsZero() {
		cache.CachedAt = time.Now()
	}

	// Insert a copy with a zero ID so the conflict lands on the
	// provider/plant index rather than the primary key.
	record := *cache
	record.ID = 0
	err := ds.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "provider_name"}, {Name: "scientific_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"url", "license_name", "license_url", "author_name", "author_url", "cached_at",
		}),
	}).Create(&record).Error
	if err != nil {
		ds.recordImageCache("save", metrics.StatusError)
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryImageCache).
			Context("operation", "save_image_cache").
			Context("scientific_name", cache.ScientificName).
			Build()
	}

	ds.recordImageCache("save", metrics.StatusSuccess)
	return nil
}

// GetAllImageCaches retrieves every cached image record.
func (ds *DataStore) GetAllImageCaches() ([]ImageCache, error) {
	var caches []ImageCache
	if err := ds.DB.Find(&caches).Error; err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryImageCache).
			Context("operation", "get_all_image_caches").
			Build()
	}
	if ds.metrics != nil {
		ds.metrics.UpdateImageCacheSize(len(caches))
	}
	return caches, nil
}

func (ds *DataStore) recordSearch(searchType, status string, start time.Time, resultSize int) {
	if ds.metrics == nil {
		return
	}
	ds.metrics.RecordSearchOperation(searchType, status)
	ds.metrics.RecordSearchDuration(searchType, time.Since(start).Seconds())
	if status == metrics.StatusSuccess {
		ds.metrics.RecordSearchResultSize(searchType, resultSize)
	}
}

func (ds *DataStore) recordAnalytics(analyticsType, status string, start time.Time) {
	if ds.metrics == nil {
		return
	}
	ds.metrics.RecordAnalyticsOperation(analyticsType, status)
	ds.metrics.RecordAnalyticsDuration(analyticsType, time.Since(start).Seconds())
}

func (ds *DataStore) recordImageCache(operation, status string) {
	if ds.metrics == nil {
		return
	}
	ds.metrics.RecordImageCacheOperation(operation, status)
}
