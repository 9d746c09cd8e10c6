package datastore

import (
	"time"
)

// Plant represents a single plant record from the garden dataset. Records
// are keyed by scientific name; re-importing the same dataset updates rows
// in place instead of duplicating them.
type Plant struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ScientificName  string    `gorm:"uniqueIndex;not null" json:"scientific_name"`
	CommonName      string    `gorm:"index" json:"common_name"`
	Sun             string    `gorm:"index" json:"sun"`
	SoilType        string    `gorm:"index" json:"soil_type"`
	DroughtTolerant string    `gorm:"index" json:"drought_tolerant"`
	MatureSize      string    `json:"mature_size"`
	FlowerColor     string    `gorm:"index" json:"flower_color"`
	BloomingSeason  string    `json:"blooming_season"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

// ImageCache stores image metadata fetched from an external provider so
// repeated dashboard loads do not hit the provider again.
type ImageCache struct {
	ID             uint      `gorm:"primaryKey"`
	ProviderName   string    `gorm:"index:idx_imagecache_provider_plant,unique;not null"`
	ScientificName string    `gorm:"index:idx_imagecache_provider_plant,unique;not null"`
	URL            string
	LicenseName    string
	LicenseURL     string
	AuthorName     string
	AuthorURL      string
	CachedAt       time.Time
}

// DescriptorCount pairs a raw field value with the number of plants
// carrying it. Used by the analytics queries.
type DescriptorCount struct {
	Descriptor string `json:"descriptor"`
	Count      int    `json:"count"`
}

// SeasonCount pairs a canonical season name with the number of plants
// whose expanded blooming descriptor includes it.
type SeasonCount struct {
	Season string `json:"season"`
	Count  int    `json:"count"`
}
