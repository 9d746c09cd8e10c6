package datastore

import (
	"slices"
	"strings"

	"gorm.io/gorm"

	"github.com/verdantlabs/bloomcal/internal/season"
)

// Filters narrows plant queries. A nil slice means the category is
// unconstrained; a non-nil empty slice means the caller deselected every
// value and the query must match nothing. Seasons match against the
// expanded blooming descriptor, not the raw text.
type Filters struct {
	Sun             []string
	SoilTypes       []string
	DroughtTolerant []string
	FlowerColors    []string
	Seasons         []season.Season
	Query           string
}

// MatchesNothing reports whether any category carries an explicit empty
// selection, which short-circuits the query to zero rows.
func (f *Filters) MatchesNothing() bool {
	if f == nil {
		return false
	}
	return emptySelection(f.Sun) ||
		emptySelection(f.SoilTypes) ||
		emptySelection(f.DroughtTolerant) ||
		emptySelection(f.FlowerColors) ||
		(f.Seasons != nil && len(f.Seasons) == 0)
}

// HasSeasonFilter reports whether a season constraint is present. Season
// matching requires descriptor expansion and cannot be pushed into SQL.
func (f *Filters) HasSeasonFilter() bool {
	return f != nil && len(f.Seasons) > 0
}

func emptySelection(values []string) bool {
	return values != nil && len(values) == 0
}

// apply appends the SQL-expressible constraints to the query. Season
// constraints are applied separately in Go after the rows are fetched.
func (f *Filters) apply(tx *gorm.DB) *gorm.DB {
	if f == nil {
		return tx
	}
	if len(f.Sun) > 0 {
		tx = tx.Where("sun IN ?", f.Sun)
	}
	if len(f.SoilTypes) > 0 {
		tx = tx.Where("soil_type IN ?", f.SoilTypes)
	}
	if len(f.DroughtTolerant) > 0 {
		tx = tx.Where("drought_tolerant IN ?", f.DroughtTolerant)
	}
	if len(f.FlowerColors) > 0 {
		tx = tx.Where("flower_color IN ?", f.FlowerColors)
	}
	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		tx = tx.Where("scientific_name LIKE ? OR common_name LIKE ?", pattern, pattern)
	}
	return tx
}

// matchesSeasons reports whether the plant blooms in at least one of the
// selected seasons. Unknown descriptor tokens were already dropped by the
// expansion, so a plant with no recognizable seasons never matches.
func (f *Filters) matchesSeasons(p *Plant) bool {
	if !f.HasSeasonFilter() {
		return f == nil || f.Seasons == nil
	}
	expanded := season.Expand(p.BloomingSeason)
	for _, want := range f.Seasons {
		if slices.Contains(expanded, want) {
			return true
		}
	}
	return false
}

// matches evaluates the full filter set against a single plant. Used by
// the in-memory store and by tests; the SQL stores push everything except
// the season constraint into the query.
func (f *Filters) matches(p *Plant) bool {
	if f == nil {
		return true
	}
	if f.MatchesNothing() {
		return false
	}
	if len(f.Sun) > 0 && !containsString(f.Sun, p.Sun) {
		return false
	}
	if len(f.SoilTypes) > 0 && !containsString(f.SoilTypes, p.SoilType) {
		return false
	}
	if len(f.DroughtTolerant) > 0 && !containsString(f.DroughtTolerant, p.DroughtTolerant) {
		return false
	}
	if len(f.FlowerColors) > 0 && !containsString(f.FlowerColors, p.FlowerColor) {
		return false
	}
	if f.HasSeasonFilter() && !f.matchesSeasons(p) {
		return false
	}
	if f.Query != "" {
		needle := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(p.ScientificName), needle) &&
			!strings.Contains(strings.ToLower(p.CommonName), needle) {
			return false
		}
	}
	return true
}

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// filterBySeason keeps only the plants blooming in one of the selected
// seasons, preserving the incoming order.
func filterBySeason(plants []Plant, f *Filters) []Plant {
	if !f.HasSeasonFilter() {
		return plants
	}
	matched := make([]Plant, 0, len(plants))
	for i := range plants {
		if f.matchesSeasons(&plants[i]) {
			matched = append(matched, plants[i])
		}
	}
	return matched
}

// paginate slices the result set in Go. Used when the season filter
// prevents pushing LIMIT/OFFSET into SQL. A non-positive limit means no
// limit.
func paginate(plants []Plant, limit, offset int) []Plant {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(plants) {
		return []Plant{}
	}
	plants = plants[offset:]
	if limit > 0 && limit < len(plants) {
		plants = plants[:limit]
	}
	return plants
}
