// Package season converts free-text blooming season descriptors into
// canonical seasons and maps free-text flower color descriptions to
// renderable display colors. All functions are pure and safe for
// concurrent use.
package season

import (
	"slices"
	"strings"
)

// Season is a canonical season name.
type Season string

// Canonical seasons. Capitalization here is authoritative; parsing is
// case-insensitive but output always uses these forms.
const (
	Spring Season = "Spring"
	Summer Season = "Summer"
	Autumn Season = "Autumn"
	Winter Season = "Winter"
)

// cycle is the canonical season cycle. Range expansion wraps around the
// end of this sequence, and chart axes order seasons by it, so the two
// always agree. The cycle starts at Spring; "Autumn-Spring" therefore
// expands to Autumn, Winter, Spring.
var cycle = [...]Season{Spring, Summer, Autumn, Winter}

// rangeSeparator splits a range clause into its start and end tokens.
const rangeSeparator = "-"

// Cycle returns the canonical season cycle in order.
func Cycle() []Season {
	out := make([]Season, len(cycle))
	copy(out, cycle[:])
	return out
}

// Index returns the position of s in the canonical cycle, or -1 if s is
// not a canonical season.
func Index(s Season) int {
	for i := range cycle {
		if cycle[i] == s {
			return i
		}
	}
	return -1
}

// Parse canonicalizes a single season token. Matching is
// case-insensitive and ignores surrounding whitespace. The second
// return value reports whether the token named a canonical season.
func Parse(token string) (Season, bool) {
	token = strings.TrimSpace(token)
	for i := range cycle {
		if strings.EqualFold(token, string(cycle[i])) {
			return cycle[i], true
		}
	}
	return "", false
}

// Expand converts a raw blooming season descriptor into an ordered,
// deduplicated sequence of canonical seasons.
//
// The descriptor is split on commas into clauses. A clause is either a
// single season name or a range "A-B" covering every season from A to B
// inclusive along the canonical cycle, wrapping past the end of the
// cycle when A comes after B. Unrecognized tokens and malformed clauses
// are dropped silently; this is deliberate graceful degradation, not
// validation. Empty or whitespace-only input yields an empty result.
func Expand(descriptor string) []Season {
	if strings.TrimSpace(descriptor) == "" {
		return nil
	}

	var out []Season
	var seen [len(cycle)]bool
	emit := func(s Season) {
		if i := Index(s); i >= 0 && !seen[i] {
			seen[i] = true
			out = append(out, s)
		}
	}

	for clause := range strings.SplitSeq(descriptor, ",") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		if strings.Contains(clause, rangeSeparator) {
			expandRange(clause, emit)
			continue
		}
		if s, ok := Parse(clause); ok {
			emit(s)
		}
	}
	return out
}

// expandRange emits every season covered by a range clause. A clause
// whose start or end is not a canonical season is dropped as a whole.
func expandRange(clause string, emit func(Season)) {
	parts := strings.SplitN(clause, rangeSeparator, 2)
	start, ok := Parse(parts[0])
	if !ok {
		return
	}
	end, ok := Parse(parts[1])
	if !ok {
		return
	}

	from, to := Index(start), Index(end)
	if from <= to {
		for i := from; i <= to; i++ {
			emit(cycle[i])
		}
		return
	}
	// Wrapping range: tail of the cycle, then head through the end.
	for i := from; i < len(cycle); i++ {
		emit(cycle[i])
	}
	for i := 0; i <= to; i++ {
		emit(cycle[i])
	}
}

// Contains reports whether the descriptor's expanded seasons include s.
func Contains(descriptor string, s Season) bool {
	return slices.Contains(Expand(descriptor), s)
}

// Names converts a season sequence to plain strings, preserving order.
func Names(seasons []Season) []string {
	if len(seasons) == 0 {
		return nil
	}
	out := make([]string, len(seasons))
	for i, s := range seasons {
		out[i] = string(s)
	}
	return out
}
