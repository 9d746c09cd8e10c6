//go:build ruleguard

package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// SlicesSort flags the typed sort helpers that predate the slices package.
//
// Old pattern:
//
//	sort.Strings(missing)
//	sort.Ints(counts)
//
// New pattern (Go 1.21+):
//
//	slices.Sort(missing)
//	slices.Sort(counts)
//
// sort.Slice with a custom less function is fine; this only covers the
// cases slices.Sort replaces outright.
//
// See: https://pkg.go.dev/slices#Sort
func SlicesSort(m dsl.Matcher) {
	m.Match(`sort.Strings($s)`).
		Report("use slices.Sort($s) instead of sort.Strings (Go 1.21+)").
		Suggest("slices.Sort($s)")

	m.Match(`sort.Ints($s)`).
		Report("use slices.Sort($s) instead of sort.Ints (Go 1.21+)").
		Suggest("slices.Sort($s)")

	m.Match(`sort.Float64s($s)`).
		Report("use slices.Sort($s) instead of sort.Float64s (Go 1.21+)").
		Suggest("slices.Sort($s)")

	m.Match(`sort.StringsAreSorted($s)`).
		Report("use slices.IsSorted($s) instead of sort.StringsAreSorted (Go 1.21+)").
		Suggest("slices.IsSorted($s)")
}

// SlicesClone flags append-based slice copies.
//
// Old pattern:
//
//	clone := append([]string(nil), values...)
//
// New pattern (Go 1.21+):
//
//	clone := slices.Clone(values)
//
// See: https://pkg.go.dev/slices#Clone
func SlicesClone(m dsl.Matcher) {
	m.Match(`append([]$typ(nil), $s...)`).
		Report("use slices.Clone($s) instead of append([]$typ(nil), $s...) (Go 1.21+)")

	m.Match(`append([]$typ{}, $s...)`).
		Report("use slices.Clone($s) instead of append([]$typ{}, $s...) (Go 1.21+)")

	m.Match(`append($s[:0:0], $s...)`).
		Report("use slices.Clone($s) instead of append($s[:0:0], $s...) (Go 1.21+)")
}

// SlicesContains flags hand-rolled linear membership scans.
//
// Old pattern:
//
//	found := false
//	for _, v := range names {
//	    if v == want {
//	        found = true
//	        break
//	    }
//	}
//
// New pattern (Go 1.21+):
//
//	found := slices.Contains(names, want)
//
// See: https://pkg.go.dev/slices#Contains
func SlicesContains(m dsl.Matcher) {
	m.Match(
		`for _, $v := range $s { if $v == $want { $found = true; break } }`,
		`for _, $v := range $s { if $v == $want { $found = true } }`,
	).
		Report("use $found = slices.Contains($s, $want) instead of a manual scan (Go 1.21+)")

	m.Match(
		`for _, $v := range $s { if $v == $want { return true } }; return false`,
	).
		Report("use return slices.Contains($s, $want) instead of a manual scan (Go 1.21+)")
}
