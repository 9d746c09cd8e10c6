//go:build ruleguard

package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// SplitIteration flags strings.Split results that are only ranged over.
// Descriptor parsing does a lot of comma splitting, and the Seq variants
// skip the intermediate slice.
//
// Old pattern:
//
//	for _, clause := range strings.Split(descriptor, ",") {
//	    process(clause)
//	}
//
// New pattern (Go 1.24+):
//
//	for clause := range strings.SplitSeq(descriptor, ",") {
//	    process(clause)
//	}
//
// Keep Split when the slice itself is needed (indexing, len, sorting).
//
// See: https://pkg.go.dev/strings#SplitSeq
func SplitIteration(m dsl.Matcher) {
	m.Match(
		`for $_, $part := range strings.Split($s, $sep) { $*body }`,
	).
		Where(!m["sep"].Text.Matches(`^"\\n"$`) && !m["sep"].Text.Matches(`^"\\r\\n"$`)).
		Report("use for $part := range strings.SplitSeq($s, $sep) to avoid the intermediate slice (Go 1.24+)")

	m.Match(
		`for $_, $field := range strings.Fields($s) { $*body }`,
	).
		Report("use for $field := range strings.FieldsSeq($s) to avoid the intermediate slice (Go 1.24+)")
}

// LineIteration flags newline splitting done just to walk lines, as in
// log or command-output parsing. strings.Lines also copes with \r\n.
//
// Old pattern:
//
//	for _, line := range strings.Split(output, "\n") {
//	    parse(line)
//	}
//
// New pattern (Go 1.24+):
//
//	for line := range strings.Lines(output) {
//	    parse(line)
//	}
//
// Note: Lines keeps the trailing newline on each line, so trim before
// comparing against "".
//
// See: https://pkg.go.dev/strings#Lines
func LineIteration(m dsl.Matcher) {
	m.Match(
		`for $_, $line := range strings.Split($s, "\n") { $*body }`,
	).
		Report(`use for $line := range strings.Lines($s) instead of ranging over strings.Split($s, "\n") (Go 1.24+); Lines keeps the \n terminator`)

	m.Match(
		`for $_, $line := range strings.Split($s, "\r\n") { $*body }`,
	).
		Report(`use for $line := range strings.Lines($s) instead of ranging over strings.Split($s, "\r\n") (Go 1.24+)`)
}
