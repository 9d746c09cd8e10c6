//go:build ruleguard

package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// BenchmarkLoop flags the classic b.N loop in favor of b.Loop, which keeps
// setup out of the measured region and defeats dead-code elimination.
//
// Old pattern:
//
//	for i := 0; i < b.N; i++ {
//	    Expand("Winter-Spring")
//	}
//
// New pattern (Go 1.24+):
//
//	for b.Loop() {
//	    Expand("Winter-Spring")
//	}
//
// See: https://pkg.go.dev/testing#B.Loop
func BenchmarkLoop(m dsl.Matcher) {
	m.Match(
		`for $i := 0; $i < $b.N; $i++ { $*body }`,
	).
		Where(m["b"].Type.Is("*testing.B")).
		Report("use for $b.Loop() { ... } instead of for $i := 0; $i < $b.N; $i++ (Go 1.24+)")

	m.Match(
		`for range $b.N { $*body }`,
	).
		Where(m["b"].Type.Is("*testing.B")).
		Report("use for $b.Loop() { ... } instead of for range $b.N (Go 1.24+)").
		Suggest("for $b.Loop() { $body }")
}

// TestingContext flags context.Background in test files. t.Context is
// canceled when the test ends, so goroutines and fetches started by the
// test get cleaned up even on failure.
//
// Old pattern:
//
//	_, err := cache.Get(context.Background(), "Rosa canina")
//
// New pattern (Go 1.24+):
//
//	_, err := cache.Get(t.Context(), "Rosa canina")
//
// See: https://pkg.go.dev/testing#T.Context
func TestingContext(m dsl.Matcher) {
	m.Match(
		`$ctx := context.Background()`,
		`$ctx = context.Background()`,
		`$ctx := context.TODO()`,
		`$ctx = context.TODO()`,
	).
		Where(m.File().Name.Matches(`_test\.go$`)).
		Report("in tests, use t.Context() for automatic cancellation when the test ends (Go 1.24+)")

	m.Match(
		`$fn(context.Background(), $*args)`,
		`$fn(context.TODO(), $*args)`,
	).
		Where(m.File().Name.Matches(`_test\.go$`)).
		Report("in tests, use t.Context() instead of context.Background() (Go 1.24+)")
}
