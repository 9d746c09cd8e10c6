//go:build ruleguard

// Package gorules defines custom linting rules for golangci-lint via
// ruleguard, aimed at keeping the codebase on current Go idioms.
package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// WaitGroupGo flags the manual Add/Done dance around goroutine launches.
// The long-running pieces (metrics endpoint, warm-up) wait on WaitGroups,
// and wg.Go removes the easy-to-miss Add/Done mismatch.
//
// Old pattern:
//
//	wg.Add(1)
//	go func() {
//	    defer wg.Done()
//	    serve()
//	}()
//
// New pattern (Go 1.25+):
//
//	wg.Go(func() {
//	    serve()
//	})
//
// See: https://pkg.go.dev/sync#WaitGroup.Go
func WaitGroupGo(m dsl.Matcher) {
	m.Match(
		`$wg.Add(1); go func() { defer $wg.Done(); $*body }()`,
	).
		Where(m["wg"].Type.Is("*sync.WaitGroup") || m["wg"].Type.Is("sync.WaitGroup")).
		Report("use $wg.Go(func() { $body }) instead of the manual Add/Done pattern (Go 1.25+)").
		Suggest("$wg.Go(func() { $body })")

	m.Match(
		`go func() { defer $wg.Done(); $*_ }()`,
	).
		Where(m["wg"].Type.Is("*sync.WaitGroup")).
		Report("use $wg.Go(func() { ... }) instead of go func() with defer $wg.Done() (Go 1.25+)")
}
