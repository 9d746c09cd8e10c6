//go:build ruleguard

package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// TimeFormatConstants flags magic date/time layout strings that have named
// constants since Go 1.20. Log parsing and journald queries both format
// timestamps this way.
//
// Old pattern:
//
//	t.Format("2006-01-02 15:04:05")
//	time.Parse("2006-01-02", day)
//
// New pattern (Go 1.20+):
//
//	t.Format(time.DateTime)
//	time.Parse(time.DateOnly, day)
//
// See: https://pkg.go.dev/time#pkg-constants
func TimeFormatConstants(m dsl.Matcher) {
	m.Match(
		`$t.Format("2006-01-02 15:04:05")`,
	).
		Report(`use $t.Format(time.DateTime) instead of the magic layout string (Go 1.20+)`).
		Suggest(`$t.Format(time.DateTime)`)

	m.Match(
		`time.Parse("2006-01-02 15:04:05", $s)`,
	).
		Report(`use time.Parse(time.DateTime, $s) instead of the magic layout string (Go 1.20+)`).
		Suggest(`time.Parse(time.DateTime, $s)`)

	m.Match(
		`$t.Format("2006-01-02")`,
	).
		Report(`use $t.Format(time.DateOnly) instead of the magic layout string (Go 1.20+)`).
		Suggest(`$t.Format(time.DateOnly)`)

	m.Match(
		`time.Parse("2006-01-02", $s)`,
	).
		Report(`use time.Parse(time.DateOnly, $s) instead of the magic layout string (Go 1.20+)`).
		Suggest(`time.Parse(time.DateOnly, $s)`)

	m.Match(
		`$t.Format("15:04:05")`,
	).
		Report(`use $t.Format(time.TimeOnly) instead of the magic layout string (Go 1.20+)`).
		Suggest(`$t.Format(time.TimeOnly)`)

	m.Match(
		`time.Parse("15:04:05", $s)`,
	).
		Report(`use time.Parse(time.TimeOnly, $s) instead of the magic layout string (Go 1.20+)`).
		Suggest(`time.Parse(time.TimeOnly, $s)`)
}

// DeferredTimeSince flags time.Since passed directly to a deferred call.
// The duration is computed when the defer statement runs, so a query or
// render timed this way always reports ~0.
//
// Broken pattern:
//
//	start := time.Now()
//	defer logger.Info("done", "elapsed", time.Since(start))
//
// Correct pattern:
//
//	start := time.Now()
//	defer func() { logger.Info("done", "elapsed", time.Since(start)) }()
//
// See: https://pkg.go.dev/time#Since
func DeferredTimeSince(m dsl.Matcher) {
	m.Match(
		`defer $fn(time.Since($start))`,
		`defer $fn(time.Since($start), $*_)`,
		`defer $fn($*_, time.Since($start))`,
	).
		Report("time.Since($start) is evaluated at defer time, not at function exit; wrap the call in func() to measure the real duration")
}
