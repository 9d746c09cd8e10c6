// Package testutil provides shared helpers for tests that wait on
// asynchronous work, such as server shutdown or cache warm-up signals.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Common test timeout constants.
const (
	// DefaultTestTimeout is the standard timeout for async test operations.
	DefaultTestTimeout = 5 * time.Second

	// ShortTestTimeout is for operations expected to complete quickly.
	ShortTestTimeout = 1 * time.Second

	// LongTestTimeout is for operations that may take longer on loaded CI
	// runners.
	LongTestTimeout = 30 * time.Second
)

// WaitForChannel waits for a signal on the channel or fails the test after
// the timeout. Use it for done channels and completion signals.
func WaitForChannel(t *testing.T, ch <-chan struct{}, timeout time.Duration, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(timeout):
		require.Fail(t, msg)
	}
}

// WaitForGroup waits for a WaitGroup or fails the test after the timeout.
// It wraps the blocking Wait in a goroutine so a hung worker cannot hang
// the whole test run.
func WaitForGroup(t *testing.T, wg interface{ Wait() }, timeout time.Duration, msg string) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	WaitForChannel(t, done, timeout, msg)
}
