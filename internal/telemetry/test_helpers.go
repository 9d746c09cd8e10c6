package telemetry

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// TestingTB is the subset of testing.TB the helpers need, usable from
// both tests and benchmarks.
type TestingTB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// InitForTesting initializes Sentry with a mock transport so tests never
// send real data. The returned cleanup restores package state.
func InitForTesting(t TestingTB) (transport *MockTransport, cleanup func()) {
	t.Helper()

	transport = NewMockTransport()

	// An empty DSN with an explicit transport keeps everything in-process.
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         "",
		Transport:   transport,
		Environment: "test",
		Release:     "bloomcal@test",
		SampleRate:  1.0,
	})
	if err != nil {
		t.Fatalf("Failed to initialize Sentry for testing: %v", err)
	}

	testMode.Store(true)
	deferredMutex.Lock()
	sentryInitialized = true
	deferredMutex.Unlock()

	cleanup = func() {
		sentry.Flush(2 * time.Second)
		testMode.Store(false)

		deferredMutex.Lock()
		sentryInitialized = false
		deferredMessages = nil
		deferredMutex.Unlock()
	}

	return transport, cleanup
}
