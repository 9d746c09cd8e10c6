package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getsentry/sentry-go"

	"github.com/verdantlabs/bloomcal/internal/privacy"
)

func TestMockTransport(t *testing.T) {
	t.Run("SendEvent stores events", func(t *testing.T) {
		transport := NewMockTransport()

		transport.SendEvent(&sentry.Event{
			Message: "test event",
			Level:   sentry.LevelInfo,
		})

		if count := transport.GetEventCount(); count != 1 {
			t.Errorf("Expected 1 event, got %d", count)
		}

		captured := transport.GetLastEvent()
		if captured == nil {
			t.Fatal("Expected event to be captured")
		}
		if captured.Message != "test event" {
			t.Errorf("Expected message 'test event', got %s", captured.Message)
		}
	})

	t.Run("Clear removes all events", func(t *testing.T) {
		transport := NewMockTransport()

		for i := range 5 {
			transport.SendEvent(&sentry.Event{
				Message: fmt.Sprintf("event %d", i),
			})
		}

		if count := transport.GetEventCount(); count != 5 {
			t.Errorf("Expected 5 events, got %d", count)
		}

		transport.Clear()

		if count := transport.GetEventCount(); count != 0 {
			t.Errorf("Expected 0 events after clear, got %d", count)
		}
	})
}

func TestCaptureMessageScrubsSensitiveData(t *testing.T) {
	transport, cleanup := InitForTesting(t)
	defer cleanup()

	CaptureMessage("fetch failed for https://en.wikipedia.org/api/rest_v1/page/summary/Rosa", sentry.LevelWarning, "plantimages")

	if count := transport.GetEventCount(); count != 1 {
		t.Fatalf("Expected 1 event, got %d", count)
	}

	event := transport.GetLastEvent()
	if strings.Contains(event.Message, "wikipedia") {
		t.Errorf("event message leaked hostname: %q", event.Message)
	}
	if !strings.Contains(event.Message, "url-") {
		t.Errorf("expected anonymized URL in message, got %q", event.Message)
	}
	if event.Tags["component"] != "plantimages" {
		t.Errorf("expected component tag 'plantimages', got %q", event.Tags["component"])
	}
	if event.Level != sentry.LevelWarning {
		t.Errorf("expected warning level, got %s", event.Level)
	}
}

func TestCaptureErrorSetsComponentTag(t *testing.T) {
	transport, cleanup := InitForTesting(t)
	defer cleanup()

	CaptureError(errors.New("database is locked"), "datastore")

	event := transport.GetLastEvent()
	if event == nil {
		t.Fatal("Expected an event to be captured")
	}
	if event.Tags["component"] != "datastore" {
		t.Errorf("expected component tag 'datastore', got %q", event.Tags["component"])
	}
	if event.Level != sentry.LevelError {
		t.Errorf("expected error level, got %s", event.Level)
	}
	if len(event.Exception) == 0 || event.Exception[0].Value != "database is locked" {
		t.Errorf("expected exception value 'database is locked', got %+v", event.Exception)
	}
}

func TestCaptureIsNoOpWithoutOptIn(t *testing.T) {
	// Bind a live transport but leave opt-in off: capture must do nothing.
	transport := NewMockTransport()
	err := sentry.Init(sentry.ClientOptions{
		Dsn:       "",
		Transport: transport,
	})
	if err != nil {
		t.Fatalf("Failed to initialize Sentry: %v", err)
	}
	testMode.Store(false)

	CaptureMessage("should be dropped", sentry.LevelInfo, "test")
	CaptureError(errors.New("should be dropped"), "test")

	if count := transport.GetEventCount(); count != 0 {
		t.Errorf("Expected 0 events without opt-in, got %d", count)
	}
}

func TestDeferredMessagesFlushOnInit(t *testing.T) {
	transport, cleanup := InitForTesting(t)
	defer cleanup()

	// Simulate the pre-init phase.
	deferredMutex.Lock()
	sentryInitialized = false
	deferredMutex.Unlock()

	CaptureMessageDeferred("deferred warning", sentry.LevelWarning, "startup")

	if count := transport.GetEventCount(); count != 0 {
		t.Fatalf("deferred message should not be sent yet, got %d events", count)
	}

	if processed := processDeferredMessages(); processed != 1 {
		t.Errorf("Expected 1 processed deferred message, got %d", processed)
	}
	if count := transport.GetEventCount(); count != 1 {
		t.Errorf("Expected 1 event after processing, got %d", count)
	}

	// Once initialized, deferred capture sends immediately.
	CaptureMessageDeferred("immediate warning", sentry.LevelWarning, "startup")
	if count := transport.GetEventCount(); count != 2 {
		t.Errorf("Expected immediate delivery after init, got %d events", count)
	}
}

func TestApplyPrivacyFilters(t *testing.T) {
	t.Parallel()

	event := &sentry.Event{
		User:       sentry.User{ID: "someone", IPAddress: "10.0.0.2"},
		ServerName: "garden-pi",
		Contexts: map[string]sentry.Context{
			"device":      {"name": "host"},
			"os":          {"name": "linux"},
			"application": {"name": "bloomcal"},
		},
		Extra: map[string]any{
			"component":  "datastore",
			"error_type": "timeout",
			"dsn":        "secret",
		},
		Tags: map[string]string{
			"hostname":  "garden-pi",
			"component": "datastore",
		},
	}

	filtered := applyPrivacyFilters(event)

	if !filtered.User.IsEmpty() {
		t.Error("user data should be cleared")
	}
	if filtered.ServerName != "" {
		t.Error("server name should be cleared")
	}
	if _, ok := filtered.Contexts["device"]; ok {
		t.Error("device context should be removed")
	}
	if _, ok := filtered.Contexts["application"]; !ok {
		t.Error("application context should be kept")
	}
	if _, ok := filtered.Extra["dsn"]; ok {
		t.Error("unexpected extra fields should be removed")
	}
	if _, ok := filtered.Extra["component"]; !ok {
		t.Error("component extra should be kept")
	}
	if _, ok := filtered.Tags["hostname"]; ok {
		t.Error("hostname tag should be removed")
	}
	if filtered.Tags["component"] != "datastore" {
		t.Error("component tag should be kept")
	}
}

func TestLoadOrCreateSystemID(t *testing.T) {
	t.Parallel()

	configDir := t.TempDir()

	id, err := LoadOrCreateSystemID(configDir)
	if err != nil {
		t.Fatalf("LoadOrCreateSystemID() error: %v", err)
	}
	if !privacy.IsValidSystemID(id) {
		t.Errorf("generated ID %q is not valid", id)
	}

	// A second load returns the persisted ID.
	again, err := LoadOrCreateSystemID(configDir)
	if err != nil {
		t.Fatalf("LoadOrCreateSystemID() second call error: %v", err)
	}
	if id != again {
		t.Errorf("expected stable system ID, got %q then %q", id, again)
	}

	// Corrupt content is replaced with a fresh ID.
	idFile := filepath.Join(configDir, systemIDFile)
	if err := os.WriteFile(idFile, []byte("not-a-system-id"), 0o644); err != nil {
		t.Fatalf("failed to corrupt ID file: %v", err)
	}
	regenerated, err := LoadOrCreateSystemID(configDir)
	if err != nil {
		t.Fatalf("LoadOrCreateSystemID() after corruption error: %v", err)
	}
	if !privacy.IsValidSystemID(regenerated) {
		t.Errorf("regenerated ID %q is not valid", regenerated)
	}
	if regenerated == "not-a-system-id" {
		t.Error("invalid persisted ID should have been replaced")
	}
}
