// Package telemetry provides privacy-compliant, opt-in error tracking.
package telemetry

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/verdantlabs/bloomcal/internal/conf"
	"github.com/verdantlabs/bloomcal/internal/privacy"
)

// DeferredMessage is a message captured before Sentry initialization.
type DeferredMessage struct {
	Message   string
	Level     sentry.Level
	Component string
	Timestamp time.Time
}

var (
	sentryInitialized bool
	deferredMessages  []DeferredMessage
	deferredMutex     sync.Mutex
	testMode          atomic.Bool // bypasses the settings check in tests
)

// PlatformInfo holds privacy-safe platform information for telemetry.
type PlatformInfo struct {
	OS           string `json:"os"`
	Architecture string `json:"arch"`
	Container    bool   `json:"container"`
	NumCPU       int    `json:"num_cpu"`
	GoVersion    string `json:"go_version"`
}

// collectPlatformInfo gathers privacy-safe platform information.
func collectPlatformInfo() PlatformInfo {
	return PlatformInfo{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		Container:    conf.RunningInContainer(),
		NumCPU:       runtime.NumCPU(),
		GoVersion:    runtime.Version(),
	}
}

// InitSentry initializes the Sentry SDK with privacy-compliant settings.
// Reporting is opt-in: when Sentry is disabled in the settings this is a
// no-op.
func InitSentry(settings *conf.Settings) error {
	if !settings.Sentry.Enabled {
		getLogger().Info("error reporting is disabled (opt-in required)")
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:        settings.Sentry.DSN,
		SampleRate: 1.0,

		// Privacy-compliant settings: no stack traces, no hostname.
		AttachStacktrace: false,
		Environment:      "production",
		ServerName:       "",

		Release: fmt.Sprintf("bloomcal@%s", settings.Version),

		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			return applyPrivacyFilters(event)
		},
	})
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}

	configureScope(settings)

	deferredCount := processDeferredMessages()
	getLogger().Info("error reporting initialized",
		"system_id", settings.SystemID,
		"version", settings.Version,
		"deferred_messages", deferredCount)

	return nil
}

// applyPrivacyFilters strips user data, host identity and unexpected
// extra fields from an outgoing event.
func applyPrivacyFilters(event *sentry.Event) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
		delete(event.Contexts, "runtime")
	}

	for k := range event.Extra {
		if k != "error_type" && k != "component" {
			delete(event.Extra, k)
		}
	}

	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}

	return event
}

// configureScope sets the global scope tags shared by every event.
func configureScope(settings *conf.Settings) {
	platformInfo := collectPlatformInfo()

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("system_id", settings.SystemID)
		scope.SetTag("os", platformInfo.OS)
		scope.SetTag("arch", platformInfo.Architecture)
		scope.SetTag("container", fmt.Sprintf("%t", platformInfo.Container))

		scope.SetContext("application", map[string]any{
			"name":      "bloomcal",
			"version":   settings.Version,
			"system_id": settings.SystemID,
		})
		scope.SetContext("platform", map[string]any{
			"os":           platformInfo.OS,
			"architecture": platformInfo.Architecture,
			"container":    platformInfo.Container,
			"num_cpu":      platformInfo.NumCPU,
			"go_version":   platformInfo.GoVersion,
		})
	})
}

// processDeferredMessages flushes messages captured before initialization
// and returns how many there were.
func processDeferredMessages() int {
	deferredMutex.Lock()
	sentryInitialized = true
	messagesToProcess := make([]DeferredMessage, len(deferredMessages))
	copy(messagesToProcess, deferredMessages)
	deferredMessages = nil
	deferredMutex.Unlock()

	for i := range messagesToProcess {
		CaptureMessage(messagesToProcess[i].Message, messagesToProcess[i].Level, messagesToProcess[i].Component)
	}

	return len(messagesToProcess)
}

// enabled reports whether events may be sent at all.
func enabled() bool {
	if testMode.Load() {
		return true
	}
	settings := conf.GetSettings()
	return settings != nil && settings.Sentry.Enabled
}

// CaptureError captures an error with privacy-compliant context.
func CaptureError(err error, component string) {
	if !enabled() {
		return
	}

	scrubbedMessage := privacy.ScrubMessage(err.Error())

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", component)
		scope.SetContext("error", map[string]any{
			"type":             fmt.Sprintf("%T", err),
			"scrubbed_message": scrubbedMessage,
		})
		scope.SetFingerprint([]string{scrubbedMessage, component})

		event := sentry.NewEvent()
		event.Level = sentry.LevelError
		event.Message = scrubbedMessage
		event.Exception = []sentry.Exception{{
			Type:  fmt.Sprintf("%T", err),
			Value: scrubbedMessage,
		}}
		sentry.CaptureEvent(event)
	})
}

// CaptureMessage captures an informational message with privacy-compliant
// context.
func CaptureMessage(message string, level sentry.Level, component string) {
	if !enabled() {
		return
	}

	scrubbedMessage := privacy.ScrubMessage(message)

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", component)
		scope.SetLevel(level)
		sentry.CaptureMessage(scrubbedMessage)
	})
}

// CaptureMessageDeferred captures a message for later delivery when Sentry
// is not yet initialized, or sends it immediately when it is.
func CaptureMessageDeferred(message string, level sentry.Level, component string) {
	if !enabled() {
		return
	}

	deferredMutex.Lock()
	defer deferredMutex.Unlock()

	if sentryInitialized {
		CaptureMessage(message, level, component)
		return
	}

	deferredMessages = append(deferredMessages, DeferredMessage{
		Message:   message,
		Level:     level,
		Component: component,
		Timestamp: time.Now(),
	})
}

// Flush ensures all buffered events reach Sentry before shutdown.
func Flush(timeout time.Duration) {
	if !enabled() {
		return
	}
	sentry.Flush(timeout)
}
