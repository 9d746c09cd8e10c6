// Package telemetry - integration with the error handling system
package telemetry

import (
	"github.com/verdantlabs/bloomcal/internal/conf"
	"github.com/verdantlabs/bloomcal/internal/errors"
	"github.com/verdantlabs/bloomcal/internal/privacy"
)

// InitializeErrorIntegration sets up the error package to report through
// telemetry when enabled.
func InitializeErrorIntegration() {
	settings := conf.GetSettings()
	enabled := settings != nil && settings.Sentry.Enabled

	reporter := errors.NewSentryReporter(enabled)
	errors.SetTelemetryReporter(reporter)

	errors.SetPrivacyScrubber(privacy.ScrubMessage)
}

// UpdateErrorIntegration updates the error integration when telemetry
// settings change at runtime.
func UpdateErrorIntegration(enabled bool) {
	reporter := errors.NewSentryReporter(enabled)
	errors.SetTelemetryReporter(reporter)
}
