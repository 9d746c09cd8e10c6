package main

import (
	"fmt"
	"os"
	"time"

	"github.com/verdantlabs/bloomcal/cmd"
	"github.com/verdantlabs/bloomcal/internal/conf"
	"github.com/verdantlabs/bloomcal/internal/logging"
	"github.com/verdantlabs/bloomcal/internal/telemetry"
)

// version and buildDate are set at build time via ldflags.
var (
	version   = "dev"
	buildDate = ""
)

func main() {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	settings.Version = version
	settings.BuildDate = buildDate

	initTelemetry(settings)

	if err := cmd.RootCommand(settings).Execute(); err != nil {
		telemetry.Flush(3 * time.Second)
		os.Exit(1)
	}

	telemetry.Flush(3 * time.Second)
}

// initTelemetry assigns the anonymous system ID and starts the opt-in
// Sentry integration. Failures here never block startup.
func initTelemetry(settings *conf.Settings) {
	configPaths, err := conf.GetDefaultConfigPaths()
	if err != nil || len(configPaths) == 0 {
		configPaths = []string{"."}
	}

	systemID, err := telemetry.LoadOrCreateSystemID(configPaths[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load system ID: %v\n", err)
	} else {
		settings.SystemID = systemID
	}

	if err := telemetry.InitSentry(settings); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize telemetry: %v\n", err)
	}
	telemetry.InitializeErrorIntegration()
}
