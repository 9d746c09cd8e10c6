package serve

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/verdantlabs/bloomcal/internal/conf"
	"github.com/verdantlabs/bloomcal/internal/service"
)

// Command creates the serve command, which runs the dashboard and API
// servers until interrupted.
func Command(settings *conf.Settings) *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the bloom calendar dashboard",
		Long:  "Start the web dashboard and JSON API, backed by the configured database or a CSV dataset held in memory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("csv") {
				settings.Dataset.Path = csvPath
				settings.Output.SQLite.Enabled = false
				settings.Output.MySQL.Enabled = false
			}
			return service.Run(settings)
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "Serve plants straight from this CSV file instead of the database")

	// Set up flags specific to the 'serve' command
	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.WebServer.Port, "port", viper.GetString("webserver.port"), "Port for the dashboard web server")
	cmd.Flags().BoolVar(&settings.Telemetry.Enabled, "telemetry", viper.GetBool("telemetry.enabled"), "Enable the Prometheus metrics endpoint")
	cmd.Flags().StringVar(&settings.Telemetry.Listen, "listen", viper.GetString("telemetry.listen"), "Listen address and port of the metrics endpoint")

	// Bind flags to the viper settings
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}
