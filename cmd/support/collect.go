package support

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/verdantlabs/bloomcal/internal/conf"
	"github.com/verdantlabs/bloomcal/internal/support"
)

// CollectCommand creates the support data collection subcommand
func CollectCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Collect system diagnostics for troubleshooting",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("Collecting support data...")

			configPaths, err := conf.GetDefaultConfigPaths()
			if err != nil || len(configPaths) == 0 {
				configPaths = []string{"."}
			}

			collector := support.NewCollector(
				configPaths[0],
				".",
				settings.SystemID,
				settings.Version,
			)

			opts := support.DefaultCollectorOptions()

			ctx := context.Background()
			dump, err := collector.Collect(ctx, opts)
			if err != nil {
				return fmt.Errorf("error collecting support data: %w", err)
			}

			archiveData, err := collector.CreateArchive(ctx, dump, opts)
			if err != nil {
				return fmt.Errorf("error creating archive: %w", err)
			}

			filename := fmt.Sprintf("bloomcal-support-%s.zip", dump.ID)
			if err := os.WriteFile(filename, archiveData, 0o600); err != nil {
				return fmt.Errorf("error saving archive: %w", err)
			}

			fmt.Printf("Support data collected and saved to: %s\n", filename)
			return nil
		},
	}
}
