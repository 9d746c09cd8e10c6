package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/verdantlabs/bloomcal/cmd/chart"
	"github.com/verdantlabs/bloomcal/cmd/export"
	"github.com/verdantlabs/bloomcal/cmd/importcsv"
	"github.com/verdantlabs/bloomcal/cmd/serve"
	"github.com/verdantlabs/bloomcal/cmd/support"
	"github.com/verdantlabs/bloomcal/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bloomcal",
		Short: "Bloom Calendar CLI",
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	subcommands := []*cobra.Command{
		serve.Command(settings),
		importcsv.Command(settings),
		export.Command(settings),
		chart.Command(settings),
		support.Command(settings),
	}

	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}
