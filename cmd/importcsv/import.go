package importcsv

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/verdantlabs/bloomcal/internal/conf"
	"github.com/verdantlabs/bloomcal/internal/csvimport"
	"github.com/verdantlabs/bloomcal/internal/datastore"
)

// Command creates the import command, which loads a CSV dataset into the
// configured database.
func Command(settings *conf.Settings) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a plant dataset into the configured database",
		Long:  "Parse a CSV plant dataset and upsert its rows into the SQLite or MySQL store. Re-importing the same file is safe.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(settings, input)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", viper.GetString("dataset.path"), "Path to the CSV dataset to import")

	return cmd
}

func runImport(settings *conf.Settings, input string) error {
	store := datastore.New(settings, nil)
	if store == nil {
		return fmt.Errorf("no database output enabled, enable output.sqlite or output.mysql in the configuration")
	}

	if err := store.Open(); err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Printf("Failed to close database: %v\n", err)
		}
	}()

	result, err := csvimport.ReadFile(input)
	if err != nil {
		return err
	}

	if err := store.SavePlants(result.Plants); err != nil {
		return fmt.Errorf("failed to save plants: %w", err)
	}

	fmt.Printf("Imported %d plants from %s (%d rows read, %d skipped, %d duplicates)\n",
		len(result.Plants), input, result.RowsRead, result.RowsSkipped, result.Duplicates)

	return nil
}
