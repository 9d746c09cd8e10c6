package export

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/verdantlabs/bloomcal/internal/conf"
	"github.com/verdantlabs/bloomcal/internal/csvimport"
	"github.com/verdantlabs/bloomcal/internal/datastore"
	"github.com/verdantlabs/bloomcal/internal/season"
	"github.com/verdantlabs/bloomcal/internal/service"
)

// Command creates the export command, which writes filtered plants to a
// CSV file with the same columns the import command accepts.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		output  string
		sun     []string
		soil    []string
		drought []string
		color   []string
		seasons []string
		query   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export filtered plants to a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			filters := &datastore.Filters{Query: query}
			if cmd.Flags().Changed("sun") {
				filters.Sun = sun
			}
			if cmd.Flags().Changed("soil") {
				filters.SoilTypes = soil
			}
			if cmd.Flags().Changed("drought") {
				filters.DroughtTolerant = drought
			}
			if cmd.Flags().Changed("color") {
				filters.FlowerColors = color
			}
			if cmd.Flags().Changed("season") {
				filters.Seasons = parseSeasons(seasons)
			}
			return runExport(settings, filters, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "plants-export.csv", "Path of the CSV file to write")
	cmd.Flags().StringSliceVar(&sun, "sun", nil, "Only plants with these sun requirements")
	cmd.Flags().StringSliceVar(&soil, "soil", nil, "Only plants with these soil types")
	cmd.Flags().StringSliceVar(&drought, "drought", nil, "Only plants with these drought tolerance values")
	cmd.Flags().StringSliceVar(&color, "color", nil, "Only plants with these flower colors")
	cmd.Flags().StringSliceVar(&seasons, "season", nil, "Only plants blooming in these seasons")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Only plants whose name contains this text")

	return cmd
}

// parseSeasons canonicalizes the season tokens, dropping unknown ones the
// same way the dashboard filters do.
func parseSeasons(tokens []string) []season.Season {
	selected := make([]season.Season, 0, len(tokens))
	for _, token := range tokens {
		if s, ok := season.Parse(token); ok {
			selected = append(selected, s)
		}
	}
	return selected
}

func runExport(settings *conf.Settings, filters *datastore.Filters, output string) error {
	store, err := service.OpenDataStore(settings, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Printf("Failed to close database: %v\n", err)
		}
	}()

	plants, err := store.SearchPlants(filters, 0, 0)
	if err != nil {
		return err
	}

	if err := csvimport.WriteFile(output, plants); err != nil {
		return err
	}

	fmt.Printf("Exported %d plants to %s\n", len(plants), output)

	return nil
}
