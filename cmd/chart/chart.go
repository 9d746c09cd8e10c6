package chart

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/verdantlabs/bloomcal/internal/chart"
	"github.com/verdantlabs/bloomcal/internal/conf"
	"github.com/verdantlabs/bloomcal/internal/service"
)

// Command creates the chart command, which renders a bloom chart straight
// to an image file without starting the web server.
func Command(settings *conf.Settings) *cobra.Command {
	var (
		output     string
		kind       string
		formatFlag string
		title      string
	)

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render a bloom chart to a PNG or SVG file",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := chart.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("format") && strings.HasSuffix(output, ".svg") {
				format = chart.FormatSVG
			}
			return runChart(settings, output, kind, format, title)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "bloom-chart.png", "Path of the image file to write")
	cmd.Flags().StringVar(&kind, "kind", "seasons", "Chart to render: seasons, descriptors or bloom-matrix")
	cmd.Flags().StringVar(&formatFlag, "format", "", "Image format: png or svg (default inferred from the output path)")
	cmd.Flags().StringVar(&title, "title", "", "Chart title (default depends on the chart kind)")

	return cmd
}

func runChart(settings *conf.Settings, output, kind string, format chart.Format, title string) error {
	store, err := service.OpenDataStore(settings, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Printf("Failed to close database: %v\n", err)
		}
	}()

	file, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}

	renderer := chart.NewRenderer(nil)

	switch kind {
	case "seasons":
		counts, err := store.SeasonCounts(nil)
		if err == nil {
			err = renderer.SeasonBar(file, counts, orDefault(title, "Plants in bloom by season"), format)
		}
		if err != nil {
			return closeAndRemove(file, output, err)
		}
	case "descriptors":
		counts, err := store.SeasonDescriptorCounts(nil)
		if err == nil {
			err = renderer.DescriptorBar(file, counts, orDefault(title, "Plants per blooming descriptor"), format)
		}
		if err != nil {
			return closeAndRemove(file, output, err)
		}
	case "bloom-matrix":
		plants, err := store.GetAllPlants()
		if err == nil {
			err = renderer.BloomMatrix(file, plants, format, orDefault(title, "Bloom calendar"))
		}
		if err != nil {
			return closeAndRemove(file, output, err)
		}
	default:
		return closeAndRemove(file, output, fmt.Errorf("unknown chart kind %q, expected seasons, descriptors or bloom-matrix", kind))
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	fmt.Printf("Rendered %s chart to %s\n", kind, output)

	return nil
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

// closeAndRemove cleans up the partially written output file after a
// render failure.
func closeAndRemove(file *os.File, path string, err error) error {
	_ = file.Close()
	_ = os.Remove(path)
	return err
}
