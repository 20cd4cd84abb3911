package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"satfetch/pkg/mapping"
	"satfetch/pkg/property"
	"satfetch/pkg/ui"
)

var (
	mapImagesDir string
	mapOutFile   string
)

// mapCmd represents the map command
var mapCmd = &cobra.Command{
	Use:   "map <dataset.csv>",
	Short: "Build the property-to-image mapping manifest",
	Long: `Build a CSV manifest correlating each property in the dataset with its
expected local image path and whether that image exists on disk.

The manifest is a snapshot of the filesystem at the moment the command
runs; regenerate it after downloading or deleting images. Each run fully
overwrites the output file.`,
	Example: `  satfetch map data/cleaned_train.csv --images images/train --out data/train_image_mapping.csv`,
	Args:    cobra.ExactArgs(1),
	RunE:    runMap,
}

func init() {
	rootCmd.AddCommand(mapCmd)

	mapCmd.Flags().StringVarP(&mapImagesDir, "images", "i", "", "folder containing downloaded images")
	mapCmd.Flags().StringVarP(&mapOutFile, "out", "o", "", "path of the manifest CSV to write")
}

func runMap(cmd *cobra.Command, args []string) error {
	datasetPath := args[0]

	flags := map[string]interface{}{}
	if mapImagesDir != "" {
		flags["output"] = mapImagesDir
	}
	if mapOutFile != "" {
		flags["mapping-file"] = mapOutFile
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	properties, err := property.LoadFile(datasetPath)
	if err != nil {
		return err
	}

	entries, err := mapping.BuildAndWrite(properties, cfg.Output.ImagesDirectory, cfg.Output.MappingFile)
	if err != nil {
		return err
	}

	existing := mapping.ExistingCount(entries)
	ui.PrintInfo("Mapping", cfg.Output.MappingFile)
	ui.PrintInfo("Images available", fmt.Sprintf("%d of %d", existing, len(entries)))
	if existing < len(entries) {
		ui.PrintWarning("Some properties have no image yet", fmt.Sprintf("%d missing", len(entries)-existing))
	}

	return nil
}
