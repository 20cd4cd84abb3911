package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"satfetch/pkg/logger"
	"satfetch/pkg/ui"
	"satfetch/pkg/verify"
)

var (
	verifyImagesDir string
	verifySample    int
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Spot-check downloaded images for corruption",
	Long: `Decode a sample of the downloaded images to confirm each one parses as
a well-formed image. Corrupted files are counted and reported, never
deleted or re-downloaded.

The sample size is clamped to the number of files present; pass a sample
at least as large as the folder to check everything.`,
	Example: `  satfetch verify --images images/train --sample 20`,
	Args:    cobra.NoArgs,
	RunE:    runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVarP(&verifyImagesDir, "images", "i", "", "folder containing downloaded images")
	verifyCmd.Flags().IntVarP(&verifySample, "sample", "s", 0, "number of images to check (default 20)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	flags := map[string]interface{}{}
	if verifyImagesDir != "" {
		flags["output"] = verifyImagesDir
	}
	if verifySample > 0 {
		flags["sample"] = verifySample
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	report, err := verify.Sample(cfg.Output.ImagesDirectory, cfg.Verify.SampleSize, logger.GetLogger())
	if err != nil {
		return err
	}

	ui.PrintInfo("Checked", fmt.Sprintf("%d", report.TotalChecked))
	ui.PrintInfo("Valid", fmt.Sprintf("%d", report.ValidImages))
	if report.CorruptedImages > 0 {
		fmt.Printf("%s: %s\n", ui.Cyan("Corrupted"), ui.Red(fmt.Sprintf("%d", report.CorruptedImages)))
	} else {
		ui.PrintInfo("Corrupted", "0")
	}

	return nil
}
