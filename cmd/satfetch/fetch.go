package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"satfetch/pkg/auth"
	"satfetch/pkg/config"
	"satfetch/pkg/downloader"
	"satfetch/pkg/fetcher"
	"satfetch/pkg/logger"
	"satfetch/pkg/mapbox"
	"satfetch/pkg/property"
	"satfetch/pkg/ratelimit"
	"satfetch/pkg/report"
	"satfetch/pkg/storage"
	"satfetch/pkg/ui"
)

var (
	fetchOutputDir        string
	fetchDelay            time.Duration
	fetchProgressInterval int
	fetchZoom             int
	fetchSize             string
	fetchTimeout          time.Duration
	fetchToken            string
	fetchReportFile       string
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <dataset.csv>",
	Short: "Download satellite images for every property in a dataset",
	Long: `Download one satellite tile per property in the given dataset.

The dataset is a CSV property table with at least id, lat and long
columns. One JPEG per property is written to the output folder as
property_<id>.jpg. Properties whose image already exists are skipped, so
rerunning a partially completed batch only downloads what is missing.

Per-property failures do not abort the run; they are counted and listed
in the final summary. The API token is taken from --token, the
SATFETCH_API_TOKEN environment variable, or the stored credential
(see 'satfetch auth login').`,
	Example: `  # Download the training set with defaults
  satfetch fetch data/cleaned_train.csv --output images/train

  # Slower pacing and a persisted run report
  satfetch fetch data/test.csv --output images/test --delay 500ms --report reports/test.json`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVarP(&fetchOutputDir, "output", "o", "", "output directory for images")
	fetchCmd.Flags().DurationVar(&fetchDelay, "delay", 200*time.Millisecond, "delay between tile requests")
	fetchCmd.Flags().IntVar(&fetchProgressInterval, "progress-interval", 50, "rows between progress reports")
	fetchCmd.Flags().IntVar(&fetchZoom, "zoom", 0, "zoom level (default 18)")
	fetchCmd.Flags().StringVar(&fetchSize, "size", "", "image dimensions (default 256x256)")
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 0, "per-request timeout (default 10s)")
	fetchCmd.Flags().StringVar(&fetchToken, "token", "", "tile API access token")
	fetchCmd.Flags().StringVar(&fetchReportFile, "report", "", "write run statistics to this JSON file")
}

func runFetch(cmd *cobra.Command, args []string) error {
	datasetPath := args[0]

	flags := map[string]interface{}{}
	if fetchOutputDir != "" {
		flags["output"] = fetchOutputDir
	}
	if cmd.Flags().Changed("delay") {
		flags["delay"] = fetchDelay
	}
	if cmd.Flags().Changed("progress-interval") {
		flags["progress-interval"] = fetchProgressInterval
	}
	if fetchZoom > 0 {
		flags["zoom"] = fetchZoom
	}
	if fetchSize != "" {
		flags["size"] = fetchSize
	}
	if fetchTimeout > 0 {
		flags["timeout"] = fetchTimeout
	}
	if fetchToken != "" {
		flags["token"] = fetchToken
	}
	if fetchReportFile != "" {
		flags["report"] = fetchReportFile
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	log := logger.GetLogger()

	token, err := resolveToken(cfg)
	if err != nil {
		return err
	}

	properties, err := property.LoadFile(datasetPath)
	if err != nil {
		return err
	}

	ui.PrintInfo("Dataset", datasetPath)
	ui.PrintInfo("Properties", fmt.Sprintf("%d", len(properties)))
	ui.PrintInfo("Output", cfg.Output.ImagesDirectory)

	// Output folder creation failure is the one fatal error class
	store, err := storage.NewManager(cfg.Output.ImagesDirectory)
	if err != nil {
		return err
	}

	client := mapbox.NewClient(token, cfg.API.ImageSize, cfg.API.ZoomLevel, cfg.API.Timeout, log)
	f := fetcher.New(client, log)
	limiter := ratelimit.NewRequestPacer(cfg.Download.Delay)

	dl := downloader.New(f, store, limiter, cfg.Download.ProgressInterval, log)
	dl.SetProgressFunc(ui.PrintProgress)

	stats := dl.Run(properties)
	ui.PrintSummary(stats)

	if cfg.Output.ReportFile != "" {
		r := report.New(datasetPath, cfg.Output.ImagesDirectory, stats)
		if err := report.Save(cfg.Output.ReportFile, r); err != nil {
			return fmt.Errorf("run finished but report could not be saved: %w", err)
		}
		ui.PrintInfo("Report", cfg.Output.ReportFile)
	}

	return nil
}

// resolveToken finds the API token from config/env/flags or the credential
// stores, in that order.
func resolveToken(cfg *config.Config) (string, error) {
	if cfg.API.Token != "" {
		return cfg.API.Token, nil
	}

	manager, err := auth.NewManager()
	if err != nil {
		return "", fmt.Errorf("failed to open token stores: %w", err)
	}
	token, source, err := manager.Retrieve()
	if err != nil {
		return "", fmt.Errorf("no API token configured: provide --token, set %s, or run 'satfetch auth login'", auth.TokenEnvVar)
	}

	logger.GetLogger().DebugWithFields("api token resolved", map[string]interface{}{
		"source": source,
	})
	return token, nil
}
