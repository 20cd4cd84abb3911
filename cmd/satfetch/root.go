package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"satfetch/pkg/config"
	"satfetch/pkg/logger"
	"satfetch/pkg/ui"
)

var (
	// Version information, set via ldflags
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "satfetch",
	Short: "Download satellite imagery tiles for geocoded property datasets",
	Long: `satfetch acquires satellite imagery for property valuation datasets.

Given a property table with id, lat and long columns, it downloads one
satellite tile per property from the Mapbox Static Images API, skips
images that are already on disk, writes a mapping manifest correlating
property ids with local image paths, and spot-checks downloaded files
for corruption.

A typical dataset run:

  satfetch auth login
  satfetch fetch data/cleaned_train.csv --output images/train
  satfetch map data/cleaned_train.csv --images images/train --out data/train_image_mapping.csv
  satfetch verify --images images/train --sample 20`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet || logLevel == "error" {
			ui.SetQuietMode(true)
		}
		if cmd.Name() != "version" && cmd.Name() != "help" && cmd.Name() != "completion" {
			ui.PrintLogo()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .satfetch.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")

	rootCmd.SetVersionTemplate(`satfetch {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("satfetch %s (commit: %s, built: %s)\n", version, gitCommit, buildDate)
			fmt.Printf("Go Version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})
}

// loadConfig loads configuration with command-specific flag overrides and
// initializes the global logger.
func loadConfig(flags map[string]interface{}) (*config.Config, error) {
	if logLevel != "" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, nil
}
