package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the satellite image fetcher
type Config struct {
	// Tile API settings
	API APIConfig `yaml:"api" json:"api"`

	// Batch download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Verification settings
	Verify VerifyConfig `yaml:"verify" json:"verify"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// APIConfig holds tile API configuration
type APIConfig struct {
	Token     string        `yaml:"token" json:"token"`
	ImageSize string        `yaml:"image_size" json:"image_size"`
	ZoomLevel int           `yaml:"zoom_level" json:"zoom_level"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
}

// DownloadConfig holds batch download configuration
type DownloadConfig struct {
	Delay            time.Duration `yaml:"delay" json:"delay"`
	ProgressInterval int           `yaml:"progress_interval" json:"progress_interval"`
}

// OutputConfig holds output location configuration
type OutputConfig struct {
	ImagesDirectory string `yaml:"images_directory" json:"images_directory"`
	MappingFile     string `yaml:"mapping_file" json:"mapping_file"`
	ReportFile      string `yaml:"report_file" json:"report_file"`
}

// VerifyConfig holds image verification configuration
type VerifyConfig struct {
	SampleSize int `yaml:"sample_size" json:"sample_size"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// imageSizePattern matches dimension strings like "256x256"
var imageSizePattern = regexp.MustCompile(`^\d+x\d+$`)

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			ImageSize: "256x256",
			ZoomLevel: 18,
			Timeout:   10 * time.Second,
		},
		Download: DownloadConfig{
			Delay:            200 * time.Millisecond,
			ProgressInterval: 50,
		},
		Output: OutputConfig{
			ImagesDirectory: "./images",
			MappingFile:     "./image_mapping.csv",
		},
		Verify: VerifyConfig{
			SampleSize: 20,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if token := os.Getenv("SATFETCH_API_TOKEN"); token != "" {
		c.API.Token = token
	}
	if size := os.Getenv("SATFETCH_IMAGE_SIZE"); size != "" {
		c.API.ImageSize = size
	}
	if zoom := os.Getenv("SATFETCH_ZOOM_LEVEL"); zoom != "" {
		val, err := strconv.Atoi(zoom)
		if err != nil {
			return fmt.Errorf("invalid SATFETCH_ZOOM_LEVEL: %w", err)
		}
		c.API.ZoomLevel = val
	}
	if timeout := os.Getenv("SATFETCH_TIMEOUT"); timeout != "" {
		val, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid SATFETCH_TIMEOUT: %w", err)
		}
		c.API.Timeout = val
	}
	if delay := os.Getenv("SATFETCH_DELAY"); delay != "" {
		val, err := time.ParseDuration(delay)
		if err != nil {
			return fmt.Errorf("invalid SATFETCH_DELAY: %w", err)
		}
		c.Download.Delay = val
	}
	if dir := os.Getenv("SATFETCH_IMAGES_DIR"); dir != "" {
		c.Output.ImagesDirectory = dir
	}
	if level := os.Getenv("SATFETCH_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".satfetch.yaml",
		".satfetch.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "satfetch", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".satfetch.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// MergeFlags merges command line flag values into the configuration
func (c *Config) MergeFlags(flags map[string]interface{}) {
	if token, ok := flags["token"].(string); ok && token != "" {
		c.API.Token = token
	}
	if size, ok := flags["size"].(string); ok && size != "" {
		c.API.ImageSize = size
	}
	if zoom, ok := flags["zoom"].(int); ok && zoom > 0 {
		c.API.ZoomLevel = zoom
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok && timeout > 0 {
		c.API.Timeout = timeout
	}
	if delay, ok := flags["delay"].(time.Duration); ok && delay >= 0 {
		c.Download.Delay = delay
	}
	if interval, ok := flags["progress-interval"].(int); ok && interval > 0 {
		c.Download.ProgressInterval = interval
	}
	if dir, ok := flags["output"].(string); ok && dir != "" {
		c.Output.ImagesDirectory = dir
	}
	if mapping, ok := flags["mapping-file"].(string); ok && mapping != "" {
		c.Output.MappingFile = mapping
	}
	if report, ok := flags["report"].(string); ok && report != "" {
		c.Output.ReportFile = report
	}
	if sample, ok := flags["sample"].(int); ok && sample > 0 {
		c.Verify.SampleSize = sample
	}
	if level, ok := flags["log-level"].(string); ok && level != "" {
		c.Logging.Level = level
	}
}

// Validate checks if the configuration is valid. The API token is validated
// separately by commands that actually talk to the tile API.
func (c *Config) Validate() error {
	var errs []error

	if !imageSizePattern.MatchString(c.API.ImageSize) {
		errs = append(errs, fmt.Errorf("image size must look like 256x256, got %q", c.API.ImageSize))
	}
	if c.API.ZoomLevel < 0 || c.API.ZoomLevel > 22 {
		errs = append(errs, errors.New("zoom level must be between 0 and 22"))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("API timeout must be positive"))
	}
	if c.Download.Delay < 0 {
		errs = append(errs, errors.New("download delay cannot be negative"))
	}
	if c.Download.ProgressInterval <= 0 {
		errs = append(errs, errors.New("progress interval must be positive"))
	}
	if c.Output.ImagesDirectory == "" {
		errs = append(errs, errors.New("images directory is required"))
	}
	if c.Verify.SampleSize <= 0 {
		errs = append(errs, errors.New("verification sample size must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: command line flags > environment variables > .env file > config file > defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".satfetch.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
