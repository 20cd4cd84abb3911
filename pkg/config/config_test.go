package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "256x256", cfg.API.ImageSize)
	assert.Equal(t, 18, cfg.API.ZoomLevel)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 200*time.Millisecond, cfg.Download.Delay)
	assert.Equal(t, 50, cfg.Download.ProgressInterval)
	assert.Equal(t, 20, cfg.Verify.SampleSize)
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	content := `
api:
  image_size: 512x512
  zoom_level: 16
download:
  delay: 500ms
  progress_interval: 25
output:
  images_directory: /data/images/train
logging:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "512x512", cfg.API.ImageSize)
	assert.Equal(t, 16, cfg.API.ZoomLevel)
	assert.Equal(t, 500*time.Millisecond, cfg.Download.Delay)
	assert.Equal(t, 25, cfg.Download.ProgressInterval)
	assert.Equal(t, "/data/images/train", cfg.Output.ImagesDirectory)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Values absent from the file keep their defaults
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [broken"), 0644))

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(path))
}

func TestLoadFromFileMissingIsNotAnError(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.LoadFromFile(""))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SATFETCH_API_TOKEN", "pk.env-token")
	t.Setenv("SATFETCH_IMAGE_SIZE", "640x640")
	t.Setenv("SATFETCH_ZOOM_LEVEL", "15")
	t.Setenv("SATFETCH_DELAY", "1s")
	t.Setenv("SATFETCH_IMAGES_DIR", "/env/images")
	t.Setenv("SATFETCH_LOG_LEVEL", "warn")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "pk.env-token", cfg.API.Token)
	assert.Equal(t, "640x640", cfg.API.ImageSize)
	assert.Equal(t, 15, cfg.API.ZoomLevel)
	assert.Equal(t, time.Second, cfg.Download.Delay)
	assert.Equal(t, "/env/images", cfg.Output.ImagesDirectory)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadFromEnvInvalidValues(t *testing.T) {
	t.Setenv("SATFETCH_ZOOM_LEVEL", "eighteen")

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromEnv())
}

func TestMergeFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeFlags(map[string]interface{}{
		"token":             "pk.flag-token",
		"zoom":              14,
		"delay":             time.Second,
		"progress-interval": 10,
		"output":            "/flag/images",
		"sample":            30,
	})

	assert.Equal(t, "pk.flag-token", cfg.API.Token)
	assert.Equal(t, 14, cfg.API.ZoomLevel)
	assert.Equal(t, time.Second, cfg.Download.Delay)
	assert.Equal(t, 10, cfg.Download.ProgressInterval)
	assert.Equal(t, "/flag/images", cfg.Output.ImagesDirectory)
	assert.Equal(t, 30, cfg.Verify.SampleSize)
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("SATFETCH_IMAGES_DIR", "/env/images")

	cfg, err := Load("", map[string]interface{}{"output": "/flag/images"})
	require.NoError(t, err)
	assert.Equal(t, "/flag/images", cfg.Output.ImagesDirectory)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad image size", func(c *Config) { c.API.ImageSize = "256" }},
		{"negative zoom", func(c *Config) { c.API.ZoomLevel = -1 }},
		{"zoom too high", func(c *Config) { c.API.ZoomLevel = 23 }},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }},
		{"negative delay", func(c *Config) { c.Download.Delay = -time.Second }},
		{"zero progress interval", func(c *Config) { c.Download.ProgressInterval = 0 }},
		{"empty images directory", func(c *Config) { c.Output.ImagesDirectory = "" }},
		{"zero sample size", func(c *Config) { c.Verify.SampleSize = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateZeroDelayAllowed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Download.Delay = 0
	assert.NoError(t, cfg.Validate())
}
