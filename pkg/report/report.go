package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"satfetch/pkg/downloader"
)

// Report is the persisted record of one batch run. It lets a later
// invocation inspect which properties failed without re-reading logs;
// the skip-check makes the rerun itself cheap.
type Report struct {
	Dataset     string           `json:"dataset"`
	OutputDir   string           `json:"output_dir"`
	CompletedAt time.Time        `json:"completed_at"`
	Stats       downloader.Stats `json:"stats"`
	Version     int              `json:"version"`
}

const currentVersion = 1

// New builds a report for a completed run
func New(dataset, outputDir string, stats downloader.Stats) *Report {
	return &Report{
		Dataset:     dataset,
		OutputDir:   outputDir,
		CompletedAt: time.Now().UTC(),
		Stats:       stats,
		Version:     currentVersion,
	}
}

// Save writes the report as JSON to path, creating parent directories as
// needed. The write goes through a temporary file so a crash never leaves
// a truncated report.
func Save(path string, r *Report) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename report: %w", err)
	}

	return nil
}

// Load reads a previously saved report
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &r, nil
}
