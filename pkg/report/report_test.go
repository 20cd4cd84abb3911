package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"satfetch/pkg/downloader"
)

func sampleStats() downloader.Stats {
	return downloader.Stats{
		Total:       100,
		Successful:  97,
		Failed:      3,
		Skipped:     20,
		FailedIDs:   []string{"1042", "1871", "2203"},
		Duration:    42 * time.Second,
		SuccessRate: 97.0,
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	r := New("train.csv", "./images/train", sampleStats())

	require.NoError(t, Save(path, r))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "train.csv", loaded.Dataset)
	assert.Equal(t, "./images/train", loaded.OutputDir)
	assert.Equal(t, r.Stats, loaded.Stats)
	assert.Equal(t, 1, loaded.Version)
	assert.WithinDuration(t, r.CompletedAt, loaded.CompletedAt, time.Second)
}

func TestSaveCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "2026", "report.json")

	require.NoError(t, Save(path, New("train.csv", "./images", sampleStats())))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")

	require.NoError(t, Save(path, New("train.csv", "./images", sampleStats())))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	first := New("train.csv", "./images", sampleStats())
	require.NoError(t, Save(path, first))

	second := New("holdout.csv", "./images/holdout", downloader.Stats{Total: 5, Successful: 5, SuccessRate: 100})
	require.NoError(t, Save(path, second))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "holdout.csv", loaded.Dataset)
	assert.Equal(t, 5, loaded.Stats.Total)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
