package integration

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"satfetch/pkg/downloader"
	"satfetch/pkg/fetcher"
	"satfetch/pkg/logger"
	"satfetch/pkg/mapbox"
	"satfetch/pkg/mapping"
	"satfetch/pkg/property"
	"satfetch/pkg/ratelimit"
	"satfetch/pkg/report"
	"satfetch/pkg/storage"
	"satfetch/pkg/verify"
)

const datasetCSV = `id,lat,long
101,32.75,-97.33
102,32.76,-97.34
103,32.77,-97.35
104,32.78,-97.36
105,32.79,-97.37
`

func writeDataset(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "train.csv")
	if err := os.WriteFile(path, []byte(datasetCSV), 0644); err != nil {
		t.Fatalf("failed to write dataset: %v", err)
	}
	return path
}

func newPipeline(t *testing.T, serverURL, imagesDir string) (*downloader.Downloader, *storage.Manager) {
	t.Helper()
	log := logger.NewTestLogger()

	client := mapbox.NewClient("pk.test-token", "256x256", 18, 5*time.Second, log)
	client.SetBaseURL(serverURL)

	store, err := storage.NewManager(imagesDir)
	if err != nil {
		t.Fatalf("failed to create storage manager: %v", err)
	}

	f := fetcher.New(client, log)
	d := downloader.New(f, store, ratelimit.NewRequestPacer(0), 2, log)
	return d, store
}

// TestFullPipeline runs dataset load, batch download, mapping, verification
// and the run report against a mock tile server.
func TestFullPipeline(t *testing.T) {
	server := NewMockTileServer()
	defer server.Close()
	// Property 103 answers with a server error
	server.FailCoordinate("-97.35,32.77", http.StatusInternalServerError)

	dir := t.TempDir()
	imagesDir := filepath.Join(dir, "images")
	datasetPath := writeDataset(t, dir)

	properties, err := property.LoadFile(datasetPath)
	if err != nil {
		t.Fatalf("failed to load dataset: %v", err)
	}
	if len(properties) != 5 {
		t.Fatalf("expected 5 properties, got %d", len(properties))
	}

	d, _ := newPipeline(t, server.URL(), imagesDir)
	stats := d.Run(properties)

	if stats.Total != 5 {
		t.Errorf("expected total 5, got %d", stats.Total)
	}
	if stats.Successful != 4 {
		t.Errorf("expected 4 successful, got %d", stats.Successful)
	}
	if stats.Failed != 1 {
		t.Errorf("expected 1 failed, got %d", stats.Failed)
	}
	if len(stats.FailedIDs) != 1 || stats.FailedIDs[0] != "103" {
		t.Errorf("expected failed ids [103], got %v", stats.FailedIDs)
	}
	if stats.Skipped != 0 {
		t.Errorf("expected no skips on first run, got %d", stats.Skipped)
	}

	// Mapping reflects what landed on disk
	mappingPath := filepath.Join(dir, "image_mapping.csv")
	entries, err := mapping.BuildAndWrite(properties, imagesDir, mappingPath)
	if err != nil {
		t.Fatalf("failed to build mapping: %v", err)
	}
	if got := mapping.ExistingCount(entries); got != 4 {
		t.Errorf("expected 4 existing entries, got %d", got)
	}
	for _, e := range entries {
		wantExists := e.ID != "103"
		if e.ImageExists != wantExists {
			t.Errorf("entry %s: image_exists = %v, want %v", e.ID, e.ImageExists, wantExists)
		}
	}

	// Every downloaded tile decodes
	vr, err := verify.Sample(imagesDir, 100, logger.NewTestLogger())
	if err != nil {
		t.Fatalf("verification failed: %v", err)
	}
	if vr.TotalChecked != 4 || vr.ValidImages != 4 || vr.CorruptedImages != 0 {
		t.Errorf("unexpected verification report: %+v", vr)
	}

	// Run report round-trips
	reportPath := filepath.Join(dir, "report.json")
	if err := report.Save(reportPath, report.New(datasetPath, imagesDir, stats)); err != nil {
		t.Fatalf("failed to save report: %v", err)
	}
	loaded, err := report.Load(reportPath)
	if err != nil {
		t.Fatalf("failed to load report: %v", err)
	}
	if loaded.Stats.Failed != 1 || loaded.Stats.FailedIDs[0] != "103" {
		t.Errorf("report stats do not match run: %+v", loaded.Stats)
	}
}

// TestRerunSkipsDownloadedImages verifies that a second run over the same
// dataset only re-requests what is missing.
func TestRerunSkipsDownloadedImages(t *testing.T) {
	server := NewMockTileServer()
	defer server.Close()
	server.FailCoordinate("-97.35,32.77", http.StatusInternalServerError)

	dir := t.TempDir()
	imagesDir := filepath.Join(dir, "images")
	properties, err := property.LoadFile(writeDataset(t, dir))
	if err != nil {
		t.Fatalf("failed to load dataset: %v", err)
	}

	d, _ := newPipeline(t, server.URL(), imagesDir)
	d.Run(properties)

	firstRunRequests := server.RequestCount()
	if firstRunRequests != 5 {
		t.Fatalf("expected 5 requests on first run, got %d", firstRunRequests)
	}

	// Second run over a fresh manager scanning the same folder. The server
	// no longer fails, so the one missing tile completes.
	server.ClearFailure("-97.35,32.77")
	d2, _ := newPipeline(t, server.URL(), imagesDir)
	stats := d2.Run(properties)

	if stats.Skipped != 4 {
		t.Errorf("expected 4 skipped on rerun, got %d", stats.Skipped)
	}
	if stats.Successful != 5 || stats.Failed != 0 {
		t.Errorf("expected clean rerun, got %+v", stats)
	}
	if got := server.RequestCount() - firstRunRequests; got != 1 {
		t.Errorf("expected exactly 1 request on rerun, got %d", got)
	}
}

// TestUndecodableBodyIsCountedAsFailure verifies that an HTML body from the
// tile endpoint leaves no image behind and is accounted as a failed row.
func TestUndecodableBodyIsCountedAsFailure(t *testing.T) {
	server := NewMockTileServer()
	defer server.Close()
	server.ServeGarbage(true)

	dir := t.TempDir()
	imagesDir := filepath.Join(dir, "images")
	properties, err := property.LoadFile(writeDataset(t, dir))
	if err != nil {
		t.Fatalf("failed to load dataset: %v", err)
	}

	d, _ := newPipeline(t, server.URL(), imagesDir)
	stats := d.Run(properties)

	if stats.Failed != 5 || stats.Successful != 0 {
		t.Errorf("expected all rows to fail, got %+v", stats)
	}

	images, err := storage.ListImages(imagesDir)
	if err != nil {
		t.Fatalf("failed to list images: %v", err)
	}
	if len(images) != 0 {
		t.Errorf("expected no images on disk, got %v", images)
	}
}
