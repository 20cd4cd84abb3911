package downloader

import (
	"time"

	"satfetch/pkg/logger"
	"satfetch/pkg/property"
	"satfetch/pkg/ratelimit"
	"satfetch/pkg/storage"
)

// TileFetcher downloads one tile to the given destination path
type TileFetcher interface {
	Fetch(latitude, longitude float64, destPath string) error
}

// Stats aggregates the outcome of one batch run. Total counts every input
// property, including rows skipped because their image already existed.
type Stats struct {
	Total       int           `json:"total"`
	Successful  int           `json:"successful"`
	Failed      int           `json:"failed"`
	Skipped     int           `json:"skipped"`
	FailedIDs   []string      `json:"failed_ids"`
	Duration    time.Duration `json:"duration"`
	SuccessRate float64       `json:"success_rate"`
}

// Progress is a periodic observation of a running batch. It is advisory
// output only and never alters control flow.
type Progress struct {
	Processed int
	Total     int
	Percent   float64
	Elapsed   time.Duration
	Remaining time.Duration
}

// ProgressFunc receives periodic progress observations
type ProgressFunc func(Progress)

// Downloader drives the download loop for one dataset: skip-check, fetch,
// failure accounting, pacing between requests, and periodic progress.
type Downloader struct {
	fetcher          TileFetcher
	store            *storage.Manager
	limiter          ratelimit.Limiter
	progressInterval int
	onProgress       ProgressFunc
	logger           logger.Logger
}

// New creates a batch downloader. The limiter paces non-skipped attempts;
// pass ratelimit.NewRequestPacer(delay) for a fixed inter-request delay.
func New(fetcher TileFetcher, store *storage.Manager, limiter ratelimit.Limiter, progressInterval int, log logger.Logger) *Downloader {
	if log == nil {
		log = logger.GetLogger()
	}
	if progressInterval <= 0 {
		progressInterval = 50
	}
	return &Downloader{
		fetcher:          fetcher,
		store:            store,
		limiter:          limiter,
		progressInterval: progressInterval,
		logger:           log,
	}
}

// SetProgressFunc registers a callback for periodic progress observations
func (d *Downloader) SetProgressFunc(fn ProgressFunc) {
	d.onProgress = fn
}

// Run iterates the properties in order, downloading the image for each one
// that is not already present. Per-row failures are folded into the
// returned statistics and never abort the batch.
func (d *Downloader) Run(properties []property.Property) Stats {
	stats := Stats{
		Total:     len(properties),
		FailedIDs: []string{},
	}

	d.logger.InfoWithFields("starting download run", map[string]interface{}{
		"total":      stats.Total,
		"output_dir": d.store.OutputDir(),
	})

	start := time.Now()

	for i, prop := range properties {
		destPath := d.store.ImagePath(prop.ID)

		if d.store.IsDownloaded(prop.ID) {
			// Already on disk: count as successful, no request, no delay
			stats.Successful++
			stats.Skipped++
		} else {
			d.limiter.Wait()

			if err := d.fetcher.Fetch(prop.Lat, prop.Long, destPath); err != nil {
				stats.Failed++
				stats.FailedIDs = append(stats.FailedIDs, prop.ID)
				d.logger.WarnWithFields("download failed", map[string]interface{}{
					"property_id": prop.ID,
					"lat":         prop.Lat,
					"long":        prop.Long,
					"error":       err.Error(),
				})
			} else {
				stats.Successful++
				d.store.MarkDownloaded(prop.ID)
			}
		}

		processed := i + 1
		if processed%d.progressInterval == 0 {
			d.reportProgress(processed, stats.Total, start)
		}
	}

	stats.Duration = time.Since(start)
	stats.SuccessRate = successRate(stats.Successful, stats.Total)

	d.logger.InfoWithFields("download run completed", map[string]interface{}{
		"total":        stats.Total,
		"successful":   stats.Successful,
		"failed":       stats.Failed,
		"skipped":      stats.Skipped,
		"duration":     stats.Duration,
		"success_rate": stats.SuccessRate,
	})

	return stats
}

// reportProgress emits one progress observation
func (d *Downloader) reportProgress(processed, total int, start time.Time) {
	elapsed := time.Since(start)
	remaining := time.Duration(0)
	if processed > 0 {
		perRow := elapsed / time.Duration(processed)
		remaining = perRow * time.Duration(total-processed)
	}

	p := Progress{
		Processed: processed,
		Total:     total,
		Percent:   float64(processed) / float64(total) * 100,
		Elapsed:   elapsed,
		Remaining: remaining,
	}

	d.logger.InfoWithFields("download progress", map[string]interface{}{
		"processed": p.Processed,
		"total":     p.Total,
		"percent":   p.Percent,
		"elapsed":   p.Elapsed,
		"remaining": p.Remaining,
	})

	if d.onProgress != nil {
		d.onProgress(p)
	}
}

// successRate computes the percentage of successful rows. An empty batch
// counts as fully successful so callers never divide by zero.
func successRate(successful, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(successful) / float64(total) * 100
}
