package fetcher

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"

	// The tile API may answer with PNG or JPEG bodies
	_ "image/png"

	"satfetch/pkg/errors"
	"satfetch/pkg/logger"
	"satfetch/pkg/mapbox"
)

// JPEGQuality is the quality setting used when re-encoding downloaded tiles
const JPEGQuality = 95

// Fetcher downloads one satellite tile per call and persists it as a JPEG
// file. It performs exactly one network request and at most one file write
// per invocation and never retries.
type Fetcher struct {
	client *mapbox.Client
	logger logger.Logger
}

// New creates a new tile fetcher
func New(client *mapbox.Client, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Fetcher{client: client, logger: log}
}

// Fetch downloads the tile for the given coordinate and writes it to
// destPath as a JPEG. On any failure no file is left at destPath beyond
// what was already there.
func (f *Fetcher) Fetch(latitude, longitude float64, destPath string) error {
	data, err := f.client.FetchTile(latitude, longitude)
	if err != nil {
		return err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		f.logger.WarnWithFields("tile body is not a decodable image", map[string]interface{}{
			"lat":   latitude,
			"long":  longitude,
			"bytes": len(data),
			"error": err.Error(),
		})
		return errors.New(errors.ErrorTypeDecode, fmt.Sprintf("failed to decode tile: %v", err))
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return errors.New(errors.ErrorTypeDecode, fmt.Sprintf("failed to encode JPEG: %v", err))
	}

	if err := writeAtomic(destPath, buf.Bytes()); err != nil {
		return errors.New(errors.ErrorTypeFilesystem, err.Error())
	}

	return nil
}

// writeAtomic writes data to a temporary file and renames it into place so
// a failed write never leaves a partial image behind.
func writeAtomic(destPath string, data []byte) error {
	tempPath := destPath + ".tmp"

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write image file: %w", err)
	}

	if err := os.Rename(tempPath, destPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
