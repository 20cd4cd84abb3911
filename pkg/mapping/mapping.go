package mapping

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"satfetch/pkg/property"
	"satfetch/pkg/storage"
)

// Entry correlates one property with its expected local image
type Entry struct {
	ID          string
	Lat         float64
	Long        float64
	ImagePath   string
	ImageExists bool
}

// Build computes the manifest for the given properties against the current
// state of the images folder. The image path uses the same deterministic
// naming as the batch downloader; existence is checked at call time, so the
// result is a snapshot, not a live view.
func Build(properties []property.Property, imagesFolder string) []Entry {
	entries := make([]Entry, 0, len(properties))
	for _, prop := range properties {
		path := storage.ImagePath(imagesFolder, prop.ID)
		_, err := os.Stat(path)
		entries = append(entries, Entry{
			ID:          prop.ID,
			Lat:         prop.Lat,
			Long:        prop.Long,
			ImagePath:   path,
			ImageExists: err == nil,
		})
	}
	return entries
}

// WriteCSV serializes the manifest to outPath, fully overwriting any
// previous file. Column order is stable: id, lat, long, image_path,
// image_exists.
func WriteCSV(entries []Entry, outPath string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create mapping file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "lat", "long", "image_path", "image_exists"}); err != nil {
		return fmt.Errorf("failed to write mapping header: %w", err)
	}

	for _, e := range entries {
		record := []string{
			e.ID,
			strconv.FormatFloat(e.Lat, 'f', -1, 64),
			strconv.FormatFloat(e.Long, 'f', -1, 64),
			e.ImagePath,
			strconv.FormatBool(e.ImageExists),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write mapping row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush mapping file: %w", err)
	}

	return nil
}

// BuildAndWrite builds the manifest and writes it to outPath
func BuildAndWrite(properties []property.Property, imagesFolder, outPath string) ([]Entry, error) {
	entries := Build(properties, imagesFolder)
	if err := WriteCSV(entries, outPath); err != nil {
		return nil, err
	}
	return entries, nil
}

// ExistingCount returns how many entries have an image on disk
func ExistingCount(entries []Entry) int {
	count := 0
	for _, e := range entries {
		if e.ImageExists {
			count++
		}
	}
	return count
}
