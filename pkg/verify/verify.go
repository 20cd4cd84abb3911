package verify

import (
	"image"
	"os"
	"path/filepath"

	// Decoders for the formats the output folder may contain
	_ "image/jpeg"
	_ "image/png"

	"satfetch/pkg/logger"
	"satfetch/pkg/storage"
)

// Report summarizes one verification pass over a sample of files
type Report struct {
	TotalChecked    int `json:"total_checked"`
	ValidImages     int `json:"valid_images"`
	CorruptedImages int `json:"corrupted_images"`
}

// Sample spot-checks up to sampleSize image files in imagesFolder,
// decoding each fully to confirm structural validity. Corrupted files are
// counted, never raised. An empty folder yields a zero report.
func Sample(imagesFolder string, sampleSize int, log logger.Logger) (Report, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	files, err := storage.ListImages(imagesFolder)
	if err != nil {
		return Report{}, err
	}
	if len(files) == 0 {
		log.WarnWithFields("no images found to verify", map[string]interface{}{
			"folder": imagesFolder,
		})
		return Report{}, nil
	}

	if sampleSize > len(files) {
		sampleSize = len(files)
	}

	report := Report{TotalChecked: sampleSize}
	for _, path := range files[:sampleSize] {
		if decodes(path) {
			report.ValidImages++
		} else {
			report.CorruptedImages++
			log.WarnWithFields("corrupted image found", map[string]interface{}{
				"file": filepath.Base(path),
			})
		}
	}

	log.InfoWithFields("verification complete", map[string]interface{}{
		"checked":   report.TotalChecked,
		"valid":     report.ValidImages,
		"corrupted": report.CorruptedImages,
	})

	return report, nil
}

// decodes reports whether the file parses as a well-formed image. A full
// decode is used rather than a header sniff so truncated files fail too.
func decodes(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	_, _, err = image.Decode(f)
	return err == nil
}
