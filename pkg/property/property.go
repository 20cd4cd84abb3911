package property

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Property is one real-estate record with a stable identifier and a
// geocoordinate. The identifier is kept as a string; upstream tables use
// both numeric and string keys.
type Property struct {
	ID   string
	Lat  float64
	Long float64
}

// Load reads property records from a CSV property table. The table must
// carry id, lat and long columns; they are located by header name so that
// column order and extra columns do not matter.
func Load(r io.Reader) ([]Property, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("property table is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idx, err := columnIndices(header)
	if err != nil {
		return nil, err
	}

	var properties []Property
	seen := make(map[string]bool)
	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		id := strings.TrimSpace(record[idx.id])
		if id == "" {
			return nil, fmt.Errorf("row %d: empty property id", row)
		}
		if seen[id] {
			return nil, fmt.Errorf("row %d: duplicate property id %q", row, id)
		}
		seen[id] = true

		lat, err := strconv.ParseFloat(strings.TrimSpace(record[idx.lat]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid latitude: %w", row, err)
		}
		long, err := strconv.ParseFloat(strings.TrimSpace(record[idx.long]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid longitude: %w", row, err)
		}

		properties = append(properties, Property{ID: id, Lat: lat, Long: long})
	}

	return properties, nil
}

// LoadFile reads property records from a CSV file on disk
func LoadFile(path string) ([]Property, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open property table: %w", err)
	}
	defer f.Close()

	properties, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return properties, nil
}

type columns struct {
	id, lat, long int
}

// columnIndices maps the required column names to their positions
func columnIndices(header []string) (columns, error) {
	idx := columns{id: -1, lat: -1, long: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "id":
			idx.id = i
		case "lat", "latitude":
			idx.lat = i
		case "long", "lon", "longitude":
			idx.long = i
		}
	}

	var missing []string
	if idx.id < 0 {
		missing = append(missing, "id")
	}
	if idx.lat < 0 {
		missing = append(missing, "lat")
	}
	if idx.long < 0 {
		missing = append(missing, "long")
	}
	if len(missing) > 0 {
		return idx, fmt.Errorf("property table is missing required columns: %s", strings.Join(missing, ", "))
	}

	return idx, nil
}
