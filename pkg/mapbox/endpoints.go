package mapbox

import (
	"fmt"
	"net/url"
	"strconv"
)

const (
	// BaseURL is the base URL for the Mapbox Static Images API,
	// satellite style
	BaseURL = "https://api.mapbox.com/styles/v1/mapbox/satellite-v9/static"

	// DefaultImageSize is the default tile dimension string
	DefaultImageSize = "256x256"

	// DefaultZoomLevel is the default zoom level for satellite imagery
	DefaultZoomLevel = 18

	// MaxZoomLevel is the maximum zoom the satellite style supports
	MaxZoomLevel = 22
)

// StaticImageURL constructs the URL for a static satellite image centered on
// the given coordinate. The API expects longitude before latitude; callers
// must not transpose the pair.
func StaticImageURL(baseURL, token string, latitude, longitude float64, zoom int, size string) string {
	if zoom < 0 {
		zoom = DefaultZoomLevel
	} else if zoom > MaxZoomLevel {
		zoom = MaxZoomLevel
	}
	if size == "" {
		size = DefaultImageSize
	}

	params := url.Values{}
	params.Set("access_token", token)

	return fmt.Sprintf("%s/%s,%s,%d/%s?%s",
		baseURL,
		formatCoordinate(longitude),
		formatCoordinate(latitude),
		zoom,
		size,
		params.Encode(),
	)
}

// formatCoordinate renders a coordinate without trailing zeros
func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
