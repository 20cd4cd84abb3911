package mapbox

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"satfetch/pkg/errors"
	"satfetch/pkg/logger"
)

// Client is a Mapbox Static Images API client. It performs exactly one
// network call per FetchTile invocation; retries are the caller's business.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	imageSize  string
	zoomLevel  int
	logger     logger.Logger
}

// NewClient creates a new Mapbox Static Images client
func NewClient(token, imageSize string, zoomLevel int, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if imageSize == "" {
		imageSize = DefaultImageSize
	}
	if zoomLevel <= 0 {
		zoomLevel = DefaultZoomLevel
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:   BaseURL,
		token:     token,
		imageSize: imageSize,
		zoomLevel: zoomLevel,
		logger:    log,
	}
}

// SetBaseURL overrides the API base URL. Used in tests to point the client
// at a local server.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// SetHTTPClient replaces the underlying HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// TileURL returns the request URL for the given coordinate
func (c *Client) TileURL(latitude, longitude float64) string {
	return StaticImageURL(c.baseURL, c.token, latitude, longitude, c.zoomLevel, c.imageSize)
}

// FetchTile downloads the satellite tile centered on the given coordinate
// and returns the raw image bytes. A non-200 status, transport error, or
// timeout yields a typed error; no retries are attempted.
func (c *Client) FetchTile(latitude, longitude float64) ([]byte, error) {
	reqURL := c.TileURL(latitude, longitude)

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeUnknown, fmt.Sprintf("failed to create request: %v", err))
	}

	// The token travels in the query string, so log coordinates rather
	// than the full URL.
	start := time.Now()
	c.logger.DebugWithFields("requesting satellite tile", map[string]interface{}{
		"lat":  latitude,
		"long": longitude,
		"zoom": c.zoomLevel,
		"size": c.imageSize,
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		errType := errors.ErrorTypeNetwork
		if isTimeout(err) {
			errType = errors.ErrorTypeTimeout
		}
		c.logger.WarnWithFields("tile request failed", map[string]interface{}{
			"lat":      latitude,
			"long":     longitude,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.New(errType, fmt.Sprintf("tile request failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WarnWithFields("tile request returned non-success status", map[string]interface{}{
			"lat":    latitude,
			"long":   longitude,
			"status": resp.StatusCode,
		})
		return nil, errors.NewWithCode(errors.ErrorTypeStatus,
			fmt.Sprintf("unexpected status %d", resp.StatusCode), resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeNetwork, fmt.Sprintf("failed to read tile body: %v", err))
	}

	c.logger.DebugWithFields("tile request completed", map[string]interface{}{
		"lat":      latitude,
		"long":     longitude,
		"bytes":    len(data),
		"duration": duration,
	})

	return data, nil
}

// isTimeout reports whether err is a timeout-flavored transport error
func isTimeout(err error) bool {
	type timeout interface {
		Timeout() bool
	}
	for err != nil {
		if t, ok := err.(timeout); ok && t.Timeout() {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
