package fetcher

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"satfetch/pkg/errors"
	"satfetch/pkg/logger"
	"satfetch/pkg/mapbox"
	"satfetch/pkg/storage"
	"satfetch/pkg/verify"
)

// tilePNG renders a small solid tile the way the API would return one
func tilePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: 40, G: 80, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestFetcher(t *testing.T, handler http.HandlerFunc) (*Fetcher, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := mapbox.NewClient("pk.test", "256x256", 18, 5*time.Second, logger.NewTestLogger())
	client.SetBaseURL(server.URL)
	return New(client, logger.NewTestLogger()), server
}

func TestFetchWritesJPEG(t *testing.T) {
	body := tilePNG(t)
	f, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	})

	dest := filepath.Join(t.TempDir(), "property_1.jpg")
	require.NoError(t, f.Fetch(32.7555, -97.3308, dest))

	// Output must be a decodable JPEG regardless of the source format
	file, err := os.Open(dest)
	require.NoError(t, err)
	defer file.Close()

	_, err = jpeg.Decode(file)
	assert.NoError(t, err)
}

func TestFetchNonImageBody(t *testing.T) {
	f, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>rate limited</html>"))
	})

	dest := filepath.Join(t.TempDir(), "property_1.jpg")
	err := f.Fetch(1, 2, dest)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDecode))

	// No partial file may be left behind
	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(dest + ".tmp")
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetchNonSuccessStatus(t *testing.T) {
	f, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	dest := filepath.Join(t.TempDir(), "property_1.jpg")
	err := f.Fetch(1, 2, dest)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeStatus))

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFetchOverwritesExistingFile(t *testing.T) {
	body := tilePNG(t)
	f, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	})

	dest := filepath.Join(t.TempDir(), "property_1.jpg")
	require.NoError(t, os.WriteFile(dest, []byte("stale"), 0644))

	require.NoError(t, f.Fetch(1, 2, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.NotEqual(t, []byte("stale"), data)
}

func TestFetchedImagesPassVerification(t *testing.T) {
	body := tilePNG(t)
	f, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	})

	dir := t.TempDir()
	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, f.Fetch(1, 2, storage.ImagePath(dir, id)))
	}

	report, err := verify.Sample(dir, 10, logger.NewTestLogger())
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalChecked)
	assert.Equal(t, 3, report.ValidImages)
	assert.Equal(t, 0, report.CorruptedImages)
}
