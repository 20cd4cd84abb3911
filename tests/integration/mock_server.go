package integration

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
)

// MockTileServer simulates the Static Images API: it answers any styles
// path with a small PNG tile and can be told to fail specific coordinates.
type MockTileServer struct {
	server       *httptest.Server
	requestCount int32
	mu           sync.RWMutex
	errorCoords  map[string]int // "lon,lat" prefix -> status code
	garbageBody  bool
}

// NewMockTileServer starts a tile server backed by httptest
func NewMockTileServer() *MockTileServer {
	m := &MockTileServer{
		errorCoords: make(map[string]int),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handleTile))
	return m
}

// URL returns the server's base URL
func (m *MockTileServer) URL() string {
	return m.server.URL
}

// Close shuts the server down
func (m *MockTileServer) Close() {
	m.server.Close()
}

// RequestCount returns the number of tile requests served
func (m *MockTileServer) RequestCount() int {
	return int(atomic.LoadInt32(&m.requestCount))
}

// FailCoordinate makes requests whose path contains the given "lon,lat"
// fragment answer with the given status code
func (m *MockTileServer) FailCoordinate(coord string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCoords[coord] = status
}

// ClearFailure removes a configured coordinate failure
func (m *MockTileServer) ClearFailure(coord string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.errorCoords, coord)
}

// ServeGarbage makes every response body a non-image payload
func (m *MockTileServer) ServeGarbage(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.garbageBody = on
}

func (m *MockTileServer) handleTile(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)

	if r.URL.Query().Get("access_token") == "" {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"Not Authorized"}`)
		return
	}

	m.mu.RLock()
	garbage := m.garbageBody
	var failStatus int
	for coord, status := range m.errorCoords {
		if strings.Contains(r.URL.Path, coord) {
			failStatus = status
			break
		}
	}
	m.mu.RUnlock()

	if failStatus != 0 {
		w.WriteHeader(failStatus)
		return
	}

	if garbage {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html>rate limited</html>")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(tilePNG())
}

// tilePNG renders a small tile-like PNG body
func tilePNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: 120, B: uint8(y * 16), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
