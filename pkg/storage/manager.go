package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const (
	filePrefix = "property_"
	fileExt    = ".jpg"
)

// ImageFileName returns the deterministic file name for a property id.
// The batch downloader and the mapping pass must agree on this mapping,
// so it lives here and nowhere else.
func ImageFileName(propertyID string) string {
	return filePrefix + propertyID + fileExt
}

// ImagePath returns the deterministic image path for a property id under
// the given folder.
func ImagePath(folder, propertyID string) string {
	return filepath.Join(folder, ImageFileName(propertyID))
}

// Manager handles the output folder for one dataset run: deterministic
// path computation, the already-downloaded skip-check, and listing for
// the verification pass.
type Manager struct {
	outputDir  string
	downloaded map[string]bool
	mu         sync.RWMutex
}

// NewManager creates a new storage manager, creating the output directory
// if needed and scanning it for previously downloaded images.
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manager := &Manager{
		outputDir:  outputDir,
		downloaded: make(map[string]bool),
	}

	if err := manager.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}

	return manager, nil
}

// scanExistingFiles records already downloaded property images
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileExt) {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileExt)
		if id != "" {
			m.downloaded[id] = true
		}
	}

	return nil
}

// ImagePath returns the destination path for a property id
func (m *Manager) ImagePath(propertyID string) string {
	return ImagePath(m.outputDir, propertyID)
}

// IsDownloaded checks if an image for the given property id already exists
func (m *Manager) IsDownloaded(propertyID string) bool {
	m.mu.RLock()
	cached := m.downloaded[propertyID]
	m.mu.RUnlock()
	if cached {
		return true
	}

	// Fall back to a stat in case the file appeared after the scan
	if _, err := os.Stat(m.ImagePath(propertyID)); err == nil {
		m.mu.Lock()
		m.downloaded[propertyID] = true
		m.mu.Unlock()
		return true
	}

	return false
}

// MarkDownloaded records a property id as downloaded
func (m *Manager) MarkDownloaded(propertyID string) {
	m.mu.Lock()
	m.downloaded[propertyID] = true
	m.mu.Unlock()
}

// ListImages returns the property image files in the output folder,
// sorted by name
func (m *Manager) ListImages() ([]string, error) {
	return ListImages(m.outputDir)
}

// ListImages returns the image files with the expected extension in the
// given folder, sorted by name
func ListImages(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == fileExt {
			files = append(files, filepath.Join(folder, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// OutputDir returns the output directory path
func (m *Manager) OutputDir() string {
	return m.outputDir
}

// DownloadedCount returns the number of known downloaded images
func (m *Manager) DownloadedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.downloaded)
}
