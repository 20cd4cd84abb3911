package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrTokenNotFound is returned when no API token is stored
	ErrTokenNotFound = errors.New("api token not found")

	// ErrInvalidToken is returned for empty or malformed tokens
	ErrInvalidToken = errors.New("invalid api token")

	// ErrReadOnlyStore is returned when writing to a store that cannot
	// persist tokens
	ErrReadOnlyStore = errors.New("store is read-only")
)

// TokenStore is the interface for storing and retrieving the tile API token
type TokenStore interface {
	// Store saves the API token
	Store(token string) error

	// Retrieve gets the stored API token
	Retrieve() (string, error)

	// Delete removes the stored API token
	Delete() error

	// Name identifies the backing store in user-facing output
	Name() string
}

// Manager handles token storage with fallback mechanisms. Retrieval walks
// the stores in order; writes go to the first store that accepts them.
type Manager struct {
	stores []TokenStore
}

// NewManager creates a token manager with the available storage backends:
// system keyring first, encrypted file as fallback, environment variable
// as last resort.
func NewManager() (*Manager, error) {
	var stores []TokenStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "token.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager over an explicit store list
func NewManagerWithStores(stores ...TokenStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves the token using the first store that accepts it
func (m *Manager) Store(token string) error {
	if token == "" {
		return ErrInvalidToken
	}

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(token); err != nil {
			if errors.Is(err, ErrReadOnlyStore) {
				continue
			}
			lastErr = err
			continue
		}
		return nil
	}

	if lastErr != nil {
		return lastErr
	}
	return errors.New("no writable token store available")
}

// Retrieve returns the token from the first store that has one, along with
// the name of that store
func (m *Manager) Retrieve() (string, string, error) {
	for _, store := range m.stores {
		token, err := store.Retrieve()
		if err == nil && token != "" {
			return token, store.Name(), nil
		}
	}
	return "", "", ErrTokenNotFound
}

// Delete removes the token from every store that holds one
func (m *Manager) Delete() error {
	deleted := false
	for _, store := range m.stores {
		if err := store.Delete(); err == nil {
			deleted = true
		}
	}
	if !deleted {
		return ErrTokenNotFound
	}
	return nil
}

// getConfigDir returns the satfetch configuration directory
func getConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "satfetch"), nil
}
