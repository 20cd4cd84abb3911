package auth

import "sync"

// MockStore is an in-memory TokenStore for testing
type MockStore struct {
	mu       sync.Mutex
	token    string
	failWith error
}

// NewMockStore creates a new mock token store
func NewMockStore() *MockStore {
	return &MockStore{}
}

// SetError makes every operation fail with the given error
func (m *MockStore) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// Store saves the token in memory
func (m *MockStore) Store(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if token == "" {
		return ErrInvalidToken
	}
	m.token = token
	return nil
}

// Retrieve returns the in-memory token
func (m *MockStore) Retrieve() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return "", m.failWith
	}
	if m.token == "" {
		return "", ErrTokenNotFound
	}
	return m.token, nil
}

// Delete clears the in-memory token
func (m *MockStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if m.token == "" {
		return ErrTokenNotFound
	}
	m.token = ""
	return nil
}

// Name identifies this store
func (m *MockStore) Name() string {
	return "mock"
}
