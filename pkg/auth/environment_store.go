package auth

import "os"

// TokenEnvVar is the environment variable holding the tile API token
const TokenEnvVar = "SATFETCH_API_TOKEN"

// EnvironmentStore implements TokenStore using environment variables.
// It is read-only: tokens cannot be persisted to the environment.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based token store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (s *EnvironmentStore) Store(token string) error {
	return ErrReadOnlyStore
}

// Retrieve gets the API token from the environment
func (s *EnvironmentStore) Retrieve() (string, error) {
	token := os.Getenv(TokenEnvVar)
	if token == "" {
		return "", ErrTokenNotFound
	}
	return token, nil
}

// Delete is not supported for environment variables
func (s *EnvironmentStore) Delete() error {
	return ErrReadOnlyStore
}

// Name identifies this store
func (s *EnvironmentStore) Name() string {
	return "environment"
}
