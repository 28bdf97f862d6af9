// Package file provides a JSON-file implementation of credstore.Store.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Erkan3034/yurtgate/credstore"
)

const credentialsFile = "credentials.json"

// Store implements credstore.Store using a JSON file with owner-only
// permissions, by default under ~/.yurtgate.
type Store struct {
	path string
}

var _ credstore.Store = (*Store)(nil)

// NewStore creates a Store rooted in the default config directory
// (~/.yurtgate), creating the directory if needed.
func NewStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}
	return NewStoreAt(filepath.Join(home, ".yurtgate"))
}

// NewStoreAt creates a Store rooted in the given directory.
func NewStoreAt(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating credentials directory: %w", err)
	}
	return &Store{path: filepath.Join(dir, credentialsFile)}, nil
}

func (s *Store) Save(creds credstore.Credentials) error {
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *Store) Load() (credstore.Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return credstore.Credentials{}, credstore.ErrNotLoggedIn
		}
		return credstore.Credentials{}, fmt.Errorf("reading credentials file: %w", err)
	}
	var creds credstore.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return credstore.Credentials{}, fmt.Errorf("decoding credentials file: %w", err)
	}
	if creds.AccessToken == "" {
		return credstore.Credentials{}, credstore.ErrNotLoggedIn
	}
	return creds, nil
}

func (s *Store) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing credentials file: %w", err)
	}
	return nil
}
