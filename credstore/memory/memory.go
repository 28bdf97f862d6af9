// Package memory provides an in-memory credstore.Store for tests and
// sessions that should not survive the process.
package memory

import (
	"sync"

	"github.com/Erkan3034/yurtgate/credstore"
)

// Store is a thread-safe in-memory credstore.Store.
type Store struct {
	mu    sync.Mutex
	creds credstore.Credentials
	set   bool
}

var _ credstore.Store = (*Store)(nil)

// NewStore creates an empty in-memory Store.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) Save(creds credstore.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	s.set = true
	return nil
}

func (s *Store) Load() (credstore.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return credstore.Credentials{}, credstore.ErrNotLoggedIn
	}
	return s.creds, nil
}

func (s *Store) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = credstore.Credentials{}
	s.set = false
	return nil
}
