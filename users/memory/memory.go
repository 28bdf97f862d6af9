// Package memory provides a thread-safe in-memory implementation of users.Store.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Erkan3034/yurtgate/users"
)

// Store is a thread-safe in-memory implementation of users.Store.
// Suitable for testing, demos, and single-process use cases.
type Store struct {
	mu          sync.RWMutex
	byID        map[int64]*users.User
	byEmail     map[string]int64
	dorms       map[int64]*users.Dorm
	dormsByName map[string]int64
	nextUserID  int64
	nextDormID  int64
}

var _ users.Store = (*Store)(nil)

// NewStore creates a new empty in-memory Store.
func NewStore() *Store {
	return &Store{
		byID:        make(map[int64]*users.User),
		byEmail:     make(map[string]int64),
		dorms:       make(map[int64]*users.Dorm),
		dormsByName: make(map[string]int64),
	}
}

func (s *Store) CreateUser(_ context.Context, u *users.User) (*users.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[u.Email]; ok {
		return nil, fmt.Errorf("%s: %w", u.Email, users.ErrEmailTaken)
	}
	s.nextUserID++
	cp := u.Clone()
	cp.ID = s.nextUserID
	s.byID[cp.ID] = cp
	s.byEmail[cp.Email] = cp.ID
	return cp.Clone(), nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*users.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, users.ErrNotFound)
	}
	return s.byID[id].Clone(), nil
}

func (s *Store) GetUserByID(_ context.Context, id int64) (*users.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, users.ErrNotFound)
	}
	return u.Clone(), nil
}

func (s *Store) UpdateUser(_ context.Context, u *users.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.byID[u.ID]
	if !ok {
		return fmt.Errorf("user %d: %w", u.ID, users.ErrNotFound)
	}
	if old.Email != u.Email {
		delete(s.byEmail, old.Email)
		s.byEmail[u.Email] = u.ID
	}
	s.byID[u.ID] = u.Clone()
	return nil
}

// DeleteUser removes a user record. Not part of users.Store; the auth
// API never deletes accounts, but tests exercise revoked-account paths
// through it.
func (s *Store) DeleteUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byID[id]; ok {
		delete(s.byEmail, u.Email)
		delete(s.byID, id)
	}
}

func (s *Store) EnsureDorm(_ context.Context, name, address string) (*users.Dorm, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.dormsByName[key]; ok {
		d := *s.dorms[id]
		return &d, nil
	}
	s.nextDormID++
	d := &users.Dorm{
		ID:      s.nextDormID,
		Name:    strings.TrimSpace(name),
		Code:    users.DormCode(name),
		Address: address,
	}
	s.dorms[d.ID] = d
	s.dormsByName[key] = d.ID
	cp := *d
	return &cp, nil
}

func (s *Store) GetDorm(_ context.Context, id int64) (*users.Dorm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.dorms[id]
	if !ok {
		return nil, fmt.Errorf("dorm %d: %w", id, users.ErrNotFound)
	}
	cp := *d
	return &cp, nil
}
