// Package credstore abstracts durable storage for the authentication
// tokens so that a session survives process restarts.
package credstore

import "errors"

// ErrNotLoggedIn is returned by Load when no credentials are persisted.
// It is a normal state, not a failure.
var ErrNotLoggedIn = errors.New("not logged in")

// Credentials is the persisted token pair.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Store defines the interface for credential persistence.
type Store interface {
	// Save persists both tokens, replacing any previous pair.
	Save(creds Credentials) error
	// Load retrieves the persisted pair, or ErrNotLoggedIn.
	Load() (Credentials, error)
	// Delete removes any persisted credentials. Deleting when nothing
	// is stored is a no-op, not an error.
	Delete() error
}
