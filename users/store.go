package users

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when no user or dorm matches the lookup.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when registration reuses an existing email.
	ErrEmailTaken = errors.New("email already registered")
)

// Store defines the interface for user and dorm persistence.
type Store interface {
	// CreateUser persists a new user and assigns its ID. The email must
	// be unique; ErrEmailTaken otherwise.
	CreateUser(ctx context.Context, u *User) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	// UpdateUser replaces the stored record for u.ID wholesale.
	UpdateUser(ctx context.Context, u *User) error

	// EnsureDorm returns the dorm with the given name, creating it
	// (with a generated code) if it does not exist yet.
	EnsureDorm(ctx context.Context, name, address string) (*Dorm, error)
	GetDorm(ctx context.Context, id int64) (*Dorm, error)
}

// DormCode derives a short uppercase code from a dorm name, used when a
// dorm is auto-created during registration.
func DormCode(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(name)) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			if b.Len() > 0 && b.String()[b.Len()-1] != '-' {
				b.WriteByte('-')
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
