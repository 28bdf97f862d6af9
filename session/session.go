// Package session holds the process-wide authentication state of a Yurt
// Market client: the token pair, the current user profile, and the
// bootstrap phase. There is exactly one Store per running client; it is
// constructed explicitly and passed to whatever needs it.
package session

import "github.com/Erkan3034/yurtgate/users"

// Phase tracks whether the startup reconciliation of persisted
// credentials has finished. Guard decisions taken while Unresolved are
// provisional: render a placeholder, never redirect.
type Phase int

const (
	// Unresolved means the bootstrapper has not completed yet.
	Unresolved Phase = iota
	// Resolved means the session reflects reality: either anonymous or
	// authenticated with a freshly fetched profile.
	Resolved
)

func (p Phase) String() string {
	switch p {
	case Unresolved:
		return "unresolved"
	case Resolved:
		return "resolved"
	}
	return "unknown"
}

// State is an immutable snapshot of the session. The User pointer is a
// private copy; mutating it does not affect the store.
type State struct {
	Phase        Phase
	AccessToken  string
	RefreshToken string
	User         *users.Profile
}

// Authenticated reports whether a user profile is present.
func (s State) Authenticated() bool {
	return s.User != nil
}
