package client

import (
	"context"
	"fmt"

	"github.com/Erkan3034/yurtgate/session"
	"github.com/Erkan3034/yurtgate/users"
)

// SignIn runs the full login flow: exchange credentials for tokens,
// store the pair, then fetch and cache the profile. Tokens and user
// land in the session within one logical flow, so the pairing invariant
// holds once SignIn returns.
//
// A concurrent bootstrap may interleave; both flows converge on the
// same invariant-respecting state and last write wins, so no lock is
// taken across the two calls.
func SignIn(ctx context.Context, c *Client, store *session.Store, email, password string) (*users.Profile, error) {
	pair, err := c.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	store.SetTokens(pair.Access, pair.Refresh)

	profile, err := c.CurrentUser(ctx)
	if err != nil {
		// The token worked a moment ago but the profile fetch failed;
		// don't leave a dangling token behind.
		store.Logout()
		return nil, fmt.Errorf("fetching profile after login: %w", err)
	}
	store.SetUser(profile)
	return profile, nil
}

// SignUp registers the account and immediately signs it in.
func SignUp(ctx context.Context, c *Client, store *session.Store, params RegisterParams) (*users.Profile, error) {
	if _, err := c.Register(ctx, params); err != nil {
		return nil, err
	}
	return SignIn(ctx, c, store, params.Email, params.Password)
}

// SignOut clears the session and durable credentials. Purely local; the
// server keeps no session state to revoke.
func SignOut(store *session.Store) {
	store.Logout()
}

// RefreshProfile refetches the current user and replaces the cached
// profile, keeping the session current after profile-affecting
// mutations such as the store-status toggle.
func RefreshProfile(ctx context.Context, c *Client, store *session.Store) (*users.Profile, error) {
	profile, err := c.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	store.SetUser(profile)
	return profile, nil
}
