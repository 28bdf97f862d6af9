package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/Erkan3034/yurtgate/credstore"
	"github.com/Erkan3034/yurtgate/users"
)

// ProfileFetcher is the external collaborator that validates a bearer
// token by fetching the current user. The API client implements it.
type ProfileFetcher interface {
	CurrentUser(ctx context.Context) (*users.Profile, error)
}

// Bootstrapper reconciles persisted credentials with a live profile
// fetch, exactly once per process start. Until it completes the session
// phase stays Unresolved and guard decisions are provisional.
type Bootstrapper struct {
	store  *Store
	fetch  ProfileFetcher
	logger *slog.Logger
	once   sync.Once
}

// NewBootstrapper creates a Bootstrapper for the given store. The store's
// credential backend and logger are reused.
func NewBootstrapper(store *Store, fetch ProfileFetcher) *Bootstrapper {
	return &Bootstrapper{store: store, fetch: fetch, logger: store.logger}
}

// Run performs the startup reconciliation. It never returns an error:
// a missing credential file resolves to anonymous, and a failed profile
// fetch — expired token, revoked token, or unreachable server — is
// converted to a logout so no dangling token can outlive its user.
// Calling Run again is a no-op.
func (b *Bootstrapper) Run(ctx context.Context) {
	b.once.Do(func() { b.run(ctx) })
}

func (b *Bootstrapper) run(ctx context.Context) {
	creds, err := b.store.creds.Load()
	if err != nil {
		if !errors.Is(err, credstore.ErrNotLoggedIn) {
			b.logger.Warn("loading persisted credentials failed; starting anonymous", "error", err)
		}
		b.store.resolveAnonymous()
		return
	}

	b.store.SetTokens(creds.AccessToken, creds.RefreshToken)

	profile, err := b.fetch.CurrentUser(ctx)
	if err != nil {
		// Fail closed: an unverified session must not render protected
		// content, so both a 401 and a transport failure land here.
		b.logger.Info("persisted session could not be verified; logging out", "error", err)
		b.store.Logout()
		return
	}
	b.store.SetUser(profile)
	b.logger.Debug("session restored", "user_id", profile.ID, "role", string(profile.Role))
}
