package client_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Erkan3034/yurtgate/api"
	"github.com/Erkan3034/yurtgate/client"
	"github.com/Erkan3034/yurtgate/credstore"
	credmemory "github.com/Erkan3034/yurtgate/credstore/memory"
	"github.com/Erkan3034/yurtgate/guard"
	"github.com/Erkan3034/yurtgate/session"
	"github.com/Erkan3034/yurtgate/users"
	usersmemory "github.com/Erkan3034/yurtgate/users/memory"
)

// harness wires a real API server to a client-side session the way the
// CLI does: file-backed credentials swapped for memory, everything else
// production wiring.
type harness struct {
	srv    *httptest.Server
	creds  *credmemory.Store
	store  *session.Store
	client *client.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	userStore := usersmemory.NewStore()
	tokens := api.NewTokenIssuer([]byte("flow-test-secret"), time.Hour, 24*time.Hour)
	a := api.New(userStore, tokens, api.WithBcryptCost(bcrypt.MinCost))
	r := chi.NewRouter()
	r.Mount("/api/users", a.Router())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	creds := credmemory.NewStore()
	store := session.NewStore(creds)
	c := client.New(srv.URL,
		client.WithTokenSource(store.AccessToken),
		client.WithUnauthorizedHook(func() { store.Logout() }))
	return &harness{srv: srv, creds: creds, store: store, client: c}
}

func (h *harness) signUpSeller(t *testing.T) *users.Profile {
	t.Helper()
	profile, err := client.SignUp(t.Context(), h.client, h.store, client.RegisterParams{
		Email:    "seller@uni.edu",
		Password: "password123",
		DormName: "Cumhuriyet Yurdu",
		Role:     users.RoleSeller,
		IBAN:     "TR330006100519786457841326",
	})
	require.NoError(t, err)
	return profile
}

func TestSignUpPopulatesSession(t *testing.T) {
	h := newHarness(t)

	profile := h.signUpSeller(t)
	assert.Equal(t, "seller@uni.edu", profile.Email)

	st := h.store.State()
	require.True(t, st.Authenticated())
	assert.Equal(t, session.Resolved, st.Phase)
	assert.Equal(t, users.RoleSeller, st.User.Role)

	// Credentials landed durably too.
	saved, err := h.creds.Load()
	require.NoError(t, err)
	assert.Equal(t, st.AccessToken, saved.AccessToken)
}

func TestSignInWrongPasswordLeavesSessionAlone(t *testing.T) {
	h := newHarness(t)
	h.signUpSeller(t)

	_, err := client.SignIn(t.Context(), h.client, h.store, "seller@uni.edu", "wrong-pass")
	assert.ErrorIs(t, err, client.ErrUnauthenticated)

	// The failed attempt must not disturb the signed-in session.
	assert.True(t, h.store.State().Authenticated())
}

func TestSignOutThenBootstrapStaysAnonymous(t *testing.T) {
	h := newHarness(t)
	h.signUpSeller(t)

	client.SignOut(h.store)
	st := h.store.State()
	assert.False(t, st.Authenticated())
	assert.Equal(t, session.Resolved, st.Phase)

	// A second process starting up finds nothing to restore.
	store2 := session.NewStore(h.creds)
	boot := session.NewBootstrapper(store2, h.client)
	boot.Run(t.Context())
	assert.False(t, store2.State().Authenticated())
}

func TestBootstrapRestoresAcrossProcesses(t *testing.T) {
	h := newHarness(t)
	h.signUpSeller(t)

	// Second session store sharing the credential store simulates a
	// fresh process start.
	store2 := session.NewStore(h.creds)
	c2 := client.New(h.srv.URL, client.WithTokenSource(store2.AccessToken))
	boot := session.NewBootstrapper(store2, c2)
	boot.Run(t.Context())

	st := store2.State()
	require.True(t, st.Authenticated())
	assert.Equal(t, "seller@uni.edu", st.User.Email)
}

func TestBootstrapWithRevokedTokenLogsOut(t *testing.T) {
	h := newHarness(t)
	h.signUpSeller(t)

	// Corrupt the durable token to simulate server-side revocation.
	require.NoError(t, h.creds.Save(credstore.Credentials{
		AccessToken:  "tampered-token",
		RefreshToken: "tampered-refresh",
	}))

	store2 := session.NewStore(h.creds)
	c2 := client.New(h.srv.URL,
		client.WithTokenSource(store2.AccessToken),
		client.WithUnauthorizedHook(func() { store2.Logout() }))
	boot := session.NewBootstrapper(store2, c2)
	boot.Run(t.Context())

	st := store2.State()
	assert.False(t, st.Authenticated())
	assert.Equal(t, session.Resolved, st.Phase)

	// Fail closed: the bad credentials are purged, not retried forever.
	_, err := h.creds.Load()
	assert.Error(t, err)
}

func TestGuardDecisionsAgainstLiveSession(t *testing.T) {
	h := newHarness(t)
	g, err := guard.New()
	require.NoError(t, err)
	table := guard.DefaultTable()

	// Anonymous, resolved: protected routes bounce to login.
	store := session.NewStore(h.creds)
	boot := session.NewBootstrapper(store, h.client)
	boot.Run(t.Context())
	d := table.Decide(g, store.State(), "/app/explore")
	assert.Equal(t, guard.Redirect, d.Outcome)
	assert.Equal(t, guard.LoginRoute, d.Target)

	// Signed in as seller: seller area renders, admin area bounces home.
	h.signUpSeller(t)
	d = table.Decide(g, h.store.State(), "/seller/products")
	assert.Equal(t, guard.Render, d.Outcome)
	d = table.Decide(g, h.store.State(), "/app/admin")
	assert.Equal(t, guard.Redirect, d.Outcome)
	assert.Equal(t, guard.HomeRoute, d.Target)
}

func TestToggleStoreStatusRoundTrip(t *testing.T) {
	h := newHarness(t)
	profile := h.signUpSeller(t)
	require.NotNil(t, profile.SellerStoreIsOpen)
	require.True(t, *profile.SellerStoreIsOpen)

	open, err := h.client.ToggleStoreStatus(t.Context())
	require.NoError(t, err)
	assert.False(t, open)

	// RefreshProfile pulls the flipped flag into the session.
	refreshed, err := client.RefreshProfile(t.Context(), h.client, h.store)
	require.NoError(t, err)
	require.NotNil(t, refreshed.SellerStoreIsOpen)
	assert.False(t, *refreshed.SellerStoreIsOpen)
	assert.False(t, *h.store.State().User.SellerStoreIsOpen)
}
