package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Erkan3034/yurtgate/api"
	"github.com/Erkan3034/yurtgate/users"
	"github.com/Erkan3034/yurtgate/users/memory"
)

func setupServer(t *testing.T) (*httptest.Server, users.Store) {
	t.Helper()
	store := memory.NewStore()
	tokens := api.NewTokenIssuer([]byte("integration-test-secret"), time.Hour, 24*time.Hour)
	a := api.New(store, tokens, api.WithBcryptCost(bcrypt.MinCost))
	r := chi.NewRouter()
	r.Mount("/api/users", a.Router())
	return httptest.NewServer(r), store
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reqBody).Encode(body))
	}
	req, err := http.NewRequestWithContext(t.Context(), method, url, &reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func register(t *testing.T, baseURL, email, password string, role users.Role) users.Profile {
	t.Helper()
	resp := doJSON(t, http.MethodPost, baseURL+"/api/users/auth/register", "", map[string]any{
		"email":     email,
		"password":  password,
		"dorm_name": "Cumhuriyet Yurdu",
		"role":      role,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[users.Profile](t, resp)
}

func login(t *testing.T, baseURL, email, password string) api.TokenResponse {
	t.Helper()
	resp := doJSON(t, http.MethodPost, baseURL+"/api/users/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decodeBody[api.TokenResponse](t, resp)
}

func TestRegisterValidation(t *testing.T) {
	srv, _ := setupServer(t)
	defer srv.Close()

	cases := []struct {
		name string
		body map[string]any
	}{
		{"short password", map[string]any{
			"email": "a@uni.edu", "password": "short", "dorm_name": "X", "role": "student",
		}},
		{"bad email", map[string]any{
			"email": "not-an-email", "password": "longenough", "dorm_name": "X", "role": "student",
		}},
		{"admin role rejected", map[string]any{
			"email": "a@uni.edu", "password": "longenough", "dorm_name": "X", "role": "admin",
		}},
		{"missing dorm", map[string]any{
			"email": "a@uni.edu", "password": "longenough", "role": "student",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/auth/register", "", tc.body)
			errResp := decodeBody[api.ErrorResponse](t, resp)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, errResp.Detail)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	srv, _ := setupServer(t)
	defer srv.Close()

	register(t, srv.URL, "dup@uni.edu", "password123", users.RoleStudent)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/auth/register", "", map[string]any{
		"email": "dup@uni.edu", "password": "password123", "dorm_name": "X", "role": "student",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegisterNormalizesEmail(t *testing.T) {
	srv, _ := setupServer(t)
	defer srv.Close()

	profile := register(t, srv.URL, "  Ayse@Uni.EDU ", "password123", users.RoleStudent)
	assert.Equal(t, "ayse@uni.edu", profile.Email)

	// Login with a differently-cased spelling still finds the account.
	tokens := login(t, srv.URL, "AYSE@uni.edu", "password123")
	assert.NotEmpty(t, tokens.Access)
}

func TestLoginAndMe(t *testing.T) {
	srv, _ := setupServer(t)
	defer srv.Close()

	register(t, srv.URL, "student@uni.edu", "password123", users.RoleStudent)
	tokens := login(t, srv.URL, "student@uni.edu", "password123")
	require.NotEmpty(t, tokens.Access)
	require.NotEmpty(t, tokens.Refresh)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/users/me", tokens.Access, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	profile := decodeBody[users.Profile](t, resp)
	assert.Equal(t, "student@uni.edu", profile.Email)
	assert.Equal(t, users.RoleStudent, profile.Role)
	assert.Nil(t, profile.SellerStoreIsOpen)
}

func TestLoginWrongPassword(t *testing.T) {
	srv, _ := setupServer(t)
	defer srv.Close()

	register(t, srv.URL, "student@uni.edu", "password123", users.RoleStudent)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/auth/login", "", map[string]string{
		"email": "student@uni.edu", "password": "wrong-password",
	})
	errResp := decodeBody[api.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid email or password", errResp.Detail)
}

func TestLoginUnknownAccountSameError(t *testing.T) {
	srv, _ := setupServer(t)
	defer srv.Close()

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/auth/login", "", map[string]string{
		"email": "nobody@uni.edu", "password": "whatever123",
	})
	errResp := decodeBody[api.ErrorResponse](t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid email or password", errResp.Detail)
}

func TestLoginRateLimited(t *testing.T) {
	srv, _ := setupServer(t)
	defer srv.Close()

	register(t, srv.URL, "victim@uni.edu", "password123", users.RoleStudent)

	for range 5 {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/auth/login", "", map[string]string{
			"email": "victim@uni.edu", "password": "wrong",
		})
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	// Sixth attempt hits the lockout, even with the correct password.
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/auth/login", "", map[string]string{
		"email": "victim@uni.edu", "password": "password123",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
}

func TestRefreshRotatesPair(t *testing.T) {
	srv, _ := setupServer(t)
	defer srv.Close()

	register(t, srv.URL, "student@uni.edu", "password123", users.RoleStudent)
	tokens := login(t, srv.URL, "student@uni.edu", "password123")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/auth/refresh", "", map[string]string{
		"refresh": tokens.Refresh,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rotated := decodeBody[api.TokenResponse](t, resp)
	assert.NotEmpty(t, rotated.Access)
	assert.NotEmpty(t, rotated.Refresh)

	// The fresh access token works against /me.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/users/me", rotated.Access, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	srv, _ := setupServer(t)
	defer srv.Close()

	register(t, srv.URL, "student@uni.edu", "password123", users.RoleStudent)
	tokens := login(t, srv.URL, "student@uni.edu", "password123")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/auth/refresh", "", map[string]string{
		"refresh": tokens.Access,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMeRequiresToken(t *testing.T) {
	srv, _ := setupServer(t)
	defer srv.Close()

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/users/me", "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/users/me", "garbage-token", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMeAfterAccountDeleted(t *testing.T) {
	srv, store := setupServer(t)
	defer srv.Close()

	profile := register(t, srv.URL, "gone@uni.edu", "password123", users.RoleStudent)
	tokens := login(t, srv.URL, "gone@uni.edu", "password123")

	// Simulate account removal; the token must stop working immediately.
	ms := store.(*memory.Store)
	ms.DeleteUser(profile.ID)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/users/me", tokens.Access, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestToggleStoreStatus(t *testing.T) {
	srv, _ := setupServer(t)
	defer srv.Close()

	profile := register(t, srv.URL, "seller@uni.edu", "password123", users.RoleSeller)
	require.NotNil(t, profile.SellerStoreIsOpen)
	require.True(t, *profile.SellerStoreIsOpen)
	tokens := login(t, srv.URL, "seller@uni.edu", "password123")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/me/store-status", tokens.Access, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	status := decodeBody[api.StoreStatusResponse](t, resp)
	assert.False(t, status.StoreIsOpen)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/users/me/store-status", tokens.Access, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	status = decodeBody[api.StoreStatusResponse](t, resp)
	assert.True(t, status.StoreIsOpen)
}

func TestToggleStoreStatusStudentForbidden(t *testing.T) {
	srv, _ := setupServer(t)
	defer srv.Close()

	register(t, srv.URL, "student@uni.edu", "password123", users.RoleStudent)
	tokens := login(t, srv.URL, "student@uni.edu", "password123")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/users/me/store-status", tokens.Access, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestOpenAPISpecServed(t *testing.T) {
	srv, _ := setupServer(t)
	defer srv.Close()

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/users/openapi.yaml", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/yaml", resp.Header.Get("Content-Type"))
}
