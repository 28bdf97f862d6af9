// Package client is the HTTP client for the Yurt Market users API: the
// backend collaborator that owns login, registration, token refresh,
// and the current-user lookup.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Erkan3034/yurtgate/users"
)

// ErrUnauthenticated is returned when the server rejects the bearer
// credential (HTTP 401). For login itself it means bad email/password.
var ErrUnauthenticated = errors.New("unauthenticated")

// APIError is a non-2xx response that is not an authentication failure.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// TokenPair is the credential pair minted by login and refresh.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RegisterParams is the registration payload.
type RegisterParams struct {
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	DormName    string     `json:"dorm_name"`
	DormAddress string     `json:"dorm_address,omitempty"`
	Role        users.Role `json:"role"`
	Phone       string     `json:"phone,omitempty"`
	IBAN        string     `json:"iban,omitempty"`
}

// Client talks to one Yurt Market server. The zero value is not usable;
// construct with New.
type Client struct {
	baseURL        string
	http           *http.Client
	tokenSource    func() string
	onUnauthorized func()
	logger         *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenSource sets where the bearer token is read from on every
// authenticated call — typically session.(*Store).AccessToken, so the
// client always sees the live token.
func WithTokenSource(source func() string) Option {
	return func(c *Client) { c.tokenSource = source }
}

// WithUnauthorizedHook registers a callback fired when an authenticated
// request comes back 401 — the API layer's authentication-failure
// signal, normally wired to session.(*Store).Logout. Failed logins do
// not fire it: no bearer token was attached.
func WithUnauthorizedHook(hook func()) Option {
	return func(c *Client) { c.onUnauthorized = hook }
}

// WithLogger sets the structured logger. If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Login exchanges email/password for a token pair.
func (c *Client) Login(ctx context.Context, email, password string) (TokenPair, error) {
	var pair TokenPair
	err := c.do(ctx, http.MethodPost, "/api/users/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &pair, false)
	return pair, err
}

// Register creates an account and returns the new profile. It does not
// log in; see SignUp for the combined flow.
func (c *Client) Register(ctx context.Context, params RegisterParams) (*users.Profile, error) {
	var profile users.Profile
	if err := c.do(ctx, http.MethodPost, "/api/users/auth/register", params, &profile, false); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Refresh mints a new token pair from a refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	var pair TokenPair
	err := c.do(ctx, http.MethodPost, "/api/users/auth/refresh", map[string]string{
		"refresh": refreshToken,
	}, &pair, false)
	return pair, err
}

// CurrentUser fetches the profile of the bearer-token owner. A 401
// means the token is stale or revoked.
func (c *Client) CurrentUser(ctx context.Context) (*users.Profile, error) {
	var profile users.Profile
	if err := c.do(ctx, http.MethodGet, "/api/users/me", nil, &profile, true); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ToggleStoreStatus flips the seller's store-open flag and returns the
// new value. Seller-only; other roles get an APIError with status 403.
func (c *Client) ToggleStoreStatus(ctx context.Context) (bool, error) {
	var resp struct {
		StoreIsOpen bool `json:"store_is_open"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/users/me/store-status", nil, &resp, true); err != nil {
		return false, err
	}
	return resp.StoreIsOpen, nil
}

// do sends one JSON request. authenticated requests carry the bearer
// token from the token source and fire the unauthorized hook on 401.
func (c *Client) do(ctx context.Context, method, path string, body, out any, authenticated bool) error {
	var reqBody bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&reqBody).Encode(body); err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	tokenAttached := false
	if authenticated && c.tokenSource != nil {
		if token := c.tokenSource(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
			tokenAttached = true
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if tokenAttached && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthenticated)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return &APIError{Status: resp.StatusCode, Detail: body.Detail}
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding %s %s response: %w", method, path, err)
		}
	}
	return nil
}
