// Package api implements the Yurt Market users REST API: registration,
// credential login, JWT refresh, profile fetch, and the seller
// store-status toggle.
package api

import (
	_ "embed"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"

	"github.com/Erkan3034/yurtgate/users"
)

// API holds the dependencies needed by the REST handlers.
type API struct {
	store      users.Store
	tokens     *TokenIssuer
	limiter    *loginRateLimiter
	audit      *auditLogger
	bcryptCost int
}

//go:embed openapi.yaml
var openapiSpec []byte

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger for audit events.
// If not set, a default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.audit = newAuditLogger(logger)
	}
}

// WithBcryptCost overrides the password hashing cost. Tests use a low
// cost to keep the suite fast.
func WithBcryptCost(cost int) Option {
	return func(a *API) {
		a.bcryptCost = cost
	}
}

// New creates a new API instance.
func New(store users.Store, tokens *TokenIssuer, opts ...Option) *API {
	a := &API{
		store:      store,
		tokens:     tokens,
		limiter:    newLoginRateLimiter(),
		bcryptCost: defaultBcryptCost,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.audit == nil {
		a.audit = newAuditLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}
	return a
}

// defaultBcryptCost is deliberately above the library default.
const defaultBcryptCost = 12

// Router returns a chi.Router with all API routes mounted.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})

	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/api/users/openapi.yaml",
		Path:    "api/users/docs",
	}, nil))

	r.Handle("/redoc*", middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/api/users/openapi.yaml",
		Path:    "api/users/redoc",
	}, nil))

	r.Post("/auth/register", a.Register)
	r.Post("/auth/login", a.Login)
	r.Post("/auth/refresh", a.Refresh)

	r.With(a.AuthMiddleware).Get("/me", a.Me)
	r.With(a.AuthMiddleware).Post("/me/store-status", a.ToggleStoreStatus)

	return r
}
