package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Erkan3034/yurtgate/internal/util"
	"github.com/Erkan3034/yurtgate/users"
)

const (
	// minPasswordLen is the minimum password length for registration.
	minPasswordLen = 8
	// maxAuthBodySize bounds auth request bodies.
	maxAuthBodySize = 16 * 1024
)

// decodeJSON reads a bounded JSON body into T, writing the error
// response itself on failure.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request, maxBytes int64) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return v, false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return v, false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, http.StatusBadRequest, "unexpected trailing data")
		return v, false
	}
	return v, true
}

// Register handles POST /auth/register.
func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[RegisterRequest](w, r, maxAuthBodySize)
	if !ok {
		return
	}

	email := util.NormalizeEmail(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(req.Password) < minPasswordLen {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("password must be at least %d characters", minPasswordLen))
		return
	}
	// Accounts self-register only into the two marketplace roles;
	// admins are provisioned out of band.
	if req.Role != users.RoleStudent && req.Role != users.RoleSeller {
		writeError(w, http.StatusBadRequest, "role must be student or seller")
		return
	}
	if strings.TrimSpace(req.DormName) == "" {
		writeError(w, http.StatusBadRequest, "dorm_name is required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), a.bcryptCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	dorm, err := a.store.EnsureDorm(r.Context(), req.DormName, req.DormAddress)
	if err != nil {
		mapError(w, err)
		return
	}

	user := &users.User{
		Profile: users.Profile{
			Email:      email,
			DormID:     dorm.ID,
			Role:       req.Role,
			DateJoined: time.Now().UTC(),
			Phone:      req.Phone,
		},
		PasswordHash: string(hash),
	}
	if req.Role == users.RoleSeller {
		open := true
		user.SellerStoreIsOpen = &open
		user.IBAN = strings.TrimSpace(req.IBAN)
	}

	created, err := a.store.CreateUser(r.Context(), user)
	if err != nil {
		mapError(w, err)
		return
	}

	a.audit.logEvent(AuditRegister, r, created.ID, slog.String("role", string(created.Role)))
	writeJSON(w, http.StatusCreated, created.Profile)
}

// Login handles POST /auth/login.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[LoginRequest](w, r, maxAuthBodySize)
	if !ok {
		return
	}
	email := util.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	if blocked, retryAfter := a.limiter.check(email); blocked {
		a.audit.logFailure(AuditLoginRateLimited, r, "account rate limited")
		w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
		writeError(w, http.StatusTooManyRequests, "too many failed attempts, try again later")
		return
	}

	user, err := a.store.GetUserByEmail(r.Context(), email)
	if err != nil {
		// Burn a comparison anyway so a missing account costs the same
		// as a wrong password.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		a.limiter.recordFailure(email)
		a.audit.logFailure(AuditLoginFailure, r, "unknown account")
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		a.limiter.recordFailure(email)
		a.audit.logFailure(AuditLoginFailure, r, "wrong password")
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	a.limiter.reset(email)

	access, refresh, err := a.tokens.IssuePair(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue tokens")
		return
	}
	a.audit.logEvent(AuditLoginSuccess, r, user.ID)
	writeJSON(w, http.StatusOK, TokenResponse{Access: access, Refresh: refresh})
}

// dummyHash keeps login timing flat for unknown accounts. Any valid
// bcrypt digest works; the comparison is meant to fail.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// Refresh handles POST /auth/refresh.
func (a *API) Refresh(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[RefreshRequest](w, r, maxAuthBodySize)
	if !ok {
		return
	}
	claims, err := a.tokens.ParseRefresh(req.Refresh)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	user, err := a.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	access, refresh, err := a.tokens.IssuePair(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue tokens")
		return
	}
	a.audit.logEvent(AuditTokenRefresh, r, user.ID)
	writeJSON(w, http.StatusOK, TokenResponse{Access: access, Refresh: refresh})
}

// Me handles GET /me.
func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, user.Profile)
}

// ToggleStoreStatus handles POST /me/store-status. Seller-only.
func (a *API) ToggleStoreStatus(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if user.Role != users.RoleSeller {
		writeError(w, http.StatusForbidden, "only sellers can toggle store status")
		return
	}

	open := user.SellerStoreIsOpen == nil || !*user.SellerStoreIsOpen
	user.SellerStoreIsOpen = &open
	if err := a.store.UpdateUser(r.Context(), user); err != nil {
		mapError(w, err)
		return
	}

	msg := "store closed"
	if open {
		msg = "store opened"
	}
	a.audit.logEvent(AuditStoreToggled, r, user.ID, slog.Bool("store_is_open", open))
	writeJSON(w, http.StatusOK, StoreStatusResponse{StoreIsOpen: open, Message: msg})
}
