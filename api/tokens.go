package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/awnumar/memguard"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Erkan3034/yurtgate/users"
)

const (
	// DefaultAccessTokenTTL is how long an access token stays valid.
	DefaultAccessTokenTTL = 1 * time.Hour
	// DefaultRefreshTokenTTL is how long a refresh token stays valid.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// ErrInvalidToken covers malformed, expired, badly signed, and
// wrong-type tokens alike; callers get no finer detail.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload for both token types. typ distinguishes
// them so a refresh token can never be replayed as a bearer credential.
type Claims struct {
	UserID    int64      `json:"uid"`
	Email     string     `json:"email"`
	Role      users.Role `json:"role"`
	TokenType string     `json:"typ"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies the HS256 token pair. The signing
// secret lives in a memguard Enclave and is only held in plaintext for
// the duration of a single sign or verify.
type TokenIssuer struct {
	secret     *memguard.Enclave
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenIssuer wraps the signing secret. The caller's secret slice is
// wiped by memguard as part of enclave construction.
func NewTokenIssuer(secret []byte, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	return &TokenIssuer{
		secret:     memguard.NewEnclave(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssuePair mints an access/refresh token pair for the user.
func (ti *TokenIssuer) IssuePair(u *users.User) (access, refresh string, err error) {
	now := time.Now().UTC()
	access, err = ti.sign(u, tokenTypeAccess, now, ti.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("signing access token: %w", err)
	}
	refresh, err = ti.sign(u, tokenTypeRefresh, now, ti.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("signing refresh token: %w", err)
	}
	return access, refresh, nil
}

func (ti *TokenIssuer) sign(u *users.User, typ string, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	key, err := ti.secret.Open()
	if err != nil {
		return "", fmt.Errorf("opening signing secret: %w", err)
	}
	defer key.Destroy()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key.Bytes())
}

// ParseAccess validates an access token and returns its claims.
func (ti *TokenIssuer) ParseAccess(tokenStr string) (*Claims, error) {
	return ti.parse(tokenStr, tokenTypeAccess)
}

// ParseRefresh validates a refresh token and returns its claims.
func (ti *TokenIssuer) ParseRefresh(tokenStr string) (*Claims, error) {
	return ti.parse(tokenStr, tokenTypeRefresh)
}

func (ti *TokenIssuer) parse(tokenStr, wantType string) (*Claims, error) {
	key, err := ti.secret.Open()
	if err != nil {
		return nil, fmt.Errorf("opening signing secret: %w", err)
	}
	defer key.Destroy()

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return key.Bytes(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
