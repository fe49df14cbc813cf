package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired is returned when the token's embedded expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidToken covers signature failures, structural failures, and
	// kind mismatches (an access token presented as a refresh token or
	// vice versa).
	ErrInvalidToken = errors.New("invalid token")
)

// TokenKind tags each token with its issuance context. Verification rejects
// a token whose kind doesn't match the expected use site, so a long-lived
// refresh token can never pass where an access token is required.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// Claims carry only the principal identifier, the token kind, and the
// registered expiry. Role is deliberately not embedded: it is re-fetched
// from the store on every request so role changes apply without re-login.
type Claims struct {
	UserID string    `json:"uid"`
	Kind   TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// TokenPair is returned on login, registration, and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"` // access-token validity, seconds
}

// Manager signs and verifies session tokens with HMAC-SHA256. The refresh
// secret may equal the access secret when no dedicated one is configured.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*Manager, error) {
	if accessSecret == "" {
		return nil, errors.New("access token secret is required")
	}
	if refreshSecret == "" {
		refreshSecret = accessSecret
	}
	return &Manager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// AccessTTL returns the configured access-token validity.
func (m *Manager) AccessTTL() time.Duration {
	return m.accessTTL
}

// Issue mints a fresh access/refresh pair for the given principal.
func (m *Manager) Issue(userID string) (TokenPair, error) {
	accessToken, err := m.sign(userID, TokenKindAccess, m.accessSecret, m.accessTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("signing access token: %w", err)
	}

	refreshToken, err := m.sign(userID, TokenKindRefresh, m.refreshSecret, m.refreshTTL)
	if err != nil {
		return TokenPair{}, fmt.Errorf("signing refresh token: %w", err)
	}

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(m.accessTTL.Seconds()),
	}, nil
}

func (m *Manager) sign(userID string, kind TokenKind, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Verify parses and validates a token of the expected kind and returns its
// claims. Returns ErrTokenExpired when the expiry has passed, ErrInvalidToken
// for every other failure including a kind mismatch.
func (m *Manager) Verify(tokenString string, kind TokenKind) (*Claims, error) {
	secret := m.accessSecret
	if kind == TokenKindRefresh {
		secret = m.refreshSecret
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
