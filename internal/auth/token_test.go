package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	require.NoError(t, err)
	return m
}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	pair, err := m.Issue("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	claims, err := m.Verify(pair.AccessToken, TokenKindAccess)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, TokenKindAccess, claims.Kind)

	claims, err = m.Verify(pair.RefreshToken, TokenKindRefresh)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	m, err := NewManager("secret", "", -time.Second, 24*time.Hour)
	require.NoError(t, err)

	pair, err := m.Issue("u1")
	require.NoError(t, err)

	_, err = m.Verify(pair.AccessToken, TokenKindAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerify_KindMismatch(t *testing.T) {
	t.Parallel()

	// Same secret for both kinds, so only the kind claim distinguishes them.
	m, err := NewManager("shared-secret", "", time.Hour, 24*time.Hour)
	require.NoError(t, err)

	pair, err := m.Issue("u2")
	require.NoError(t, err)

	_, err = m.Verify(pair.RefreshToken, TokenKindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Verify(pair.AccessToken, TokenKindRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	pair, err := m.Issue("u3")
	require.NoError(t, err)

	other, err := NewManager("a-different-secret", "", time.Hour, 24*time.Hour)
	require.NoError(t, err)

	_, err = other.Verify(pair.AccessToken, TokenKindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	_, err := m.Verify("not.a.jwt", TokenKindAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshFlow_AccessExpiredRefreshStillValid(t *testing.T) {
	t.Parallel()

	// Access tokens expire immediately, refresh tokens stay valid.
	m, err := NewManager("secret", "refresh-secret", -time.Second, 24*time.Hour)
	require.NoError(t, err)

	pair, err := m.Issue("u4")
	require.NoError(t, err)

	_, err = m.Verify(pair.AccessToken, TokenKindAccess)
	require.ErrorIs(t, err, ErrTokenExpired)

	claims, err := m.Verify(pair.RefreshToken, TokenKindRefresh)
	require.NoError(t, err)
	assert.Equal(t, "u4", claims.UserID)
}

func TestNewManager_RefreshSecretFallback(t *testing.T) {
	t.Parallel()

	m, err := NewManager("only-secret", "", time.Hour, 24*time.Hour)
	require.NoError(t, err)

	pair, err := m.Issue("u5")
	require.NoError(t, err)

	claims, err := m.Verify(pair.RefreshToken, TokenKindRefresh)
	require.NoError(t, err)
	assert.Equal(t, "u5", claims.UserID)
}

func TestNewManager_EmptySecret(t *testing.T) {
	t.Parallel()

	_, err := NewManager("", "", time.Hour, 24*time.Hour)
	assert.Error(t, err)
}
