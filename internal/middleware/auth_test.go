package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bookclubhq/bookclub-backend/internal/auth"
	"github.com/bookclubhq/bookclub-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testGuard(t *testing.T, users map[primitive.ObjectID]*models.User, accessTTL time.Duration) (*Guard, *auth.Manager) {
	t.Helper()
	tokens, err := auth.NewManager("test-secret", "", accessTTL, 24*time.Hour)
	require.NoError(t, err)

	lookup := func(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
		return users[id], nil
	}
	return NewGuard(tokens, lookup, 5*time.Minute), tokens
}

func activeUser() *models.User {
	return &models.User{
		ID:       primitive.NewObjectID(),
		Name:     "Reader",
		Email:    "reader@example.com",
		Role:     models.RoleUser,
		IsActive: true,
	}
}

func protectedEcho(guard *Guard) http.Handler {
	return guard.Protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(user.Email))
	}))
}

func TestProtect_NoToken(t *testing.T) {
	t.Parallel()

	guard, _ := testGuard(t, nil, time.Hour)
	rec := httptest.NewRecorder()
	protectedEcho(guard).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "no token")
}

func TestProtect_MalformedHeader(t *testing.T) {
	t.Parallel()

	guard, _ := testGuard(t, nil, time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc123")

	rec := httptest.NewRecorder()
	protectedEcho(guard).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtect_ValidToken(t *testing.T) {
	t.Parallel()

	user := activeUser()
	guard, tokens := testGuard(t, map[primitive.ObjectID]*models.User{user.ID: user}, time.Hour)

	pair, err := tokens.Issue(user.ID.Hex())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	rec := httptest.NewRecorder()
	protectedEcho(guard).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.Email, rec.Body.String())
}

func TestProtect_ExpiredToken(t *testing.T) {
	t.Parallel()

	user := activeUser()
	guard, tokens := testGuard(t, map[primitive.ObjectID]*models.User{user.ID: user}, -time.Second)

	pair, err := tokens.Issue(user.ID.Hex())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	rec := httptest.NewRecorder()
	protectedEcho(guard).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token expired")
}

func TestProtect_RefreshTokenRejected(t *testing.T) {
	t.Parallel()

	user := activeUser()
	guard, tokens := testGuard(t, map[primitive.ObjectID]*models.User{user.ID: user}, time.Hour)

	pair, err := tokens.Issue(user.ID.Hex())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)

	rec := httptest.NewRecorder()
	protectedEcho(guard).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token failed")
}

func TestProtect_UserNotFound(t *testing.T) {
	t.Parallel()

	guard, tokens := testGuard(t, map[primitive.ObjectID]*models.User{}, time.Hour)

	pair, err := tokens.Issue(primitive.NewObjectID().Hex())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	rec := httptest.NewRecorder()
	protectedEcho(guard).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not found")
}

func TestProtect_DeactivatedAccount(t *testing.T) {
	t.Parallel()

	user := activeUser()
	user.IsActive = false
	guard, tokens := testGuard(t, map[primitive.ObjectID]*models.User{user.ID: user}, time.Hour)

	pair, err := tokens.Issue(user.ID.Hex())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	rec := httptest.NewRecorder()
	protectedEcho(guard).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "deactivated")
}

func TestProtect_NearExpiryAttachesFreshPair(t *testing.T) {
	t.Parallel()

	user := activeUser()
	// One-minute validity is under the five-minute refresh threshold.
	guard, tokens := testGuard(t, map[primitive.ObjectID]*models.User{user.ID: user}, time.Minute)

	pair, err := tokens.Issue(user.ID.Hex())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	rec := httptest.NewRecorder()
	protectedEcho(guard).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(HeaderNewAccessToken))
	assert.NotEmpty(t, rec.Header().Get(HeaderNewRefreshToken))
	assert.NotEmpty(t, rec.Header().Get(HeaderTokenExpiresIn))
}

func TestProtect_FarFromExpiryNoRefreshHeaders(t *testing.T) {
	t.Parallel()

	user := activeUser()
	guard, tokens := testGuard(t, map[primitive.ObjectID]*models.User{user.ID: user}, 2*time.Hour)

	pair, err := tokens.Issue(user.ID.Hex())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	rec := httptest.NewRecorder()
	protectedEcho(guard).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get(HeaderNewAccessToken))
}

func TestRequireAdmin(t *testing.T) {
	t.Parallel()

	guard, _ := testGuard(t, nil, time.Hour)
	handler := guard.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name string
		role models.Role
		want int
	}{
		{"user forbidden", models.RoleUser, http.StatusForbidden},
		{"moderator forbidden", models.RoleModerator, http.StatusForbidden},
		{"admin allowed", models.RoleAdmin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := activeUser()
			user.Role = tt.role

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(WithUser(req.Context(), user))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireModerator_AdmitsAdmin(t *testing.T) {
	t.Parallel()

	guard, _ := testGuard(t, nil, time.Hour)
	handler := guard.RequireModerator(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, role := range []models.Role{models.RoleModerator, models.RoleAdmin} {
		user := activeUser()
		user.Role = role

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithUser(req.Context(), user))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "role %s", role)
	}

	user := activeUser()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithUser(req.Context(), user))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestExtractBearerToken(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", ExtractBearerToken("Bearer abc"))
	assert.Equal(t, "abc", ExtractBearerToken("bearer abc"))
	assert.Equal(t, "", ExtractBearerToken(""))
	assert.Equal(t, "", ExtractBearerToken("Bearer"))
	assert.Equal(t, "", ExtractBearerToken("Basic abc"))
}
