package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bookclubhq/bookclub-backend/internal/auth"
	"github.com/bookclubhq/bookclub-backend/internal/database"
	"github.com/bookclubhq/bookclub-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type contextKey string

const userContextKey contextKey = "auth_user"

// Response headers set when the access token is close to expiry. The client
// may pick them up for a silent refresh or ignore them entirely.
const (
	HeaderNewAccessToken  = "X-New-Access-Token"
	HeaderNewRefreshToken = "X-New-Refresh-Token"
	HeaderTokenExpiresIn  = "X-Token-Expires-In"
)

// PrincipalLookup resolves a verified token's user id to the stored user.
// Returning (nil, nil) means the user no longer exists.
type PrincipalLookup func(ctx context.Context, id primitive.ObjectID) (*models.User, error)

// MongoPrincipalLookup is the production lookup against the users collection.
func MongoPrincipalLookup(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := database.DB.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Guard gates protected routes: it resolves a bearer token to a principal,
// enforces the active-account invariant, and exposes role checks.
type Guard struct {
	tokens           *auth.Manager
	lookup           PrincipalLookup
	refreshThreshold time.Duration
}

func NewGuard(tokens *auth.Manager, lookup PrincipalLookup, refreshThreshold time.Duration) *Guard {
	return &Guard{
		tokens:           tokens,
		lookup:           lookup,
		refreshThreshold: refreshThreshold,
	}
}

// Protect authenticates the request and stores the resolved user in the
// request context. Sub-reasons are surfaced where they change client
// behavior: an expired token should trigger a silent refresh, a deactivated
// account should not.
func (g *Guard) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractBearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeAuthError(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}

		claims, err := g.tokens.Verify(token, auth.TokenKindAccess)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				writeAuthError(w, http.StatusUnauthorized, "Token expired. Please refresh your session.")
				return
			}
			writeAuthError(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}

		user, err := g.lookup(r.Context(), userID)
		if err != nil {
			log.Printf("auth: principal lookup failed: %v", err)
			writeAuthError(w, http.StatusUnauthorized, "Not authorized, user not found")
			return
		}
		if user == nil {
			writeAuthError(w, http.StatusUnauthorized, "Not authorized, user not found")
			return
		}
		if !user.IsActive {
			writeAuthError(w, http.StatusUnauthorized, "Your account has been deactivated. Please contact support.")
			return
		}

		// Opportunistic refresh: when the token is about to expire, attach a
		// fresh pair as out-of-band headers without failing the request.
		if claims.ExpiresAt != nil && time.Until(claims.ExpiresAt.Time) < g.refreshThreshold {
			if pair, issueErr := g.tokens.Issue(user.ID.Hex()); issueErr == nil {
				w.Header().Set(HeaderNewAccessToken, pair.AccessToken)
				w.Header().Set(HeaderNewRefreshToken, pair.RefreshToken)
				w.Header().Set(HeaderTokenExpiresIn, strconv.FormatInt(pair.ExpiresIn, 10))
			}
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin admits admins only. Must run after Protect.
func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r.Context())
		if !ok || !user.IsAdmin() {
			writeAuthError(w, http.StatusForbidden, "Not authorized for this action")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireModerator admits moderators and admins. Must run after Protect.
func (g *Guard) RequireModerator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r.Context())
		if !ok || !user.IsModerator() {
			writeAuthError(w, http.StatusForbidden, "Not authorized for this action")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFrom returns the authenticated user stored by Protect.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

// WithUser returns a context carrying the given user. Exposed for tests and
// for the WebSocket gateway, which authenticates outside the middleware chain.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// ExtractBearerToken pulls the token out of an Authorization header value.
// Returns "" when the header is absent or not a bearer scheme.
func ExtractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}
