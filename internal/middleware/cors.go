package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS configures the cross-origin policy. OPTIONS preflights are answered
// with 200 so they never hit the rate limiters below.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Requested-With"},
		ExposedHeaders:   []string{HeaderNewAccessToken, HeaderNewRefreshToken, HeaderTokenExpiresIn},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
