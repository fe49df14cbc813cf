package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	MongoURI string
	RedisURI string

	JWTSecret        string
	JWTRefreshSecret string // falls back to JWTSecret when empty

	AccessTokenTTL   time.Duration // access token validity, default 24h
	RefreshTokenTTL  time.Duration // refresh token validity, default 30d
	RefreshThreshold time.Duration // remaining validity that triggers silent refresh
	RequestTimeout   time.Duration // per-request deadline applied by the router

	Port           string
	FrontendURL    string
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL
	Environment    string   // ENV: production, development, etc.

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	return &Config{
		MongoURI: getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/bookclub")),
		RedisURI: getEnv("REDIS_URI", "redis://localhost:6379/0"),

		JWTSecret:        getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),

		AccessTokenTTL:   getDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTokenTTL:  getDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		RefreshThreshold: getDuration("TOKEN_REFRESH_THRESHOLD", 5*time.Minute),
		RequestTimeout:   getDuration("REQUEST_TIMEOUT", 15*time.Second),

		Port:           getEnv("PORT", "8080"),
		FrontendURL:    getEnv("FRONTEND_URL", "http://localhost:3000"),
		AllowedOrigins: allowedOrigins,
		Environment:    env,

		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
	}
}

// RefreshSecret returns the refresh-token signing secret, falling back to the
// access secret when no dedicated one is configured.
func (c *Config) RefreshSecret() string {
	if c.JWTRefreshSecret != "" {
		return c.JWTRefreshSecret
	}
	return c.JWTSecret
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	// Plain integers are treated as seconds (e.g. REQUEST_TIMEOUT=30).
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
