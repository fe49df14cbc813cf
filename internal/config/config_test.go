package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"MONGODB_URI", "MONGO_URI", "PORT", "ENV",
		"ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "TOKEN_REFRESH_THRESHOLD", "REQUEST_TIMEOUT",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "mongodb://localhost:27017/bookclub", cfg.MongoURI)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.RefreshThreshold)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.IsProduction())
	assert.NotEmpty(t, cfg.AllowedOrigins)
}

func TestRefreshSecretFallback(t *testing.T) {
	cfg := &Config{JWTSecret: "access-secret"}
	assert.Equal(t, "access-secret", cfg.RefreshSecret())

	cfg.JWTRefreshSecret = "refresh-secret"
	assert.Equal(t, "refresh-secret", cfg.RefreshSecret())
}

func TestIsProduction(t *testing.T) {
	assert.True(t, (&Config{Environment: "production"}).IsProduction())
	assert.True(t, (&Config{Environment: " Production "}).IsProduction())
	assert.False(t, (&Config{Environment: "development"}).IsProduction())
	assert.False(t, (&Config{Environment: ""}).IsProduction())
}

func TestGetDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		fallback time.Duration
		want     time.Duration
	}{
		{"empty uses default", "", time.Minute, time.Minute},
		{"duration string", "30s", time.Minute, 30 * time.Second},
		{"compound duration", "1h30m", time.Minute, 90 * time.Minute},
		{"plain integer is seconds", "45", time.Minute, 45 * time.Second},
		{"garbage uses default", "soon", time.Minute, time.Minute},
		{"negative uses default", "-5s", time.Minute, time.Minute},
		{"zero uses default", "0", time.Minute, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			assert.Equal(t, tt.want, getDuration("TEST_DURATION", tt.fallback))
		})
	}
}

func TestParseOrigins(t *testing.T) {
	assert.Nil(t, parseOrigins(""))
	assert.Equal(t, []string{"http://a.test"}, parseOrigins("http://a.test"))
	assert.Equal(t,
		[]string{"http://a.test", "http://b.test"},
		parseOrigins(" http://a.test , http://b.test ,"),
	)
}
