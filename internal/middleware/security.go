package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/bookclubhq/bookclub-backend/pkg/clientip"
	"golang.org/x/time/rate"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// ipLimiter hands out per-IP token buckets and evicts idle ones.
type ipLimiter struct {
	mu         sync.Mutex
	entries    map[string]*limiterEntry
	limit      rate.Limit
	burst      int
	ttl        time.Duration
	cleanupRun bool
}

func newIPLimiter(limit rate.Limit, burst int, ttl time.Duration) *ipLimiter {
	return &ipLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   limit,
		burst:   burst,
		ttl:     ttl,
	}
}

func (l *ipLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.startCleanupOnce()
	e, ok := l.entries[ip]
	if !ok {
		e = &limiterEntry{
			limiter: rate.NewLimiter(l.limit, l.burst),
			lastUse: time.Now(),
		}
		l.entries[ip] = e
	}
	e.lastUse = time.Now()
	return e.limiter
}

func (l *ipLimiter) startCleanupOnce() {
	if l.cleanupRun {
		return
	}
	l.cleanupRun = true
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			l.mu.Lock()
			now := time.Now()
			for ip, e := range l.entries {
				if now.Sub(e.lastUse) > l.ttl {
					delete(l.entries, ip)
				}
			}
			l.mu.Unlock()
		}
	}()
}

var (
	// 1 req/s with burst 10 per IP across all routes.
	globalLimiter = newIPLimiter(rate.Limit(1), 10, 30*time.Minute)
	// 1 req/5s with burst 2 per IP on credential routes.
	loginLimiter = newIPLimiter(rate.Every(5*time.Second), 2, 30*time.Minute)
)

var loginPaths = map[string]bool{
	"/api/users/login":         true,
	"/api/users/register":      true,
	"/api/users/refresh-token": true,
}

// GlobalRateLimit limits each IP to 1 req/s, burst 10. Returns 429 when exceeded.
func GlobalRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientip.RealClientIP(r)
		if !globalLimiter.get(ip).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"success":false,"message":"Too many requests. Please slow down."}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoginRateLimit applies a stricter limit to credential routes only. Use
// after GlobalRateLimit.
func LoginRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !loginPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		ip := clientip.RealClientIP(r)
		if !loginLimiter.get(ip).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"success":false,"message":"Too many login attempts. Please try again later."}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ProductionSecurity returns the middleware chain for production:
// SecurityHeaders → GlobalRateLimit → LoginRateLimit.
func ProductionSecurity() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders,
		GlobalRateLimit,
		LoginRateLimit,
	}
}
