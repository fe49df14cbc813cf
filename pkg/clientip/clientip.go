// Package clientip resolves the address a request actually came from.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP extracts the peer address from r.RemoteAddr, stripping the
// port when one is present. Forwarding headers are deliberately ignored:
// they are attacker-controlled unless a trusted proxy sets them, and this
// server is expected to face clients directly. The result keys the login
// rate limiter, so it must not be spoofable.
func RealClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port, e.g. from tests using httptest.
		return strings.TrimSpace(r.RemoteAddr)
	}
	return strings.TrimSpace(host)
}
