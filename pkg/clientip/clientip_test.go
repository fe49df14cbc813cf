package clientip

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRealClientIP(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		remoteAddr string
		want       string
	}{
		{"host and port", "203.0.113.7:51234", "203.0.113.7"},
		{"ipv6 with port", "[2001:db8::1]:443", "2001:db8::1"},
		{"no port", "203.0.113.7", "203.0.113.7"},
		{"padded", " 203.0.113.7 ", "203.0.113.7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &http.Request{RemoteAddr: tc.remoteAddr}
			assert.Equal(t, tc.want, RealClientIP(r))
		})
	}
}

func TestRealClientIP_IgnoresForwardingHeaders(t *testing.T) {
	t.Parallel()

	r := &http.Request{
		RemoteAddr: "203.0.113.7:51234",
		Header: http.Header{
			"X-Forwarded-For": {"198.51.100.99"},
			"X-Real-Ip":       {"198.51.100.99"},
		},
	}
	assert.Equal(t, "203.0.113.7", RealClientIP(r))
}
