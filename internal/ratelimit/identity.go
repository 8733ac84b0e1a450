package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// ClientIdentity derives the rate-limit identity for a request, preferring
// the forwarded-for header, then the real-IP header, then the transport peer
// address. Callers needing anti-spoofing guarantees must terminate
// forwarding at a trusted edge.
func ClientIdentity(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		first := strings.TrimSpace(strings.SplitN(forwarded, ",", 2)[0])
		if first != "" {
			return first
		}
	}

	realIP := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
