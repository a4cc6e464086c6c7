package utils

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"claimlens-service/internal/pkg/constvars"
)

func GenerateRequestID() string {
	return uuid.NewString()
}

// ClientIP resolves the originating address, preferring the first entry of
// X-Forwarded-For when the service sits behind a proxy.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get(constvars.HeaderXForwardedFor); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		ip := strings.TrimSpace(parts[0])
		if ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
