package transport

import (
	"net"
	"net/http"
)

// ClientAddr returns the host part of the request's remote address. It is
// the key for per-client rate limits.
func ClientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
