// Package netutil extracts and canonicalizes client addresses so that the
// rate limiter and the request logs key on the same value.
package netutil

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"unicode/utf8"
)

const (
	HeaderForwardedFor = "X-Forwarded-For"
	HeaderRealIP       = "X-Real-IP"

	maxUserAgentRunes = 256
)

// NormalizeIP strips an optional port and IPv6 zone from raw and returns the
// canonical address. IPv4-mapped IPv6 addresses are reported as IPv4.
func NormalizeIP(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	host := raw
	if h, _, err := net.SplitHostPort(raw); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(strings.Trim(host, "[]"))
	if err != nil {
		return raw, false
	}
	return addr.WithZone("").Unmap().String(), true
}

// ClientIP returns the address a request is attributed to. Forwarding
// headers are only honored when trustProxy is set, since any client can
// send them.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		// client, proxy1, proxy2...
		if xff := r.Header.Get(HeaderForwardedFor); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip, ok := NormalizeIP(first); ok {
				return ip
			}
		}
		if ip, ok := NormalizeIP(r.Header.Get(HeaderRealIP)); ok {
			return ip
		}
	}
	if ip, ok := NormalizeIP(r.RemoteAddr); ok {
		return ip
	}
	return r.RemoteAddr
}

func TruncateUserAgent(ua string) string {
	ua = strings.TrimSpace(ua)
	if utf8.RuneCountInString(ua) <= maxUserAgentRunes {
		return ua
	}
	return string([]rune(ua)[:maxUserAgentRunes])
}
