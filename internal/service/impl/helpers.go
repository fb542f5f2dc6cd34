package impl

import (
	"strings"

	"auth/internal/netutil"
)

func normalizeIP(ip string) string {
	if normalized, ok := netutil.NormalizeIP(ip); ok {
		return normalized
	}
	return strings.TrimSpace(ip)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
