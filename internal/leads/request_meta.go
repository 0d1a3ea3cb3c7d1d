package leads

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

const (
	maxUserAgentLength = 500
	maxIPLength        = 64
)

// CaptureRequestMeta reads the caller's address and user agent.
func CaptureRequestMeta(r *http.Request) RequestMeta {
	return RequestMeta{
		IP:        ClientIP(r),
		UserAgent: UserAgent(r),
	}
}

// ClientIP prefers the first X-Forwarded-For hop and falls back to the
// transport peer address. Values that do not parse as an IP are skipped, and
// the result is cut to the width of the ip column. It returns nil when no
// address is known.
func ClientIP(r *http.Request) *string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := normalizeIP(first); ip != "" {
			return &ip
		}
	}
	if ip := normalizeIP(r.RemoteAddr); ip != "" {
		return &ip
	}
	return nil
}

func normalizeIP(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(raw); err == nil {
		raw = host
	}
	addr, err := netip.ParseAddr(raw)
	if err != nil {
		return ""
	}
	return truncateRunes(addr.String(), maxIPLength)
}

// UserAgent returns the User-Agent header cut to 500 characters.
func UserAgent(r *http.Request) string {
	return truncateRunes(r.Header.Get("User-Agent"), maxUserAgentLength)
}
