package util

import (
	"net"
	"net/http"
	"strings"
)

// MaxMetaLength bounds stored user agents and referrers, counted in runes.
const MaxMetaLength = 500

// ClientIP returns the first X-Forwarded-For entry when the header is
// present, otherwise the host part of RemoteAddr. Empty when neither yields
// anything.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// UserAgent returns the request user agent bounded to MaxMetaLength.
func UserAgent(r *http.Request) string {
	return Truncate(r.UserAgent(), MaxMetaLength)
}

// Referrer returns the request referrer bounded to MaxMetaLength.
func Referrer(r *http.Request) string {
	return Truncate(r.Referer(), MaxMetaLength)
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
