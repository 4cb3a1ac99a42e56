// Package metadata extracts who is calling: client IP (proxy-aware) and a
// parsed User-Agent summary. Both land in the request context for handlers
// and audit events.
package metadata

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"github.com/stinkypony1968-a11y/physician-dossier/pkg/requestcontext"
)

// ClientMetadata stores client IP and parsed User-Agent in the context.
// Apply it early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIPFromRequest(r)
		ua := SummarizeUserAgent(r.Header.Get("User-Agent"))

		ctx := requestcontext.WithClientMetadata(r.Context(), ip, ua)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SummarizeUserAgent reduces a raw User-Agent to "Browser version (OS)".
// Bots are labeled as such, and anything the parser cannot classify falls
// back to the raw string so no caller information is silently lost.
func SummarizeUserAgent(raw string) string {
	if raw == "" {
		return ""
	}

	ua := useragent.New(raw)
	if ua.Bot() {
		return "bot: " + raw
	}

	name, version := ua.Browser()
	if name == "" {
		return raw
	}

	summary := name
	if version != "" {
		summary = fmt.Sprintf("%s %s", name, version)
	}
	if os := ua.OS(); os != "" {
		summary = fmt.Sprintf("%s (%s)", summary, os)
	}
	return summary
}

// ClientIPFromRequest extracts the originating client IP, preferring the
// standard proxy headers over the socket address.
func ClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// The first entry is the original client; later entries are proxies.
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr carries a port ("127.0.0.1:1234", "[::1]:1234").
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}

	return "unknown"
}
