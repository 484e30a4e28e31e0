package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sendrec/showcase/internal/httputil"
)

type SecurityConfig struct {
	BaseURL         string
	StorageEndpoint string
	// MediaOrigins are extra hosts catalog URLs may point at (CDNs).
	MediaOrigins []string
}

func securityHeaders(cfg SecurityConfig) func(http.Handler) http.Handler {
	base, _ := url.Parse(cfg.BaseURL)
	strictTransport := base != nil && base.Scheme == "https"

	var media, connect []string
	if cfg.StorageEndpoint != "" {
		media = append(media, cfg.StorageEndpoint)
		connect = append(connect, cfg.StorageEndpoint)
	}
	media = append(media, cfg.MediaOrigins...)
	if ws := websocketOrigin(base); ws != "" {
		connect = append([]string{ws}, connect...)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nonce := httputil.GenerateNonce()
			ctx := httputil.ContextWithNonce(r.Context(), nonce)

			w.Header().Set("Referrer-Policy", "no-referrer")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "SAMEORIGIN")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(), autoplay=(self)")
			w.Header().Set("Content-Security-Policy", buildCSP(nonce, media, connect))

			if strictTransport {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func buildCSP(nonce string, media, connect []string) string {
	directives := []string{
		"default-src 'self'",
		sources("img-src", "'self' data:", media),
		sources("media-src", "'self' data: blob:", media),
		fmt.Sprintf("script-src 'self' 'nonce-%s'", nonce),
		fmt.Sprintf("style-src 'self' 'nonce-%s'", nonce),
		sources("connect-src", "'self'", connect),
		"frame-ancestors 'self'",
	}
	return strings.Join(directives, "; ") + ";"
}

func sources(directive, base string, extra []string) string {
	if len(extra) == 0 {
		return directive + " " + base
	}
	return directive + " " + base + " " + strings.Join(extra, " ")
}

// websocketOrigin is the ws(s) origin pages open mount command streams on.
// Some browsers do not treat 'self' as covering WebSocket schemes.
func websocketOrigin(base *url.URL) string {
	if base == nil || base.Host == "" {
		return ""
	}
	switch base.Scheme {
	case "https":
		return "wss://" + base.Host
	case "http":
		return "ws://" + base.Host
	default:
		return ""
	}
}
