package httputil

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
)

type contextKey string

const nonceKey contextKey = "csp-nonce"

// NonceBytes is the entropy behind each CSP nonce; encoded it is 22 characters.
const NonceBytes = 16

// GenerateNonce returns a fresh CSP nonce for one response, or "" if the
// system random source fails. An empty nonce matches no inline script.
func GenerateNonce() string {
	b := make([]byte, NonceBytes)
	if _, err := rand.Read(b); err != nil {
		slog.Error("httputil: failed to generate CSP nonce", "error", err)
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func ContextWithNonce(ctx context.Context, nonce string) context.Context {
	return context.WithValue(ctx, nonceKey, nonce)
}

// NonceFromContext returns the nonce the security middleware attached to the
// request, used for the inline script and style of the showcase page.
func NonceFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(nonceKey).(string); ok {
		return v
	}
	return ""
}
