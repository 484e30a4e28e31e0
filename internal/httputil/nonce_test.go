package httputil

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
)

func TestGenerateNonce_ReturnsNonEmptyString(t *testing.T) {
	nonce := GenerateNonce()
	if nonce == "" {
		t.Error("expected non-empty nonce")
	}
}

func TestGenerateNonce_ReturnsUniqueValues(t *testing.T) {
	a := GenerateNonce()
	b := GenerateNonce()
	if a == b {
		t.Errorf("expected unique nonces, got %q twice", a)
	}
}

func TestGenerateNonce_Returns22Characters(t *testing.T) {
	nonce := GenerateNonce()
	if len(nonce) != base64.RawURLEncoding.EncodedLen(NonceBytes) {
		t.Errorf("expected 22-character nonce, got %d: %q", len(nonce), nonce)
	}
}

func TestNonceFromContext_ReturnsStoredValue(t *testing.T) {
	ctx := ContextWithNonce(context.Background(), "showcase-nonce")
	got := NonceFromContext(ctx)
	if got != "showcase-nonce" {
		t.Errorf("expected %q, got %q", "showcase-nonce", got)
	}
}

func TestNonceFromContext_ReturnsEmptyWhenMissing(t *testing.T) {
	got := NonceFromContext(context.Background())
	if got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestGenerateNonce_IsURLSafe(t *testing.T) {
	for i := 0; i < 50; i++ {
		if n := GenerateNonce(); strings.ContainsAny(n, "+/=") {
			t.Fatalf("nonce %q is not raw URL-safe base64", n)
		}
	}
}
