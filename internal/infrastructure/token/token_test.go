package token

import (
	"encoding/base64"
	"testing"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	tok, err := gen.Generate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		t.Fatalf("token is not URL-safe base64: %v", err)
	}
	if len(raw) != 32 {
		t.Fatalf("expected 32 bytes of entropy, got %d", len(raw))
	}
}

func TestGenerate_Unique(t *testing.T) {
	gen := NewGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		tok, err := gen.Generate()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[tok] {
			t.Fatalf("duplicate token after %d generations", i)
		}
		seen[tok] = true
	}
}
