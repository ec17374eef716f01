package security

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateAPIKey(t *testing.T) {
	first, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(first, "lc-") {
		t.Fatalf("expected lc- prefix, got %q", first)
	}
	second, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct keys")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hashed, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hashed, "hunter22") {
		t.Fatalf("expected password to verify")
	}
	if CheckPassword(hashed, "hunter23") {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestAdminTokenRoundTrip(t *testing.T) {
	token, err := CreateAdminToken("secret", time.Hour, 42, "root")
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	claims, err := ParseAdminToken("secret", token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.AdminID != 42 || claims.Username != "root" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, errWrong := ParseAdminToken("other-secret", token); errWrong == nil {
		t.Fatalf("expected parse failure with wrong secret")
	}
}

func TestCipherRoundTrip(t *testing.T) {
	c, err := NewCipher("local-test-key")
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	sealed, err := c.Encrypt("sk-proj-secret")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	opened, err := c.Decrypt(sealed)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if opened != "sk-proj-secret" {
		t.Fatalf("round trip mismatch: %q", opened)
	}

	other, err := NewCipher("different-key")
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	if _, errOpen := other.Decrypt(sealed); errOpen == nil {
		t.Fatalf("expected decrypt failure with wrong key")
	}
}
