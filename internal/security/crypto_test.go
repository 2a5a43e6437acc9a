package security_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/Rrens/qorix-chat/internal/security"
)

func testEncryptor(t *testing.T) *security.Encryptor {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	e, err := security.NewEncryptor(key)
	if err != nil {
		t.Fatalf("failed to create encryptor: %v", err)
	}
	return e
}

func TestEncryptor_SealOpen(t *testing.T) {
	e := testEncryptor(t)

	tests := []struct {
		name  string
		value string
	}{
		{"empty", ""},
		{"openrouter key", "sk-or-v1-0123456789abcdef"},
		{"padded", "  key with spaces  "},
		{"unicode", "unicode: 日本語 中文 한국어 🎉"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := e.Seal("apiKey", tt.value)
			if err != nil {
				t.Fatalf("seal failed: %v", err)
			}
			if !strings.HasPrefix(sealed, security.EncryptedPrefix) {
				t.Errorf("sealed value %q lacks the prefix", sealed)
			}

			opened, err := e.Open("apiKey", sealed)
			if err != nil {
				t.Fatalf("open failed: %v", err)
			}
			if opened != tt.value {
				t.Errorf("got %q, want %q", opened, tt.value)
			}
		})
	}
}

func TestEncryptor_BoundToStoreKey(t *testing.T) {
	e := testEncryptor(t)

	sealed, err := e.Seal("apiKey", "sk-or-v1-abc")
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if _, err := e.Open("theme", sealed); err == nil {
		t.Error("expected value sealed for apiKey not to open under another key")
	}
}

func TestEncryptor_Malformed(t *testing.T) {
	e := testEncryptor(t)

	for _, stored := range []string{"sk-plain", "enc:not base64!", "enc:AAAA"} {
		_, err := e.Open("apiKey", stored)
		if !errors.Is(err, security.ErrMalformedCiphertext) {
			t.Errorf("Open(%q) = %v, want ErrMalformedCiphertext", stored, err)
		}
	}
}

func TestEncryptor_KeyLengths(t *testing.T) {
	for _, n := range []int{0, 15, 17, 31, 33} {
		if _, err := security.NewEncryptor(make([]byte, n)); err == nil {
			t.Errorf("expected error for key length %d", n)
		}
	}
	for _, n := range []int{16, 24, 32} {
		if _, err := security.NewEncryptor(make([]byte, n)); err != nil {
			t.Errorf("unexpected error for key length %d: %v", n, err)
		}
	}
}

func TestEncryptor_FreshNonce(t *testing.T) {
	e := testEncryptor(t)

	a, _ := e.Seal("apiKey", "same value")
	b, _ := e.Seal("apiKey", "same value")
	if a == b {
		t.Error("expected different ciphertexts for the same value")
	}
}

func TestEncryptor_FromSecret(t *testing.T) {
	e1, err := security.NewEncryptorFromSecret("a short passphrase")
	if err != nil {
		t.Fatalf("failed to derive encryptor: %v", err)
	}
	e2, err := security.NewEncryptorFromSecret("a short passphrase")
	if err != nil {
		t.Fatalf("failed to derive encryptor: %v", err)
	}

	sealed, err := e1.Seal("apiKey", "sk-or-v1-abc")
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}

	// Same secret derives the same key
	opened, err := e2.Open("apiKey", sealed)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if opened != "sk-or-v1-abc" {
		t.Errorf("got %q, want %q", opened, "sk-or-v1-abc")
	}

	other, _ := security.NewEncryptorFromSecret("another passphrase")
	if _, err := other.Open("apiKey", sealed); err == nil {
		t.Error("expected error when opening with a different secret")
	}

	if _, err := security.NewEncryptorFromSecret(""); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestIsEncrypted(t *testing.T) {
	if !security.IsEncrypted("enc:AAAA") {
		t.Error("prefixed value not reported as encrypted")
	}
	if security.IsEncrypted("sk-or-v1-plain") {
		t.Error("plain value reported as encrypted")
	}
}
