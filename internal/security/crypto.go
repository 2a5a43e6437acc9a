package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// EncryptedPrefix marks stored values produced by Seal
const EncryptedPrefix = "enc:"

const keyInfo = "qorix-chat credential key v1"

var ErrMalformedCiphertext = errors.New("malformed ciphertext")

// Encryptor seals credentials kept in the key/value store with AES-GCM.
// The store key is bound as additional data, so a value only opens under
// the key it was sealed for.
type Encryptor struct {
	aead cipher.AEAD
}

// NewEncryptor creates an encryptor from a raw AES key of 16, 24 or 32 bytes
func NewEncryptor(key []byte) (*Encryptor, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("invalid key length: %d (must be 16, 24, or 32)", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Encryptor{aead: aead}, nil
}

// NewEncryptorFromSecret derives an AES-256 key from an arbitrary-length secret with HKDF-SHA256
func NewEncryptorFromSecret(secret string) (*Encryptor, error) {
	if secret == "" {
		return nil, errors.New("encryption secret is empty")
	}
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return NewEncryptor(key)
}

// Seal encrypts value for the store key and returns "enc:<base64(nonce|ciphertext)>"
func (e *Encryptor) Seal(storeKey, value string) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := e.aead.Seal(nonce, nonce, []byte(value), []byte(storeKey))
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal for the same store key
func (e *Encryptor) Open(storeKey, stored string) (string, error) {
	encoded, ok := strings.CutPrefix(stored, EncryptedPrefix)
	if !ok {
		return "", ErrMalformedCiphertext
	}
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}

	n := e.aead.NonceSize()
	if len(sealed) < n+e.aead.Overhead() {
		return "", ErrMalformedCiphertext
	}

	plaintext, err := e.aead.Open(nil, sealed[:n], sealed[n:], []byte(storeKey))
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}
	return string(plaintext), nil
}

// IsEncrypted reports whether a stored value was produced by Seal
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, EncryptedPrefix)
}
