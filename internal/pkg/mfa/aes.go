// Package mfa seals second-factor secrets at rest with AES-256-GCM.
package mfa

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Ciphertext layout: uint16 version | 12 byte nonce | ciphertext+tag.
const aesGCMVersion uint16 = 1

const (
	gcmNonceSize = 12
	aesKeyLen    = 32

	// SealedPrefix marks a text column value produced by SealString.
	SealedPrefix = "enc:v1:"
)

var (
	// ErrEncryptorNotConfigured indicates a missing encryptor key provider.
	ErrEncryptorNotConfigured = errors.New("mfa: encryptor not configured")
	// ErrPlaintextEmpty indicates an empty plaintext input.
	ErrPlaintextEmpty = errors.New("mfa: plaintext is empty")
	// ErrInvalidKeyLength indicates the key length is invalid.
	ErrInvalidKeyLength = errors.New("mfa: invalid key length")
	// ErrCiphertextTooShort indicates a truncated ciphertext.
	ErrCiphertextTooShort = errors.New("mfa: ciphertext too short")
	// ErrUnsupportedCiphertextVersion indicates an unsupported ciphertext version.
	ErrUnsupportedCiphertextVersion = errors.New("mfa: unsupported ciphertext version")
	// ErrDecryptFailed hides whether the key, the scope or the payload was wrong.
	ErrDecryptFailed = errors.New("mfa: decrypt failed")
	// ErrMissingStaticKey indicates a missing static key.
	ErrMissingStaticKey = errors.New("mfa: missing static key")
)

// AESGCMEncryptor implements Encryptor using AES-GCM.
type AESGCMEncryptor struct {
	keys KeyProvider
	rand io.Reader
}

// NewAESGCMEncryptor constructs an AES-GCM encryptor.
func NewAESGCMEncryptor(keys KeyProvider) *AESGCMEncryptor {
	return &AESGCMEncryptor{keys: keys, rand: rand.Reader}
}

func (e *AESGCMEncryptor) aead(scope Scope) (cipher.AEAD, error) {
	if e == nil || e.keys == nil {
		return nil, ErrEncryptorNotConfigured
	}

	key, err := e.keys.Key(scope)
	if err != nil {
		return nil, fmt.Errorf("mfa: key provider error: %w", err)
	}
	if len(key) != aesKeyLen {
		return nil, fmt.Errorf("mfa: key is %d bytes, want %d: %w", len(key), aesKeyLen, ErrInvalidKeyLength)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("mfa: aes init failed: %w", err)
	}
	return cipher.NewGCM(block)
}

// Encrypt encrypts plaintext, binding the result to scope via AAD.
func (e *AESGCMEncryptor) Encrypt(plaintext []byte, scope Scope) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, ErrPlaintextEmpty
	}

	gcm, err := e.aead(scope)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 2+gcmNonceSize, 2+gcmNonceSize+len(plaintext)+gcm.Overhead())
	binary.BigEndian.PutUint16(out[0:2], aesGCMVersion)
	if _, err := io.ReadFull(e.rand, out[2:]); err != nil {
		return nil, fmt.Errorf("mfa: nonce generation failed: %w", err)
	}

	return gcm.Seal(out, out[2:], plaintext, scopeAAD(scope)), nil
}

// Decrypt decrypts ciphertext, requiring the same scope it was sealed with.
func (e *AESGCMEncryptor) Decrypt(ciphertext []byte, scope Scope) ([]byte, error) {
	if len(ciphertext) < 2+gcmNonceSize+1 {
		return nil, ErrCiphertextTooShort
	}
	if v := binary.BigEndian.Uint16(ciphertext[0:2]); v != aesGCMVersion {
		return nil, fmt.Errorf("mfa: ciphertext version %d: %w", v, ErrUnsupportedCiphertextVersion)
	}

	gcm, err := e.aead(scope)
	if err != nil {
		return nil, err
	}

	plain, err := gcm.Open(nil, ciphertext[2:2+gcmNonceSize], ciphertext[2+gcmNonceSize:], scopeAAD(scope))
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plain, nil
}

// SealString encrypts s and returns a text-safe value carrying SealedPrefix.
func SealString(enc Encryptor, s string, scope Scope) (string, error) {
	ct, err := enc.Encrypt([]byte(s), scope)
	if err != nil {
		return "", err
	}
	return SealedPrefix + base64.RawStdEncoding.EncodeToString(ct), nil
}

// OpenString reverses SealString. Values without SealedPrefix are returned as is.
func OpenString(enc Encryptor, s string, scope Scope) (string, error) {
	raw, ok := strings.CutPrefix(s, SealedPrefix)
	if !ok {
		return s, nil
	}

	ct, err := base64.RawStdEncoding.DecodeString(raw)
	if err != nil {
		return "", ErrDecryptFailed
	}

	plain, err := enc.Decrypt(ct, scope)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// IsSealed reports whether s was produced by SealString.
func IsSealed(s string) bool {
	return strings.HasPrefix(s, SealedPrefix)
}

func scopeAAD(s Scope) []byte {
	sum := sha256.Sum256(fmt.Appendf(nil, "uid=%d\npurpose=%s\n", s.UserID, s.Purpose))
	return sum[:]
}

// StaticKeyProvider returns the same key for every scope.
type StaticKeyProvider struct {
	KeyBytes []byte
}

// Key returns a copy of the static key.
func (p StaticKeyProvider) Key(_ Scope) ([]byte, error) {
	if len(p.KeyBytes) == 0 {
		return nil, ErrMissingStaticKey
	}
	return append([]byte(nil), p.KeyBytes...), nil
}
