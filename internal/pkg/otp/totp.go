package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
)

const (
	// Digits is the length of every generated code.
	Digits = 6
	// Period is the time step in seconds.
	Period = 30
	// Skew is how many steps before and after the current one are accepted.
	Skew = 1
	// SecretSize is the number of random bytes behind a generated secret.
	SecretSize = 64
)

// ErrEmptyKey is returned when a secret decodes to zero bytes of key material.
var ErrEmptyKey = errors.New("otp: secret has no key material")

var hotpOpts = hotp.ValidateOpts{
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA512,
}

// Engine generates secrets and computes and verifies TOTP codes.
type Engine struct {
	clock clock.Clocker
	rand  io.Reader
}

// NewEngine builds an Engine. A nil clock falls back to the system clock and
// a nil random source falls back to crypto/rand.
func NewEngine(clk clock.Clocker, random io.Reader) *Engine {
	if clk == nil {
		clk = clock.New()
	}
	if random == nil {
		random = rand.Reader
	}

	return &Engine{clock: clk, rand: random}
}

// GenerateSecret draws SecretSize fresh random bytes and returns them as
// unpadded Base32.
func (e *Engine) GenerateSecret() (string, error) {
	b := make([]byte, SecretSize)
	if _, err := io.ReadFull(e.rand, b); err != nil {
		return "", fmt.Errorf("otp: read random: %w", err)
	}

	return strings.TrimRight(EncodeBase32(b), "="), nil
}

// ComputeCode returns the zero-padded 6 digit code of secret at counter.
func (e *Engine) ComputeCode(secret string, counter uint64) (string, error) {
	canonical := CanonicalSecret(secret)
	if canonical == "" {
		return "", ErrEmptyKey
	}

	code, err := hotp.GenerateCodeCustom(canonical, counter, hotpOpts)
	if err != nil {
		return "", fmt.Errorf("otp: compute code: %w", err)
	}

	return code, nil
}

// VerifyCode reports whether code matches secret at the previous, current or
// next time step. Malformed codes and blank secrets are rejected without
// computing anything.
func (e *Engine) VerifyCode(code, secret string) (bool, error) {
	if !IsCodeFormat(code) || strings.TrimSpace(secret) == "" {
		return false, nil
	}

	current := int64(e.Counter())
	for offset := int64(-Skew); offset <= Skew; offset++ {
		counter := current + offset
		if counter < 0 {
			continue
		}

		want, err := e.ComputeCode(secret, uint64(counter))
		if err != nil {
			return false, err
		}
		if subtle.ConstantTimeCompare([]byte(want), []byte(code)) == 1 {
			return true, nil
		}
	}

	return false, nil
}

// Counter returns the current time step: floor(unix seconds / Period).
func (e *Engine) Counter() uint64 {
	return uint64(e.clock.Now().Unix()) / Period
}

// RemainingSeconds returns how long the current code stays current, in [1, Period].
func (e *Engine) RemainingSeconds() int {
	return Period - int(uint64(e.clock.Now().Unix())%Period)
}

// IsCodeFormat reports whether code is exactly Digits ASCII digits.
func IsCodeFormat(code string) bool {
	if len(code) != Digits {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
