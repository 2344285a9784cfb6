package otp

import "encoding/base32"

const base32Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

var base32DecodeMap = func() [256]int8 {
	var m [256]int8
	for i := range m {
		m[i] = -1
	}
	for i := 0; i < len(base32Alphabet); i++ {
		c := base32Alphabet[i]
		m[c] = int8(i)
		if c >= 'A' && c <= 'Z' {
			m[c+('a'-'A')] = int8(i)
		}
	}
	return m
}()

// EncodeBase32 encodes b with the RFC 4648 alphabet, padded with '=' to a
// multiple of 8 characters. Empty input yields an empty string.
func EncodeBase32(b []byte) string {
	return base32.StdEncoding.EncodeToString(b)
}

// DecodeBase32 decodes s leniently: letters are case-insensitive and any
// character outside the alphabet (padding and whitespace included) is skipped.
// Trailing bits that do not complete a byte are dropped. It never fails.
func DecodeBase32(s string) []byte {
	out := make([]byte, 0, len(s)*5/8)

	var buf uint32
	var bits uint
	for i := 0; i < len(s); i++ {
		v := base32DecodeMap[s[i]]
		if v < 0 {
			continue
		}

		buf = buf<<5 | uint32(v)
		bits += 5
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(buf>>bits))
			buf &= 1<<bits - 1
		}
	}

	return out
}

// CanonicalSecret returns the unpadded upper-case form of secret after a
// lenient decode, or "" when secret carries no key material.
func CanonicalSecret(secret string) string {
	key := DecodeBase32(secret)
	if len(key) == 0 {
		return ""
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(key)
}
