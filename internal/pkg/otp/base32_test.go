package otp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeBase32(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{name: "empty", in: nil, want: ""},
		{name: "one byte", in: []byte("f"), want: "MY======"},
		{name: "two bytes", in: []byte("fo"), want: "MZXQ===="},
		{name: "full group", in: []byte("fooba"), want: "MZXW6YTB"},
		{name: "six bytes", in: []byte("foobar"), want: "MZXW6YTBOI======"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeBase32(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Zero(t, len(got)%8)
		})
	}
}

func TestDecodeBase32(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []byte
	}{
		{name: "empty", in: "", want: []byte{}},
		{name: "padded", in: "MZXW6YTBOI======", want: []byte("foobar")},
		{name: "unpadded", in: "MZXW6YTBOI", want: []byte("foobar")},
		{name: "lower case", in: "mzxw6ytboi", want: []byte("foobar")},
		{name: "mixed case with spaces", in: "mzxw 6YTB oi==", want: []byte("foobar")},
		{name: "invalid characters skipped", in: "M0Z1X8W9-6YTB!OI", want: []byte("foobar")},
		{name: "incomplete byte dropped", in: "M", want: []byte{}},
		{name: "only padding", in: "========", want: []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeBase32(tt.in))
		})
	}
}

func TestBase32RoundTrip(t *testing.T) {
	for n := 0; n <= 70; n++ {
		b := make([]byte, n)
		for i := range b {
			b[i] = byte(i*37 + n)
		}

		enc := EncodeBase32(b)
		assert.Zero(t, len(enc)%8, "length %d", n)
		assert.Equal(t, b, DecodeBase32(enc), "length %d", n)
	}
}

func TestCanonicalSecret(t *testing.T) {
	assert.Equal(t, "MZXW6YTBOI", CanonicalSecret(" mzxw6ytboi====== "))
	assert.Equal(t, "", CanonicalSecret("!!!"))
	assert.Equal(t, "", CanonicalSecret(""))
}
