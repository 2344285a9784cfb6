// Package qr renders provisioning URIs as PNG images.
package qr

import (
	"errors"
	"fmt"

	"github.com/skip2/go-qrcode"
)

const (
	minSize = 64
	maxSize = 2048
)

var ErrEmptyContent = errors.New("qr: content is empty")

type Encoder struct {
	level qrcode.RecoveryLevel
}

func NewEncoder() *Encoder {
	return &Encoder{level: qrcode.Medium}
}

// Encode returns a size by size PNG of content. Size is clamped to [64, 2048].
func (e *Encoder) Encode(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}

	code, err := qrcode.New(content, e.level)
	if err != nil {
		return nil, fmt.Errorf("qr: create: %w", err)
	}

	png, err := code.PNG(min(max(size, minSize), maxSize))
	if err != nil {
		return nil, fmt.Errorf("qr: png: %w", err)
	}

	return png, nil
}
