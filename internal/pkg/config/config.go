// Package config reads service configuration from a file with environment
// variable overrides.
//
// Keys are dotted paths such as "modules.authenticator.issuer". Every key can
// be overridden from the environment by upper-casing it, replacing dots with
// underscores and adding the GOTP_ prefix, e.g. GOTP_MODULES_AUTHENTICATOR_ISSUER.
package config

import (
	"io"
	"time"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "GOTP"

// TimeConfig reads integer values scaled to a duration unit.
type TimeConfig interface {
	GetMillisecond(key string) time.Duration
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration
}

// NumberConfig reads numeric values. Missing or unparsable keys yield zero.
type NumberConfig interface {
	GetInt(key string) int
	GetInt32(key string) int32
	GetFloat64(key string) float64
}

// Config defines a set of methods for retrieving configuration values of various types.
type Config interface {
	io.Closer
	TimeConfig
	NumberConfig

	GetBool(key string) bool
	GetString(key string) string

	// GetBinary decodes a base64 value. Invalid input yields nil.
	GetBinary(key string) []byte

	// GetArray splits a "a,b,c" value, dropping blanks. Empty values yield nil.
	GetArray(key string) []string
}
