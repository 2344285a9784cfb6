// Package otp implements the time-based one-time password primitives used by
// the authenticator module: a permissive Base32 codec, the TOTP engine
// (HMAC-SHA512, 6 digits, 30 second step, one step of drift tolerance) and the
// otpauth:// provisioning URI builder.
//
// The parameters are fixed. Changing any of them invalidates every secret that
// has already been provisioned to an authenticator app.
package otp
