// Package clock provides a tiny time abstraction.
//
// Code that derives anything from the current time (TOTP counters, row
// timestamps) depends on Clocker instead of calling time.Now directly, so
// tests can pin the instant with a Frozen clock.
package clock
