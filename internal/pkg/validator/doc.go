// Package validator provides a small validation abstraction for request and
// domain structs.
//
// Usecases depend on the Validator interface. V10Validator is the
// go-playground/validator backed implementation; it reports failures as a
// snake_case field to message map and adds the "otpcode" tag for six digit
// one-time codes.
package validator
