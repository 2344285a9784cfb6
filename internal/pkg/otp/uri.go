package otp

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultIssuer labels accounts in authenticator apps when no issuer is configured.
const DefaultIssuer = "NOTP-System"

// BuildURI returns the otpauth:// provisioning URI for secret. Issuer and
// account are form encoded (space becomes '+'); the parameter order is fixed.
func BuildURI(secret, account, issuer string) string {
	qi := formEncode(issuer)

	var b strings.Builder
	b.WriteString("otpauth://totp/")
	b.WriteString(qi)
	b.WriteByte(':')
	b.WriteString(formEncode(account))
	b.WriteString("?secret=")
	b.WriteString(secret)
	b.WriteString("&issuer=")
	b.WriteString(qi)
	b.WriteString("&algorithm=SHA512&digits=")
	b.WriteString(strconv.Itoa(Digits))
	b.WriteString("&period=")
	b.WriteString(strconv.Itoa(Period))

	return b.String()
}

// formEncode is url.QueryEscape adjusted to the WHATWG form set already in use
// by provisioned clients: '*' stays literal and '~' is escaped.
func formEncode(s string) string {
	e := url.QueryEscape(s)
	if !strings.ContainsAny(e, "%~") {
		return e
	}
	e = strings.ReplaceAll(e, "%2A", "*")
	return strings.ReplaceAll(e, "~", "%7E")
}
