// Package jwt authenticates service callers with HS512 bearer tokens.
//
// The authenticator is reached by trusted backend services, not end users.
// Each caller presents a short-lived token whose subject names the calling
// service; the router middleware verifies it and stores the Claims in the
// request context.
package jwt
