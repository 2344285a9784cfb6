package router

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/jwt"
)

// bearerToken returns the token of an "Authorization: Bearer <token>" header.
func bearerToken(h http.Header) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h.Get("Authorization")), " ")
	token = strings.TrimSpace(token)
	if !ok || token == "" || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return token, true
}

// middlewareAuthentication requires a valid service token on every route not
// listed in public. A nil verifier disables it.
func middlewareAuthentication(verifier jwt.JWT, public map[string]map[string]struct{}, rs responder) Middleware {
	if verifier == nil {
		return nil
	}

	isPublic := func(r *http.Request) bool {
		_, ok := public[r.Method][matchedRoutePath(r)]
		return ok
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			token, ok := bearerToken(r.Header)
			if !ok {
				rs.kind(ctx, w, http.StatusUnauthorized, goerror.KindParameterInvalid, "Authentication required")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				slog.WarnContext(ctx, "service token rejected", "path", matchedRoutePath(r), "error", err)
				rs.kind(ctx, w, http.StatusUnauthorized, goerror.KindParameterInvalid, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(jwt.SetAuth(ctx, claims)))
		})
	}
}
