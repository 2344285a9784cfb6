package router

import (
	"net/http"
	"strings"

	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

// middlewareMaintenance answers 503 on routes listed in
// app.maintenance.endpoints. An entry is a route pattern, optionally
// prefixed by a method: "/api/v1/otp/enroll" or "POST /api/v1/otp/enroll".
// The list is read once at startup.
func middlewareMaintenance(cfg config.Config, rs responder) Middleware {
	if cfg == nil {
		return nil
	}

	blocked := map[string]struct{}{}
	for _, entry := range cfg.GetArray("app.maintenance.endpoints") {
		if method, path, ok := strings.Cut(entry, " "); ok {
			blocked[strings.ToUpper(method)+" "+strings.TrimSpace(path)] = struct{}{}
			continue
		}
		blocked[entry] = struct{}{}
	}
	if len(blocked) == 0 {
		return nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			_, anyMethod := blocked[route]
			_, exact := blocked[r.Method+" "+route]
			if anyMethod || exact {
				rs.kind(r.Context(), w, http.StatusServiceUnavailable, goerror.KindSystemError, "service is under maintenance")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
