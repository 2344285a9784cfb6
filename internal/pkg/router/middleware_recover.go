package router

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/stacktrace"
)

// middlewareRecoverer turns a handler panic into a 500 envelope.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func middlewareRecoverer(rs responder) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(v)
				}

				stack := debug.Stack()
				attrs := []any{"panic", v, "method", r.Method, "path", r.URL.Path}
				if frames := stacktrace.InternalPaths(stack); len(frames) > 0 {
					attrs = append(attrs, "stack", frames)
				} else {
					attrs = append(attrs, "stack", string(stack))
				}
				slog.ErrorContext(r.Context(), "handler panicked", attrs...)

				rs.kind(r.Context(), w, http.StatusInternalServerError, goerror.KindSystemError, "")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
