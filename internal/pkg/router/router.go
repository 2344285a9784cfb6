// Package router adapts julienschmidt/httprouter to application handlers
// that return a payload or an error, and wraps every route with the standard
// middleware stack: panic recovery, real IP, correlation id, tracing and
// request logs, maintenance switch and service authentication.
package router

import (
	"net/http"
	"slices"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/jwt"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
)

// Handler is the application-style handler used by this router.
//
// It returns a response payload (wrapped in an Envelope) or an error.
type Handler func(r *Request) (any, error)

// Config holds dependencies required to build a Router.
type Config struct {
	Config config.Config
	// UUID generates request correlation IDs.
	UUID uid.StringID
	// JWT verifies service tokens. Nil disables authentication.
	JWT        jwt.JWT
	Instrument instrument.Instrumentation
	// Clock stamps envelopes. Defaults to the system clock.
	Clock clock.Clocker
}

// Router serves application Handlers behind a shared middleware stack.
type Router struct {
	hr  *httprouter.Router
	rs  responder
	mws []Middleware
}

// public routes skip service authentication.
var public = map[string]map[string]struct{}{
	http.MethodGet: {"/": {}, "/health": {}},
}

// NewRouter builds a Router with the standard stack. Every Config field is
// optional; a zero Config gives a router without authentication or telemetry.
func NewRouter(cfg Config) *Router {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Instrument == nil {
		cfg.Instrument = instrument.NewNoop()
	}

	r := &Router{rs: responder{clock: cfg.Clock}}
	r.mws = []Middleware{
		middlewareRecoverer(r.rs),
		middlewareIP,
		middlewareCorrelationID(cfg.UUID),
		middlewareObservability(cfg.Config, cfg.Instrument),
		middlewareMaintenance(cfg.Config, r.rs),
		middlewareAuthentication(cfg.JWT, public, r.rs),
	}
	r.hr = &httprouter.Router{
		RedirectTrailingSlash:  true,
		RedirectFixedPath:      true,
		HandleMethodNotAllowed: true,
		HandleOPTIONS:          true,
		SaveMatchedRoutePath:   true,
		NotFound:               r.status(http.StatusNotFound, "endpoint not found"),
		MethodNotAllowed:       r.status(http.StatusMethodNotAllowed, "method not allowed"),
	}

	r.GET("/", func(*Request) (any, error) {
		return map[string]string{"service": "gotp"}, nil
	})

	return r
}

func (r *Router) status(code int, msg string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.rs.kind(req.Context(), w, code, goerror.KindParameterInvalid, msg)
	})
}

func (r *Router) GET(path string, h Handler, mws ...Middleware) {
	r.handle(http.MethodGet, path, r.adapt(h), mws)
}

func (r *Router) POST(path string, h Handler, mws ...Middleware) {
	r.handle(http.MethodPost, path, r.adapt(h), mws)
}

// GETRaw registers a handler that writes its own response, such as an image.
func (r *Router) GETRaw(path string, h http.Handler, mws ...Middleware) {
	r.handle(http.MethodGet, path, h, mws)
}

// Fail writes err as an error envelope. Raw handlers use it to report
// failures the same way application handlers do.
func (r *Router) Fail(w http.ResponseWriter, req *http.Request, err error) {
	if setter, ok := w.(interface{ SetError(error) }); ok {
		setter.SetError(err)
	}
	r.rs.fail(req.Context(), w, err)
}

func (r *Router) adapt(h Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		resp, err := h(&Request{Request: req})
		if err != nil {
			r.Fail(w, req, err)
			return
		}
		r.rs.ok(req.Context(), w, resp)
	})
}

func (r *Router) handle(method, path string, h http.Handler, extra []Middleware) {
	r.hr.Handler(method, path, Chain(h, slices.Concat(r.mws, extra)...))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.hr.ServeHTTP(w, req)
}
