package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Request and JSON response bodies are logged up to this size.
const maxLoggedBodyBytes = 16 * 1024

// attrEnvelopeCode carries the envelope code so rejections can be broken
// down by kind without parsing logs.
const attrEnvelopeCode = attribute.Key("gotp.envelope_code")

// recorder captures what the handler wrote. Only JSON bodies are kept.
type recorder struct {
	http.ResponseWriter
	status int
	bytes  int
	body   bytes.Buffer
	capped bool
	err    error
}

func (w *recorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *recorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	if w.isJSON() {
		w.keep(p)
	}

	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

// SetError lets Router.Fail attach the handler error to the span.
func (w *recorder) SetError(err error) {
	w.err = err
}

func (w *recorder) isJSON() bool {
	return strings.HasPrefix(w.Header().Get("Content-Type"), "application/json")
}

func (w *recorder) keep(p []byte) {
	room := maxLoggedBodyBytes - w.body.Len()
	if room <= 0 || len(p) > room {
		w.capped = true
	}
	if room > 0 {
		w.body.Write(p[:min(room, len(p))])
	}
}

func (w *recorder) code() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// envelopeCode is the code field of a JSON envelope, or "" for raw bodies.
func (w *recorder) envelopeCode() string {
	if w.capped || w.body.Len() == 0 {
		return ""
	}
	var env struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(w.body.Bytes(), &env); err != nil {
		return ""
	}
	return env.Code
}

func (w *recorder) loggedBody(m instrument.Masker) any {
	switch {
	case w.bytes == 0:
		return nil
	case !w.isJSON():
		return w.Header().Get("Content-Type") + " (" + strconv.Itoa(w.bytes) + " bytes)"
	case w.capped:
		return map[string]any{"truncated": true, "bytes": w.bytes}
	}
	return maskedJSON(w.body.Bytes(), m)
}

func matchedRoutePath(r *http.Request) string {
	if pattern := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); pattern != "" {
		return pattern
	}
	return r.URL.Path
}

// peekBody reads up to maxLoggedBodyBytes and restores the body for the handler.
func peekBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	//nolint:errcheck // best effort, the handler sees the same error
	head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBodyBytes))
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(head), r.Body))
	return head
}

func maskedJSON(body []byte, m instrument.Masker) any {
	if len(body) == 0 {
		return nil
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return "<non-json body omitted>"
	}
	return m.Data(doc)
}

func maskedHeaders(h http.Header, m instrument.Masker) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		if m.Hides(k) {
			out[k] = "***"
			continue
		}
		out[k] = h.Get(k)
	}
	return out
}

// maskedQuery keeps user_id readable and hides anything that looks secret.
func maskedQuery(r *http.Request, m instrument.Masker) map[string]string {
	q := r.URL.Query()
	if len(q) == 0 {
		return nil
	}
	out := make(map[string]string, len(q))
	for k := range q {
		if m.Hides(k) {
			out[k] = "***"
			continue
		}
		out[k] = q.Get(k)
	}
	return out
}

type httpMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func newHTTPMetrics(meter metric.Meter) httpMetrics {
	var m httpMetrics
	var err error

	m.requests, err = meter.Int64Counter("http.server.requests",
		metric.WithDescription("Number of HTTP requests served"))
	if err != nil {
		slog.Error("failed to create http request counter", "error", err)
	}

	m.duration, err = meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"))
	if err != nil {
		slog.Error("failed to create http duration histogram", "error", err)
	}

	return m
}

func (m httpMetrics) record(ctx context.Context, elapsed time.Duration, attrs ...attribute.KeyValue) {
	if m.requests != nil {
		m.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if m.duration != nil {
		m.duration.Record(ctx, float64(elapsed.Microseconds())/1000, metric.WithAttributes(attrs...))
	}
}

func middlewareObservability(cfg config.Config, ins instrument.Instrumentation) Middleware {
	var extra []string
	if cfg != nil {
		extra = cfg.GetArray("instrument.log_mask_fields")
	}
	masker := instrument.NewMasker(extra...)
	tracer := ins.Tracer("http.server")
	metrics := newHTTPMetrics(ins.Meter("http.server"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			route := matchedRoutePath(r)

			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(ctx, r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.HTTPRouteKey.String(route),
					semconv.NetworkProtocolVersionKey.String(r.Proto),
					semconv.ServerAddressKey.String(r.Host),
					semconv.UserAgentOriginalKey.String(r.UserAgent()),
				),
			)
			defer span.End()

			slog.InfoContext(ctx, "request received",
				"method", r.Method,
				"path", route,
				"query", maskedQuery(r, masker),
				"headers", maskedHeaders(r.Header, masker),
				"body", maskedJSON(peekBody(r), masker),
			)

			rec := &recorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.code()
			elapsed := time.Since(start)
			attrs := []attribute.KeyValue{
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(route),
				semconv.HTTPResponseStatusCodeKey.Int(status),
			}
			envCode := rec.envelopeCode()
			if envCode != "" {
				attrs = append(attrs, attrEnvelopeCode.String(envCode))
			}

			span.SetAttributes(attrs...)
			span.SetAttributes(attribute.Int("http.response_content_length", rec.bytes))
			if rec.err != nil {
				span.RecordError(rec.err)
			}
			switch {
			case status >= http.StatusInternalServerError && rec.err != nil:
				span.SetStatus(codes.Error, rec.err.Error())
			case status >= http.StatusInternalServerError:
				span.SetStatus(codes.Error, http.StatusText(status))
			default:
				span.SetStatus(codes.Ok, "")
			}

			metrics.record(ctx, elapsed, attrs...)

			slog.InfoContext(ctx, "response sent",
				"method", r.Method,
				"path", route,
				"status", status,
				"envelope_code", envCode,
				"bytes", rec.bytes,
				"latency_ms", elapsed.Milliseconds(),
				"body", rec.loggedBody(masker),
			)
		})
	}
}
