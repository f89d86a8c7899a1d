package middleware

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/iota-uz/org-console/pkg/constants"
	"github.com/iota-uz/org-console/pkg/httpapi"
)

type LoggerOptions struct {
	LogRequestBody  bool
	LogResponseBody bool
	MaxBodyLength   int

	RequestIDHeader string
	RealIPHeader    string
	// Paths under APIPrefix answer a recovered panic with the JSON envelope.
	APIPrefix string
	Repanic   bool
}

func NewLoggerOptions(logRequestBody bool, logResponseBody bool, maxBodyLength int) LoggerOptions {
	return LoggerOptions{
		LogRequestBody:  logRequestBody,
		LogResponseBody: logResponseBody,
		MaxBodyLength:   maxBodyLength,
		RequestIDHeader: "X-Request-ID",
		RealIPHeader:    "X-Real-IP",
		APIPrefix:       "/api/",
	}
}

// DefaultLoggerOptions logs form and JSON request bodies but not the rendered
// HTML pages.
func DefaultLoggerOptions() LoggerOptions {
	return NewLoggerOptions(true, false, 512)
}

type responseCaptureWriter struct {
	http.ResponseWriter
	statusCode    int
	statusWritten bool
	body          *bytes.Buffer
	limit         int
}

func (w *responseCaptureWriter) WriteHeader(code int) {
	if !w.statusWritten {
		w.statusCode = code
		w.statusWritten = true
		w.ResponseWriter.WriteHeader(code)
	}
}

// Status returns the HTTP status code
func (w *responseCaptureWriter) Status() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}

func (w *responseCaptureWriter) Write(b []byte) (int, error) {
	if !w.statusWritten {
		w.statusWritten = true
		w.statusCode = http.StatusOK
	}
	if room := w.limit - w.body.Len(); room > 0 {
		if len(b) < room {
			room = len(b)
		}
		w.body.Write(b[:room])
	}
	return w.ResponseWriter.Write(b)
}

func (w *responseCaptureWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *responseCaptureWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("underlying ResponseWriter does not implement http.Hijacker")
}

func wrapResponseWriter(w http.ResponseWriter, limit int) *responseCaptureWriter {
	return &responseCaptureWriter{
		ResponseWriter: w,
		body:           &bytes.Buffer{},
		limit:          limit,
	}
}

func getRealIP(r *http.Request, header string) string {
	if v := r.Header.Get(header); header != "" && v != "" {
		return v
	}
	return r.RemoteAddr
}

func getRequestID(r *http.Request, header string) string {
	if v := r.Header.Get(header); header != "" && v != "" {
		return v
	}
	return uuid.New().String()
}

var tracer = otel.Tracer("org-console-middleware")

func TracedMiddleware(name string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(
				r.Context(),
				"middleware."+name,
				trace.WithAttributes(
					attribute.String("middleware.name", name),
					attribute.String("http.method", r.Method),
					attribute.String("http.url", r.URL.String()),
				),
			)
			defer span.End()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func formatHeaders(h http.Header) map[string]string {
	headers := make(map[string]string)
	for key, values := range h {
		if len(values) > 0 {
			headers[key] = values[0]
		}
	}
	return headers
}

func formatFormValues(f url.Values) map[string]string {
	formValues := make(map[string]string)
	for key, values := range f {
		formValues[key] = strings.Join(values, ",")
	}
	return formValues
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// WithLogger opens the request span, attaches a request scoped logrus entry
// to the context and recovers handler panics.
func WithLogger(logger *logrus.Logger, opts LoggerOptions) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				start := time.Now()
				requestID := getRequestID(r, opts.RequestIDHeader)
				ip := getRealIP(r, opts.RealIPHeader)

				fieldsLogger := logger.WithFields(logrus.Fields{
					"request-id": requestID,
					"path":       r.RequestURI,
					"method":     r.Method,
				})

				fieldsLogger.WithFields(logrus.Fields{
					"host":            r.Host,
					"ip":              ip,
					"user-agent":      r.UserAgent(),
					"request-headers": formatHeaders(r.Header),
				}).Debug("request started")

				if opts.LogRequestBody && r.Body != nil && r.Method != http.MethodGet {
					if err := logRequestBody(fieldsLogger, r, opts.MaxBodyLength); err != nil {
						fieldsLogger.WithError(err).Error("failed to read request-body")
						http.Error(w, "failed to read request-body", http.StatusBadRequest)
						return
					}
				}

				propagator := propagation.TraceContext{}
				ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
				ctx, span := tracer.Start(
					ctx,
					"http.request",
					trace.WithAttributes(
						attribute.String("http.method", r.Method),
						attribute.String("http.route", r.URL.Path),
						attribute.String("http.request_id", requestID),
						attribute.String("net.peer.ip", ip),
					),
				)
				defer span.End()

				if spanContext := span.SpanContext(); spanContext.HasTraceID() {
					w.Header().Set("X-Trace-Id", spanContext.TraceID().String())
					fieldsLogger = fieldsLogger.WithField("trace-id", spanContext.TraceID().String())
				}
				w.Header().Set("X-Request-Id", requestID)

				ctx = context.WithValue(ctx, constants.LoggerKey, fieldsLogger)
				ctx = context.WithValue(ctx, constants.RequestStart, start)

				wrappedWriter := wrapResponseWriter(w, opts.MaxBodyLength)

				defer func() {
					recovered := recover()
					if recovered == nil {
						return
					}
					fieldsLogger.WithFields(logrus.Fields{
						"panic":    recovered,
						"stack":    string(debug.Stack()),
						"duration": time.Since(start),
					}).Error("panic recovered in request handler")

					if !wrappedWriter.statusWritten {
						if opts.APIPrefix != "" && strings.HasPrefix(r.URL.Path, opts.APIPrefix) {
							_ = httpapi.WriteError(wrappedWriter, http.StatusInternalServerError,
								"INTERNAL_SERVER_ERROR", "internal server error",
								map[string]string{"request_id": requestID, "path": r.URL.Path})
						} else {
							http.Error(wrappedWriter, "Internal Server Error", http.StatusInternalServerError)
						}
					}
					if opts.Repanic {
						panic(recovered)
					}
				}()

				next.ServeHTTP(wrappedWriter, r.WithContext(ctx))

				statusCode := wrappedWriter.Status()
				duration := time.Since(start)
				entry := fieldsLogger.WithFields(logrus.Fields{
					"duration":     duration,
					"status-code":  statusCode,
					"status-class": statusCode / 100,
				})
				if opts.LogResponseBody && strings.Contains(wrappedWriter.Header().Get("Content-Type"), "application/json") {
					entry = entry.WithField("response-body", wrappedWriter.body.String())
				}
				entry.Info("request completed")

				span.SetAttributes(
					attribute.Int64("http.request_duration_ms", duration.Milliseconds()),
					attribute.Int("http.status_code", statusCode),
				)
			},
		)
	}
}

func logRequestBody(logger logrus.FieldLogger, r *http.Request, limit int) error {
	contentType := strings.ToLower(r.Header.Get("Content-Type"))
	bodyBuf := new(bytes.Buffer)
	if _, err := io.Copy(bodyBuf, r.Body); err != nil {
		return err
	}
	r.Body = io.NopCloser(bytes.NewReader(bodyBuf.Bytes()))

	switch {
	case strings.Contains(contentType, "application/json"):
		var parsed interface{}
		if err := json.Unmarshal(bodyBuf.Bytes(), &parsed); err != nil {
			logger.WithField("request-body", truncate(bodyBuf.String(), limit)).Debug("request-body is not valid JSON")
			return nil
		}
		logger.WithField("request-body", parsed).Debug("JSON request-body parsed")
	case strings.Contains(contentType, "application/x-www-form-urlencoded"):
		values, err := url.ParseQuery(bodyBuf.String())
		if err != nil {
			return err
		}
		logger.WithField("request-body", formatFormValues(values)).Debug("form-urlencoded request-body parsed")
	}
	return nil
}
