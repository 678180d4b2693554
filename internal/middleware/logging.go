package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/metaloot/registry/internal/dependencies/ids"
)

// RequestIDHeader carries the id that ties a response to its log line.
// A well-formed id sent by the client is kept; anything else is replaced.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID returns the request id assigned by Logging, if any
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ResponseWriter wraps http.ResponseWriter to capture the status code and size
type ResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

// WriteHeader captures the status code
func (rw *ResponseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

// Write captures the response size
func (rw *ResponseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// Status returns the captured status code
func (rw *ResponseWriter) Status() int {
	return rw.status
}

// Logging creates middleware that tags each request with an id and logs
// it once served. Server errors log at Error, client errors at Warn.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	gen := ids.New()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get(RequestIDHeader)
			if !ids.Valid(id) {
				id = gen.NewID()
			}
			w.Header().Set(RequestIDHeader, id)

			wrapped := &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(wrapped, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))

			level := slog.LevelInfo
			switch {
			case wrapped.status >= http.StatusInternalServerError:
				level = slog.LevelError
			case wrapped.status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}

			logger.LogAttrs(r.Context(), level, "http request",
				slog.String("request_id", id),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote", r.RemoteAddr),
				slog.Int("status", wrapped.status),
				slog.Int("size", wrapped.size),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
