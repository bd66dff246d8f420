package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Middleware is an ordered stack applied outermost first.
type Middleware struct {
	stack []func(http.Handler) http.Handler
}

func (m *Middleware) Use(fn func(http.Handler) http.Handler) {
	m.stack = append(m.stack, fn)
}

func (m *Middleware) Apply(handler http.Handler) http.Handler {
	for i := len(m.stack) - 1; i >= 0; i-- {
		handler = m.stack[i](handler)
	}
	return handler
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logger logs method, URI, status and duration of each request.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info(
				"request",
				"method", r.Method,
				"uri", r.URL.RequestURI(),
				"status", rec.status,
				"duration", time.Since(start),
			)
		})
	}
}

// RequireKey accepts "Authorization: Bearer <key>" or "X-API-Key: <key>".
// With no key configured every request is refused with 503.
func RequireKey(key string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				RespondError(w, logger, http.StatusServiceUnavailable, ErrKeyNotConfigured)
				return
			}
			if !validKey(r, key) {
				RespondError(w, logger, http.StatusUnauthorized, ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func validKey(r *http.Request, key string) bool {
	presented := r.Header.Get("X-API-Key")
	if auth := r.Header.Get("Authorization"); presented == "" && auth != "" {
		scheme, token, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			presented = strings.TrimSpace(token)
		}
	}
	return presented != "" && subtle.ConstantTimeCompare([]byte(presented), []byte(key)) == 1
}
