package middleware

import (
	"context"
	"net/http"

	"courtbook/pkg/logger"
)

const (
	HeaderCallerID   = "X-Caller-Id"
	HeaderCallerName = "X-Caller-Name"
	HeaderCallerRef  = "X-Caller-Ref"
)

const CallerKey contextKey = "caller"

// Caller is the authenticated identity resolved by the upstream gateway.
// The booking engine trusts these headers; authentication itself is the
// surrounding application's concern.
type Caller struct {
	ID   string
	Name string
	Ref  string
}

// CallerIdentity extracts the caller identity headers into the request
// context, rejecting requests that arrive without one.
func CallerIdentity(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := Caller{
				ID:   r.Header.Get(HeaderCallerID),
				Name: r.Header.Get(HeaderCallerName),
				Ref:  r.Header.Get(HeaderCallerRef),
			}

			if caller.ID == "" {
				log.Warn("Request without caller identity",
					"request_id", RequestID(r.Context()),
					"path", r.URL.Path,
					"method", r.Method,
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Missing caller identity"}`))
				return
			}

			ctx := context.WithValue(r.Context(), CallerKey, caller)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerFrom returns the caller identity stored by CallerIdentity.
func CallerFrom(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(CallerKey).(Caller)
	return caller, ok
}
