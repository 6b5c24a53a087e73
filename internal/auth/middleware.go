package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
)

type contextKey string

const operatorKey contextKey = "operator"

// OperatorOnly gates the privileged surface behind a shared token passed in
// the X-Operator-Token header. There is no identity provider in this
// system; the operator switch is a local mode, not an account.
func OperatorOnly(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				http.Error(w, "operator access not configured", http.StatusForbidden)
				return
			}

			presented := r.Header.Get("X-Operator-Token")
			if presented == "" {
				http.Error(w, "missing X-Operator-Token header", http.StatusUnauthorized)
				return
			}
			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				http.Error(w, "invalid operator token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), operatorKey, true)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsOperator reports whether the request passed the operator gate.
func IsOperator(ctx context.Context) bool {
	if v, ok := ctx.Value(operatorKey).(bool); ok {
		return v
	}
	return false
}
