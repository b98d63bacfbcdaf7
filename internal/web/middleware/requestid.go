// Package middleware holds HTTP middleware specific to the iqdb surface,
// layered underneath chi's own stack.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey int

const requestIDKey contextKey = 0

// RequestID stamps every request with a UUID, stored in the context and
// echoed back as X-Request-ID. It runs ahead of chi's own RequestID
// middleware in the stack, so log lines and error responses can carry a
// stable identifier even when chi's short-form id is also present.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the UUID stamped by RequestID, or "" if
// none is present.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
