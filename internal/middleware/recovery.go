// file: internal/middleware/recovery.go
package middleware

import (
	"fmt"
	"net/http"
	"runtime"

	"go.uber.org/zap"
)

// Recovery converts panics into 500 responses instead of dropped
// connections. The stack is logged, never sent to the client.
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					requestLogger := GetRequestLogger(r.Context())
					requestID := GetRequestID(r.Context())

					buf := make([]byte, 8192)
					n := runtime.Stack(buf, false)

					requestLogger.Error("Panic recovered",
						zap.Any("panic", err),
						zap.String("request_id", requestID),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.String("stack", string(buf[:n])),
					)

					w.Header().Set("Content-Type", "application/json; charset=utf-8")
					w.WriteHeader(http.StatusInternalServerError)
					fmt.Fprintf(w, `{"success":false,"error":{"type":"INTERNAL_ERROR","message":"internal server error"},"request_id":%q}`, requestID)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
