package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"ecommerce-dashboard/internal/logger"
)

// RequestLogger logs one structured line per HTTP request. It expects
// middleware.RequestID to run first so the request id can be attached.
func RequestLogger(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ctx := logg.WithField(r.Context(), "request_id", middleware.GetReqID(r.Context()))

			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			ctx = logg.WithFields(ctx, map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
			})
			if status >= http.StatusInternalServerError {
				logg.Error(ctx, "http.request", nil)
				return
			}
			logg.Info(ctx, "http.request")
		})
	}
}
