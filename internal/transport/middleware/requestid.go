package middleware

import (
	"net/http"

	"github.com/frahmantamala/vesta-ledger/pkg/logger"
	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
)

// TraceID reuses X-Trace-ID when the caller sent one, falls back to chi's
// request id, and tags the request logger with it.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = middleware.GetReqID(r.Context())
		}
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.WithRequest(r.Context(), traceID, "")
		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
