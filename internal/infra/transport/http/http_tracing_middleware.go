package http

import (
	"net/http"

	"github.com/google/uuid"

	context_ "github.com/mkrupp/wtwr/internal/infra/context"
)

// TraceIDHeader carries the request trace ID in both directions.
const TraceIDHeader = "X-Request-ID"

const maxTraceIDLength = 128

// TracingMiddleware creates middleware that adds request tracing.
// It uses the X-Request-ID header if present and sane, otherwise generates a
// new UUIDv7. The trace ID is added to the request context and echoed back.
func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := getTraceID(r)

		w.Header().Set(TraceIDHeader, traceID)
		next.ServeHTTP(w, r.WithContext(context_.WithTraceID(r.Context(), traceID)))
	})
}

func getTraceID(r *http.Request) string {
	if traceID := r.Header.Get(TraceIDHeader); traceID != "" && len(traceID) <= maxTraceIDLength {
		return traceID
	}

	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}
