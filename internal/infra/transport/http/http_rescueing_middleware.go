package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/mkrupp/wtwr/internal/infra/logging"
)

// ErrPanic marks an error recovered from a panicking handler.
var ErrPanic = errors.New("panic")

// RescueingMiddleware creates middleware that recovers from panics in HTTP handlers.
// It logs the panic and stack trace, then returns a generic 500 to the client.
func RescueingMiddleware(next http.Handler, log logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func(ctx context.Context) {
			p := recover()
			if p == nil {
				return
			}

			//nolint:errorlint,goerr113
			if p == http.ErrAbortHandler {
				panic(p)
			}

			log.ErrorContext(ctx, "request panic", slog.Group("http",
				"uri", r.URL.Path,
				"method", r.Method,
			), slog.Group("error",
				"panic", p,
				"stack", string(debug.Stack()),
			))
			WriteError(w, ErrPanic)
		}(r.Context())

		next.ServeHTTP(w, r)
	})
}
