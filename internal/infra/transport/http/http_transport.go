package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mkrupp/wtwr/internal/infra/logging"
)

// HTTPTransportConfig contains configuration parameters for HTTP servers.
type HTTPTransportConfig struct {
	// ServerAddr is the network address to listen on
	ServerAddr string `env:"SERVER_ADDR" envDefault:":3001"`
	// ReadHeaderTimeout bounds reading request headers
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"5s"`

	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`

	// ShutdownTimeout bounds draining in-flight requests once ctx is cancelled
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// MaxBodyBytes caps JSON request bodies
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"1048576"`
}

// HTTPTransport defines the interface for services that expose HTTP routes.
type HTTPTransport interface {
	Routes(rt *Router)
}

// Router registers routes on a mux, instrumenting each one when metrics are enabled.
type Router struct {
	mux     *http.ServeMux
	metrics *Metrics
}

// NewRouter wraps mux. metrics may be nil.
func NewRouter(mux *http.ServeMux, metrics *Metrics) *Router {
	return &Router{mux: mux, metrics: metrics}
}

// Handle registers handler for pattern.
func (rt *Router) Handle(pattern string, handler http.Handler) {
	if rt.metrics != nil {
		handler = rt.metrics.Instrument(pattern, handler)
	}

	rt.mux.Handle(pattern, handler)
}

// HandleFunc registers a handler function for pattern.
func (rt *Router) HandleFunc(pattern string, handler http.HandlerFunc) {
	rt.Handle(pattern, handler)
}

// NewServeMux builds the application mux from the given transports and, when
// metrics is non-nil, exposes GET /metrics. Unmatched requests get a JSON 404,
// or a JSON 405 with an Allow header when only the method does not match.
func NewServeMux(metrics *Metrics, transports ...HTTPTransport) http.Handler {
	mux := http.NewServeMux()
	rt := NewRouter(mux, metrics)

	for _, t := range transports {
		t.Routes(rt)
	}

	if metrics != nil {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	return &jsonFallbackMux{mux: mux}
}

type jsonFallbackMux struct {
	mux *http.ServeMux
}

func (m *jsonFallbackMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler, pattern := m.mux.Handler(r)
	if pattern != "" {
		m.mux.ServeHTTP(w, r)

		return
	}

	// Run the mux's own fallback only to learn its verdict.
	verdict := &fallbackWriter{header: http.Header{}, status: http.StatusNotFound}
	handler.ServeHTTP(verdict, r)

	switch verdict.status {
	case http.StatusMethodNotAllowed:
		if allow := verdict.header.Get("Allow"); allow != "" {
			w.Header().Set("Allow", allow)
		}

		_ = WriteJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Message: MethodNotAllowedMessage})
	default:
		NotFoundHandler().ServeHTTP(w, r)
	}
}

// fallbackWriter records the status and headers of a mux fallback handler
// and discards its body.
type fallbackWriter struct {
	header http.Header
	status int
}

func (f *fallbackWriter) Header() http.Header { return f.header }

func (f *fallbackWriter) Write(p []byte) (int, error) { return len(p), nil }

func (f *fallbackWriter) WriteHeader(status int) { f.status = status }

// Handler wraps handler with the standard middleware stack: tracing,
// logging and panic recovery.
func Handler(handler http.Handler, log logging.Logger) http.Handler {
	handler = RescueingMiddleware(handler, log)
	handler = LoggingMiddleware(handler, log)
	handler = TracingMiddleware(handler)

	return handler
}

// ListenAndServe starts an HTTP server with the given handler and configuration
// and blocks until ctx is cancelled or the server fails. On cancellation the
// server is shut down gracefully within cfg.ShutdownTimeout.
func ListenAndServe(ctx context.Context, handler http.Handler, cfg HTTPTransportConfig) error {
	log := logging.GetLogger("infra.transport.http")

	//nolint:exhaustruct
	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           Handler(handler, log),
		ErrorLog:          logging.GetLogLogger(log, logging.LevelError),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	sock, err := net.Listen("tcp", cfg.ServerAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	log.InfoContext(ctx, "listening", "addr", sock.Addr().String())

	errCh := make(chan error, 1)

	go func() {
		errCh <- server.Serve(sock)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()

	log.InfoContext(ctx, "shutting down")

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	return nil
}
