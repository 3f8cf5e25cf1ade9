package metric

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StartHTTPServer serves Prometheus metrics at /metrics on the given
// address and returns the server so the caller can shut it down
// gracefully.
func StartHTTPServer(addr string, logger *slog.Logger) *http.Server {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("metrics server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	return srv
}

// ShutdownHTTPServer gracefully shuts down the metrics server.
func ShutdownHTTPServer(ctx context.Context, srv *http.Server, logger *slog.Logger) {
	if srv == nil {
		return
	}
	if err := srv.Shutdown(ctx); err != nil && logger != nil {
		logger.Error("metrics server shutdown error", "error", err)
	}
}
