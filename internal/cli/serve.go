package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aretw0/rulesmith"
	"github.com/aretw0/rulesmith/internal/presentation/tui"
	rshttp "github.com/aretw0/rulesmith/pkg/adapters/http"
	"github.com/aretw0/rulesmith/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServeHandler builds the HTTP service for opts: rule generation, health
// and Prometheus metrics. The returned close function releases backends.
func NewServeHandler(opts Options) (http.Handler, func() error, error) {
	logger, err := createLogger(opts.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	hooks := metrics.Hooks().Merge(observability.LogHooks(logger))

	gen, err := createGenerator(cfg, opts, logger, hooks)
	if err != nil {
		return nil, nil, err
	}

	handler := rshttp.NewHandler(gen.GenerateWith,
		rshttp.WithSearcher(gen.Searcher()),
		rshttp.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		rshttp.WithServerLogger(logger),
	)
	return handler, gen.Close, nil
}

// RunServe serves the HTTP API on addr until ctx is cancelled.
func RunServe(ctx context.Context, opts Options, addr string, w io.Writer) error {
	handler, closeFn, err := NewServeHandler(opts)
	if err != nil {
		return err
	}
	defer closeFn()

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()
	tui.PrintBanner(w, rulesmith.Version)
	printSystemMessage(w, "Serving rule generation on %s", addr)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			if cerr := srv.Close(); cerr != nil {
				return errors.Join(err, cerr)
			}
			return fmt.Errorf("graceful shutdown did not complete: %w", err)
		}
		printSystemMessage(w, "Server stopped gracefully")
		return nil
	}
}
