// Package host assembles a pool from a configuration file: it builds the
// catalog, creates the pool with its metrics collector and tracer, and
// optionally configures and prewarms it straight away.
package host

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/ajitpratap0/stockpile/pkg/catalog"
	"github.com/ajitpratap0/stockpile/pkg/config"
	"github.com/ajitpratap0/stockpile/pkg/errors"
	"github.com/ajitpratap0/stockpile/pkg/logger"
	"github.com/ajitpratap0/stockpile/pkg/metrics"
	"github.com/ajitpratap0/stockpile/pkg/observability"
	"github.com/ajitpratap0/stockpile/pkg/pool"
	"github.com/ajitpratap0/stockpile/pkg/prototypes"
)

// Options tune how a Host is built.
type Options struct {
	Log *zap.Logger
	// TraceOutput receives spans from the stdout exporter. Defaults to stdout.
	TraceOutput io.Writer
}

// Host owns a configured pool of prototypes.Object and its observability.
type Host struct {
	Config   *config.Config
	Library  *prototypes.Library
	Tree     catalog.Tree[*prototypes.Object]
	Manifest *pool.Manifest[*prototypes.Object]
	Catalog  catalog.Report
	Pool     *pool.Pool[*prototypes.Object]
	Metrics  *metrics.Collector
	Registry *prometheus.Registry
	Tracer   *observability.Tracer

	log *zap.Logger
}

// New validates cfg and builds a host. When cfg.Pool.AutoInitialize is set
// the pool is configured and prewarmed before New returns.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Host, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid configuration")
	}
	log := opts.Log
	if log == nil {
		log = logger.Get()
	}

	h := &Host{
		Config:  cfg,
		Library: prototypes.NewLibrary(),
		log:     log.Named("host").With(zap.String("pool", cfg.Name)),
	}

	tree, err := catalog.FromConfig(cfg.Catalog, h.Library.Resolve)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid catalog")
	}
	h.Tree, _ = tree.Sort(zap.NewNop())
	h.Manifest, h.Catalog = tree.Build(h.log)

	h.Registry = prometheus.NewRegistry()
	h.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	h.Metrics = metrics.NewCollector(cfg.Metrics.Namespace, cfg.Name, h.Registry)

	h.Tracer, err = observability.NewTracer(cfg.Tracing, opts.TraceOutput)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid tracing configuration")
	}

	h.Pool = pool.New[*prototypes.Object](
		pool.WithName(cfg.Name),
		pool.WithLogger(log),
		pool.WithObserver(h.Metrics),
		pool.WithDeactivateOnReturn(cfg.Pool.DeactivateOnReturn),
	)

	h.log.Info("host created",
		zap.Int("categories", len(h.Tree)),
		zap.Int("bindings", h.Catalog.Bindings),
		zap.Int("prototypes", h.Library.Len()),
		zap.Bool("auto_initialize", cfg.Pool.AutoInitialize))

	if cfg.Pool.AutoInitialize {
		if err := h.Initialize(ctx); err != nil {
			_ = h.Close(context.Background())
			return nil, err
		}
	}
	return h, nil
}

// Initialize configures the pool from the catalog manifest and prewarms it
// with cfg.Pool.PrewarmCount instances per key.
func (h *Host) Initialize(ctx context.Context) error {
	err := h.Tracer.Trace(ctx, "pool.configure", func(context.Context) error {
		return h.Pool.Configure(h.Manifest)
	})
	if err != nil {
		return err
	}
	return h.Tracer.Trace(ctx, "pool.prewarm", func(context.Context) error {
		return h.Pool.Prewarm(h.Config.Pool.PrewarmCount)
	})
}

// Serve exposes the metrics registry on addr under /metrics until ctx is
// done.
func (h *Host) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(h.Registry))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.log.Info("serving metrics", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Close flushes pending spans.
func (h *Host) Close(ctx context.Context) error {
	return h.Tracer.Shutdown(ctx)
}
