package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/c360studio/semstreams/natsclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/c360studio/semaeis/analyzer"
	"github.com/c360studio/semaeis/decoder"
	columnindexer "github.com/c360studio/semaeis/processor/column-indexer"
	"github.com/c360studio/semaeis/source/extract"
	"github.com/c360studio/semaeis/storage"
)

func indexCmd(a *app) *cobra.Command {
	var (
		sel         selectionFlags
		natsURL     string
		metricsAddr string
		watch       bool
		noStore     bool
		debounce    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "index [root]",
		Short: "Decode extracts and publish the columns to the graph over NATS",
		Long: `Index decodes every column of the extracts below root, stores each decoded
column in the analyses KV bucket and publishes it as a graph entity.

With --watch the command keeps running and re-indexes extracts as they change
until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel.apply(cmd, a)
			if cmd.Flags().Changed("nats-url") {
				a.cfg.NATS.URL = natsURL
			}
			if cmd.Flags().Changed("metrics-addr") {
				a.cfg.Metrics.Addr = metricsAddr
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			root, err := filepath.Abs(a.rootArg(args))
			if err != nil {
				return fmt.Errorf("resolve root: %w", err)
			}
			return a.runIndex(ctx, root, indexOptions{watch: watch, store: !noStore, debounce: debounce})
		},
	}

	sel.register(cmd)
	cmd.Flags().StringVar(&natsURL, "nats-url", "", "NATS server URL (default from config)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep running and re-index changed extracts")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "Do not store decoded columns in the analyses bucket")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Delay before re-indexing changed extracts")
	return cmd
}

type indexOptions struct {
	watch    bool
	store    bool
	debounce time.Duration
}

func (a *app) runIndex(ctx context.Context, root string, opts indexOptions) error {
	nc, err := connectToNATS(ctx, a.cfg.NATS.URL, a.logger)
	if err != nil {
		return err
	}
	defer nc.Close(ctx)

	var store columnindexer.AnalysisStore
	if opts.store {
		js, err := nc.JetStream()
		if err != nil {
			return fmt.Errorf("get jetstream: %w", err)
		}
		s, err := storage.NewStore(ctx, js)
		if err != nil {
			return fmt.Errorf("create analysis store: %w", err)
		}
		store = s
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := columnindexer.NewMetrics(reg)
	if err != nil {
		return err
	}
	if a.cfg.Metrics.Addr != "" {
		stop := serveMetrics(a.cfg.Metrics.Addr, reg, a.logger)
		defer stop()
	}

	d, err := a.newDecoder()
	if err != nil {
		return err
	}
	filter := extract.Filter{
		Years:        a.cfg.Extract.Years,
		Kinds:        a.cfg.Extract.Kinds,
		ExcludeKinds: a.cfg.Extract.Exclude,
	}
	ix := columnindexer.NewIndexer(columnindexer.IndexerOptions{
		Analyzer: analyzer.Options{
			Decoder: d,
			Batch:   decoder.BatchOptions{Workers: a.cfg.Decode.Workers, FailFast: a.cfg.Decode.FailFast},
		},
		Patterns:  a.cfg.Extract.Include,
		Filter:    filter,
		Store:     store,
		Publisher: columnindexer.NATSPublisher{Client: nc},
		Metrics:   metrics,
		Logger:    a.logger,
	})

	files, err := ix.Discover(root)
	if err != nil {
		return err
	}
	sum, err := ix.IndexFiles(ctx, root, files)
	if err != nil {
		return err
	}
	if !opts.watch {
		if sum.Errors > 0 {
			return fmt.Errorf("%d columns could not be stored or published", sum.Errors)
		}
		return nil
	}

	return watchAndIndex(ctx, ix, filter, root, files, opts.debounce, a.logger)
}

// watchAndIndex re-indexes created and modified extracts below root until
// ctx is cancelled.
func watchAndIndex(ctx context.Context, ix *columnindexer.Indexer, filter extract.Filter, root string, indexed []*extract.File, debounce time.Duration, logger *slog.Logger) error {
	w, err := columnindexer.NewWatcher(columnindexer.WatcherConfig{
		Root:          root,
		DebounceDelay: debounce,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	for _, f := range indexed {
		w.Prime(f.Path)
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Stop()

	logger.Info("Watching extracts", "root", root)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Received shutdown signal")
			return nil
		case event, ok := <-w.Events():
			if !ok {
				return nil
			}
			if event.Error != nil {
				logger.Warn("Watch event error", "path", event.Path, "error", event.Error)
				continue
			}
			if event.Operation == columnindexer.OpDelete {
				logger.Debug("Extract deleted", "path", event.Path)
				continue
			}
			files := filter.Apply([]*extract.File{event.File})
			if len(files) == 0 {
				continue
			}
			if _, err := ix.IndexFiles(ctx, root, files); err != nil && ctx.Err() == nil {
				logger.Warn("Failed to re-index extract", "path", event.Path, "error", err)
			}
		}
	}
}

// serveMetrics serves reg on addr/metrics and returns a function stopping the server.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

func connectToNATS(ctx context.Context, url string, logger *slog.Logger) (*natsclient.Client, error) {
	if url == "" {
		url = "nats://localhost:4222"
	}
	logger.Info("Connecting to NATS", "url", url)

	client, err := natsclient.NewClient(url,
		natsclient.WithName(appName),
		natsclient.WithMaxReconnects(-1),
		natsclient.WithReconnectWait(time.Second),
		natsclient.WithCircuitBreakerThreshold(20),
		natsclient.WithHealthInterval(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	if err := client.Connect(ctx); err != nil {
		return nil, wrapNATSError(err, url)
	}

	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.WaitForConnection(connCtx); err != nil {
		return nil, wrapNATSError(err, url)
	}

	logger.Info("Connected to NATS", "url", url)
	return client, nil
}

// wrapNATSError provides helpful guidance when NATS connection fails.
func wrapNATSError(err error, url string) error {
	errStr := err.Error()

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no servers available") ||
		strings.Contains(errStr, "timeout") {
		return fmt.Errorf(`NATS connection failed: %w

NATS is not running at %s.

To start NATS:
  docker compose up -d nats

Or set NATS_URL environment variable to point to your NATS server.`, err, url)
	}

	return fmt.Errorf("NATS connection failed: %w", err)
}
