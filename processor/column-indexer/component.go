// Package columnindexer provides a processor component that decodes the
// column codes of AEIS extracts and publishes them to the graph ingestion
// pipeline.
package columnindexer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/semaeis/analyzer"
	"github.com/c360studio/semaeis/decoder"
	"github.com/c360studio/semaeis/source/extract"
	"github.com/c360studio/semaeis/storage"
)

// columnIndexerSchema defines the configuration schema
var columnIndexerSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// rootWatcher manages watching and indexing for a single resolved root.
type rootWatcher struct {
	root    string
	watcher *Watcher
}

// Component implements the column-indexer processor
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	logger     *slog.Logger
	platform   component.PlatformMeta
	metrics    *Metrics

	roots    []*rootWatcher
	indexer  *Indexer
	indexMu  sync.Mutex // serializes index runs
	registry prometheus.Registerer

	// Lifecycle management
	running   bool
	startTime time.Time
	mu        sync.RWMutex

	// Metrics - aggregated across all roots
	columnsIndexed atomic.Int64
	decodeFailures atomic.Int64
	errors         atomic.Int64
	lastActivityMu sync.RWMutex
	lastActivity   time.Time

	// Cancel functions for background goroutines
	cancelFuncs []context.CancelFunc
}

// NewComponent creates a new column-indexer processor component
func NewComponent(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	config := DefaultConfig()
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	roots, err := ResolveRoots(config.Roots)
	if err != nil {
		return nil, fmt.Errorf("resolve roots: %w", err)
	}

	c := &Component{
		name:       "column-indexer",
		config:     config,
		natsClient: deps.NATSClient,
		logger:     deps.GetLogger(),
		platform:   deps.Platform,
		registry:   prometheus.DefaultRegisterer,
	}
	for _, root := range roots {
		c.roots = append(c.roots, &rootWatcher{root: root})
	}

	metrics, err := NewMetrics(c.registry)
	if err != nil {
		return nil, err
	}
	c.metrics = metrics
	return c, nil
}

// Initialize prepares the component
func (c *Component) Initialize() error {
	return nil
}

// Start performs the initial index of every root, then starts the watchers
// and the periodic reindex when configured.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("component already running")
	}
	if c.natsClient == nil {
		c.mu.Unlock()
		return fmt.Errorf("NATS client required")
	}
	c.mu.Unlock()

	var store AnalysisStore
	if c.config.StoreAnalyses {
		js, err := c.natsClient.JetStream()
		if err != nil {
			return fmt.Errorf("get jetstream: %w", err)
		}
		s, err := storage.NewStore(ctx, js)
		if err != nil {
			return fmt.Errorf("create analysis store: %w", err)
		}
		store = s
	}

	c.indexer = NewIndexer(IndexerOptions{
		Analyzer: analyzer.Options{
			Batch:  decoder.BatchOptions{Workers: c.config.Workers},
			Logger: c.logger,
		},
		Patterns: c.config.Patterns,
		Filter: extract.Filter{
			Years:        c.config.Years,
			Kinds:        c.config.Kinds,
			ExcludeKinds: c.config.ExcludeKinds,
		},
		Store:     store,
		Publisher: NATSPublisher{Client: c.natsClient},
		Metrics:   c.metrics,
		Logger:    c.logger,
	})

	c.logger.Info("Starting initial extract index", "roots", len(c.roots))
	for _, rw := range c.roots {
		if err := c.indexRoot(ctx, rw); err != nil {
			return fmt.Errorf("initial index failed for %s: %w", rw.root, err)
		}
	}

	if c.config.WatchEnabled {
		for _, rw := range c.roots {
			if err := c.startWatcher(ctx, rw); err != nil {
				c.logger.Warn("Failed to start extract watcher",
					"root", rw.root,
					"error", err)
			}
		}
	}

	if c.config.IndexInterval != "" {
		c.startPeriodicIndex(ctx)
	}

	c.mu.Lock()
	c.running = true
	c.startTime = time.Now()
	c.mu.Unlock()

	return nil
}

// indexRoot indexes every selected extract below a root and primes its
// watcher with the indexed content.
func (c *Component) indexRoot(ctx context.Context, rw *rootWatcher) error {
	files, err := c.indexer.Discover(rw.root)
	if err != nil {
		return err
	}
	if err := c.indexFiles(ctx, rw.root, files); err != nil {
		return err
	}
	if rw.watcher != nil {
		for _, f := range files {
			rw.watcher.Prime(f.Path)
		}
	}
	return nil
}

func (c *Component) indexFiles(ctx context.Context, root string, files []*extract.File) error {
	c.indexMu.Lock()
	defer c.indexMu.Unlock()

	sum, err := c.indexer.IndexFiles(ctx, root, files)
	c.columnsIndexed.Add(int64(sum.Columns))
	c.decodeFailures.Add(int64(sum.Failures))
	c.errors.Add(int64(sum.Errors))
	if sum.Files > 0 {
		c.updateLastActivity()
	}
	return err
}

// startWatcher starts the extract watcher for a specific root.
func (c *Component) startWatcher(ctx context.Context, rw *rootWatcher) error {
	watcher, err := NewWatcher(WatcherConfig{
		Root:          rw.root,
		DebounceDelay: c.config.GetDebounceDelay(),
		Logger:        c.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	rw.watcher = watcher

	files, err := c.indexer.Discover(rw.root)
	if err == nil {
		for _, f := range files {
			watcher.Prime(f.Path)
		}
	}

	watchCtx, cancel := context.WithCancel(ctx)
	c.cancelFuncs = append(c.cancelFuncs, cancel)

	if err := watcher.Start(watchCtx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	go func() {
		for {
			select {
			case <-watchCtx.Done():
				return
			case event, ok := <-watcher.Events():
				if !ok {
					return
				}
				c.handleWatchEvent(watchCtx, rw, event)
			}
		}
	}()

	return nil
}

// handleWatchEvent re-indexes a created or modified extract
func (c *Component) handleWatchEvent(ctx context.Context, rw *rootWatcher, event WatchEvent) {
	c.updateLastActivity()

	if event.Error != nil {
		c.logger.Warn("Watch event error",
			"path", event.Path,
			"error", event.Error)
		c.errors.Add(1)
		return
	}

	switch event.Operation {
	case OpCreate, OpModify:
		files := c.indexer.filter.Apply([]*extract.File{event.File})
		if len(files) == 0 {
			return
		}
		if err := c.indexFiles(ctx, rw.root, files); err != nil {
			c.logger.Warn("Failed to re-index extract",
				"path", filepath.Join(rw.root, event.Path),
				"error", err)
			c.errors.Add(1)
		}
	case OpDelete:
		c.logger.Debug("Extract deleted", "path", event.Path)
	}
}

// startPeriodicIndex starts periodic full reindex
func (c *Component) startPeriodicIndex(ctx context.Context) {
	interval, err := time.ParseDuration(c.config.IndexInterval)
	if err != nil {
		c.logger.Warn("Invalid index interval, skipping periodic index", "error", err)
		return
	}

	indexCtx, cancel := context.WithCancel(ctx)
	c.cancelFuncs = append(c.cancelFuncs, cancel)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-indexCtx.Done():
				return
			case <-ticker.C:
				for _, rw := range c.roots {
					if err := c.indexRoot(indexCtx, rw); err != nil {
						c.logger.Error("Periodic reindex failed",
							"root", rw.root,
							"error", err)
						c.errors.Add(1)
					}
				}
			}
		}
	}()

	c.logger.Info("Periodic index started", "interval", interval)
}

// updateLastActivity safely updates the last activity timestamp
func (c *Component) updateLastActivity() {
	c.lastActivityMu.Lock()
	c.lastActivity = time.Now()
	c.lastActivityMu.Unlock()
}

// getLastActivity safely retrieves the last activity timestamp
func (c *Component) getLastActivity() time.Time {
	c.lastActivityMu.RLock()
	defer c.lastActivityMu.RUnlock()
	return c.lastActivity
}

// Stop gracefully stops the component within the given timeout
func (c *Component) Stop(_ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}

	for _, cancel := range c.cancelFuncs {
		cancel()
	}
	c.cancelFuncs = nil

	for _, rw := range c.roots {
		if rw.watcher != nil {
			if err := rw.watcher.Stop(); err != nil {
				c.logger.Warn("Error stopping watcher",
					"root", rw.root,
					"error", err)
			}
		}
	}

	c.running = false
	c.logger.Info("Column indexer stopped",
		"roots", len(c.roots),
		"columns_indexed", c.columnsIndexed.Load(),
		"decode_failures", c.decodeFailures.Load(),
		"errors", c.errors.Load())

	return nil
}

// Discoverable interface implementation

// Meta returns component metadata
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "column-indexer",
		Type:        "processor",
		Description: "AEIS extract indexer decoding column codes into graph entities",
		Version:     "0.1.0",
	}
}

// InputPorts returns configured input port definitions
func (c *Component) InputPorts() []component.Port {
	// The indexer reads extracts from the file system, not from ports.
	return []component.Port{}
}

// OutputPorts returns configured output port definitions
func (c *Component) OutputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}

	ports := make([]component.Port, len(c.config.Ports.Outputs))
	for i, portDef := range c.config.Ports.Outputs {
		ports[i] = buildPort(portDef, component.DirectionOutput)
	}
	return ports
}

// buildPort creates a component.Port from a PortDefinition, using JetStreamPort
// for jetstream-type ports and NATSPort for core NATS ports.
func buildPort(portDef component.PortDefinition, direction component.Direction) component.Port {
	port := component.Port{
		Name:        portDef.Name,
		Direction:   direction,
		Required:    portDef.Required,
		Description: portDef.Description,
	}
	if portDef.Type == "jetstream" {
		port.Config = component.JetStreamPort{
			StreamName: portDef.StreamName,
			Subjects:   []string{portDef.Subject},
		}
	} else {
		port.Config = component.NATSPort{
			Subject: portDef.Subject,
		}
	}
	return port
}

// ConfigSchema returns the configuration schema
func (c *Component) ConfigSchema() component.ConfigSchema {
	return columnIndexerSchema
}

// Health returns the current health status
func (c *Component) Health() component.HealthStatus {
	c.mu.RLock()
	running := c.running
	startTime := c.startTime
	c.mu.RUnlock()

	status := "stopped"
	if running {
		status = "running"
	}
	return component.HealthStatus{
		Healthy:    running,
		LastCheck:  time.Now(),
		ErrorCount: int(c.errors.Load()),
		Uptime:     time.Since(startTime),
		Status:     status,
	}
}

// DataFlow returns current data flow metrics
func (c *Component) DataFlow() component.FlowMetrics {
	var errorRate float64
	if total := c.columnsIndexed.Load() + c.decodeFailures.Load(); total > 0 {
		errorRate = float64(c.decodeFailures.Load()) / float64(total)
	}
	return component.FlowMetrics{
		MessagesPerSecond: 0,
		BytesPerSecond:    0,
		ErrorRate:         errorRate,
		LastActivity:      c.getLastActivity(),
	}
}
