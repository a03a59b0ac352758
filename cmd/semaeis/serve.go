package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/componentregistry"
	ssconfig "github.com/c360studio/semstreams/config"
	"github.com/c360studio/semstreams/metric"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/c360studio/semstreams/service"
	"github.com/c360studio/semstreams/types"
	"github.com/spf13/cobra"

	"github.com/c360studio/semaeis/config"
	columnindexer "github.com/c360studio/semaeis/processor/column-indexer"
	rdfexport "github.com/c360studio/semaeis/processor/rdf-export"
)

func serveCmd(a *app) *cobra.Command {
	var (
		flowPath  string
		watch     bool
		rdfFormat string
		httpPort  int
	)

	cmd := &cobra.Command{
		Use:   "serve [root]",
		Short: "Run the column indexer as a semstreams service",
		Long: `Serve runs the column-indexer component inside the semstreams service
manager, alongside the semstreams components, until interrupted.

Without --flow a flow indexing root with the extract settings of the config
is built.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(a.rootArg(args))
			if err != nil {
				return fmt.Errorf("resolve root: %w", err)
			}

			var cfg *ssconfig.Config
			if flowPath != "" {
				cfg, err = loadFlowConfig(flowPath)
			} else {
				cfg, err = buildServiceConfig(a.cfg, root, watch, rdfFormat, httpPort)
			}
			if err != nil {
				return fmt.Errorf("load flow config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return runService(ctx, cfg, a.logger)
		},
	}

	cmd.Flags().StringVar(&flowPath, "flow", "", "semstreams flow config file (JSON)")
	cmd.Flags().BoolVar(&watch, "watch", true, "Re-index extracts as they change")
	cmd.Flags().StringVar(&rdfFormat, "rdf-export", "", "Also serialize indexed columns to RDF in this format (turtle, ntriples, jsonld)")
	cmd.Flags().IntVar(&httpPort, "http-port", 8080, "Service manager HTTP port")
	return cmd
}

// loadFlowConfig reads a flow config file and expands environment variables
// before parsing. Supports ${VAR} and ${VAR:-default} syntax.
func loadFlowConfig(path string) (*ssconfig.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	expanded := ssconfig.ExpandEnvWithDefaults(string(data))
	return ssconfig.NewLoader().LoadFromBytes([]byte(expanded))
}

// buildServiceConfig builds a flow running the column indexer over root and,
// when rdfFormat is set, the rdf-export component.
func buildServiceConfig(cfg *config.Config, root string, watch bool, rdfFormat string, httpPort int) (*ssconfig.Config, error) {
	indexerConfig := columnindexer.DefaultConfig()
	indexerConfig.Roots = []string{root}
	indexerConfig.Patterns = cfg.Extract.Include
	indexerConfig.Years = cfg.Extract.Years
	indexerConfig.Kinds = cfg.Extract.Kinds
	indexerConfig.ExcludeKinds = cfg.Extract.Exclude
	indexerConfig.Workers = cfg.Decode.Workers
	indexerConfig.WatchEnabled = watch
	indexerConfig.StreamName = cfg.NATS.Stream
	indexerJSON, err := json.Marshal(indexerConfig)
	if err != nil {
		return nil, err
	}

	components := ssconfig.ComponentConfigs{
		"column-indexer": types.ComponentConfig{
			Name:    "column-indexer",
			Type:    types.ComponentTypeProcessor,
			Enabled: true,
			Config:  indexerJSON,
		},
	}
	if rdfFormat != "" {
		exportConfig := rdfexport.DefaultConfig()
		exportConfig.Format = rdfFormat
		exportConfig.Profile = cfg.Output.Profile
		exportConfig.Ports.Inputs[0].StreamName = cfg.NATS.Stream
		if err := exportConfig.Validate(); err != nil {
			return nil, err
		}
		exportJSON, err := json.Marshal(exportConfig)
		if err != nil {
			return nil, err
		}
		components["rdf-export"] = types.ComponentConfig{
			Name:    "rdf-export",
			Type:    types.ComponentTypeProcessor,
			Enabled: true,
			Config:  exportJSON,
		}
	}

	serviceManagerJSON, err := json.Marshal(map[string]any{
		"http_port":  httpPort,
		"swagger_ui": false,
		"server_info": map[string]string{
			"title":       "Semaeis API",
			"description": "AEIS column code decoding and graph indexing",
			"version":     Version,
		},
	})
	if err != nil {
		return nil, err
	}

	return &ssconfig.Config{
		Version: "1.0.0",
		Platform: ssconfig.PlatformConfig{
			Org:         "semaeis",
			ID:          "semaeis-local",
			Environment: "dev",
		},
		NATS: ssconfig.NATSConfig{
			URLs:          []string{cfg.NATS.URL},
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
			JetStream: ssconfig.JetStreamConfig{
				Enabled: true,
			},
		},
		Services: types.ServiceConfigs{
			"service-manager": types.ServiceConfig{
				Name:    "service-manager",
				Enabled: true,
				Config:  serviceManagerJSON,
			},
		},
		Components: components,
		Streams: ssconfig.StreamConfigs{
			cfg.NATS.Stream: ssconfig.StreamConfig{
				Subjects: []string{
					"graph.ingest.entity",
					"graph.export.>",
				},
				MaxAge:   "24h",
				Storage:  "memory",
				Replicas: 1,
			},
		},
	}, nil
}

// runService connects to NATS, registers the components and runs the
// service manager until ctx is cancelled.
func runService(ctx context.Context, cfg *ssconfig.Config, logger *slog.Logger) error {
	url := ""
	if len(cfg.NATS.URLs) > 0 {
		url = cfg.NATS.URLs[0]
	}
	natsClient, err := connectToNATS(ctx, url, logger)
	if err != nil {
		return err
	}
	defer natsClient.Close(ctx)

	if err := ensureStreams(ctx, cfg, natsClient, logger); err != nil {
		return err
	}

	configManager, err := ssconfig.NewConfigManager(cfg, natsClient, logger)
	if err != nil {
		return fmt.Errorf("create config manager: %w", err)
	}
	if err := configManager.Start(ctx); err != nil {
		return fmt.Errorf("start config manager: %w", err)
	}
	defer configManager.Stop(5 * time.Second)

	componentRegistry := component.NewRegistry()
	if err := componentregistry.Register(componentRegistry); err != nil {
		return fmt.Errorf("register semstreams components: %w", err)
	}
	if err := columnindexer.Register(componentRegistry); err != nil {
		return fmt.Errorf("register column-indexer: %w", err)
	}
	if err := rdfexport.Register(componentRegistry); err != nil {
		return fmt.Errorf("register rdf-export: %w", err)
	}
	logger.Info("Component factories registered", "count", len(componentRegistry.ListFactories()))

	serviceRegistry := service.NewServiceRegistry()
	if err := service.RegisterAll(serviceRegistry); err != nil {
		return fmt.Errorf("register services: %w", err)
	}
	manager := service.NewServiceManager(serviceRegistry)

	svcDeps := &service.Dependencies{
		NATSClient:        natsClient,
		MetricsRegistry:   metric.NewMetricsRegistry(),
		Logger:            logger,
		Platform:          types.PlatformMeta{Org: cfg.Platform.Org, Platform: cfg.Platform.ID},
		Manager:           configManager,
		ComponentRegistry: componentRegistry,
	}
	if err := configureAndCreateServices(cfg, manager, svcDeps, logger); err != nil {
		return err
	}

	logger.Info("Starting all services")
	if err := manager.StartAll(ctx); err != nil {
		return fmt.Errorf("start services: %w", err)
	}
	logger.Info("Semaeis ready", "version", Version)

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	if err := manager.StopAll(30 * time.Second); err != nil {
		logger.Error("Error stopping services", "error", err)
	}
	logger.Info("Semaeis shutdown complete")
	return nil
}

func ensureStreams(ctx context.Context, cfg *ssconfig.Config, natsClient *natsclient.Client, logger *slog.Logger) error {
	logger.Debug("Creating JetStream streams")
	if err := ssconfig.NewStreamsManager(natsClient, logger).EnsureStreams(ctx, cfg); err != nil {
		return fmt.Errorf("ensure streams: %w", err)
	}
	return nil
}

// configureAndCreateServices configures the manager and creates all enabled services
func configureAndCreateServices(cfg *ssconfig.Config, manager *service.Manager, svcDeps *service.Dependencies, logger *slog.Logger) error {
	if err := manager.ConfigureFromServices(cfg.Services, svcDeps); err != nil {
		return fmt.Errorf("configure service manager: %w", err)
	}

	for name, svcConfig := range cfg.Services {
		if name == "service-manager" || !svcConfig.Enabled {
			continue
		}
		if !manager.HasConstructor(name) {
			logger.Warn("Service configured but not registered", "key", name, "available_constructors", manager.ListConstructors())
			continue
		}
		if _, err := manager.CreateService(name, svcConfig.Config, svcDeps); err != nil {
			return fmt.Errorf("create service %s: %w", name, err)
		}
		logger.Info("Created service", "name", name)
	}
	return nil
}
