// Package main provides the semaeis binary entry point.
// Semaeis decodes the column codes of Texas AEIS extracts into structured
// facts and exports them as JSON lines, RDF or graph entities over NATS.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/semaeis/config"
	"github.com/c360studio/semaeis/decoder"

	// Register grammars via init()
	_ "github.com/c360studio/semaeis/grammar"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semaeis"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the state shared by all commands once flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func rootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "AEIS column code decoder",
		Long: `Semaeis decodes the column codes of Texas Academic Excellence Indicator
System (AEIS) extracts into structured facts.

It provides:
- Decoding of single column codes against the grammar of a dataset kind and year
- Batch analysis of extract directories to JSON lines, Turtle, N-Triples or JSON-LD
- Column and description reports
- Indexing into the semstreams graph over NATS`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		decodeCmd(a),
		grammarsCmd(),
		analyzeCmd(a),
		columnsCmd(a),
		indexCmd(a),
		serveCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

// setup configures logging and loads the layered configuration.
func (a *app) setup(stderr io.Writer) error {
	a.logger = newLogger(stderr, a.logLevel)
	slog.SetDefault(a.logger)

	loader := config.NewLoader(a.logger)
	var err error
	if a.configPath != "" {
		a.cfg, err = loader.LoadFile(a.configPath)
	} else {
		a.cfg, err = loader.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return nil
}

func newLogger(w io.Writer, logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newDecoder returns the registry pipeline, cached when the config asks for it.
func (a *app) newDecoder() (decoder.Decoder, error) {
	pipeline := decoder.NewPipeline(nil)
	if a.cfg.Decode.CacheSize <= 0 {
		return pipeline, nil
	}
	cached, err := decoder.NewCachedPipeline(pipeline, a.cfg.Decode.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create decode cache: %w", err)
	}
	return cached, nil
}
