// Package config provides configuration loading and management for semaeis.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/semaeis/export"
)

// Config represents the complete semaeis configuration
type Config struct {
	Extract ExtractConfig `yaml:"extract"`
	Decode  DecodeConfig  `yaml:"decode"`
	NATS    NATSConfig    `yaml:"nats"`
	Output  OutputConfig  `yaml:"output"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ExtractConfig selects the extract files to analyze
type ExtractConfig struct {
	// Root is the directory holding one subdirectory per report year
	Root string `yaml:"root"`
	// Include are file globs relative to Root (empty = */*.dat and */*.xls)
	Include []string `yaml:"include"`
	// Years restricts analysis to these report years (empty = all)
	Years []int `yaml:"years"`
	// Kinds restricts analysis to these dataset kinds (empty = all)
	Kinds []string `yaml:"kinds"`
	// Exclude lists dataset kinds never analyzed
	Exclude []string `yaml:"exclude"`
}

// DecodeConfig configures column decoding
type DecodeConfig struct {
	// Workers bounds concurrent decodes per file (0 = GOMAXPROCS)
	Workers int `yaml:"workers"`
	// FailFast stops at the first column that cannot be decoded
	FailFast bool `yaml:"fail_fast"`
	// CacheSize is the number of decoded columns kept in memory (0 disables the cache)
	CacheSize int `yaml:"cache_size"`
}

// NATSConfig configures the NATS connection used by the indexer
type NATSConfig struct {
	// URL is the NATS server URL
	URL string `yaml:"url"`
	// Stream is the JetStream stream receiving graph entities
	Stream string `yaml:"stream"`
}

// OutputConfig configures analysis output
type OutputConfig struct {
	// Format is one of jsonl, turtle, ntriples or jsonld
	Format string `yaml:"format"`
	// Path is the output file (empty = stdout)
	Path string `yaml:"path"`
	// Profile is the RDF export profile (minimal, bfo or cco)
	Profile string `yaml:"profile"`
}

// MetricsConfig configures the Prometheus endpoint of the indexer
type MetricsConfig struct {
	// Addr is the listen address for /metrics (empty = disabled)
	Addr string `yaml:"addr"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Extract: ExtractConfig{
			Root: ".",
		},
		Decode: DecodeConfig{
			Workers:   0,
			CacheSize: 4096,
		},
		NATS: NATSConfig{
			URL:    "nats://localhost:4222",
			Stream: "GRAPH",
		},
		Output: OutputConfig{
			Format:  string(export.FormatJSONLines),
			Profile: string(export.ProfileMinimal),
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Extract.Root == "" {
		return fmt.Errorf("extract.root is required")
	}
	for _, year := range c.Extract.Years {
		if year < 1000 || year > 9999 {
			return fmt.Errorf("extract.years: invalid report year %d", year)
		}
	}
	if c.Decode.Workers < 0 {
		return fmt.Errorf("decode.workers must be non-negative")
	}
	if c.Decode.CacheSize < 0 {
		return fmt.Errorf("decode.cache_size must be non-negative")
	}
	if _, err := export.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if _, ok := export.Profiles[export.Profile(c.Output.Profile)]; !ok {
		return fmt.Errorf("output.profile: unknown profile %q", c.Output.Profile)
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Extract
	if other.Extract.Root != "" {
		c.Extract.Root = other.Extract.Root
	}
	if len(other.Extract.Include) > 0 {
		c.Extract.Include = other.Extract.Include
	}
	if len(other.Extract.Years) > 0 {
		c.Extract.Years = other.Extract.Years
	}
	if len(other.Extract.Kinds) > 0 {
		c.Extract.Kinds = other.Extract.Kinds
	}
	if len(other.Extract.Exclude) > 0 {
		c.Extract.Exclude = other.Extract.Exclude
	}

	// Decode
	if other.Decode.Workers != 0 {
		c.Decode.Workers = other.Decode.Workers
	}
	if other.Decode.FailFast {
		c.Decode.FailFast = true
	}
	if other.Decode.CacheSize != 0 {
		c.Decode.CacheSize = other.Decode.CacheSize
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Stream != "" {
		c.NATS.Stream = other.NATS.Stream
	}

	// Output
	if other.Output.Format != "" {
		c.Output.Format = other.Output.Format
	}
	if other.Output.Path != "" {
		c.Output.Path = other.Output.Path
	}
	if other.Output.Profile != "" {
		c.Output.Profile = other.Output.Profile
	}

	// Metrics
	if other.Metrics.Addr != "" {
		c.Metrics.Addr = other.Metrics.Addr
	}
}
