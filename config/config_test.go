package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Extract.Root != "." {
		t.Errorf("expected default root ., got %s", cfg.Extract.Root)
	}
	if cfg.Output.Format != "jsonl" {
		t.Errorf("expected default format jsonl, got %s", cfg.Output.Format)
	}
	if cfg.NATS.Stream != "GRAPH" {
		t.Errorf("expected default stream GRAPH, got %s", cfg.NATS.Stream)
	}
	if cfg.Decode.CacheSize != 4096 {
		t.Errorf("expected default cache size 4096, got %d", cfg.Decode.CacheSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "format by extension",
			modify:  func(c *Config) { c.Output.Format = "ttl" },
			wantErr: false,
		},
		{
			name:    "missing root",
			modify:  func(c *Config) { c.Extract.Root = "" },
			wantErr: true,
		},
		{
			name:    "invalid year",
			modify:  func(c *Config) { c.Extract.Years = []int{94} },
			wantErr: true,
		},
		{
			name:    "negative workers",
			modify:  func(c *Config) { c.Decode.Workers = -1 },
			wantErr: true,
		},
		{
			name:    "negative cache size",
			modify:  func(c *Config) { c.Decode.CacheSize = -1 },
			wantErr: true,
		},
		{
			name:    "unknown format",
			modify:  func(c *Config) { c.Output.Format = "csv" },
			wantErr: true,
		},
		{
			name:    "unknown profile",
			modify:  func(c *Config) { c.Output.Profile = "owl" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
extract:
  root: "/data/aeis"
  include:
    - "*/c*.dat"
  years: [1994, 1995]
  exclude: [ref]
decode:
  workers: 8
  fail_fast: true
nats:
  url: "nats://test:4222"
output:
  format: turtle
  profile: cco
metrics:
  addr: ":9090"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Extract.Root != "/data/aeis" {
		t.Errorf("expected root /data/aeis, got %s", cfg.Extract.Root)
	}
	if len(cfg.Extract.Include) != 1 || cfg.Extract.Include[0] != "*/c*.dat" {
		t.Errorf("unexpected include globs %v", cfg.Extract.Include)
	}
	if len(cfg.Extract.Years) != 2 {
		t.Errorf("expected 2 years, got %v", cfg.Extract.Years)
	}
	if cfg.Decode.Workers != 8 || !cfg.Decode.FailFast {
		t.Errorf("unexpected decode config %+v", cfg.Decode)
	}
	// Unset values keep their defaults.
	if cfg.Decode.CacheSize != 4096 {
		t.Errorf("expected default cache size, got %d", cfg.Decode.CacheSize)
	}
	if cfg.NATS.URL != "nats://test:4222" || cfg.NATS.Stream != "GRAPH" {
		t.Errorf("unexpected NATS config %+v", cfg.NATS)
	}
	if cfg.Output.Format != "turtle" || cfg.Output.Profile != "cco" {
		t.Errorf("unexpected output config %+v", cfg.Output)
	}
	if cfg.Metrics.Addr != ":9090" {
		t.Errorf("expected metrics addr :9090, got %s", cfg.Metrics.Addr)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("decode: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	override := &Config{
		Extract: ExtractConfig{
			Root:  "/override/root",
			Kinds: []string{"othr"},
		},
		Decode: DecodeConfig{
			FailFast: true,
		},
	}

	base.Merge(override)

	if base.Extract.Root != "/override/root" {
		t.Errorf("expected root /override/root, got %s", base.Extract.Root)
	}
	if len(base.Extract.Kinds) != 1 || base.Extract.Kinds[0] != "othr" {
		t.Errorf("expected kinds [othr], got %v", base.Extract.Kinds)
	}
	if !base.Decode.FailFast {
		t.Error("expected fail_fast to be merged")
	}
	// Format should remain from base since override didn't set it
	if base.Output.Format != "jsonl" {
		t.Errorf("expected format to remain default, got %s", base.Output.Format)
	}

	base.Merge(nil)
	if base.Extract.Root != "/override/root" {
		t.Error("merging nil changed the config")
	}
}

func TestConfigSaveToFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Extract.Root = "/saved/root"
	cfg.Extract.Years = []int{2013}

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Extract.Root != "/saved/root" {
		t.Errorf("expected root /saved/root, got %s", loaded.Extract.Root)
	}
	if len(loaded.Extract.Years) != 1 || loaded.Extract.Years[0] != 2013 {
		t.Errorf("expected years [2013], got %v", loaded.Extract.Years)
	}
}
