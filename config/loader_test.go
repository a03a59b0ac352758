package config

import (
	"os"
	"path/filepath"
	"testing"
)

// unsetEnv clears key for the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func newTestLoader(t *testing.T) (*Loader, string, string) {
	t.Helper()
	for _, key := range []string{EnvRoot, EnvNATSURL, EnvWorkers} {
		unsetEnv(t, key)
	}
	home := t.TempDir()
	work := filepath.Join(t.TempDir(), "project", "sub")
	if err := os.MkdirAll(work, 0755); err != nil {
		t.Fatal(err)
	}
	return &Loader{logger: NewLoader(nil).logger, workDir: work, homeDir: home}, home, work
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoaderDefaults(t *testing.T) {
	l, _, _ := newTestLoader(t)

	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Extract.Root != "." {
		t.Errorf("expected default root, got %s", cfg.Extract.Root)
	}
}

func TestLoaderLayering(t *testing.T) {
	l, home, work := newTestLoader(t)

	writeFile(t, filepath.Join(home, UserConfigDir, UserConfigFile), `
extract:
  root: /user/root
decode:
  workers: 2
output:
  format: ntriples
`)
	// The project config sits in a parent of the working directory.
	writeFile(t, filepath.Join(filepath.Dir(work), ProjectConfigFile), `
extract:
  root: /project/root
`)

	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Extract.Root != "/project/root" {
		t.Errorf("expected project root to win, got %s", cfg.Extract.Root)
	}
	if cfg.Decode.Workers != 2 {
		t.Errorf("expected user workers 2, got %d", cfg.Decode.Workers)
	}
	if cfg.Output.Format != "ntriples" {
		t.Errorf("expected user format ntriples, got %s", cfg.Output.Format)
	}
}

func TestLoaderEnvironment(t *testing.T) {
	l, _, work := newTestLoader(t)

	writeFile(t, filepath.Join(work, ProjectConfigFile), "extract:\n  root: /project/root\n")
	writeFile(t, filepath.Join(work, EnvFile), "AEIS_WORKERS=6\nNATS_URL=nats://dotenv:4222\n")
	t.Setenv(EnvRoot, "/env/root")

	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Extract.Root != "/env/root" {
		t.Errorf("expected env root, got %s", cfg.Extract.Root)
	}
	if cfg.Decode.Workers != 6 {
		t.Errorf("expected workers from .env, got %d", cfg.Decode.Workers)
	}
	if cfg.NATS.URL != "nats://dotenv:4222" {
		t.Errorf("expected NATS URL from .env, got %s", cfg.NATS.URL)
	}
}

func TestLoaderInvalidWorkers(t *testing.T) {
	l, _, _ := newTestLoader(t)
	t.Setenv(EnvWorkers, "many")

	if _, err := l.Load(); err == nil {
		t.Error("expected error for non-numeric AEIS_WORKERS")
	}
}

func TestLoaderInvalidProjectConfig(t *testing.T) {
	l, _, work := newTestLoader(t)
	writeFile(t, filepath.Join(work, ProjectConfigFile), "output:\n  format: csv\n")

	if _, err := l.Load(); err == nil {
		t.Error("expected validation error")
	}
}

func TestLoaderLoadFile(t *testing.T) {
	l, _, work := newTestLoader(t)
	path := filepath.Join(work, "explicit.yaml")
	writeFile(t, path, "extract:\n  years: [2001]\n")
	t.Setenv(EnvWorkers, "3")

	cfg, err := l.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if len(cfg.Extract.Years) != 1 || cfg.Extract.Years[0] != 2001 {
		t.Errorf("expected years [2001], got %v", cfg.Extract.Years)
	}
	if cfg.Decode.Workers != 3 {
		t.Errorf("expected env workers 3, got %d", cfg.Decode.Workers)
	}
}

func TestEnsureUserConfig(t *testing.T) {
	l, home, _ := newTestLoader(t)

	if err := l.EnsureUserConfig(); err != nil {
		t.Fatalf("EnsureUserConfig() error = %v", err)
	}
	path := filepath.Join(home, UserConfigDir, UserConfigFile)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("user config not created: %v", err)
	}

	// Existing files are left alone.
	writeFile(t, path, "extract:\n  root: /kept\n")
	if err := l.EnsureUserConfig(); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Extract.Root != "/kept" {
		t.Errorf("existing user config overwritten, root = %s", cfg.Extract.Root)
	}
}
