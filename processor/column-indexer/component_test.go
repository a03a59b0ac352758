package columnindexer

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/c360studio/semstreams/component"
)

func newTestComponent(t *testing.T, raw string) *Component {
	t.Helper()
	comp, err := NewComponent(json.RawMessage(raw), component.Dependencies{Logger: slog.Default()})
	if err != nil {
		t.Fatalf("NewComponent() error = %v", err)
	}
	c, ok := comp.(*Component)
	if !ok {
		t.Fatalf("NewComponent() returned %T", comp)
	}
	return c
}

func TestNewComponent(t *testing.T) {
	root := t.TempDir()
	raw, _ := json.Marshal(map[string]any{"roots": []string{root}, "years": []int{1994}})

	c := newTestComponent(t, string(raw))

	if c.config.StreamName != "GRAPH" {
		t.Errorf("expected default stream GRAPH, got %q", c.config.StreamName)
	}
	if !c.config.StoreAnalyses {
		t.Error("expected store_analyses to default to true")
	}
	if len(c.roots) != 1 || c.roots[0].root != root {
		t.Errorf("expected resolved root %q, got %+v", root, c.roots)
	}

	meta := c.Meta()
	if meta.Name != "column-indexer" || meta.Type != "processor" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if len(c.InputPorts()) != 0 {
		t.Error("expected no input ports")
	}
	ports := c.OutputPorts()
	if len(ports) != 1 || ports[0].Name != "graph.ingest" {
		t.Fatalf("unexpected output ports %+v", ports)
	}
	if _, ok := ports[0].Config.(component.JetStreamPort); !ok {
		t.Errorf("expected JetStream output port, got %T", ports[0].Config)
	}
}

func TestNewComponentInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{`},
		{"no roots", `{"roots":[]}`},
		{"missing root", `{"roots":["/does/not/exist/aeis"]}`},
		{"bad interval", `{"roots":["."],"index_interval":"often"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewComponent(json.RawMessage(tt.raw), component.Dependencies{Logger: slog.Default()}); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestComponentLifecycleWithoutNATS(t *testing.T) {
	c := newTestComponent(t, `{"roots":["`+t.TempDir()+`"]}`)

	if err := c.Initialize(); err != nil {
		t.Errorf("Initialize() error = %v", err)
	}
	if err := c.Start(context.Background()); err == nil {
		t.Error("expected Start() to require a NATS client")
	}

	health := c.Health()
	if health.Healthy || health.Status != "stopped" {
		t.Errorf("unexpected health %+v", health)
	}
	if err := c.Stop(time.Second); err != nil {
		t.Errorf("Stop() on stopped component error = %v", err)
	}
	if rate := c.DataFlow().ErrorRate; rate != 0 {
		t.Errorf("expected zero error rate, got %v", rate)
	}
}

// mockRegistry implements RegistryInterface for testing.
type mockRegistry struct {
	registered bool
	lastConfig component.RegistrationConfig
}

func (m *mockRegistry) RegisterWithConfig(cfg component.RegistrationConfig) error {
	m.registered = true
	m.lastConfig = cfg
	return nil
}

func TestRegister(t *testing.T) {
	t.Run("successful registration", func(t *testing.T) {
		registry := &mockRegistry{}
		if err := Register(registry); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !registry.registered {
			t.Error("expected registry.RegisterWithConfig to be called")
		}

		cfg := registry.lastConfig
		if cfg.Name != "column-indexer" {
			t.Errorf("expected Name 'column-indexer', got %s", cfg.Name)
		}
		if cfg.Protocol != "aeis" {
			t.Errorf("expected Protocol 'aeis', got %s", cfg.Protocol)
		}
		if cfg.Factory == nil {
			t.Error("expected Factory to be set")
		}
		if cfg.Schema.Properties == nil {
			t.Error("expected Schema to have Properties")
		}
	})

	t.Run("nil registry returns error", func(t *testing.T) {
		if err := Register(nil); err == nil {
			t.Error("expected error for nil registry")
		}
	})
}
